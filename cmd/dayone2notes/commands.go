package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/dayone2notes/internal/config"
	"github.com/kalambet/dayone2notes/internal/importer"
	"github.com/kalambet/dayone2notes/internal/notes"
	"github.com/kalambet/dayone2notes/internal/runlog"
)

// maxDetailLines caps how many per-entry problems are echoed to the terminal.
// The full list is always in the run log.
const maxDetailLines = 10

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <export-dir>",
	Short: "Import a Day One JSON export into Apple Notes",
	Long: `Import a Day One JSON export into Apple Notes.

The export directory is the unzipped Day One export: one or more journal
JSON files next to optional photos/ and videos/ directories.

Examples:
  dayone2notes import ~/Downloads/DayOneExport
  dayone2notes import ~/Downloads/DayOneExport --folder "Day One" --dry-run
  dayone2notes import ~/Downloads/DayOneExport --select Journal.json --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exportDir := args[0]
		folder, _ := cmd.Flags().GetString("folder")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		selected, _ := cmd.Flags().GetStringSlice("select")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("folder") && cfg.Notes.Folder != "" {
			folder = cfg.Notes.Folder
		}

		files, err := discoverFiles(exportDir, selected)
		if err != nil {
			return err
		}
		printStep("Found %d journal file(s) in %s", len(files), exportDir)

		var backend notes.Backend
		var dry *notes.DryRun
		if dryRun {
			dry = notes.NewDryRun()
			backend = dry
		} else {
			backend = notes.NewAppleScript(cfg.Notes.ScriptTimeout())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		im := importer.New(backend, importer.Options{
			ExportDir: exportDir,
			Files:     files,
			Folder:    folder,
			Offset:    offset,
			Limit:     limit,
			Progress: func(index, total int, title string) {
				printStep("Importing %d/%d: %s", index, total, title)
			},
		})

		run := runlog.NewRun(exportDir, folder, dryRun)

		summary, err := im.Run(ctx)
		// A run that got past pre-flight always carries a summary; print and
		// record it even when the run as a whole failed, so per-file parse
		// failures stay visible.
		if summary != nil {
			run.FinishedAt = time.Now().UTC()
			printSummary(summary, dryRun)
			if dry != nil {
				for _, p := range dry.Plans {
					if p.Folder != "" {
						fmt.Printf("  %s  (folder: %s)\n", p.Title, p.Folder)
					} else {
						fmt.Printf("  %s\n", p.Title)
					}
				}
			}
			saveRunLog(cfg.Storage.DataDir, run, summary)
		}
		if err != nil {
			if errors.Is(err, importer.ErrPreflight) {
				printError("Apple Notes is not ready: %v", err)
			}
			return err
		}

		if summary.Cancelled {
			return fmt.Errorf("import cancelled after %d of %d entries",
				summary.Attempted, summary.Attempted+summary.Skipped)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("folder", "", "target folder in Apple Notes (default: app default folder)")
	importCmd.Flags().Bool("dry-run", false, "plan the import without touching Apple Notes")
	importCmd.Flags().Int("limit", 0, "import at most N entries (0 = all)")
	importCmd.Flags().Int("offset", 0, "skip the first N entries")
	importCmd.Flags().StringSlice("select", nil, "journal file names to import (default: every *.json in the export)")
}

// discoverFiles lists the journal JSON files to import. Selected names are
// resolved relative to the export directory; without a selection every
// root-level *.json file is used, in name order.
func discoverFiles(exportDir string, selected []string) ([]string, error) {
	if len(selected) > 0 {
		var files []string
		for _, name := range selected {
			p := name
			if !filepath.IsAbs(p) {
				p = filepath.Join(exportDir, name)
			}
			if _, err := os.Stat(p); err != nil {
				return nil, fmt.Errorf("selected file %s: %w", name, err)
			}
			files = append(files, p)
		}
		return files, nil
	}

	matches, err := filepath.Glob(filepath.Join(exportDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", exportDir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no journal JSON files found in %s", exportDir)
	}
	sort.Strings(matches)
	return matches, nil
}

func printSummary(s *importer.Summary, dryRun bool) {
	switch {
	case s.Failed > 0 || s.Cancelled || len(s.FailedFiles) > 0:
		printWarning("Import finished with problems")
	case dryRun:
		printSuccess("Dry run complete — no notes were created")
	default:
		printSuccess("Import complete")
	}

	printStatus("Attempted", "%d", s.Attempted)
	printStatus("Succeeded", "%d", s.Succeeded)
	printStatus("Failed", "%d", s.Failed)
	if s.Skipped > 0 {
		printStatus("Skipped", "%d (run cancelled)", s.Skipped)
	}
	if s.DegradedDates > 0 {
		printStatus("Dates in body", "%d (Apple Notes sets its own creation dates)", s.DegradedDates)
	}
	if s.TagFailures > 0 {
		printStatus("Tag failures", "%d", s.TagFailures)
	}

	for _, f := range s.FailedFiles {
		printWarning("Could not parse %s: %s", f.Path, f.Message)
	}
	for i, e := range s.EntryErrors {
		if i == maxDetailLines {
			printWarning("… and %d more entry failures", len(s.EntryErrors)-maxDetailLines)
			break
		}
		printError("Entry %s: %s", e.EntryID, e.Message)
	}
	for i, u := range s.UnresolvedMedia {
		if i == maxDetailLines {
			printWarning("… and %d more unresolved attachments", len(s.UnresolvedMedia)-maxDetailLines)
			break
		}
		printWarning("Unresolved %s %s (entry %s)", u.Kind, u.Identifier, u.EntryID)
	}
	for i, m := range s.SkippedMedia {
		if i == maxDetailLines {
			printWarning("… and %d more skipped attachments", len(s.SkippedMedia)-maxDetailLines)
			break
		}
		printWarning("Skipped %s (entry %s): %s", m.Identifier, m.EntryID, m.Reason)
	}
}

// saveRunLog persists the run; failure to record history never fails the
// import itself.
func saveRunLog(dataDir string, run runlog.Run, summary *importer.Summary) {
	store, err := runlog.Open(dataDir)
	if err != nil {
		printWarning("Could not open run log: %v", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(run, summary); err != nil {
		printWarning("Could not record run: %v", err)
		return
	}
	printStatus("Run ID", "%s", run.ID)
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past import runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent import runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openRunStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, r := range runs {
			mode := ""
			if r.DryRun {
				mode = " [dry-run]"
			}
			if r.Cancelled {
				mode += " [cancelled]"
			}
			fmt.Printf("%s  %s  %d/%d ok%s  %s\n",
				colorize(colorCyan, r.ID[:8]),
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Succeeded, r.Attempted, mode,
				r.ExportDir,
			)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one import run in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRunStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(args[0])
		if errors.Is(err, runlog.ErrNotFound) {
			return fmt.Errorf("no run with ID %q", args[0])
		}
		if err != nil {
			return err
		}

		printStatus("Run", "%s", run.ID)
		printStatus("Started", "%s", run.StartedAt.Local().Format(time.RFC1123))
		printStatus("Export", "%s", run.ExportDir)
		if run.Folder != "" {
			printStatus("Folder", "%s", run.Folder)
		}
		if run.DryRun {
			printStatus("Mode", "dry-run")
		}
		printStatus("Attempted", "%d", run.Attempted)
		printStatus("Succeeded", "%d", run.Succeeded)
		printStatus("Failed", "%d", run.Failed)
		if run.Skipped > 0 {
			printStatus("Skipped", "%d", run.Skipped)
		}
		if run.Cancelled {
			printWarning("Run was cancelled")
		}

		errs, err := store.RunErrors(run.ID)
		if err != nil {
			return err
		}
		for _, e := range errs {
			if e.EntryID == "" {
				printError("%s", e.Message)
			} else {
				printError("Entry %s: %s", e.EntryID, e.Message)
			}
		}

		unresolved, err := store.RunUnresolvedMedia(run.ID)
		if err != nil {
			return err
		}
		for _, u := range unresolved {
			printWarning("Unresolved %s %s (entry %s)", u.Kind, u.Identifier, u.EntryID)
		}
		return nil
	},
}

func openRunStore() (*runlog.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return runlog.Open(cfg.Storage.DataDir)
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
