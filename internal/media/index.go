// Package media locates the files behind an entry's photo and video
// references. The export directory is scanned exactly once per run; lookups
// never touch the filesystem afterwards.
package media

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/dayone2notes/internal/journal"
)

// partition holds the lookups for one media kind. byIdentifier and byMD5 keys
// are uppercase hex; files keeps the sorted listing for substring matching.
type partition struct {
	byIdentifier map[string]string
	byMD5        map[string]string
	files        []string
}

// Index maps media references to absolute file paths. It is built once by
// BuildIndex and read-only from then on.
type Index struct {
	photos partition
	videos partition
}

// BuildIndex scans the photos/ and videos/ subdirectories of exportDir. A
// missing subdirectory yields an empty partition, not an error. The two
// partitions are scanned and hashed concurrently; the returned Index is
// immutable.
func BuildIndex(ctx context.Context, exportDir string) (*Index, error) {
	idx := &Index{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := scanDir(ctx, filepath.Join(exportDir, "photos"))
		if err != nil {
			return fmt.Errorf("indexing photos: %w", err)
		}
		idx.photos = p
		return nil
	})
	g.Go(func() error {
		p, err := scanDir(ctx, filepath.Join(exportDir, "videos"))
		if err != nil {
			return fmt.Errorf("indexing videos: %w", err)
		}
		idx.videos = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("media index built",
		"photos", len(idx.photos.files),
		"videos", len(idx.videos.files))
	return idx, nil
}

// PhotoCount returns the number of indexed photo files.
func (i *Index) PhotoCount() int { return len(i.photos.files) }

// VideoCount returns the number of indexed video files.
func (i *Index) VideoCount() int { return len(i.videos.files) }

func scanDir(ctx context.Context, dir string) (partition, error) {
	p := partition{
		byIdentifier: make(map[string]string),
		byMD5:        make(map[string]string),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("media directory not found", "dir", dir)
			return p, nil
		}
		return partition{}, err
	}

	// os.ReadDir sorts by name; on a collision the first listed file wins.
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return partition{}, err
		}
		if entry.IsDir() {
			continue
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return partition{}, err
		}
		p.files = append(p.files, path)

		if id, ok := identifierFromName(entry.Name()); ok {
			if _, exists := p.byIdentifier[id]; !exists {
				p.byIdentifier[id] = path
			}
		}

		sum, err := hashFile(path)
		if err != nil {
			slog.Debug("could not hash media file", "path", path, "error", err)
			continue
		}
		if _, exists := p.byMD5[sum]; !exists {
			p.byMD5[sum] = path
		}
	}

	return p, nil
}

// identifierFromName extracts a Day One media identifier from a filename:
// the stem must be a 32-character hex string.
func identifierFromName(name string) (string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if len(stem) != 32 {
		return "", false
	}
	for _, c := range stem {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToUpper(stem), true
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

func (p partition) lookup(ref journal.MediaRef) (string, bool) {
	if ref.Identifier != "" {
		if path, ok := p.byIdentifier[ref.Identifier]; ok {
			return path, true
		}
		// Identifier may be embedded in a longer filename.
		for _, path := range p.files {
			if strings.Contains(strings.ToUpper(filepath.Base(path)), ref.Identifier) {
				return path, true
			}
		}
	}
	if ref.MD5 != "" {
		if path, ok := p.byMD5[ref.MD5]; ok {
			return path, true
		}
	}
	return "", false
}
