//go:build darwin

package notes

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func runOSAScript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("osascript timed out")
		}
		return "", fmt.Errorf("osascript: %s", msg)
	}
	return strings.TrimSpace(string(out)), nil
}
