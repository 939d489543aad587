//go:build !darwin

package notes

import (
	"context"
	"fmt"
)

func runOSAScript(ctx context.Context, script string) (string, error) {
	return "", fmt.Errorf("Apple Notes automation requires macOS")
}
