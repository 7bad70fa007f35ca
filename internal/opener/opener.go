// Package opener reveals a project folder in the host's file browser.
package opener

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/browser"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// launch hands the directory to the platform's default handler
// (open, xdg-open, or start). Tests replace it.
var launch = browser.OpenFile

// Open launches the native file browser on dir. It returns ErrNotFound
// when dir is blank or not an existing directory. Launcher failures wrap
// ErrStorage.
func Open(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: project has no path", types.ErrNotFound)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: directory %s", types.ErrNotFound, dir)
	}
	if err := launch(dir); err != nil {
		return fmt.Errorf("%w: opening %s: %w", types.ErrStorage, dir, err)
	}
	return nil
}
