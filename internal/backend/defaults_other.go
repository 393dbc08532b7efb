//go:build !darwin

package backend

import (
	"fmt"

	"github.com/kalambet/prefs/internal/prefs"
)

func openDefaults() (prefs.Backend, error) {
	return nil, fmt.Errorf("%w: %q is only available on macOS", ErrUnknownBackend, KindDefaults)
}
