//go:build darwin

package backend

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kalambet/prefs/internal/prefs"
)

// DefaultsDomain is the UserDefaults domain prefs are written to.
const DefaultsDomain = "com.prefs.app"

// Defaults stores slots in macOS UserDefaults through the defaults CLI.
// cfprefsd persists writes on its own, so Flush is a no-op.
type Defaults struct {
	domain string
}

func NewDefaults(domain string) *Defaults {
	return &Defaults{domain: domain}
}

func openDefaults() (prefs.Backend, error) {
	return NewDefaults(DefaultsDomain), nil
}

func (b *Defaults) read(key string) (string, bool, error) {
	cmd := exec.Command("defaults", "read", b.domain, key)
	out, err := cmd.CombinedOutput()
	s := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading default for key '%s': %w, output: %s", key, err, s)
	}
	return s, true, nil
}

func (b *Defaults) HasKey(key string) (bool, error) {
	_, ok, err := b.read(key)
	return ok, err
}

func (b *Defaults) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *Defaults) SetString(key, val string) error {
	return exec.Command("defaults", "write", b.domain, key, "-string", val).Run()
}

func (b *Defaults) DeleteKey(key string) error {
	ok, err := b.HasKey(key)
	if err != nil || !ok {
		return err
	}
	return exec.Command("defaults", "delete", b.domain, key).Run()
}

func (b *Defaults) Flush() error { return nil }
