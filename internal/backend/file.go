package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File stores all slots as a flat JSON object. Writes are buffered in
// memory until Flush, which replaces the file atomically.
type File struct {
	path string

	mu    sync.Mutex
	data  map[string]string
	dirty bool
}

// OpenFile loads path if it exists. A file that does not parse is renamed
// to path.corrupt-<unix time> and the backend starts empty, so the next Flush
// never replaces the original bytes. Any other read error is returned.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading prefs file: %w", err)
	}
	if err := json.Unmarshal(data, &f.data); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, fmt.Errorf("prefs file %s does not parse (%v) and could not be moved aside: %w", path, err, rerr)
		}
		slog.Warn("could not parse prefs file, moved aside and starting empty", "path", path, "moved_to", aside, "error", err)
		f.data = make(map[string]string)
	}
	return f, nil
}

func (f *File) HasKey(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *File) GetString(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) SetString(key, val string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.data[key]; ok && cur == val {
		return nil
	}
	f.data[key] = val
	f.dirty = true
	return nil
}

func (f *File) DeleteKey(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	f.dirty = true
	return nil
}

func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return nil
	}
	if err := f.save(); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// Close flushes pending writes.
func (f *File) Close() error {
	return f.Flush()
}

func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing prefs file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing prefs file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, f.path)
}
