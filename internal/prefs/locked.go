package prefs

import (
	"sync"
	"time"
)

// Locked serializes access to a Store so that it can be shared by
// concurrent request handlers. Listeners run while the lock is held and
// must not call back into the Locked store.
type Locked struct {
	mu sync.Mutex
	s  *Store
}

// NewLocked wraps s. The caller must not use s directly afterwards.
func NewLocked(s *Store) *Locked {
	return &Locked{s: s}
}

func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Close()
}

func (l *Locked) SaveTyped(key string, v Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.SaveTyped(key, v)
}

func (l *Locked) SaveAuto(key string, v any) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.SaveAuto(key, v)
}

func (l *Locked) Get(key string) (Value, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Get(key)
}

func (l *Locked) Has(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Has(key)
}

func (l *Locked) TryGetInt(key string) (int64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.TryGetInt(key)
}

func (l *Locked) TryGetFloat(key string) (float64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.TryGetFloat(key)
}

func (l *Locked) TryGetString(key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.TryGetString(key)
}

func (l *Locked) TryGetTime(key string) (time.Time, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.TryGetTime(key)
}

func (l *Locked) Delete(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Delete(key)
}

func (l *Locked) ListKeys() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.ListKeys()
}

func (l *Locked) RegisterDefault(key string, v Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.RegisterDefault(key, v)
}

func (l *Locked) Default(key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Default(key)
}

func (l *Locked) ResetOne(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.ResetOne(key)
}

func (l *Locked) ResetAll() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.ResetAll()
}

func (l *Locked) Export() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Export()
}

func (l *Locked) Import(records []Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Import(records)
}

func (l *Locked) Subscribe(fn Listener) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Subscribe(fn)
}

func (l *Locked) Unsubscribe(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Unsubscribe(id)
}
