// Package prefs is a typed key-value settings store. Values are kept as
// obscured text in a string-keyed Backend, alongside a per-key type tag, an
// optional default, and an index of all known keys.
package prefs

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kalambet/prefs/internal/codec"
)

// Bootstrap entry written into a store whose index was never used.
const (
	BootstrapKey   = "DefaultKey"
	BootstrapValue = "DefaultValue"
)

// Store is the settings API. It is not safe for concurrent use; wrap it in
// a Locked when it is shared between goroutines.
type Store struct {
	b      Backend
	index  keyIndex
	log    *slog.Logger
	subs   []subscription
	closed bool
}

type options struct {
	logger    *slog.Logger
	bootstrap bool
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBootstrap controls whether Open seeds the bootstrap entry into an
// unused store. It is on by default.
func WithBootstrap(on bool) Option {
	return func(o *options) { o.bootstrap = on }
}

// Open prepares b for use: it creates the key index if missing and, unless
// disabled, writes DefaultKey=DefaultValue when the index holds only the
// placeholder.
func Open(b Backend, opts ...Option) (*Store, error) {
	o := options{logger: slog.Default(), bootstrap: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{b: b, index: keyIndex{b: b}, log: o.logger}

	seeded, err := s.index.ensure()
	if err != nil {
		return nil, err
	}
	if seeded {
		if err := b.Flush(); err != nil {
			return nil, fmt.Errorf("flushing key index: %w", err)
		}
	}

	if o.bootstrap {
		keys, err := s.index.List()
		if err != nil {
			return nil, err
		}
		if isPlaceholderOnly(keys) {
			if err := s.SaveTyped(BootstrapKey, String(BootstrapValue)); err != nil {
				return nil, fmt.Errorf("writing bootstrap entry: %w", err)
			}
		}
	}
	return s, nil
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.subs = nil
	if c, ok := s.b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SaveTyped stores v under key, replacing any previous value and type, and
// notifies subscribers once the write is flushed.
func (s *Store) SaveTyped(key string, v Value) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := storable(v); err != nil {
		return err
	}
	if err := s.index.Register(key); err != nil {
		return err
	}
	if err := s.b.SetString(typeSlot(key), v.Kind().String()); err != nil {
		return fmt.Errorf("writing type of %q: %w", key, err)
	}
	if err := s.b.SetString(key, codec.Encode(Format(v))); err != nil {
		return fmt.Errorf("writing value of %q: %w", key, err)
	}
	if err := s.b.Flush(); err != nil {
		return fmt.Errorf("flushing %q: %w", key, err)
	}
	s.log.Debug("prefs: saved", "key", key, "type", v.Kind())
	s.notify(Change{Key: key, Value: v})
	return nil
}

// SaveAuto stores v with its kind picked from its dynamic type. Values of
// unsupported types are dropped and saved reports false.
func (s *Store) SaveAuto(key string, v any) (bool, error) {
	val, ok := Detect(v)
	if !ok {
		s.log.Debug("prefs: unsupported value type, not saved", "key", key, "type", fmt.Sprintf("%T", v))
		return false, nil
	}
	if err := s.SaveTyped(key, val); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the value stored under key. Keys without a type tag read as
// String; stored text that does not parse yields the kind's sentinel.
func (s *Store) Get(key string) (Value, error) {
	if s.closed {
		return Value{}, ErrClosed
	}
	kind, err := s.kindOf(key)
	if err != nil {
		return Value{}, err
	}
	raw, _, err := s.b.GetString(key)
	if err != nil {
		return Value{}, fmt.Errorf("reading value of %q: %w", key, err)
	}
	v, ok := Parse(kind, codec.Decode(raw))
	if !ok {
		s.log.Debug("prefs: stored value does not parse, using sentinel", "key", key, "type", kind)
	}
	return v, nil
}

// Has reports whether key has a live value.
func (s *Store) Has(key string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	ok, err := s.b.HasKey(key)
	if err != nil {
		return false, fmt.Errorf("checking %q: %w", key, err)
	}
	return ok, nil
}

// Delete removes key together with its type tag and default. Unknown keys
// are not an error; reserved slot names are rejected with ErrInvalidKey.
func (s *Store) Delete(key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := s.index.Unregister(key); err != nil {
		return err
	}
	for _, slot := range []string{key, typeSlot(key), defaultSlot(key)} {
		if err := s.b.DeleteKey(slot); err != nil {
			return fmt.Errorf("deleting %q: %w", slot, err)
		}
	}
	if err := s.b.Flush(); err != nil {
		return fmt.Errorf("flushing delete of %q: %w", key, err)
	}
	s.log.Debug("prefs: deleted", "key", key)
	return nil
}

// ListKeys returns the registered keys in insertion order. A store that
// never held a key lists the single placeholder "None".
func (s *Store) ListKeys() ([]string, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.index.List()
}

// The TryGet probes report found only when key has a live value whose type
// tag matches and whose stored text parses. On a miss they return the
// kind's sentinel, so stored sentinels such as -1 are still found.

func (s *Store) TryGetInt(key string) (int64, bool, error) {
	v, ok, err := s.tryGet(key, KindInt)
	return v.Int(), ok, err
}

func (s *Store) TryGetFloat(key string) (float64, bool, error) {
	v, ok, err := s.tryGet(key, KindFloat)
	return v.Float(), ok, err
}

func (s *Store) TryGetString(key string) (string, bool, error) {
	v, ok, err := s.tryGet(key, KindString)
	return v.Str(), ok, err
}

func (s *Store) TryGetTime(key string) (time.Time, bool, error) {
	v, ok, err := s.tryGet(key, KindDateTime)
	return v.Time(), ok, err
}

func (s *Store) tryGet(key string, want Kind) (Value, bool, error) {
	miss := Sentinel(want)
	present, err := s.Has(key)
	if err != nil || !present {
		return miss, false, err
	}
	kind, err := s.kindOf(key)
	if err != nil || kind != want {
		return miss, false, err
	}
	raw, _, err := s.b.GetString(key)
	if err != nil {
		return miss, false, fmt.Errorf("reading value of %q: %w", key, err)
	}
	v, ok := Parse(kind, codec.Decode(raw))
	return v, ok, nil
}

// kindOf returns the recorded kind of key, String when untagged.
func (s *Store) kindOf(key string) (Kind, error) {
	tag, ok, err := s.b.GetString(typeSlot(key))
	if err != nil {
		return KindString, fmt.Errorf("reading type of %q: %w", key, err)
	}
	if !ok {
		return KindString, nil
	}
	kind, _ := ParseKind(tag)
	return kind, nil
}

// storable rejects values whose text form would not read back, which is
// only a NaN float.
func storable(v Value) error {
	if v.kind == KindFloat && math.IsNaN(v.f) {
		return fmt.Errorf("%w: NaN is not a storable Float", ErrInvalidValue)
	}
	return nil
}

func (s *Store) check(key string) error {
	if s.closed {
		return ErrClosed
	}
	switch {
	case key == "":
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	case strings.Contains(key, ","):
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidKey, key)
	case key == IndexKey, key == Placeholder:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidKey, key)
	}
	return nil
}
