package prefs

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Change describes a successful write.
type Change struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Listener receives changes synchronously, before the write call returns.
// It must not call back into the Store it is subscribed to.
type Listener func(Change)

type subscription struct {
	id string
	fn Listener
}

// Subscribe registers fn and returns an id for Unsubscribe. Listeners are
// called in subscription order.
func (s *Store) Subscribe(fn Listener) string {
	id := uuid.New().String()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return id
}

// Unsubscribe removes the listener with the given id and reports whether it
// was registered.
func (s *Store) Unsubscribe(id string) bool {
	i := slices.IndexFunc(s.subs, func(sub subscription) bool { return sub.id == id })
	if i < 0 {
		return false
	}
	s.subs = slices.Delete(s.subs, i, i+1)
	return true
}

func (s *Store) notify(c Change) {
	for _, sub := range slices.Clone(s.subs) {
		s.deliver(sub, c)
	}
}

// deliver runs one listener. A panic is logged and swallowed: the write it
// reports has already been flushed.
func (s *Store) deliver(sub subscription, c Change) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("prefs: change listener panicked", "subscription", sub.id, "key", c.Key, "panic", fmt.Sprint(r))
		}
	}()
	sub.fn(c)
}
