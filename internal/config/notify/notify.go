// Package notify delivers change events to subscribers of an editing
// session.
//
// Observers subscribe to every change or to a path prefix. A change to
// "palette.primary.main" reaches observers of "palette", of
// "palette.primary" and of the exact path. Batch changes carry every path
// they touch and reach a path observer if any of those paths match.
// Reloads (commit, undo, load, ...) reach every observer.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeDelete indicates a value was deleted.
	ChangeDelete

	// ChangeReload indicates the whole state was replaced.
	ChangeReload

	// ChangeBatch indicates several paths changed in one step.
	ChangeBatch
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReload:
		return "reload"
	case ChangeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Change represents a change event.
type Change struct {
	// Path is the dot-separated path that changed.
	// Empty for reload and batch events.
	Path string

	// Paths lists every path of a batch event, sorted.
	Paths []string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value (may be nil).
	OldValue any

	// NewValue is the new value (may be nil for deletes).
	NewValue any

	// Source identifies the operation that caused the change.
	Source string
}

// Touches reports whether the change affects path or anything below it.
func (c Change) Touches(path string) bool {
	switch c.Type {
	case ChangeReload:
		return true
	case ChangeBatch:
		for _, p := range c.Paths {
			if related(path, p) {
				return true
			}
		}
		return false
	default:
		return related(path, c.Path)
	}
}

// Observer is called when changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Changes already being delivered
// still reach the remaining observers.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type subscriber struct {
	path     string
	all      bool
	observer Observer
}

// Notifier manages change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	subscribers map[uint64]subscriber
	nextID      uint64

	closed bool
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		subscribers: make(map[uint64]subscriber),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(subscriber{all: true, observer: observer})
}

// SubscribePath registers an observer for changes at or below path.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	return n.add(subscriber{path: path, observer: observer})
}

func (n *Notifier) add(s subscriber) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subscribers[id] = s
	return &Subscription{id: id, notifier: n}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Notify sends a change to all matching observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	n.deliver(change)
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyDelete is a convenience method for delete changes.
func (n *Notifier) NotifyDelete(path string, oldValue any, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeDelete,
		OldValue: oldValue,
		Source:   source,
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{
		Type:   ChangeReload,
		Source: source,
	})
}

// NotifyBatch sends one event for several changed paths.
func (n *Notifier) NotifyBatch(paths []string, source string) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	n.Notify(Change{
		Paths:  sorted,
		Type:   ChangeBatch,
		Source: source,
	})
}

// Close stops delivery. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subscribers, id)
}

// deliver calls matching observers in subscription order.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.subscribers))
	for id, s := range n.subscribers {
		if s.all || change.Touches(s.path) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.subscribers[id].observer
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(change)
	}
}

// related reports whether a subscription path and a changed path overlap:
// one equals the other or lies beneath it.
func related(subscribed, changed string) bool {
	return isUnder(changed, subscribed) || isUnder(subscribed, changed)
}

func isUnder(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix ||
		(len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '.')
}
