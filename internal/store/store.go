// Package store owns the editable state of a theme design: the
// history-tracked persisted slice and the transient raw edit buffer.
package store

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/config/notify"
	"github.com/dshills/themeforge/internal/engine/history"
	"github.com/dshills/themeforge/internal/logging"
	"github.com/dshills/themeforge/internal/modification"
	"github.com/dshills/themeforge/internal/resolver"
)

// Change sources reported to subscribers.
const (
	SourceRaw     = "raw"
	SourceFrame   = "frame"
	SourceCommit  = "commit"
	SourceDiscard = "discard"
	SourceHistory = "history"
	SourceMeta    = "meta"
	SourceLoad    = "load"
)

// Store is the modification store. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	history *history.History[Persisted]
	raw     map[string]any

	// scheduled writes waiting for the next frame
	pending     map[string]any
	cancelFrame func()
	frameGen    uint64

	frames     FrameScheduler
	classifier *modification.Classifier
	scoping    modification.Scoping
	notifier   *notify.Notifier
	logger     *logging.Logger
	limit      int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit bounds the number of undo steps.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		s.limit = n
	}
}

// WithFrames sets the scheduler used by ScheduleRawModification.
func WithFrames(f FrameScheduler) Option {
	return func(s *Store) {
		s.frames = f
	}
}

// WithClassifier sets the classifier used on commit.
func WithClassifier(c *modification.Classifier) Option {
	return func(s *Store) {
		s.classifier = c
	}
}

// WithScoping sets which paths are stored per color scheme.
func WithScoping(sc modification.Scoping) Option {
	return func(s *Store) {
		s.scoping = sc
	}
}

// WithLogger sets the store logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store whose initial persisted state is initial. The raw
// buffer starts as a mirror of initial.
func New(initial Persisted, opts ...Option) *Store {
	s := &Store{
		scoping:  modification.DefaultScoping(),
		notifier: notify.New(),
		pending:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("store")
	if s.frames == nil {
		s.frames = NewTimerFrames(DefaultFrameInterval)
	}
	if s.classifier == nil {
		s.classifier = modification.NewClassifier(nil, s.logger)
	}

	initial = initial.Clone()
	s.history = history.New(initial, s.limit, Persisted.Equal, Persisted.Clone)
	s.raw = initial.Resolved.Flat()
	return s
}

// State returns a copy of the persisted state.
func (s *Store) State() Persisted {
	return s.history.Present()
}

// Raw returns a copy of the raw buffer, excluding writes still waiting for
// a frame.
func (s *Store) Raw() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFlat(s.raw)
}

// PendingWrites returns the number of paths waiting for the next frame.
func (s *Store) PendingWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Qualify returns the path an edit to path is stored under for the current
// color scheme.
func (s *Store) Qualify(path string) string {
	return s.scoping.Qualify(s.history.Present().ColorScheme, path)
}

// Scoping returns the color scheme scoping rules.
func (s *Store) Scoping() modification.Scoping {
	return s.scoping
}

// IsDirty reports whether the raw buffer differs from the committed state.
func (s *Store) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Store) dirtyLocked() bool {
	if len(s.pending) > 0 {
		return true
	}
	return !s.classifier.Classify(s.raw).Equal(s.history.Present().Resolved)
}

// SetRawModificationAtPath writes value into the raw buffer immediately.
// Values that are not data are logged on commit and kept as literals; they
// cannot be persisted, so callers should refuse them first.
// Color-scheme scoped paths are qualified with the selected scheme.
// Pending scheduled writes are applied first.
// Observers are notified with the unqualified tree path.
func (s *Store) SetRawModificationAtPath(path string, value any) {
	qualified := s.Qualify(path)

	s.mu.Lock()
	flushed := s.flushPendingLocked()
	old := s.raw[qualified]
	s.raw[qualified] = layer.CloneValue(value)
	s.mu.Unlock()

	s.notifyFlushed(flushed)
	s.notifier.NotifySet(path, old, value, SourceRaw)
}

// RemoveModificationAtPath resets path, and every raw edit beneath it, to
// the lower layers. While a color scheme is selected, a scoped path loses
// both its scheme-qualified edits and the unqualified ones, so the base
// value shows for that scheme. Pending scheduled writes are applied first
// so a stale frame cannot bring the edit back.
func (s *Store) RemoveModificationAtPath(path string) {
	qualified := s.Qualify(path)

	s.mu.Lock()
	flushed := s.flushPendingLocked()
	old, ok := s.raw[qualified]
	if !ok {
		old = s.raw[path]
	}
	s.removeRawLocked(qualified)
	if qualified != path {
		s.removeRawLocked(path)
	}
	s.mu.Unlock()

	s.notifyFlushed(flushed)
	s.notifier.NotifyDelete(path, old, SourceRaw)
}

// removeRawLocked deletes target and every raw edit beneath it. A raw edit
// holding a map above target keeps its other keys.
func (s *Store) removeRawLocked(target string) {
	for p, v := range s.raw {
		switch {
		case layer.HasPrefix(p, target):
			delete(s.raw, p)
		case layer.HasPrefix(target, p):
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			m = layer.Clone(m)
			if layer.DeleteByPath(m, strings.TrimPrefix(target, p+layer.Separator)) {
				s.raw[p] = m
			}
		}
	}
}

// ReplaceRaw replaces the whole raw buffer with flat. Paths are stored as
// given, without color-scheme qualification. Scheduled writes are dropped.
func (s *Store) ReplaceRaw(flat map[string]any) {
	s.mu.Lock()
	s.dropPendingLocked()
	s.raw = cloneFlat(flat)
	s.mu.Unlock()

	s.notifier.NotifyReload(SourceRaw)
}

// ScheduleRawModification queues a raw write for the next frame. Several
// writes within one frame, to the same or different paths, are applied
// together and produce a single notification. The last write to a path
// wins.
func (s *Store) ScheduleRawModification(path string, value any) {
	qualified := s.Qualify(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[qualified] = layer.CloneValue(value)
	if s.cancelFrame != nil {
		return
	}

	gen := s.frameGen
	s.cancelFrame = s.frames.RequestFrame(func() {
		s.runFrame(gen)
	})
}

// Flush applies scheduled writes now instead of at the next frame.
func (s *Store) Flush() {
	s.mu.Lock()
	flushed := s.flushPendingLocked()
	s.mu.Unlock()
	s.notifyFlushed(flushed)
}

func (s *Store) runFrame(gen uint64) {
	s.mu.Lock()
	if gen != s.frameGen {
		s.mu.Unlock()
		return
	}
	flushed := s.flushPendingLocked()
	s.mu.Unlock()
	s.notifyFlushed(flushed)
}

// flushPendingLocked applies scheduled writes, cancels the frame and
// returns the written paths.
func (s *Store) flushPendingLocked() []string {
	s.cancelFrameLocked()
	if len(s.pending) == 0 {
		return nil
	}
	paths := layer.SortedPaths(s.pending)
	maps.Copy(s.raw, s.pending)
	clear(s.pending)
	return paths
}

// dropPendingLocked discards scheduled writes and cancels the frame.
func (s *Store) dropPendingLocked() {
	s.cancelFrameLocked()
	clear(s.pending)
}

func (s *Store) cancelFrameLocked() {
	s.frameGen++
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
}

// notifyFlushed reports a frame batch by unqualified tree path.
func (s *Store) notifyFlushed(paths []string) {
	if len(paths) == 0 {
		return
	}
	tree := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, rest, ok := modification.SchemeOf(p); ok {
			p = rest
		}
		if !slices.Contains(tree, p) {
			tree = append(tree, p)
		}
	}
	s.notifier.NotifyBatch(tree, SourceFrame)
}

// CommitRawModifications folds the raw buffer, scheduled writes included,
// into the resolved modification set. It reports whether a new history
// step was recorded.
func (s *Store) CommitRawModifications() bool {
	s.mu.Lock()
	s.flushPendingLocked()

	next := s.history.Present()
	next.Resolved = s.classifier.Classify(s.raw)
	committed := s.history.Commit(next, "commit modifications")
	s.raw = next.Resolved.Flat()
	s.mu.Unlock()

	s.logger.Debug("commit", "paths", next.Resolved.Len(), "recorded", committed)
	s.notifier.NotifyReload(SourceCommit)
	return committed
}

// DiscardChanges resets the raw buffer to mirror the committed state and
// drops scheduled writes. History is not touched.
func (s *Store) DiscardChanges() {
	s.mu.Lock()
	s.dropPendingLocked()
	s.raw = s.history.Present().Resolved.Flat()
	s.mu.Unlock()

	s.notifier.NotifyReload(SourceDiscard)
}

// ToggleComposable enables or disables a composable. Each toggle is its
// own history step; pending raw edits are left alone.
func (s *Store) ToggleComposable(id string, enabled bool) bool {
	return s.commitMeta("toggle composable "+id, func(p *Persisted) {
		p.Composables = withToggle(p.Composables, id, enabled)
	})
}

// SetActiveBaseTheme swaps the base template.
func (s *Store) SetActiveBaseTheme(ref catalog.Ref) bool {
	return s.commitMeta("set base theme "+ref.String(), func(p *Persisted) {
		p.BaseTheme = ref
	})
}

// SelectPreview records the selected preview.
func (s *Store) SelectPreview(id string) bool {
	return s.commitMeta("select preview", func(p *Persisted) {
		p.SelectedPreview = id
	})
}

// SetColorScheme selects the color scheme edits are made against.
func (s *Store) SetColorScheme(scheme string) bool {
	return s.commitMeta("set color scheme "+scheme, func(p *Persisted) {
		p.ColorScheme = scheme
	})
}

// ResetDesign clears all committed edits as one history step and empties
// the raw buffer.
func (s *Store) ResetDesign() bool {
	s.mu.Lock()
	s.dropPendingLocked()
	next := s.history.Present()
	next.Resolved = modification.NewSet()
	committed := s.history.Commit(next, "reset design")
	s.raw = make(map[string]any)
	s.mu.Unlock()

	s.notifier.NotifyReload(SourceCommit)
	return committed
}

func (s *Store) commitMeta(label string, mutate func(*Persisted)) bool {
	s.mu.Lock()
	next := s.history.Present()
	mutate(&next)
	committed := s.history.Commit(next, label)
	s.mu.Unlock()

	if committed {
		s.logger.Debug("metadata change", "label", label)
		s.notifier.NotifyReload(SourceMeta)
	}
	return committed
}

// Undo restores the previous persisted state. It returns false, leaving
// everything untouched, when there is nothing to undo.
func (s *Store) Undo() bool {
	return s.step(s.history.Undo)
}

// Redo reapplies the most recently undone state. It returns false when
// there is nothing to redo.
func (s *Store) Redo() bool {
	return s.step(s.history.Redo)
}

func (s *Store) step(move func() (Persisted, error)) bool {
	s.mu.Lock()
	present, err := move()
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("history step ignored", "reason", err.Error())
		return false
	}
	s.dropPendingLocked()
	s.raw = present.Resolved.Flat()
	s.mu.Unlock()

	s.notifier.NotifyReload(SourceHistory)
	return true
}

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool {
	return s.history.CanRedo()
}

// UndoCount returns the number of undo steps available.
func (s *Store) UndoCount() int {
	return s.history.UndoCount()
}

// RedoCount returns the number of redo steps available.
func (s *Store) RedoCount() int {
	return s.history.RedoCount()
}

// PeekUndo describes the step Undo would revert.
func (s *Store) PeekUndo() (history.Info, bool) {
	return s.history.PeekUndo()
}

// PeekRedo describes the step Redo would reapply.
func (s *Store) PeekRedo() (history.Info, bool) {
	return s.history.PeekRedo()
}

// History lists the undo steps, oldest first.
func (s *Store) History() []history.Info {
	return s.history.UndoInfo()
}

// ClearHistory empties the undo and redo stacks without changing state.
func (s *Store) ClearHistory() {
	s.history.Clear()
}

// Load replaces the persisted state, clears history and resets the raw
// buffer to mirror p.
func (s *Store) Load(p Persisted) {
	p = p.Clone()

	s.mu.Lock()
	s.dropPendingLocked()
	s.history.Reset(p)
	s.raw = p.Resolved.Flat()
	s.mu.Unlock()

	s.notifier.NotifyReload(SourceLoad)
}

// Request builds a resolver request from the current state.
func (s *Store) Request() resolver.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.history.Present()
	raw := cloneFlat(s.raw)

	normalized := modification.Normalize(raw)
	var masked []string
	for _, path := range layer.SortedPaths(p.Resolved.Flat()) {
		if _, ok := normalized[path]; !ok {
			masked = append(masked, path)
		}
	}

	return resolver.Request{
		Base:        p.BaseTheme,
		Composables: p.EnabledComposables(),
		Committed:   p.Resolved,
		Raw:         raw,
		Masked:      masked,
		ColorScheme: p.ColorScheme,
	}
}

// Subscribe registers an observer for every change.
func (s *Store) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes at or below path.
// Metadata, commit and history changes are delivered to every observer.
func (s *Store) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return s.notifier.SubscribePath(path, observer)
}

// Close cancels any scheduled frame and stops notifications.
func (s *Store) Close() {
	s.mu.Lock()
	s.cancelFrameLocked()
	s.mu.Unlock()
	s.notifier.Close()
}

func cloneFlat(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = layer.CloneValue(v)
	}
	return out
}
