// Package history provides bounded undo/redo over immutable snapshots.
//
// A History holds three things: the past, the present and the future.
// Committing a new state pushes the present onto the past and clears the
// future; undo and redo move the present one step along that line.
//
//	h := history.New(initial, 50, equal, clone)
//
//	h.Commit(next, "set palette.primary.main")
//	h.Undo()    // present is initial again
//	h.Redo()    // present is next again
//
// Commits equal to the present are dropped, so repeated saves of an
// unchanged state never create empty undo steps. When the past grows
// beyond the configured limit the oldest snapshots are evicted.
//
// Snapshots are cloned on the way in and on the way out; callers can never
// mutate a state held in history.
package history
