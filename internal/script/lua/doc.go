// Package lua runs theme functions written in Lua.
//
// Every State is sandboxed: only the base, table, string and math libraries
// are opened, file and module loading functions are removed, and execution
// honors the caller's context deadline.
//
//	state := lua.NewState()
//	defer state.Close()
//
//	v, err := state.Eval(ctx, `function(theme) return theme.palette.mode end`, tree)
package lua
