package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// dangerousGlobals are removed from every state. They can load code from
// disk or compile arbitrary strings outside the evaluation entry point.
var dangerousGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"collectgarbage",
	"print",
}

// openSafeLibraries opens only the libraries theme functions need.
// io, os, debug, package and channel are intentionally not opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installSandbox strips the globals theme code must not reach.
func installSandbox(L *lua.LState) {
	for _, name := range dangerousGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}
