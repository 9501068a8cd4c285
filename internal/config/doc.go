// Package config loads the editor settings.
//
// Settings are resolved from layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← THEMEFORGE_*, highest priority
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← TOML, YAML or JSON
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The merged tree is decoded into Settings and validated.
//
//	# themeforge.toml
//	[history]
//	limit = 100
//
//	[script]
//	dialect = "expr"
//	timeout = "500ms"
//
//	[scheme]
//	scopedRoots = ["palette", "shadows"]
//
// # Error Handling
//
//   - ErrFileNotFound: an explicitly named settings file doesn't exist
//   - ErrValidationFailed: a setting is out of range or malformed
//   - *loader.ParseError: the settings file could not be parsed
package config
