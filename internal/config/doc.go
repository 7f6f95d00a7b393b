// Package config loads ansistr settings.
//
// Settings come from three layers, each overriding the one before:
//
//	built-in defaults < configuration file < ANSISTR_* environment variables
//
// The file is TOML or YAML, chosen by extension, and may pull in other
// files with an "@include" key. Layers are merged as generic maps, then
// decoded strictly into Config and validated.
//
//	# ansistr.toml
//	[license]
//	first_name = "Ada"
//	last_name  = "Lovelace"
//	email      = "ada@example.com"
//	key        = 2882400001
//
//	[buffer]
//	embed_size = 64
//	pooled     = true
//
//	[search]
//	method = "auto"
//
// Environment variables map onto section and key: ANSISTR_BUFFER_EMBED_SIZE
// sets buffer.embed_size. ANSISTR_LOG_LEVEL and ANSISTR_LOG_FORMAT set the
// logging section.
//
// Sub-packages:
//
//   - loader: file and environment sources, merging
//   - watcher: fsnotify-based change notification used by Watch
package config
