// Package config resolves devcert settings and defines the Logger used
// across the module.
//
// # Layering
//
// Settings are assembled in increasing priority:
//   - Defaults(): pinned mkcert version, "certificates" cert dir, the user
//     cache directory as cache root
//   - a devcert.lua file, if present
//   - environment variables and command-line flags (bound by cmd/devcert)
//
// # Lua schema
//
//	devcert = {
//	    cert_dir  = "certificates",
//	    cache_dir = "/tmp/devcert-cache",
//	    hosts     = { "myapp.test", platform.when(platform.is_macos, "mac.test") },
//	    mkcert    = {
//	        version  = "1.4.4",
//	        base_url = "https://github.com/FiloSottile/mkcert/releases/download",
//	        checksum = "<sha256 hex>",
//	        keyring  = "keys/mkcert.asc",
//	        binary   = "/usr/local/bin/mkcert",
//	    },
//	}
//
// Lua runs in a sandbox: os, io, debug and all code-loading functions are
// removed. The read-only platform table from the platform package is
// available for conditional values.
package config
