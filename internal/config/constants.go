package config

// Lua schema field names and globals
const (
	luaGlobalDevcert = "devcert"
	luaFieldCertDir  = "cert_dir"
	luaFieldCacheDir = "cache_dir"
	luaFieldHosts    = "hosts"
	luaFieldMkcert   = "mkcert"
	luaFieldVersion  = "version"
	luaFieldBaseURL  = "base_url"
	luaFieldChecksum = "checksum"
	luaFieldKeyring  = "keyring"
	luaFieldBinary   = "binary"
)

const (
	// DefaultCertDir is the certificate directory relative to the working directory.
	DefaultCertDir = "certificates"
	// DefaultConfigFile is looked up in the working directory when no file is given.
	DefaultConfigFile = "devcert.lua"
	// DefaultMkcertVersion is the pinned mkcert release.
	DefaultMkcertVersion = "1.4.4"
	// MaxHostCount bounds the extra SAN hosts a config may request.
	MaxHostCount = 100
	// MaxConfigSize bounds the size of a Lua config file.
	MaxConfigSize = 1 << 20
)
