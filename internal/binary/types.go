package binary

import "github.com/ZebulonRouseFrantzich/devcert/internal/config"

// ToolName is the name of the external CA helper and the cache subdirectory.
const ToolName = "mkcert"

// DefaultVersion is the pinned mkcert release.
const DefaultVersion = config.DefaultMkcertVersion

// DefaultBaseURL is the release-distribution base for mkcert assets.
const DefaultBaseURL = "https://github.com/FiloSottile/mkcert/releases/download"

// DefaultSignatureSuffix is appended to the asset URL to locate a detached
// signature when a keyring is configured.
const DefaultSignatureSuffix = ".asc"

// Target identifies the platform a binary is built for.
type Target struct {
	OS      string // GOOS value
	Arch    string // GOARCH or kernel machine name
	Version string // mkcert version without the leading "v"
}

// VerificationMethod indicates how a downloaded binary was verified
type VerificationMethod int

const (
	// VerificationNone indicates the binary was persisted without verification
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates a pinned checksum matched
	VerificationSHA256
	// VerificationGPG indicates a detached OpenPGP signature was verified
	VerificationGPG
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// DownloadInfo contains metadata needed to download a binary
type DownloadInfo struct {
	Target       Target
	Identifier   string // release asset name, also the cache file name
	URL          string
	SignatureURL string // empty unless signature verification is enabled
}
