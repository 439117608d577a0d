package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Settings holds every knob devcert understands.
type Settings struct {
	// CacheRoot is the shared cache directory; mkcert lives in CacheRoot/mkcert.
	CacheRoot string
	// CertDir is where localhost.pem and localhost-key.pem are written,
	// relative to the working directory unless absolute.
	CertDir string
	// Hosts are extra names added to the certificate after "localhost".
	Hosts []string
	// Version is the mkcert release to provision.
	Version string
	// BaseURL overrides the release download base.
	BaseURL string
	// Checksum pins the SHA-256 of the downloaded binary.
	Checksum string
	// KeyringFile is an OpenPGP public keyring used to verify the download.
	KeyringFile string
	// BinaryPath skips provisioning and uses an existing mkcert.
	BinaryPath string
}

// Defaults returns the built-in settings. The cache root falls back to the
// temp directory when the OS has no user cache directory.
func Defaults() Settings {
	cacheRoot, err := os.UserCacheDir()
	if err != nil || cacheRoot == "" {
		cacheRoot = os.TempDir()
	}
	return Settings{
		CacheRoot: filepath.Join(cacheRoot, "devcert"),
		CertDir:   DefaultCertDir,
		Version:   DefaultMkcertVersion,
	}
}

// Merge overlays the non-empty fields of o onto s.
func (s Settings) Merge(o Settings) Settings {
	if o.CacheRoot != "" {
		s.CacheRoot = o.CacheRoot
	}
	if o.CertDir != "" {
		s.CertDir = o.CertDir
	}
	if len(o.Hosts) > 0 {
		s.Hosts = append([]string(nil), o.Hosts...)
	}
	if o.Version != "" {
		s.Version = o.Version
	}
	if o.BaseURL != "" {
		s.BaseURL = o.BaseURL
	}
	if o.Checksum != "" {
		s.Checksum = o.Checksum
	}
	if o.KeyringFile != "" {
		s.KeyringFile = o.KeyringFile
	}
	if o.BinaryPath != "" {
		s.BinaryPath = o.BinaryPath
	}
	return s
}

// Validate performs basic validation on resolved settings.
func (s *Settings) Validate() error {
	if s.CacheRoot == "" && s.BinaryPath == "" {
		return &ValidationError{Field: "cache_dir", Message: "cannot be empty"}
	}
	if s.CertDir == "" {
		return &ValidationError{Field: "cert_dir", Message: "cannot be empty"}
	}
	if err := validateVersion(s.Version); err != nil {
		return &ValidationError{Field: "mkcert.version", Message: err.Error()}
	}
	if len(s.Hosts) > MaxHostCount {
		return &ValidationError{
			Field:   "hosts",
			Message: fmt.Sprintf("too many hosts (%d), maximum is %d", len(s.Hosts), MaxHostCount),
		}
	}
	for i, h := range s.Hosts {
		if err := validateHost(h); err != nil {
			return &ValidationError{Field: fmt.Sprintf("hosts[%d]", i), Message: err.Error()}
		}
	}
	if s.BaseURL != "" {
		if err := validateBaseURL(s.BaseURL); err != nil {
			return &ValidationError{Field: "mkcert.base_url", Message: err.Error()}
		}
	}
	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var versionPattern = regexp.MustCompile(`^v?[0-9]+\.[0-9]+\.[0-9]+([.-][0-9A-Za-z.-]+)?$`)

// hostPattern accepts DNS names, wildcards, IPv4, IPv6 and email addresses,
// which is the set mkcert itself accepts.
var hostPattern = regexp.MustCompile(`^[A-Za-z0-9*._:@-]+$`)

func validateVersion(v string) error {
	if v == "" {
		return fmt.Errorf("cannot be empty")
	}
	if !versionPattern.MatchString(v) {
		return fmt.Errorf("invalid version %q", v)
	}
	return nil
}

func validateHost(h string) error {
	if h == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if len(h) > 253 {
		return fmt.Errorf("host too long (%d chars)", len(h))
	}
	if strings.HasPrefix(h, "-") {
		return fmt.Errorf("host %q must not start with '-'", h)
	}
	if !hostPattern.MatchString(h) {
		return fmt.Errorf("invalid host %q", h)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("must use https:// or http://, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
