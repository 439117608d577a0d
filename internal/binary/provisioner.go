package binary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/devcert/internal/config"
	"github.com/ZebulonRouseFrantzich/devcert/internal/platform"
)

// Provisioner resolves, caches and downloads the mkcert executable
type Provisioner struct {
	cacheDir        string
	version         string
	baseURL         string
	signatureSuffix string
	platformInfo    *platform.Info
	downloader      *Downloader
	verifier        *Verifier
	logger          config.Logger
}

// Config holds configuration for the provisioner
type Config struct {
	// CacheRoot is the shared cache directory; binaries go under CacheRoot/mkcert
	CacheRoot string
	// Version is the mkcert version (default: DefaultVersion)
	Version string
	// BaseURL is the release download base (default: DefaultBaseURL)
	BaseURL string
	// Platform describes the OS and architecture to provision for
	Platform *platform.Info
	// HTTPClient overrides the default download client
	HTTPClient *http.Client
	// Checksum pins the hex SHA-256 of the downloaded asset (optional)
	Checksum string
	// Keyring is an OpenPGP public keyring for signature checks (optional)
	Keyring []byte
	// SignatureSuffix locates the detached signature (default: DefaultSignatureSuffix)
	SignatureSuffix string
	// Logger receives progress messages (default: no-op)
	Logger config.Logger
}

// NewProvisioner creates a new provisioner
func NewProvisioner(cfg Config) (*Provisioner, error) {
	if cfg.CacheRoot == "" {
		return nil, fmt.Errorf("CacheRoot is required")
	}
	if cfg.Platform == nil {
		return nil, fmt.Errorf("Platform is required")
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = config.NopLogger()
	}

	verifier, err := NewVerifier(cfg.Checksum, cfg.Keyring)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	signatureSuffix := ""
	if verifier.RequiresSignature() {
		signatureSuffix = cfg.SignatureSuffix
		if signatureSuffix == "" {
			signatureSuffix = DefaultSignatureSuffix
		}
	}

	return &Provisioner{
		cacheDir:        filepath.Join(cfg.CacheRoot, ToolName),
		version:         cfg.Version,
		baseURL:         cfg.BaseURL,
		signatureSuffix: signatureSuffix,
		platformInfo:    cfg.Platform,
		downloader:      NewDownloader(cfg.HTTPClient),
		verifier:        verifier,
		logger:          cfg.Logger,
	}, nil
}

// Target returns the platform target this provisioner resolves for.
func (p *Provisioner) Target() Target {
	return TargetFor(p.platformInfo, p.version)
}

// BinaryPath returns the cache path of the binary without touching disk.
func (p *Provisioner) BinaryPath() (string, error) {
	identifier, err := BinaryIdentifier(p.Target())
	if err != nil {
		return "", err
	}
	return filepath.Join(p.cacheDir, identifier), nil
}

// IsCached reports whether the binary is already in the cache.
func (p *Provisioner) IsCached() (bool, error) {
	path, err := p.BinaryPath()
	if err != nil {
		return false, err
	}
	return fileExists(path), nil
}

// EnsureBinary returns the path to a runnable mkcert, downloading it on a
// cache miss.
func (p *Provisioner) EnsureBinary(ctx context.Context) (string, error) {
	info, err := constructDownloadInfo(p.Target(), p.baseURL, p.signatureSuffix)
	if err != nil {
		return "", fmt.Errorf("resolve binary: %w", err)
	}

	binaryPath := filepath.Join(p.cacheDir, info.Identifier)
	if fileExists(binaryPath) {
		p.logger.Debug("using cached mkcert binary", "path", binaryPath)
		return binaryPath, nil
	}

	if err := os.MkdirAll(p.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	// A held or broken lock is not fatal: the rename still leaves a complete file.
	lock, err := acquireDownloadLock(ctx, p.cacheDir, info.Identifier)
	switch {
	case err == nil:
		defer lock.Release()
		if fileExists(binaryPath) {
			p.logger.Debug("mkcert downloaded by another process", "path", binaryPath)
			return binaryPath, nil
		}
	case errors.Is(err, ErrDownloadInProgress):
		p.logger.Debug("download lock held, downloading anyway", "identifier", info.Identifier)
	case ctx.Err() != nil:
		return "", err
	default:
		p.logger.Debug("could not acquire download lock", "error", err)
	}

	p.logger.Info("downloading mkcert package", "url", info.URL)
	start := time.Now()

	data, err := p.downloader.Fetch(ctx, info.URL)
	if err != nil {
		return "", fmt.Errorf("download binary: %w", err)
	}

	var signature []byte
	if info.SignatureURL != "" {
		signature, err = p.downloader.Fetch(ctx, info.SignatureURL)
		if err != nil {
			return "", fmt.Errorf("download signature: %w", err)
		}
	}

	method, err := p.verifier.Verify(data, signature)
	if err != nil {
		return "", fmt.Errorf("verify binary: %w", err)
	}

	if err := writeExecutable(binaryPath, data); err != nil {
		return "", fmt.Errorf("persist binary: %w", err)
	}

	p.logger.Info("mkcert downloaded",
		"path", binaryPath,
		"bytes", len(data),
		"verified", method.String(),
		"took", elapsed(start),
	)

	return binaryPath, nil
}

// IsUnsupportedPlatform reports whether err stems from an unsupported OS.
func IsUnsupportedPlatform(err error) bool {
	return errors.Is(err, ErrUnsupportedPlatform)
}
