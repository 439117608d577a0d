package certgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/devcert/internal/config"
	"github.com/ZebulonRouseFrantzich/devcert/internal/git"
)

const (
	// KeyFileName is the leaf private key written into the certificate directory.
	KeyFileName = "localhost-key.pem"
	// CertFileName is the leaf certificate written into the certificate directory.
	CertFileName = "localhost.pem"
)

// BinaryProvider yields a runnable mkcert path. *binary.Provisioner and
// binary.StaticPath implement it.
type BinaryProvider interface {
	EnsureBinary(ctx context.Context) (string, error)
}

// Options configures a Generator.
type Options struct {
	// Binary supplies the mkcert executable. Required.
	Binary BinaryProvider
	// CertDir is the certificate directory, relative to WorkDir unless
	// absolute. Default: config.DefaultCertDir.
	CertDir string
	// WorkDir is the project directory holding .gitignore. Default: cwd.
	WorkDir string
	// Hosts are extra certificate names appended after "localhost".
	Hosts []string
	// NewTool builds the mkcert Tool. Default: NewExecTool.
	NewTool ToolFactory
	// Logger receives progress and the final summary. Default: no-op.
	Logger config.Logger
}

// Result describes a generated certificate.
type Result struct {
	KeyPath  string
	CertPath string
	// CARoot is the root CA directory reported by mkcert.
	CARoot string
	// GitignoreUpdated is true when the certificate directory was appended
	// to .gitignore during this run.
	GitignoreUpdated bool
}

// Generator creates self-signed development certificates.
type Generator struct {
	binary  BinaryProvider
	certDir string
	workDir string
	hosts   []string
	newTool ToolFactory
	logger  config.Logger
}

// NewGenerator creates a new generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Binary == nil {
		return nil, fmt.Errorf("Binary is required")
	}
	if opts.CertDir == "" {
		opts.CertDir = config.DefaultCertDir
	}
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		opts.WorkDir = wd
	}
	if opts.NewTool == nil {
		opts.NewTool = NewExecTool
	}
	if opts.Logger == nil {
		opts.Logger = config.NopLogger()
	}

	return &Generator{
		binary:  opts.Binary,
		certDir: opts.CertDir,
		workDir: opts.WorkDir,
		hosts:   append([]string(nil), opts.Hosts...),
		newTool: opts.NewTool,
		logger:  opts.Logger,
	}, nil
}

// CertDir returns the absolute certificate directory.
func (g *Generator) CertDir() (string, error) {
	dir := g.certDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(g.workDir, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve certificate dir: %w", err)
	}
	return abs, nil
}

// Create runs the whole flow and returns the key and certificate paths.
// The .gitignore step is best-effort: its failures are logged, not returned.
func (g *Generator) Create(ctx context.Context) (*Result, error) {
	binaryPath, err := g.binary.EnsureBinary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBinaryMissing, err)
	}
	if binaryPath == "" {
		return nil, ErrBinaryMissing
	}

	certDir, err := g.CertDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(certDir, 0755); err != nil {
		return nil, fmt.Errorf("create certificate dir: %w", err)
	}

	result := &Result{
		KeyPath:  filepath.Join(certDir, KeyFileName),
		CertPath: filepath.Join(certDir, CertFileName),
	}

	tool := g.newTool(binaryPath)
	hosts := append([]string{Hostname}, g.hosts...)

	g.logger.Info("attempting to generate self signed certificate, this may prompt for your password",
		"hosts", hosts)

	if err := tool.InstallAndIssue(ctx, result.KeyPath, result.CertPath, hosts...); err != nil {
		return nil, fmt.Errorf("install CA and issue certificate: %w", err)
	}

	result.CARoot, err = tool.CARoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("query CA root: %w", err)
	}

	if !fileExists(result.KeyPath) || !fileExists(result.CertPath) {
		return nil, fmt.Errorf("%w: expected %s and %s", ErrCertificateFilesNotProduced, result.KeyPath, result.CertPath)
	}

	result.GitignoreUpdated = g.updateGitignore(ctx, certDir)

	g.logger.Info("CA root certificate created", "caroot", result.CARoot)
	g.logger.Info("certificates created", "dir", certDir)

	return result, nil
}

// updateGitignore appends the certificate directory to WorkDir/.gitignore
// and warns when git would still track the certificates.
func (g *Generator) updateGitignore(ctx context.Context, certDir string) bool {
	path := filepath.Join(g.workDir, git.GitignoreFile)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if inRepo, _ := git.IsWorktree(ctx, g.workDir); inRepo {
			g.logger.Warn("no .gitignore found; the certificate directory may be committed", "dir", certDir)
		}
		return false
	}

	updated, err := git.EnsureIgnored(path, g.certDir)
	if err != nil {
		g.logger.Warn("could not update .gitignore", "path", path, "error", err)
		return false
	}
	if updated {
		g.logger.Debug("added certificate directory to .gitignore", "entry", g.certDir)
	}

	repo, err := git.Open(ctx, g.workDir)
	if err != nil {
		return updated
	}
	ignored, err := repo.IsIgnored(ctx, certDir, true)
	if err != nil {
		g.logger.Debug("could not check git ignore status", "error", err)
		return updated
	}
	if !ignored {
		g.logger.Warn("certificate directory is not ignored by git", "dir", certDir, "gitignore", path)
	}

	return updated
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
