package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZebulonRouseFrantzich/devcert/internal/binary"
	"github.com/ZebulonRouseFrantzich/devcert/internal/certgen"
	"github.com/ZebulonRouseFrantzich/devcert/internal/config"
	"github.com/ZebulonRouseFrantzich/devcert/internal/platform"
)

// Swappable in tests.
var (
	newDetector = platform.NewDetector
	newTool     = certgen.NewExecTool
)

// envPrefix namespaces every environment override, e.g. DEVCERT_CACHE_DIR.
const envPrefix = "DEVCERT"

// app carries state shared by all subcommands of one invocation.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// Execute runs the devcert command line. An interrupt cancels any pending
// download or mkcert prompt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "devcert",
		Short: "Create locally-trusted development certificates with mkcert",
		Long: `devcert downloads a platform-appropriate mkcert, installs its local root CA
and writes localhost.pem and localhost-key.pem for your dev server.

Settings are read from devcert.lua, DEVCERT_* environment variables and flags,
later sources overriding earlier ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./"+config.DefaultConfigFile+" if present)")
	pf.String("cache-dir", "", "directory for cached mkcert binaries")
	pf.String("mkcert-version", "", "mkcert release to provision (default: "+binary.DefaultVersion+")")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(pf)

	cmd.AddCommand(
		newCreateCmd(a),
		newBinaryCmd(a),
		newCARootCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setupLogger(w io.Writer) {
	level := slog.LevelInfo
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings layers defaults, the Lua config file, DEVCERT_* variables
// and flags.
func (a *app) loadSettings(ctx context.Context) (config.Settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Settings{}, fmt.Errorf("get working directory: %w", err)
	}

	parser := config.NewParser(newDetector())
	settings, err := parser.Load(ctx, a.v.GetString("config"), wd)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %s", config.FormatError(err, a.v.GetBool("verbose")))
	}

	settings = settings.Merge(config.Settings{
		CacheRoot:   a.v.GetString("cache-dir"),
		CertDir:     a.v.GetString("cert-dir"),
		Hosts:       splitHosts(a.v.GetStringSlice("host")),
		Version:     a.v.GetString("mkcert-version"),
		BaseURL:     a.v.GetString("base-url"),
		Checksum:    a.v.GetString("checksum"),
		KeyringFile: a.v.GetString("keyring"),
		BinaryPath:  a.v.GetString("binary"),
	})
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}

	a.logger.Debug("settings resolved",
		"cache_dir", settings.CacheRoot,
		"cert_dir", settings.CertDir,
		"mkcert_version", settings.Version,
	)
	return settings, nil
}

// binaryProvider returns the configured mkcert, or a provisioner that
// downloads one into the cache.
func (a *app) binaryProvider(ctx context.Context, settings config.Settings) (certgen.BinaryProvider, error) {
	if settings.BinaryPath != "" {
		a.logger.Debug("using configured mkcert binary", "path", settings.BinaryPath)
		return binary.StaticPath(settings.BinaryPath), nil
	}
	return a.provisioner(ctx, settings)
}

func (a *app) provisioner(ctx context.Context, settings config.Settings) (*binary.Provisioner, error) {
	info, err := newDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	a.logger.Debug("detected platform", "platform", info.String())

	var keyring []byte
	if settings.KeyringFile != "" {
		keyring, err = os.ReadFile(settings.KeyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	return binary.NewProvisioner(binary.Config{
		CacheRoot: settings.CacheRoot,
		Version:   settings.Version,
		BaseURL:   settings.BaseURL,
		Platform:  info,
		Checksum:  settings.Checksum,
		Keyring:   keyring,
		Logger:    a.logger,
	})
}

// splitHosts accepts DEVCERT_HOST in the same comma-separated form as
// --host as well as whitespace-separated.
func splitHosts(values []string) []string {
	var hosts []string
	for _, v := range values {
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}
	}
	return hosts
}
