package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/devcert/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString parses a Lua config from a string. Only fields the config sets
// are populated; merge the result onto Defaults().
func (p *Parser) ParseString(ctx context.Context, luaCode string) (Settings, error) {
	if len(luaCode) > MaxConfigSize {
		return Settings{}, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return Settings{}, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return Settings{}, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return Settings{}, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractSettings(L)
}

// ParseFile parses the Lua config at path. Relative cache_dir, keyring and
// binary paths are resolved against the file's directory. cert_dir stays
// relative: the generator resolves it against the project directory.
func (p *Parser) ParseFile(ctx context.Context, path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}

	s, err := p.ParseString(ctx, string(data))
	if err != nil {
		return Settings{}, err
	}

	base := filepath.Dir(path)
	if s.CacheRoot != "" && !filepath.IsAbs(s.CacheRoot) {
		s.CacheRoot = filepath.Join(base, s.CacheRoot)
	}
	if s.KeyringFile != "" && !filepath.IsAbs(s.KeyringFile) {
		s.KeyringFile = filepath.Join(base, s.KeyringFile)
	}
	if s.BinaryPath != "" && !filepath.IsAbs(s.BinaryPath) {
		s.BinaryPath = filepath.Join(base, s.BinaryPath)
	}

	return s, nil
}

// Load returns Defaults() overlaid with the config at path. An empty path
// means DefaultConfigFile in workDir, which may be absent; an explicit path
// must exist.
func (p *Parser) Load(ctx context.Context, path, workDir string) (Settings, error) {
	settings := Defaults()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(workDir, DefaultConfigFile)
	}

	fileSettings, err := p.ParseFile(ctx, path)
	switch {
	case err == nil:
		settings = settings.Merge(fileSettings)
	case !explicit && errors.Is(err, os.ErrNotExist):
		// no project config
	default:
		return Settings{}, err
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractSettings reads the global "devcert" table. A config that defines
// no such table is an error: it almost certainly has a typo.
func extractSettings(L *lua.LState) (Settings, error) {
	root := L.GetGlobal(luaGlobalDevcert)
	if root.Type() != lua.LTTable {
		return Settings{}, &ParseError{
			Message: "missing or invalid 'devcert' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)

	s := Settings{}
	var err error

	if s.CertDir, err = optionalString(table, luaFieldCertDir, luaFieldCertDir); err != nil {
		return Settings{}, err
	}
	if s.CacheRoot, err = optionalString(table, luaFieldCacheDir, luaFieldCacheDir); err != nil {
		return Settings{}, err
	}

	if hostsVal := table.RawGetString(luaFieldHosts); hostsVal.Type() == lua.LTTable {
		s.Hosts = extractStrings(hostsVal.(*lua.LTable))
	} else if hostsVal.Type() != lua.LTNil {
		return Settings{}, fieldTypeError(luaFieldHosts, "table", hostsVal)
	}

	if mkVal := table.RawGetString(luaFieldMkcert); mkVal.Type() == lua.LTTable {
		if err := extractMkcert(mkVal.(*lua.LTable), &s); err != nil {
			return Settings{}, err
		}
	} else if mkVal.Type() != lua.LTNil {
		return Settings{}, fieldTypeError(luaFieldMkcert, "table", mkVal)
	}

	return s, nil
}

// extractMkcert reads the nested mkcert table.
func extractMkcert(table *lua.LTable, s *Settings) error {
	fields := []struct {
		key string
		dst *string
	}{
		{luaFieldVersion, &s.Version},
		{luaFieldBaseURL, &s.BaseURL},
		{luaFieldChecksum, &s.Checksum},
		{luaFieldKeyring, &s.KeyringFile},
		{luaFieldBinary, &s.BinaryPath},
	}

	for _, f := range fields {
		v, err := optionalString(table, f.key, luaFieldMkcert+"."+f.key)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// extractStrings collects the string values of a Lua array. nil entries,
// which platform.when produces for false conditions, are skipped.
func extractStrings(table *lua.LTable) []string {
	var out []string
	table.ForEach(func(_, value lua.LValue) {
		if value.Type() != lua.LTString {
			return
		}
		if s := strings.TrimSpace(value.String()); s != "" {
			out = append(out, s)
		}
	})
	return out
}

func optionalString(table *lua.LTable, key, field string) (string, error) {
	v := table.RawGetString(key)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", fieldTypeError(field, "string", v)
	}
}

func fieldTypeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: "invalid field " + field,
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
