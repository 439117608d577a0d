package binary

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/devcert/internal/platform"
)

// TargetFor builds a Target from detected platform information.
func TargetFor(info *platform.Info, version string) Target {
	return Target{
		OS:      info.OS,
		Arch:    info.Arch,
		Version: strings.TrimPrefix(version, "v"),
	}
}

// BinaryIdentifier returns the release asset name for a target.
// Pattern: mkcert-v{version}-{os}-{arch}[.exe]
func BinaryIdentifier(t Target) (string, error) {
	osName, err := mapOS(t.OS)
	if err != nil {
		return "", err
	}
	if t.Version == "" {
		return "", fmt.Errorf("version is required")
	}

	name := fmt.Sprintf("%s-v%s-%s-%s", ToolName, t.Version, osName, mapArch(t.Arch))
	if osName == "windows" {
		name += ".exe"
	}
	return name, nil
}

// constructDownloadInfo builds the download URL for a target.
// Pattern: {baseURL}/v{version}/{identifier}
func constructDownloadInfo(t Target, baseURL, signatureSuffix string) (*DownloadInfo, error) {
	identifier, err := BinaryIdentifier(t)
	if err != nil {
		return nil, err
	}

	info := &DownloadInfo{
		Target:     t,
		Identifier: identifier,
		URL:        fmt.Sprintf("%s/v%s/%s", strings.TrimRight(baseURL, "/"), t.Version, identifier),
	}
	if signatureSuffix != "" {
		info.SignatureURL = info.URL + signatureSuffix
	}

	return info, nil
}

// mapOS accepts the three operating systems mkcert publishes binaries for.
func mapOS(goos string) (string, error) {
	switch goos {
	case "windows", "darwin", "linux":
		return goos, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, goos)
	}
}

// mapArch renames 64-bit x86 to mkcert's "amd64"; everything else passes through.
func mapArch(arch string) string {
	switch arch {
	case "x86_64", "x64":
		return "amd64"
	default:
		return arch
	}
}
