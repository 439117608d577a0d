// Package binary provisions the mkcert executable that devcert drives.
//
// # Resolution
//
// The running OS and architecture map to a release asset name such as
// mkcert-v1.4.4-linux-amd64 (mkcert-v1.4.4-windows-amd64.exe on Windows).
// Only windows, darwin and linux are supported; any other OS fails with
// ErrUnsupportedPlatform before touching the filesystem or the network.
//
// # Caching
//
// Binaries live at {cache_root}/mkcert/{asset}. A file at that path is
// trusted as-is: no re-download, no integrity check.
//
// # Download
//
// On a cache miss the asset is fetched with a single GET from the GitHub
// release page. Non-2xx responses fail with a *DownloadError and are not
// retried. The body is written to a temp file in the cache directory, made
// executable and renamed into place, so readers never observe a partial file.
// A {asset}.lock file beside it keeps two processes from downloading the
// same asset at once; a held lock only costs a duplicate download.
//
// # Verification
//
// Optional. A pinned SHA-256 checksum and/or an OpenPGP keyring can be
// configured; when present the downloaded bytes must pass before anything
// is persisted.
//
// # Usage
//
//	p, err := binary.NewProvisioner(binary.Config{
//	    CacheRoot: cacheRoot,
//	    Platform:  platformInfo,
//	})
//	if err != nil {
//	    return err
//	}
//	path, err := p.EnsureBinary(ctx)
package binary
