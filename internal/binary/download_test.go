package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDownloaderFetch(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{"successful_download", http.StatusOK, "binary content", false},
		{"non_200_2xx", http.StatusNonAuthoritativeInfo, "binary content", false},
		{"404_not_found", http.StatusNotFound, "not found", true},
		{"500_server_error", http.StatusInternalServerError, "server error", true},
		{"empty_body", http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			data, err := NewDownloader(nil).Fetch(context.Background(), server.URL+"/asset")

			if tt.wantErr {
				var dlErr *DownloadError
				if !errors.As(err, &dlErr) {
					t.Fatalf("error = %v, want *DownloadError", err)
				}
				if dlErr.URL != server.URL+"/asset" {
					t.Errorf("DownloadError.URL = %q", dlErr.URL)
				}
				if dlErr.StatusCode != tt.statusCode {
					t.Errorf("DownloadError.StatusCode = %d, want %d", dlErr.StatusCode, tt.statusCode)
				}
				if !errors.Is(err, ErrDownloadFailed) {
					t.Error("error should match ErrDownloadFailed")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.body {
				t.Errorf("content mismatch:\ngot:  %q\nwant: %q", data, tt.body)
			}
		})
	}
}

func TestDownloaderFetch_NoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewDownloader(nil).Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDownloaderFetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/release", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/objects/asset", http.StatusFound)
	})
	mux.HandleFunc("/objects/asset", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("redirected"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	data, err := NewDownloader(nil).Fetch(context.Background(), server.URL+"/release")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "redirected" {
		t.Errorf("Fetch() = %q, want redirected", data)
	}
}

func TestDownloaderFetch_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewDownloader(nil).Fetch(context.Background(), url)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Fetch() error = %v, want ErrDownloadFailed", err)
	}
}

func TestDownloaderFetch_TruncatedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
	}))
	defer server.Close()

	_, err := NewDownloader(nil).Fetch(context.Background(), server.URL)

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("error = %v, want *DownloadError", err)
	}
	if dlErr.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", dlErr.StatusCode)
	}
	if !errors.Is(err, ErrDownloadFailed) {
		t.Error("error should match ErrDownloadFailed")
	}
}

func TestDownloaderFetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDownloader(nil).Fetch(ctx, server.URL); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWriteExecutable(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "mkcert")

	if err := writeExecutable(dest, []byte("#!/bin/sh\n")); err != nil {
		t.Fatalf("writeExecutable() error = %v", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0755 {
		t.Errorf("mode = %o, want 755", info.Mode().Perm())
	}

	// Overwrite in place and leave no temp files behind.
	if err := writeExecutable(dest, []byte("v2")); err != nil {
		t.Fatalf("writeExecutable() overwrite error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
	content, _ := os.ReadFile(dest)
	if string(content) != "v2" {
		t.Errorf("content = %q, want v2", content)
	}
}

func TestWriteExecutable_MissingDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "mkcert")
	if err := writeExecutable(dest, []byte("x")); err == nil {
		t.Error("expected error when directory does not exist")
	}
}
