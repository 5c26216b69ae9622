// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

const latestReleaseBody = `{
	"tag_name": "v2.25.0",
	"assets": [
		{"name": "fastfetch-linux-amd64.deb", "browser_download_url": "https://example.com/fastfetch-linux-amd64.deb"},
		{"name": "fastfetch-linux-amd64.rpm", "browser_download_url": "https://example.com/fastfetch-linux-amd64.rpm"}
	]
}`

func TestLatestRelease_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotAccept, gotVersion, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotVersion = r.Header.Get("X-GitHub-Api-Version")
		gotUA = r.Header.Get("User-Agent")

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(latestReleaseBody)); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithUserAgent("shipm/1.0.0"))
	rel, err := client.LatestRelease(context.Background(), "fastfetch-cli/fastfetch")
	if err != nil {
		t.Fatalf("LatestRelease() returned error: %v", err)
	}

	if gotPath != "/repos/fastfetch-cli/fastfetch/releases/latest" {
		t.Errorf("request path = %q, want /repos/fastfetch-cli/fastfetch/releases/latest", gotPath)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q, want application/vnd.github+json", gotAccept)
	}
	if gotVersion != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q, want 2022-11-28", gotVersion)
	}
	if gotUA != "shipm/1.0.0" {
		t.Errorf("User-Agent = %q, want shipm/1.0.0", gotUA)
	}

	if rel.TagName != "v2.25.0" {
		t.Errorf("TagName = %q, want v2.25.0", rel.TagName)
	}
	if len(rel.Assets) != 2 {
		t.Fatalf("len(Assets) = %d, want 2", len(rel.Assets))
	}
	if rel.Assets[0].Name != "fastfetch-linux-amd64.deb" {
		t.Errorf("Assets[0].Name = %q, want fastfetch-linux-amd64.deb", rel.Assets[0].Name)
	}
	if rel.Assets[0].DownloadURL != "https://example.com/fastfetch-linux-amd64.deb" {
		t.Errorf("Assets[0].DownloadURL = %q", rel.Assets[0].DownloadURL)
	}
}

func TestLatestRelease_SendsTokenToAPIBaseHost(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if _, err := w.Write([]byte(latestReleaseBody)); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithToken("ghp_secret"))
	if _, err := client.LatestRelease(context.Background(), "me/tool"); err != nil {
		t.Fatalf("LatestRelease() returned error: %v", err)
	}

	if gotAuth != "Bearer ghp_secret" {
		t.Errorf("Authorization = %q, want Bearer ghp_secret", gotAuth)
	}
}

func TestLatestRelease_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.LatestRelease(context.Background(), "me/unreleased")
	if !errors.Is(err, ErrNoRelease) {
		t.Errorf("LatestRelease() error = %v, want ErrNoRelease", err)
	}
	if err != nil && !strings.Contains(err.Error(), "me/unreleased") {
		t.Errorf("error = %v, want mention of the repository", err)
	}
}

func TestLatestRelease_RateLimited(t *testing.T) {
	t.Parallel()

	resetAt := time.Now().Add(30 * time.Minute).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.LatestRelease(context.Background(), "me/tool")

	rlErr, ok := errors.AsType[*RateLimitError](err)
	if !ok {
		t.Fatalf("LatestRelease() error = %v, want *RateLimitError", err)
	}
	if rlErr.Limit != 60 {
		t.Errorf("Limit = %d, want 60", rlErr.Limit)
	}
	if rlErr.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", rlErr.Remaining)
	}
}

func TestLatestRelease_ForbiddenWithQuotaLeft_IsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A 403 with remaining quota is an access problem, not rate limiting.
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.LatestRelease(context.Background(), "me/private")

	stErr, ok := errors.AsType[*StatusError](err)
	if !ok {
		t.Fatalf("LatestRelease() error = %v, want *StatusError", err)
	}
	if stErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", stErr.StatusCode)
	}
}

func TestLatestRelease_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.LatestRelease(context.Background(), "me/tool")

	stErr, ok := errors.AsType[*StatusError](err)
	if !ok {
		t.Fatalf("LatestRelease() error = %v, want *StatusError", err)
	}
	if stErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", stErr.StatusCode)
	}
}

func TestLatestRelease_InvalidRepo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		repo string
	}{
		{name: "no slash", repo: "fastfetch"},
		{name: "empty owner", repo: "/tool"},
		{name: "empty name", repo: "me/"},
		{name: "extra segment", repo: "me/tool/extra"},
	}

	client := NewClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := client.LatestRelease(context.Background(), tt.repo)
			if err == nil {
				t.Fatalf("LatestRelease(%q) returned nil error", tt.repo)
			}
			if !strings.Contains(err.Error(), "owner/name") {
				t.Errorf("error = %v, want mention of owner/name form", err)
			}
		})
	}
}

func TestDownload_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("binary-content")); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	body, err := client.Download(context.Background(), srv.URL+"/asset.deb")
	if err != nil {
		t.Fatalf("Download() returned error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(data) != "binary-content" {
		t.Errorf("body = %q, want binary-content", data)
	}
}

func TestDownload_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Download(context.Background(), srv.URL+"/missing.deb")

	stErr, ok := errors.AsType[*StatusError](err)
	if !ok {
		t.Fatalf("Download() error = %v, want *StatusError", err)
	}
	if stErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", stErr.StatusCode)
	}
}

func TestDownload_TokenNotLeakedToOtherHosts(t *testing.T) {
	t.Parallel()

	var apiAuth, cdnAuth string

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiAuth = r.Header.Get("Authorization")
		if _, err := w.Write([]byte("from-api")); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer api.Close()

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cdnAuth = r.Header.Get("Authorization")
		if _, err := w.Write([]byte("from-cdn")); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer cdn.Close()

	client := NewClient(WithBaseURL(api.URL), WithToken("ghp_secret"))

	// Same host as the API base: token attached.
	body, err := client.Download(context.Background(), api.URL+"/asset")
	if err != nil {
		t.Fatalf("Download(api) returned error: %v", err)
	}
	body.Close()
	if apiAuth != "Bearer ghp_secret" {
		t.Errorf("api Authorization = %q, want Bearer ghp_secret", apiAuth)
	}

	// Different host: token withheld.
	body, err = client.Download(context.Background(), cdn.URL+"/asset")
	if err != nil {
		t.Fatalf("Download(cdn) returned error: %v", err)
	}
	body.Close()
	if cdnAuth != "" {
		t.Errorf("cdn Authorization = %q, want empty", cdnAuth)
	}
}
