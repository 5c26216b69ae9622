// SPDX-License-Identifier: MPL-2.0

package release

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	assets := []Asset{
		{Name: "tool-x86_64.deb", DownloadURL: "https://example.com/tool-x86_64.deb"},
		{Name: "tool.rpm", DownloadURL: "https://example.com/tool.rpm"},
		{Name: "tool.zip", DownloadURL: "https://example.com/tool.zip"},
	}

	tests := []struct {
		name    string
		assets  []Asset
		pattern string
		want    string
		wantErr bool
	}{
		{
			name:    "substring match",
			assets:  assets,
			pattern: "deb",
			want:    "tool-x86_64.deb",
		},
		{
			name:    "later asset matches",
			assets:  assets,
			pattern: ".rpm",
			want:    "tool.rpm",
		},
		{
			name:    "no match",
			assets:  assets,
			pattern: "appimage",
			wantErr: true,
		},
		{
			name:    "empty pattern matches first asset",
			assets:  assets,
			pattern: "",
			want:    "tool-x86_64.deb",
		},
		{
			name:    "first match wins when several contain the pattern",
			assets:  assets,
			pattern: "tool",
			want:    "tool-x86_64.deb",
		},
		{
			name:    "matching is case-sensitive",
			assets:  assets,
			pattern: "DEB",
			wantErr: true,
		},
		{
			name:    "empty asset list",
			assets:  nil,
			pattern: "deb",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FirstMatch(tt.assets, tt.pattern)
			if tt.wantErr {
				if !errors.Is(err, ErrAssetNotFound) {
					t.Errorf("FirstMatch() error = %v, want ErrAssetNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FirstMatch() returned error: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("FirstMatch() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestRateLimitError_Error(t *testing.T) {
	t.Parallel()

	err := &RateLimitError{
		Limit:     60,
		Remaining: 0,
		ResetAt:   time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}

	msg := err.Error()
	if !strings.Contains(msg, "rate limit exceeded") {
		t.Errorf("Error() = %q, want mention of rate limit", msg)
	}
	if !strings.Contains(msg, "10:30 UTC") {
		t.Errorf("Error() = %q, want reset time", msg)
	}
}

func TestStatusError_Error(t *testing.T) {
	t.Parallel()

	err := &StatusError{URL: "https://api.example.com/x", StatusCode: 500}
	msg := err.Error()
	if !strings.Contains(msg, "500") || !strings.Contains(msg, "https://api.example.com/x") {
		t.Errorf("Error() = %q, want status and URL", msg)
	}
}
