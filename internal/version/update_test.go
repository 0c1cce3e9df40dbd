package version

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestAssetName verifies the platform asset naming scheme.
func TestAssetName(t *testing.T) {
	name := assetName("1.2.0")

	if !strings.HasPrefix(name, "letter-forge_1.2.0_") {
		t.Errorf("assetName = %q", name)
	}
	if !strings.Contains(name, runtime.GOOS) || !strings.Contains(name, runtime.GOARCH) {
		t.Errorf("assetName %q missing platform", name)
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		t.Errorf("windows asset %q missing .exe", name)
	}
}

// TestAssetURL verifies download URLs point at the release tag.
func TestAssetURL(t *testing.T) {
	url := assetURL("1.2.0", "letter-forge_1.2.0_linux_amd64")

	want := "https://github.com/casekit/letter-forge/releases/download/v1.2.0/letter-forge_1.2.0_linux_amd64"
	if url != want {
		t.Errorf("assetURL = %q, want %q", url, want)
	}
}

// TestParseChecksum verifies sha256 sidecar parsing.
func TestParseChecksum(t *testing.T) {
	sum := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"sha256sum output", sum + "  letter-forge_1.2.0_linux_amd64", sum, false},
		{"bare hash", sum, sum, false},
		{"trailing newline", sum + "\n", sum, false},
		{"too short", "abc123", "", true},
		{"not hex", strings.Repeat("z", 64), "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChecksum([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseChecksum err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseChecksum = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCheckStateRoundTrip verifies the cache file survives a write/read
// cycle in an isolated home directory.
func TestCheckStateRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	state := checkState{CheckedAt: time.Now().Truncate(time.Second), LatestVersion: "1.2.3"}
	if err := writeCheckState(state); err != nil {
		t.Fatalf("writeCheckState failed: %v", err)
	}

	loaded := readCheckState()
	if loaded.LatestVersion != "1.2.3" {
		t.Errorf("LatestVersion = %q", loaded.LatestVersion)
	}
	if !loaded.CheckedAt.Equal(state.CheckedAt) {
		t.Errorf("CheckedAt = %v, want %v", loaded.CheckedAt, state.CheckedAt)
	}

	path, err := cachePath()
	if err != nil {
		t.Fatalf("cachePath failed: %v", err)
	}
	if !strings.HasSuffix(path, cacheFileName) {
		t.Errorf("cachePath = %q", path)
	}
}

// TestReadCheckStateMissing verifies a missing or corrupt cache forces a
// fresh check instead of erroring.
func TestReadCheckStateMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	state := readCheckState()
	if !state.CheckedAt.IsZero() || state.LatestVersion != "" {
		t.Errorf("missing cache should read as zero state: %+v", state)
	}
}

// TestFormatVersion verifies the display string for dev and tagged builds.
func TestFormatVersion(t *testing.T) {
	if got := FormatVersion("dev", "none", "unknown"); got != "dev (development build)" {
		t.Errorf("dev format = %q", got)
	}

	got := FormatVersion("1.2.0", "abc1234", "2026-08-01")
	if !strings.Contains(got, "1.2.0") || !strings.Contains(got, "abc1234") {
		t.Errorf("tagged format = %q", got)
	}
}
