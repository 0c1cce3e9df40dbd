package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Releases are published on GitHub with one binary asset per platform,
// named letter-forge_<version>_<os>_<arch>, plus a .sha256 sidecar file.
const (
	repoSlug      = "casekit/letter-forge"
	releaseAPIURL = "https://api.github.com/repos/" + repoSlug + "/releases/latest"
	cacheFileName = ".letter-forge-cache.json"

	// checkInterval rate-limits the background check in serve; a letter
	// tool does not need to poll GitHub more than daily.
	checkInterval = 24 * time.Hour
)

var checkMu sync.Mutex

// checkState is what survives between runs in the cache file.
type checkState struct {
	CheckedAt     time.Time `json:"lastUpdateCheck"`
	LatestVersion string    `json:"lastKnownVersion"`
}

// LatestVersion queries the release API for the newest published version,
// without the 'v' tag prefix. No caching; callers that run in the
// background should use CheckUpdate instead.
func LatestVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", releaseAPIURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to parse release response: %w", err)
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}

// CheckUpdate reports a newer released version, or "" when current. The
// result is cached for checkInterval so the serve loop hits the API at
// most once a day.
func CheckUpdate(ctx context.Context) (string, error) {
	checkMu.Lock()
	defer checkMu.Unlock()

	state := readCheckState()
	if time.Since(state.CheckedAt) < checkInterval {
		return "", nil
	}

	latest, err := LatestVersion(ctx)
	if err != nil {
		return "", err
	}

	state = checkState{CheckedAt: time.Now(), LatestVersion: latest}
	if err := writeCheckState(state); err != nil {
		log.Printf("Warning: failed to save update cache: %v", err)
	}

	if latest != "" && latest != strings.TrimPrefix(Version, "v") {
		return latest, nil
	}
	return "", nil
}

// assetName returns the release asset for the running platform,
// e.g. letter-forge_1.2.0_linux_amd64.
func assetName(version string) string {
	name := fmt.Sprintf("letter-forge_%s_%s_%s", version, runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// assetURL builds the download URL for one release asset.
func assetURL(version, asset string) string {
	return fmt.Sprintf("https://github.com/%s/releases/download/v%s/%s", repoSlug, version, asset)
}

// DownloadUpdate downloads the platform binary for a released version to a
// temp path, verifying it against the release's .sha256 sidecar when that
// file is available. Returns the temp path.
func DownloadUpdate(ctx context.Context, version string) (string, error) {
	asset := assetName(version)

	expected, err := fetchChecksum(ctx, assetURL(version, asset)+".sha256")
	if err != nil {
		log.Printf("Warning: could not fetch checksum, skipping verification: %v", err)
		expected = ""
	}

	req, err := http.NewRequestWithContext(ctx, "GET", assetURL(version, asset), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	tempPath := filepath.Join(os.TempDir(), asset)
	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	// Hash while writing so verification needs no second read.
	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), resp.Body); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if expected != "" {
		actual := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(actual, expected) {
			os.Remove(tempPath)
			return "", fmt.Errorf("checksum verification failed: expected %s, got %s", expected, actual)
		}
	}

	if err := os.Chmod(tempPath, 0755); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to make binary executable: %w", err)
	}

	return tempPath, nil
}

// fetchChecksum retrieves and parses a .sha256 sidecar file.
func fetchChecksum(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checksum file not found (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return parseChecksum(data)
}

// parseChecksum extracts the hash from "sha256sum" style output
// ("<64 hex chars>  <filename>"); a bare hash is also accepted.
func parseChecksum(data []byte) (string, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file")
	}

	sum := fields[0]
	if len(sum) != sha256.Size*2 {
		return "", fmt.Errorf("invalid checksum format")
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return "", fmt.Errorf("invalid checksum format: %w", err)
	}

	return sum, nil
}

// ApplyUpdate swaps the running binary for a downloaded one, keeping a
// .bak copy that is restored if the swap fails partway.
func ApplyUpdate(tempPath string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	backupPath := execPath + ".bak"
	if err := os.Rename(execPath, backupPath); err != nil {
		return fmt.Errorf("failed to back up current binary: %w", err)
	}

	if err := os.Rename(tempPath, execPath); err != nil {
		os.Rename(backupPath, execPath)
		return fmt.Errorf("failed to install new binary: %w", err)
	}

	if err := os.Chmod(execPath, 0755); err != nil {
		os.Rename(backupPath, execPath)
		return fmt.Errorf("failed to make binary executable: %w", err)
	}

	return nil
}

// cachePath returns the update cache location in the user's home directory.
func cachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, cacheFileName), nil
}

// readCheckState loads the cached check state. Any problem (missing file,
// unreadable JSON) yields a zero state, which forces a fresh check.
func readCheckState() checkState {
	path, err := cachePath()
	if err != nil {
		return checkState{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return checkState{}
	}

	var state checkState
	if err := json.Unmarshal(data, &state); err != nil {
		return checkState{}
	}
	return state
}

// writeCheckState persists the check state for the next run.
func writeCheckState(state checkState) error {
	path, err := cachePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
