package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/version"
)

const (
	versionCheckURL  = "https://studymate.app/version.json"
	githubVersionURL = "https://api.github.com/repos/studymate-app/studymate/releases/latest"
	userAgent        = "StudyMate-Updater"
)

type VersionResponse struct {
	LatestVersion     string            `json:"latest_version"`
	UpdateMessage     string            `json:"update_message"`
	ForceUpdate       bool              `json:"force_update"`
	PlatformDownloads map[string]string `json:"platform_downloads"`
}

type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	UpdateMessage  string
	DownloadURL    string
	IsAvailable    bool
	ForceUpdate    bool
}

type Checker struct {
	client      *http.Client
	logger      *logger.Logger
	lastChecked time.Time
}

func NewChecker(log *logger.Logger) *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

// CheckForUpdates is rate limited to once an hour; callers can invoke it
// freely from timers.
func (c *Checker) CheckForUpdates() (*UpdateInfo, error) {
	if time.Since(c.lastChecked) < time.Hour {
		return nil, nil
	}
	c.lastChecked = time.Now()

	c.logger.Debug("Checking for updates...")

	info, err := c.checkPrimaryEndpoint()
	if err != nil {
		c.logger.Debug("Primary endpoint failed, falling back to GitHub: %v", err)
		return c.checkGitHubAPI()
	}
	return info, nil
}

func (c *Checker) checkPrimaryEndpoint() (*UpdateInfo, error) {
	resp, err := c.client.Get(versionCheckURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var versionInfo VersionResponse
	if err := json.NewDecoder(resp.Body).Decode(&versionInfo); err != nil {
		return nil, fmt.Errorf("failed to decode version info: %w", err)
	}

	current := strings.TrimPrefix(version.Version, "v")
	latest := strings.TrimPrefix(versionInfo.LatestVersion, "v")

	platformKey := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "darwin" {
		platformKey = "darwin/all"
	}

	downloadURL, ok := versionInfo.PlatformDownloads[platformKey]
	if !ok {
		return nil, fmt.Errorf("no download available for platform %s", platformKey)
	}

	return &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  latest,
		UpdateMessage:  versionInfo.UpdateMessage,
		DownloadURL:    downloadURL,
		IsAvailable:    compareVersions(current, latest) < 0,
		ForceUpdate:    versionInfo.ForceUpdate,
	}, nil
}

func (c *Checker) checkGitHubAPI() (*UpdateInfo, error) {
	req, err := http.NewRequest(http.MethodGet, githubVersionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release: %w", err)
	}

	current := strings.TrimPrefix(version.Version, "v")
	latest := strings.TrimPrefix(release.TagName, "v")

	return &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  latest,
		UpdateMessage:  release.Body,
		DownloadURL:    release.HTMLURL,
		IsAvailable:    compareVersions(current, latest) < 0,
	}, nil
}

// compareVersions returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		if parts1[i] < parts2[i] {
			return -1
		}
		if parts1[i] > parts2[i] {
			return 1
		}
	}

	if len(parts1) < len(parts2) {
		return -1
	}
	if len(parts1) > len(parts2) {
		return 1
	}
	return 0
}
