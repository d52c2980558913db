package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
)

// Client talks to the StudyMate backend. The cookie jar carries the
// session cookie issued by the login endpoint, so every request after a
// successful login is implicitly authenticated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

type UploadResult struct {
	Filename       string `json:"filename"`
	FlashcardCount int    `json:"flashcard_count"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginRequest struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	statusResponse
	User *models.User `json:"user"`
}

type filesResponse struct {
	Files []models.Document `json:"files"`
}

type uploadResponse struct {
	statusResponse
	UploadResult
}

type flashcardsResponse struct {
	statusResponse
	Flashcards []models.Flashcard `json:"flashcards"`
	Filename   string             `json:"filename"`
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: log,
	}, nil
}

func (c *Client) CheckAuth(ctx context.Context) (models.Session, error) {
	var session models.Session
	if err := c.get(ctx, "/check-auth", &session); err != nil {
		return models.Session{}, fmt.Errorf("auth check failed: %w", err)
	}
	return session, nil
}

func (c *Client) Login(ctx context.Context, credential string) (models.User, error) {
	var resp loginResponse
	if err := c.postJSON(ctx, "/google-login", loginRequest{Credential: credential}, &resp); err != nil {
		return models.User{}, err
	}
	if resp.User == nil {
		return models.User{}, fmt.Errorf("login response carried no user")
	}
	c.logger.Info("Logged in as %s", resp.User.Email)
	return *resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var resp statusResponse
	return c.postJSON(ctx, "/logout", nil, &resp)
}

func (c *Client) ListFiles(ctx context.Context) ([]models.Document, error) {
	var resp filesResponse
	if err := c.get(ctx, "/files", &resp); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	c.logger.Debug("Loaded %d files", len(resp.Files))
	return resp.Files, nil
}

func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := c.get(ctx, "/stats", &stats); err != nil {
		return models.Stats{}, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

// Upload sends the file as a single multipart request. There is no
// chunking or progress reporting; the backend caps uploads at 16MB.
func (c *Client) Upload(ctx context.Context, path string) (UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("failed to finish upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return UploadResult{}, err
	}
	c.logger.Info("Uploaded %s with %d flashcards", resp.Filename, resp.FlashcardCount)
	return resp.UploadResult, nil
}

func (c *Client) Flashcards(ctx context.Context, fileID string) ([]models.Flashcard, string, error) {
	var resp flashcardsResponse
	if err := c.get(ctx, "/flashcards/"+url.PathEscape(fileID), &resp); err != nil {
		return nil, "", fmt.Errorf("failed to load flashcards: %w", err)
	}
	return resp.Flashcards, resp.Filename, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+url.PathEscape(fileID), nil)
	if err != nil {
		return err
	}
	var resp statusResponse
	return c.do(req, &resp)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do runs the request and decodes the response. Any non-2xx becomes an
// *Error carrying the server's message verbatim; a 401 additionally
// matches ErrNotAuthenticated.
func (c *Client) do(req *http.Request, out interface{}) error {
	c.logger.Trace("%s %s", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var status statusResponse
		_ = json.Unmarshal(body, &status)
		return &Error{StatusCode: resp.StatusCode, Message: status.Message}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
