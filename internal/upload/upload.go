package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"
)

const defaultTimeout = 30 * time.Second

// Error is a failure reported by the upload endpoint itself.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upload failed (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("upload failed (HTTP %d): %s", e.Status, e.Message)
}

type response struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// Client posts images to the image host as multipart forms carrying the file,
// the remote path and the shared password.
type Client struct {
	URL      string
	Password string
	HTTP     *http.Client
}

func NewClient(url, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{URL: url, Password: password, HTTP: &http.Client{Timeout: timeout}}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.URL != ""
}

// Upload stores data at remotePath and returns its public URL.
func (c *Client) Upload(ctx context.Context, data []byte, remotePath string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("upload endpoint not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName(remotePath))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.WriteField("path", remotePath); err != nil {
		return "", err
	}
	if err := mw.WriteField("password", c.Password); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", remotePath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{Status: resp.StatusCode, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	if !out.Success || out.URL == "" {
		return "", &Error{Status: resp.StatusCode, Message: out.Error}
	}
	return out.URL, nil
}

func fileName(remotePath string) string {
	name := path.Base(remotePath)
	if name == "." || name == "/" || name == "" {
		return "image.png"
	}
	return name
}
