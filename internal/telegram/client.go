// Package telegram is a minimal Bot API client for fetching audio files that
// were sent to a bot: a metadata lookup resolving a file identifier to its
// remote storage path, and the download URL for that path.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/harktools/hark/internal/fetch"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.telegram.org"

type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type getFileResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		FileID   string `json:"file_id"`
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// GetFile resolves a file identifier to the storage path used by the file
// download endpoint.
func (c *Client) GetFile(ctx context.Context, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.baseURL(), c.Token, url.QueryEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create getFile request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &fetch.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &fetch.StatusError{Code: resp.StatusCode}
	}

	var parsed getFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode getFile reply: %v", fetch.ErrInvalidResponse, err)
	}

	if !parsed.OK || parsed.Result.FilePath == "" {
		return "", fmt.Errorf("bot api rejected file id %q: %s", fileID, parsed.Description)
	}

	c.log().Debug("resolved telegram file", zap.String("file_id", fileID), zap.String("file_path", parsed.Result.FilePath))
	return parsed.Result.FilePath, nil
}

// FileURL returns the download URL for a storage path returned by GetFile.
func (c *Client) FileURL(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL(), c.Token, filePath)
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
