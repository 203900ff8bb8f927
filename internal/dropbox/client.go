// Package dropbox wraps the slice of the Dropbox HTTP API v2 this service
// consumes: content upload, temporary download links, account lookup and
// folder listing. Failures surface as *APIError carrying the raw HTTP
// status and the provider's error_summary so callers can classify them.
package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase     = "https://api.dropboxapi.com"
	defaultContentBase = "https://content.dropboxapi.com"

	authorizeURL = "https://www.dropbox.com/oauth2/authorize"
)

// APIError is a failed Dropbox call. Summary is the provider's
// error_summary when the body was parseable, else the raw body.
type APIError struct {
	Status  int
	Summary string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dropbox: status %d: %s", e.Status, e.Summary)
}

// ExpiredCredential reports whether the failure indicates an invalid or
// expired access token. Matching is mechanical: HTTP 401, or an
// error_summary containing "expired_access_token".
func (e *APIError) ExpiredCredential() bool {
	return e.Status == http.StatusUnauthorized || strings.Contains(e.Summary, "expired_access_token")
}

type Entry struct {
	Tag       string `json:".tag"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	PathLower string `json:"path_lower"`
}

type Client struct {
	accessToken string
	httpClient  *http.Client
	apiBase     string
	contentBase string
}

func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiBase:     defaultAPIBase,
		contentBase: defaultContentBase,
	}
}

// Upload stores contents at path, overwriting any existing file.
func (c *Client) Upload(ctx context.Context, path string, contents io.Reader) error {
	arg, err := json.Marshal(map[string]interface{}{
		"path": path,
		"mode": "overwrite",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentBase+"/2/files/upload", contents)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dropbox upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// TemporaryLink returns a short-lived direct download URL for path.
func (c *Client) TemporaryLink(ctx context.Context, path string) (string, error) {
	var result struct {
		Link string `json:"link"`
	}
	if err := c.rpc(ctx, "/2/files/get_temporary_link", map[string]interface{}{"path": path}, &result); err != nil {
		return "", err
	}
	return result.Link, nil
}

// CurrentAccountEmail returns the email of the account the token belongs to.
func (c *Client) CurrentAccountEmail(ctx context.Context) (string, error) {
	var result struct {
		Email string `json:"email"`
	}
	if err := c.rpc(ctx, "/2/users/get_current_account", nil, &result); err != nil {
		return "", err
	}
	return result.Email, nil
}

// ListFolder lists the entries directly under path ("" is the root).
func (c *Client) ListFolder(ctx context.Context, path string) ([]Entry, error) {
	var result struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.rpc(ctx, "/2/files/list_folder", map[string]interface{}{"path": path}, &result); err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// AuthorizeURL builds the OAuth consent URL for the given app key.
func AuthorizeURL(appKey, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", appKey)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("token_access_type", "offline")
	return authorizeURL + "?" + params.Encode()
}

func (c *Client) rpc(ctx context.Context, endpoint string, arg interface{}, result interface{}) error {
	var body io.Reader
	if arg != nil {
		data, err := json.Marshal(arg)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if arg != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dropbox %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed struct {
		ErrorSummary string `json:"error_summary"`
	}
	summary := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.ErrorSummary != "" {
		summary = parsed.ErrorSummary
	}

	return &APIError{Status: resp.StatusCode, Summary: summary}
}
