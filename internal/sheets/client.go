// Package sheets appends highlight activity to a Google Sheets spreadsheet.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"golang.org/x/oauth2/google"
)

const (
	// Scope is the OAuth scope requested for the service account
	Scope = "https://www.googleapis.com/auth/spreadsheets"
	// DefaultBaseURL is the Sheets v4 spreadsheets endpoint
	DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
)

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID returns the spreadsheet id embedded in a sheet URL
func ExtractSheetID(sheetURL string) (string, error) {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", fmt.Errorf("invalid Google Sheets URL: %q", sheetURL)
	}
	return m[1], nil
}

// Client represents a client for the Google Sheets API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient authenticates with service-account credentials.
// Access tokens are fetched and refreshed by the returned client.
func NewClient(ctx context.Context, credentialsJSON []byte, timeout time.Duration) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	httpClient := cfg.Client(ctx)
	httpClient.Timeout = timeout
	return &Client{httpClient: httpClient, baseURL: DefaultBaseURL}, nil
}

// NewClientFromFile reads service-account credentials from path
func NewClientFromFile(ctx context.Context, path string, timeout time.Duration) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return NewClient(ctx, data, timeout)
}

// NewClientWithHTTP uses an already authorized http.Client
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// apiError is the error envelope returned by Google APIs
type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

type spreadsheetResponse struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type appendRequest struct {
	Values [][]any `json:"values"`
}

// FetchSheets lists the tab titles of the spreadsheet at sheetURL
func (c *Client) FetchSheets(ctx context.Context, sheetURL string) ([]string, error) {
	id, err := ExtractSheetID(sheetURL)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/" + id + "?fields=" + url.QueryEscape("sheets.properties.title")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp spreadsheetResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch sheets: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

// AppendRow appends one row to columns A:E of sheetName
func (c *Client) AppendRow(ctx context.Context, sheetURL, sheetName string, row []any) error {
	id, err := ExtractSheetID(sheetURL)
	if err != nil {
		return err
	}

	body, err := json.Marshal(appendRequest{Values: [][]any{row}})
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, id, url.PathEscape(sheetName+"!A:E"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return fmt.Errorf("sheets api error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("sheets api error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
