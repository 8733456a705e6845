package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sitelens/sitelens/pkg/types"
)

// FallbackError is shown to the user when an exchange fails without a usable
// server-provided message.
const FallbackError = "analysis request failed"

const (
	analyzePath = "/analyze"
	batchPath   = "/batch-analyze"
	healthPath  = "/health"
)

// Client talks to the remote analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at serverURL. The underlying
// HTTP client carries no timeout: an exchange waits indefinitely for the
// remote service and every failure is terminal for that attempt.
func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = "http://localhost:5000"
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("unsupported URL scheme in %q (only http and https are supported)", serverURL)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{},
	}, nil
}

// RemoteError is a failed exchange with the analysis service: a transport
// failure or a non-2xx status. Message is the text the user should see.
type RemoteError struct {
	Status  int // zero when no response arrived
	Message string
	cause   error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.cause }

// File is one named image payload for a batch submission.
type File struct {
	Name   string
	Reader io.Reader
}

// Analyze uploads one image under the given scenario and returns the decoded
// result. Exactly one multipart POST is issued, with fields `image` (binary)
// and `scenario` (verbatim string).
func (c *Client) Analyze(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %v", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read image: %v", err)
	}
	if err := mw.WriteField("scenario", string(scenario)); err != nil {
		return nil, fmt.Errorf("failed to build request body: %v", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request body: %v", err)
	}

	respBody, err := c.post(ctx, analyzePath, mw.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	return &result, nil
}

// AnalyzeBatch uploads several images in one request. Each file becomes an
// `images` part; the scenario field is shared.
func (c *Client) AnalyzeBatch(ctx context.Context, files []File, scenario types.Scenario) (*types.BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to analyze")
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build request body: %v", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("failed to read image %s: %v", f.Name, err)
		}
	}
	if err := mw.WriteField("scenario", string(scenario)); err != nil {
		return nil, fmt.Errorf("failed to build request body: %v", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request body: %v", err)
	}

	respBody, err := c.post(ctx, batchPath, mw.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}

	var result types.BatchResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	return &result, nil
}

// Health checks the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Message: FallbackError, cause: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return remoteError(resp.StatusCode, respBody)
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &status); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	if status.Status != "healthy" {
		return fmt.Errorf("service reported status %q", status.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Message: FallbackError, cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Message: FallbackError, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// remoteError prefers the server-provided `error` field of a failure body;
// anything else gets the generic fallback message.
func remoteError(status int, body []byte) *RemoteError {
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &RemoteError{Status: status, Message: er.Error}
	}
	return &RemoteError{Status: status, Message: FallbackError}
}
