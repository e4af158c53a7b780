package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/packhub/packhub/pkg/ops"
)

// apiClient is a minimal client for the packhub HTTP API, used by the sync
// and ops commands.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// apiError mirrors the server's error envelope.
type apiError struct {
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// escapeRepoKey escapes each segment of an owner/name repository key while
// keeping the separating slash, matching the server's two-segment route.
func escapeRepoKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// TriggerSync starts a repository sync and returns the operation id.
func (c *apiClient) TriggerSync(ctx context.Context, repoKey string) (string, error) {
	var body struct {
		OperationID string `json:"operation_id"`
	}
	path := "/v1/repos/" + escapeRepoKey(repoKey) + "/sync"
	if err := c.do(ctx, http.MethodPost, path, &body); err != nil {
		return "", err
	}
	return body.OperationID, nil
}

// GetOperation fetches one operation by id.
func (c *apiClient) GetOperation(ctx context.Context, id string) (*ops.Operation, error) {
	var op ops.Operation
	if err := c.do(ctx, http.MethodGet, "/v1/operations/"+url.PathEscape(id), &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// ListOperations fetches operations, newest first.
func (c *apiClient) ListOperations(ctx context.Context, limit int) ([]*ops.Operation, error) {
	var body struct {
		Operations []*ops.Operation `json:"operations"`
	}
	path := "/v1/operations?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, &body); err != nil {
		return nil, err
	}
	return body.Operations, nil
}

// do issues one request and decodes the JSON response into out. Non-2xx
// responses are returned as *apiError when the body carries the error
// envelope.
func (c *apiClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
			return &apiError{Code: envelope.Error.Code, Message: envelope.Error.Message}
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
