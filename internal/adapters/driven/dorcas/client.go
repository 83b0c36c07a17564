package dorcas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure Client implements IdentityClient
var _ driven.IdentityClient = (*Client)(nil)

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

// Client provides Dorcas API operations.
// It carries no bearer token of its own; each RemoteRequest brings its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new Dorcas API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig("").Timeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
	}
}

// envelope is the JSON shape of every Dorcas resource response.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Message string          `json:"message"`
	Errors  []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Send performs the request and normalizes the response envelope.
func (c *Client) Send(ctx context.Context, req domain.RemoteRequest) (*domain.NormalizedResponse, error) {
	path := "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		path += "?" + req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body any
	if req.Body != nil {
		body = req.Body
	}

	status, raw, err := c.doRequest(ctx, method, path, body, req.AuthToken)
	if err != nil {
		return nil, err
	}

	return normalize(method, status, raw)
}

// normalize reduces a raw response to success/data/meta.
// A 2xx response that is not a JSON envelope is a transport fault; any
// other status is a plain non-success. An empty 2xx body confirms a write
// but carries nothing a read could trust.
func normalize(method string, status int, raw []byte) (*domain.NormalizedResponse, error) {
	resp := &domain.NormalizedResponse{StatusCode: status}
	ok := status >= 200 && status < 300

	if ok && len(bytes.TrimSpace(raw)) == 0 {
		resp.Message = http.StatusText(status)
		if method != http.MethodGet && method != http.MethodHead {
			resp.Success = true
			resp.Data = map[string]any{}
		}
		return resp, nil
	}

	var env envelope
	if err := decodeJSON(raw, &env); err != nil {
		if ok {
			return nil, fmt.Errorf("decode response (status %d): %w", status, err)
		}
		resp.Message = http.StatusText(status)
		return resp, nil
	}

	resp.Message = env.Message
	if len(env.Errors) > 0 {
		resp.Message = env.Errors[0].Title
		if resp.Message == "" {
			resp.Message = env.Errors[0].Detail
		}
	}

	if !ok {
		return resp, nil
	}

	var data map[string]any
	if len(env.Data) > 0 {
		if err := decodeJSON(env.Data, &data); err != nil {
			// data present but not an object: nothing we can trust
			data = nil
		}
	}
	if data == nil {
		return resp, nil
	}

	resp.Success = true
	resp.Data = data
	resp.Meta = env.Meta
	return resp, nil
}

// doRequest performs one HTTP request and returns its status and body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, token domain.BearerToken) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if !token.IsZero() {
		req.Header.Set("Authorization", "Bearer "+token.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

// decodeJSON decodes numbers as json.Number so ids keep their exact form.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
