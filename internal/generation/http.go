package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/truthslies/internal/engine"
	"github.com/ppiankov/truthslies/internal/model"
)

// GeneratePath is the HTTP route of the generate call
const GeneratePath = "/v1/generate"

// StatusError is a non-2xx HTTP response from the generation service
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation service returned HTTP %d: %s", e.Code, e.Body)
}

// HTTPClient calls the generation service with JSON over HTTP
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a client for endpoint (scheme optional, https assumed)
func NewHTTPClient(endpoint string, timeout time.Duration, proxy func(*http.Request) (*url.URL, error)) *HTTPClient {
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxy != nil {
		transport.Proxy = proxy
	}
	return &HTTPClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Generate posts req and decodes the statements
func (c *HTTPClient) Generate(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var resp model.GenerationResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Statements == nil {
		return []model.Statement{}, nil
	}
	return resp.Statements, nil
}

// NewHTTPHandler serves backend on GeneratePath with the same JSON contract HTTPClient speaks
func NewHTTPHandler(backend Client, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc(GeneratePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req model.GenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		statements, err := backend.Generate(r.Context(), &req)
		if err != nil {
			logger.Warn("generate failed", "error", err)
			http.Error(w, err.Error(), httpStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.GenerationResponse{Statements: statements})
	})
	return mux
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownClass), errors.Is(err, engine.ErrNoArguments):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrTooManyDuplicates):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
