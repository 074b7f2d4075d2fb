package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/truthslies/internal/util"
)

// defaultMaxBytes caps a downloaded export
const defaultMaxBytes = 10 << 20

const userAgent = "truthslies/0.1 (+https://github.com/ppiankov/truthslies)"

var errNoTable = errors.New("no table found")

// URLReader downloads published sheets over HTTP, either as CSV or as the
// HTML page produced by "File > Share > Publish to web". The sheet part of
// the range is ignored.
type URLReader struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
}

// URLOption configures a URLReader
type URLOption func(*URLReader)

// WithRobots makes the reader refuse URLs disallowed by robots.txt
func WithRobots() URLOption {
	return func(r *URLReader) {
		r.robots = util.NewRobotsChecker(r.userAgent, r.httpClient)
	}
}

// NewURLReader creates a reader; proxy may be nil to use the environment
func NewURLReader(timeout time.Duration, proxy func(*http.Request) (*url.URL, error), opts ...URLOption) *URLReader {
	if proxy == nil {
		proxy = http.ProxyFromEnvironment
	}
	r := &URLReader{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: proxy},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadValues fetches rawURL and crops the grid to rng
func (r *URLReader) ReadValues(ctx context.Context, rawURL, rng string) ([][]string, error) {
	_, area, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	if r.robots != nil {
		allowed, err := r.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, &UnavailableError{SourceID: rawURL, Range: rng, Message: "blocked by robots.txt"}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,text/html;q=0.8,*/*;q=0.5")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UnavailableError{
			SourceID: rawURL,
			Range:    rng,
			Message:  fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, &UnavailableError{
			SourceID: rawURL,
			Range:    rng,
			Message:  fmt.Sprintf("export too large (over %d bytes)", r.maxBytes),
		}
	}
	body := bytes.NewReader(data)

	var values [][]string
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		values, err = parseHTMLTable(body)
		if errors.Is(err, errNoTable) {
			return nil, &UnavailableError{
				SourceID: rawURL,
				Range:    rng,
				Message:  "URL returned an HTML page without a table (is the sheet published?)",
			}
		}
	} else {
		values, err = parseCSV(body)
	}
	if err != nil {
		return nil, err
	}
	return area.crop(values), nil
}

// isURL reports whether id looks like an http(s) URL
func isURL(id string) bool {
	lower := strings.ToLower(id)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
