package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLReader_ReadValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "truthslies")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("date,time,notes\n2020-01-01,12.34,pb\n2020-02-02,10.5\n"))
	}))
	defer server.Close()

	r := NewURLReader(5*time.Second, nil)
	values, err := r.ReadValues(context.Background(), server.URL+"/pub?output=csv", "Sheet1!A1:B")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "time"},
		{"2020-01-01", "12.34"},
		{"2020-02-02", "10.5"},
	}, values)
}

func TestURLReader_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewURLReader(time.Second, nil).ReadValues(context.Background(), server.URL, "")

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "HTTP 404 Not Found", uerr.Message)
}

func TestURLReader_RejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>sign in</html>"))
	}))
	defer server.Close()

	_, err := NewURLReader(time.Second, nil).ReadValues(context.Background(), server.URL, "")

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Message, "HTML")
}

func TestAutoReader_RoutesURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("date,time\nx,1\n"))
	}))
	defer server.Close()

	r := &autoReader{
		file: NewFileReader(),
		url:  NewURLReader(time.Second, nil),
		newSheets: func() (Reader, error) {
			t.Fatal("sheets reader must not be created for URLs")
			return nil, nil
		},
	}

	values, err := r.ReadValues(context.Background(), server.URL, "")
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://docs.google.com/spreadsheets/d/e/x/pub?output=csv"))
	assert.True(t, isURL("HTTP://example.com/a.csv"))
	assert.False(t, isURL("1AbCdEfGhIjK"))
	assert.False(t, isURL("./solves.csv"))
}

func TestURLReader_PublishedHTML(t *testing.T) {
	page := `<html><body><div id="sheets-viewport"><table class="waffle">
<thead><tr><th class="row-header"></th><th>A</th><th>B</th></tr></thead>
<tbody>
<tr><th>1</th><td>date</td><td>time</td></tr>
<tr><th>2</th><td>2020-01-01</td><td><span>12.34</span></td></tr>
<tr><th>3</th><td>2020-02-02</td></tr>
</tbody></table></div></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	values, err := NewURLReader(time.Second, nil).ReadValues(context.Background(), server.URL+"/pubhtml", "")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "time"},
		{"2020-01-01", "12.34"},
		{"2020-02-02"},
	}, values)
}

func TestParseHTMLTable_HeaderCells(t *testing.T) {
	page := `<table>
<tr><th>date</th><th>time</th></tr>
<tr><td>d1</td><td>1.5</td></tr>
</table>
<table><tr><td>ignored</td></tr></table>`

	values, err := parseHTMLTable(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"date", "time"}, {"d1", "1.5"}}, values)
}

func TestURLReader_RobotsDisallow(t *testing.T) {
	fetched := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		fetched = true
		_, _ = w.Write([]byte("date,time\nx,1\n"))
	}))
	defer server.Close()

	_, err := NewURLReader(time.Second, nil, WithRobots()).ReadValues(context.Background(), server.URL+"/data.csv", "")

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "blocked by robots.txt", uerr.Message)
	assert.False(t, fetched)
}

func TestURLReader_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("date,time\n2020-01-01,12.34\n2020-02-02,10.5\n"))
	}))
	defer server.Close()

	r := NewURLReader(time.Second, nil)
	r.maxBytes = 20

	_, err := r.ReadValues(context.Background(), server.URL, "")

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Message, "export too large")

	r.maxBytes = 1 << 10
	values, err := r.ReadValues(context.Background(), server.URL, "")
	require.NoError(t, err)
	assert.Len(t, values, 3)
}
