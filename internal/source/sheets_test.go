package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestSheetsReader(t *testing.T, handler http.HandlerFunc) *SheetsReader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	r, err := NewSheetsReader(context.Background(), "", "",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication())
	require.NoError(t, err)
	return r
}

func TestSheetsReader_ReadValues(t *testing.T) {
	var gotPath string
	r := newTestSheetsReader(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"range":"Sheet1!A1:B3","majorDimension":"ROWS","values":[["date","time"],["2021-01-02","12.34"],["2021-02-03"]]}`)
	})

	values, err := r.ReadValues(context.Background(), "sheet-123", "Sheet1!A1:B")
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotPath, "sheet-123"), "path %s should name the spreadsheet", gotPath)
	assert.Equal(t, [][]string{
		{"date", "time"},
		{"2021-01-02", "12.34"},
		{"2021-02-03"},
	}, values)
}

func TestSheetsReader_ErrorMessage(t *testing.T) {
	r := newTestSheetsReader(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	})

	a := NewAdapter(r)
	_, err := a.FetchRows(context.Background(), "sheet-123", "Sheet1!A1:B")

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "The caller does not have permission", uerr.Message)
}
