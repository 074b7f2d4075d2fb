package source

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ppiankov/truthslies/internal/cache"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeReader struct {
	values [][]string
	err    error
	calls  int
}

func (f *fakeReader) ReadValues(ctx context.Context, sourceID, rng string) ([][]string, error) {
	f.calls++
	return f.values, f.err
}

func TestRowsFromValues(t *testing.T) {
	values := [][]string{
		{"date", " time ", "note"},
		{"2021-01-02", "12.34", "first"},
		{"2021-02-03", "10.5"},
		{"2021-03-04", "9.99", "third", "overflow"},
	}

	rows := RowsFromValues(values)
	require.Len(t, rows, 3)

	assert.Equal(t, model.DataRow{"date": "2021-01-02", "time": "12.34", "note": "first"}, rows[0])
	assert.Equal(t, model.DataRow{"date": "2021-02-03", "time": "10.5", "note": ""}, rows[1], "short rows leave trailing columns empty")
	assert.Equal(t, model.DataRow{"date": "2021-03-04", "time": "9.99", "note": "third"}, rows[2], "cells past the header width are dropped")
}

func TestRowsFromValues_HeaderOnlyAndEmpty(t *testing.T) {
	assert.Empty(t, RowsFromValues(nil))
	assert.Empty(t, RowsFromValues([][]string{{"date", "time"}}))
}

func TestAdapter_FetchRows(t *testing.T) {
	r := &fakeReader{values: [][]string{{"date", "time"}, {"d1", "1"}, {"d2", "2"}}}
	a := NewAdapter(r)

	rows, err := a.FetchRows(context.Background(), "sheet", "A1:B")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d2", rows[1]["date"])
}

func TestAdapter_SurfacePolicy(t *testing.T) {
	r := &fakeReader{err: &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}}
	a := NewAdapter(r)

	rows, err := a.FetchRows(context.Background(), "sheet-1", "A1:B")
	require.Error(t, err)
	assert.Nil(t, rows)

	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "sheet-1", uerr.SourceID)
	assert.Equal(t, "The caller does not have permission", uerr.Message)
}

func TestAdapter_SwallowPolicy(t *testing.T) {
	r := &fakeReader{err: errors.New("boom")}
	a := NewAdapter(r, WithPolicy(PolicySwallow))

	rows, err := a.FetchRows(context.Background(), "sheet-1", "A1:B")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAdapter_EmptySourceID(t *testing.T) {
	r := &fakeReader{}
	a := NewAdapter(r)

	_, err := a.FetchRows(context.Background(), "  ", "A1:B")
	var uerr *UnavailableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "no source configured", uerr.Message)
	assert.Zero(t, r.calls, "reader must not be called without a source")
}

func TestAdapter_Cache(t *testing.T) {
	r := &fakeReader{values: [][]string{{"date"}, {"d1"}}}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAdapter(r, WithCache(c, time.Minute))

	for i := 0; i < 3; i++ {
		rows, err := a.FetchRows(context.Background(), "sheet", "A1:A")
		require.NoError(t, err)
		require.Len(t, rows, 1)
	}
	assert.Equal(t, 1, r.calls)

	require.NoError(t, a.Invalidate("sheet", "A1:A"))
	_, err := a.FetchRows(context.Background(), "sheet", "A1:A")
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestAdapter_FailuresAreNotCached(t *testing.T) {
	r := &fakeReader{err: errors.New("down")}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAdapter(r, WithCache(c, time.Minute))

	_, err := a.FetchRows(context.Background(), "sheet", "A1:A")
	require.Error(t, err)
	_, ok := c.Get(cache.Key("sheet", "A1:A"))
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Swallow")
	require.NoError(t, err)
	assert.Equal(t, PolicySwallow, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicySurface, p)

	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
}
