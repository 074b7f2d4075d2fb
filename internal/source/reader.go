package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ppiankov/truthslies/internal/model"
)

// NewReader builds the Reader selected by cfg.Kind
func NewReader(ctx context.Context, cfg model.SourceConfig) (Reader, error) {
	switch strings.ToLower(cfg.Kind) {
	case "file":
		return NewFileReader(), nil
	case "sheets":
		return NewSheetsReader(ctx, cfg.APIKey, cfg.CredentialsFile)
	case "url":
		return newURLReader(cfg), nil
	case "", "auto":
		return &autoReader{
			file: NewFileReader(),
			url:  newURLReader(cfg),
			newSheets: func() (Reader, error) {
				return NewSheetsReader(ctx, cfg.APIKey, cfg.CredentialsFile)
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s (supported: auto, sheets, file, url)", cfg.Kind)
	}
}

func newURLReader(cfg model.SourceConfig) *URLReader {
	var opts []URLOption
	if cfg.RespectRobots {
		opts = append(opts, WithRobots())
	}
	return NewURLReader(cfg.Timeout, nil, opts...)
}

// autoReader treats http(s) IDs as CSV URLs, IDs naming an existing local
// file as files and everything else as spreadsheet IDs. The Sheets client
// is created on first use.
type autoReader struct {
	file      Reader
	url       Reader
	newSheets func() (Reader, error)

	mu     sync.Mutex
	sheets Reader
}

func (r *autoReader) ReadValues(ctx context.Context, sourceID, rng string) ([][]string, error) {
	if isURL(sourceID) {
		return r.url.ReadValues(ctx, sourceID, rng)
	}
	if _, err := os.Stat(sourceID); err == nil {
		return r.file.ReadValues(ctx, sourceID, rng)
	}

	sheets, err := r.sheetsReader()
	if err != nil {
		return nil, err
	}
	return sheets.ReadValues(ctx, sourceID, rng)
}

func (r *autoReader) sheetsReader() (Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sheets != nil {
		return r.sheets, nil
	}
	s, err := r.newSheets()
	if err != nil {
		return nil, err
	}
	r.sheets = s
	return s, nil
}
