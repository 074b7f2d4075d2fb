package source

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsReader reads ranges through the Google Sheets v4 values API
type SheetsReader struct {
	svc *sheets.Service
}

// NewSheetsReader authenticates with a service-account credentials file when
// given, otherwise with an API key, otherwise with application default credentials.
func NewSheetsReader(ctx context.Context, apiKey, credentialsFile string, extra ...option.ClientOption) (*SheetsReader, error) {
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsReader{svc: svc}, nil
}

// ReadValues fetches the formatted cell values of rng in spreadsheet sheetID
func (r *SheetsReader) ReadValues(ctx context.Context, sheetID, rng string) ([][]string, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(sheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cast.ToString(cell)
		}
		values[i] = cells
	}
	return values, nil
}
