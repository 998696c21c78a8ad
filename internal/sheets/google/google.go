package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"socialspend/internal/ingest"
	"socialspend/internal/log"
	ports "socialspend/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads a dataset from a range of a Google spreadsheet. The range
// must start at the header row, e.g. "Data!A:H".
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.RecordSource = (*Client)(nil)

// Options configure New.
type Options struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string // service account JSON
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.Range) == "" {
		return nil, errors.New("missing sheet range")
	}
	svc, err := newSheetsService(ctx, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.Range), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID, readRange string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        log.New(log.DefaultConfig()).WithComponent(log.ComponentSheets),
	}
}

// newSheetsService initializes a read-only Sheets service from a service
// account credentials file.
func newSheetsService(ctx context.Context, credentialsFile string) (*gsheet.Service, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, errors.New("missing service account credentials file")
	}
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID
}

// Load fetches the configured range and parses it like a CSV file.
func (c *Client) Load(ctx context.Context) (ingest.Result, error) {
	if c.svc == nil {
		return ingest.Result{}, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return ingest.Result{}, fmt.Errorf("read %s: %w", c.readRange, err)
	}
	res := parseValues(resp.Values)
	c.logger.DebugContext(ctx, "Sheet range read",
		log.FieldSource, c.Name(),
		log.FieldRecords, len(res.Records),
		log.FieldRejected, len(res.Rejected))
	return res, nil
}
