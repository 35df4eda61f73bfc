package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/oauth"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type GoogleSource struct {
	creds oauth.CredentialProvider
	opts  []option.ClientOption

	mu  sync.Mutex
	svc *sheets.Service
}

// NewGoogleSource reads tabs through the Sheets v4 API. The service is built on
// first use so a missing credential only fails the sync that needs it.
func NewGoogleSource(creds oauth.CredentialProvider, opts ...option.ClientOption) *GoogleSource {
	return &GoogleSource{creds: creds, opts: opts}
}

func (g *GoogleSource) Name() string {
	return timesheet.SourceGoogleSheets
}

func (g *GoogleSource) Ready(ref TabRef) bool {
	return ref.SpreadsheetID != ""
}

func (g *GoogleSource) Values(ctx context.Context, ref TabRef) ([][]interface{}, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(ref.SpreadsheetID, quoteTab(ref.Tab)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve %s from sheet %s: %w", ref.Tab, ref.SpreadsheetID, err)
	}

	return resp.Values, nil
}

func (g *GoogleSource) service(ctx context.Context) (*sheets.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}

	ts, err := g.creds.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, g.opts...)
	svc, err := sheets.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, timesheet.NewAuthenticationError(fmt.Errorf("create sheets service: %w", err))
	}

	g.svc = svc
	return svc, nil
}

// quoteTab turns a tab name into an A1 range covering the whole tab.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// IsAuthError reports whether err came from credential acquisition rather than the remote call.
func IsAuthError(err error) bool {
	return errors.Is(err, timesheet.ErrAuthentication)
}
