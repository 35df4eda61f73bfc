package sheets

import (
	"context"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ClientAvailable reports whether a Sheets API client can be constructed at
// all, independent of credentials.
func ClientAvailable(ctx context.Context) bool {
	if _, err := sheets.NewService(ctx, option.WithoutAuthentication()); err != nil {
		slog.Warn("Sheets API client unavailable", "error", err)
		return false
	}
	return true
}
