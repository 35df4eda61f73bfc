package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timesheet-sync/internal/config"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/oauth"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sheets"
	"github.com/cmlabs-hris/timesheet-sync/internal/repository/postgresql"
	timesheetService "github.com/cmlabs-hris/timesheet-sync/internal/service/timesheet"
)

// App is the sync stack shared by the API server and the operator CLI.
type App struct {
	Config      *config.Config
	DB          *database.DB
	Credentials *oauth.GoogleCredentialProvider
	Fetcher     *sheets.Fetcher
	Service     *timesheetService.TimesheetServiceImpl
}

// Build opens the database and wires repositories, the sheet fetcher and the
// sync service. prompter may be nil outside an interactive terminal.
func Build(ctx context.Context, cfg *config.Config, prompter oauth.ConsentPrompter) (*App, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	creds := NewCredentialProvider(cfg, prompter)
	fetcher := sheets.NewFetcher(NewSource(cfg, creds), SheetsConfig(cfg))

	svc := timesheetService.NewTimesheetService(
		postgresql.NewTransactor(db),
		fetcher,
		postgresql.NewTimesheetRepository(db),
		postgresql.NewLeaveRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewNameMappingRepository(db),
		ServiceConfig(cfg, Capabilities(ctx, cfg, creds)),
	)

	slog.Info("Timesheet sync stack ready",
		"sheet_source", cfg.Sheets.Source,
		"auth_method", cfg.Google.AuthMethod,
		"configured_teams", cfg.ConfiguredTeams(),
	)

	return &App{
		Config:      cfg,
		DB:          db,
		Credentials: creds,
		Fetcher:     fetcher,
		Service:     svc,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func NewCredentialProvider(cfg *config.Config, prompter oauth.ConsentPrompter) *oauth.GoogleCredentialProvider {
	return oauth.NewGoogleCredentialProvider(oauth.GoogleConfig{
		Method:             cfg.Google.AuthMethod,
		ServiceAccountFile: cfg.Google.ServiceAccountFile,
		ClientSecretFile:   cfg.Google.ClientSecretFile,
		TokenFile:          cfg.Google.TokenFile,
	}, prompter)
}

// NewSource picks the Sheets API or the workbook reader per SHEET_SOURCE.
func NewSource(cfg *config.Config, creds oauth.CredentialProvider) sheets.Source {
	if cfg.Sheets.Source == config.SheetSourceXLSX {
		return sheets.NewXLSXSource()
	}
	return sheets.NewGoogleSource(creds)
}

func SheetsConfig(cfg *config.Config) sheets.Config {
	teams := make(map[timesheet.Team]sheets.TeamSheet, len(cfg.Sheets.Teams))
	for name, t := range cfg.Sheets.Teams {
		team, err := timesheet.ParseTeam(name)
		if err != nil {
			slog.Warn("Ignoring sheet config for unknown team", "team", name)
			continue
		}
		teams[team] = sheets.TeamSheet{
			SpreadsheetID:  t.SpreadsheetID,
			Tab:            t.Tab,
			XLSXPath:       t.XLSXPath,
			EmployeeColumn: t.EmployeeColumn,
		}
	}

	c := cfg.Sheets.Columns
	return sheets.Config{
		Teams: teams,
		Columns: sheets.Columns{
			Date:            c.Date,
			Ticket:          c.Ticket,
			TimeSpent:       c.TimeSpent,
			ProductiveHours: c.ProductiveHours,
			Leave:           c.Leave,
			Task:            c.Task,
			Project:         c.Project,
			Comments:        c.Comments,
		},
		HeaderRow: cfg.Sheets.HeaderRow,
		Timeout:   cfg.Sheets.FetchTimeout,
	}
}

func Capabilities(ctx context.Context, cfg *config.Config, creds oauth.CredentialProvider) timesheet.Capabilities {
	return timesheet.Capabilities{
		ClientLibraryAvailable: sheets.ClientAvailable(ctx),
		CredentialsConfigured:  creds.Configured(),
		AuthMethod:             creds.Method(),
		AutoSyncEnabled:        cfg.Sync.AutoSyncEnabled,
		RealtimeSync:           cfg.Sync.Realtime,
		SyncInterval:           cfg.Sync.Interval,
		MonthsBack:             cfg.Sync.MonthsBack,
	}
}

func ServiceConfig(cfg *config.Config, caps timesheet.Capabilities) timesheetService.Config {
	return timesheetService.Config{
		MonthsBack:       cfg.Sync.MonthsBack,
		RowErrorLogLimit: cfg.Sync.RowErrorLogLimit,
		LeaveOverwrite:   cfg.Sync.LeaveOverwrite,
		FullDayHours:     timesheet.DefaultLeaveHours,
		Capabilities:     caps,
	}
}
