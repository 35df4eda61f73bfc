package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	SheetSourceGoogle = "google"
	SheetSourceXLSX   = "xlsx"

	AuthMethodServiceAccount = "service_account"
	AuthMethodOAuth          = "oauth"

	TeamQA  = "QA"
	TeamDEV = "DEV"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Google   GoogleConfig
	Sheets   SheetsConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// GoogleConfig holds credential file locations
type GoogleConfig struct {
	AuthMethod         string
	ServiceAccountFile string
	ClientSecretFile   string
	TokenFile          string
}

type TeamSheetConfig struct {
	SpreadsheetID  string `toml:"spreadsheet_id"`
	Tab            string `toml:"tab"`
	XLSXPath       string `toml:"xlsx_path"`
	EmployeeColumn string `toml:"employee_column"`
}

type ColumnsConfig struct {
	Date            string `toml:"date"`
	Ticket          string `toml:"ticket"`
	TimeSpent       string `toml:"time_spent"`
	ProductiveHours string `toml:"productive_hours"`
	Leave           string `toml:"leave"`
	Task            string `toml:"task"`
	Project         string `toml:"project"`
	Comments        string `toml:"comments"`
}

type SheetsConfig struct {
	Source       string
	HeaderRow    int
	FetchTimeout time.Duration
	TeamsFile    string
	Teams        map[string]TeamSheetConfig
	Columns      ColumnsConfig
}

type SyncConfig struct {
	MonthsBack       int
	AutoSyncEnabled  bool
	Interval         time.Duration
	Realtime         bool
	RowErrorLogLimit int
	LeaveOverwrite   bool
}

// teamsFile is the layout of SHEETS_TEAMS_FILE.
type teamsFile struct {
	HeaderRow int                        `toml:"header_row"`
	Teams     map[string]TeamSheetConfig `toml:"teams"`
	Columns   ColumnsConfig              `toml:"columns"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "qa_dashboard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// Google credentials
	config.Google = GoogleConfig{
		AuthMethod:         strings.ToLower(getEnv("GOOGLE_AUTH_METHOD", AuthMethodServiceAccount)),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "credentials/service_account.json"),
		ClientSecretFile:   getEnv("GOOGLE_OAUTH_CLIENT_SECRET_FILE", "credentials/client_secret.json"),
		TokenFile:          getEnv("GOOGLE_OAUTH_TOKEN_FILE", "credentials/token.json"),
	}

	// Sheets
	headerRow, err := strconv.Atoi(getEnv("SHEET_HEADER_ROW", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEET_HEADER_ROW: %w", err)
	}
	fetchTimeout, err := time.ParseDuration(getEnv("SHEETS_FETCH_TIMEOUT", "8s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEETS_FETCH_TIMEOUT: %w", err)
	}

	config.Sheets = SheetsConfig{
		Source:       strings.ToLower(getEnv("SHEET_SOURCE", SheetSourceGoogle)),
		HeaderRow:    headerRow,
		FetchTimeout: fetchTimeout,
		TeamsFile:    getEnv("SHEETS_TEAMS_FILE", ""),
		Teams: map[string]TeamSheetConfig{
			TeamQA: {
				SpreadsheetID:  getEnv("QA_SHEET_ID", ""),
				Tab:            getEnv("QA_SHEET_TAB", "QA Timesheet"),
				XLSXPath:       getEnv("QA_SHEET_XLSX_PATH", ""),
				EmployeeColumn: getEnv("COLUMN_EMPLOYEE_QA", "Tester"),
			},
			TeamDEV: {
				SpreadsheetID:  getEnv("DEV_SHEET_ID", ""),
				Tab:            getEnv("DEV_SHEET_TAB", "Dev Timesheet"),
				XLSXPath:       getEnv("DEV_SHEET_XLSX_PATH", ""),
				EmployeeColumn: getEnv("COLUMN_EMPLOYEE_DEV", "Developer"),
			},
		},
		Columns: ColumnsConfig{
			Date:            getEnv("COLUMN_DATE", "Date"),
			Ticket:          getEnv("COLUMN_TICKET", "Ticket"),
			TimeSpent:       getEnv("COLUMN_TIME_SPENT", "Time Spent"),
			ProductiveHours: getEnv("COLUMN_PRODUCTIVE_HOURS", "Productive Hours"),
			Leave:           getEnv("COLUMN_LEAVE", "Leave Type"),
			Task:            getEnv("COLUMN_TASK", "Task"),
			Project:         getEnv("COLUMN_PROJECT", "Status"),
			Comments:        getEnv("COLUMN_COMMENTS", "Comments"),
		},
	}

	if config.Sheets.TeamsFile != "" {
		if err := config.Sheets.applyTeamsFile(config.Sheets.TeamsFile); err != nil {
			return nil, err
		}
	}

	// Sync
	monthsBack, err := strconv.Atoi(getEnv("SYNC_MONTHS_BACK", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_MONTHS_BACK: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	logLimit, err := strconv.Atoi(getEnv("SYNC_ROW_ERROR_LOG_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_ROW_ERROR_LOG_LIMIT: %w", err)
	}
	autoSync, err := getEnvBool("AUTO_SYNC_ENABLED", true)
	if err != nil {
		return nil, err
	}
	realtime, err := getEnvBool("REALTIME_SYNC", true)
	if err != nil {
		return nil, err
	}
	leaveOverwrite, err := getEnvBool("SYNC_LEAVE_OVERWRITE", false)
	if err != nil {
		return nil, err
	}

	config.Sync = SyncConfig{
		MonthsBack:       monthsBack,
		AutoSyncEnabled:  autoSync,
		Interval:         interval,
		Realtime:         realtime,
		RowErrorLogLimit: logLimit,
		LeaveOverwrite:   leaveOverwrite,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// applyTeamsFile overlays the non-empty values of a TOML team file.
func (s *SheetsConfig) applyTeamsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading teams file: %w", err)
	}

	var file teamsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing teams file %s: %w", path, err)
	}

	if file.HeaderRow > 0 {
		s.HeaderRow = file.HeaderRow
	}
	for name, override := range file.Teams {
		key := strings.ToUpper(strings.TrimSpace(name))
		team, ok := s.Teams[key]
		if !ok {
			return fmt.Errorf("teams file %s: unknown team %q", path, name)
		}
		overlay(&team.SpreadsheetID, override.SpreadsheetID)
		overlay(&team.Tab, override.Tab)
		overlay(&team.XLSXPath, override.XLSXPath)
		overlay(&team.EmployeeColumn, override.EmployeeColumn)
		s.Teams[key] = team
	}

	c := file.Columns
	overlay(&s.Columns.Date, c.Date)
	overlay(&s.Columns.Ticket, c.Ticket)
	overlay(&s.Columns.TimeSpent, c.TimeSpent)
	overlay(&s.Columns.ProductiveHours, c.ProductiveHours)
	overlay(&s.Columns.Leave, c.Leave)
	overlay(&s.Columns.Task, c.Task)
	overlay(&s.Columns.Project, c.Project)
	overlay(&s.Columns.Comments, c.Comments)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	switch c.Google.AuthMethod {
	case AuthMethodServiceAccount, AuthMethodOAuth:
	default:
		return fmt.Errorf("GOOGLE_AUTH_METHOD must be %q or %q, got %q", AuthMethodServiceAccount, AuthMethodOAuth, c.Google.AuthMethod)
	}
	switch c.Sheets.Source {
	case SheetSourceGoogle, SheetSourceXLSX:
	default:
		return fmt.Errorf("SHEET_SOURCE must be %q or %q, got %q", SheetSourceGoogle, SheetSourceXLSX, c.Sheets.Source)
	}
	if c.Sheets.HeaderRow < 1 {
		return fmt.Errorf("SHEET_HEADER_ROW must be at least 1")
	}
	if c.Sync.MonthsBack < 1 || c.Sync.MonthsBack > 120 {
		return fmt.Errorf("SYNC_MONTHS_BACK must be between 1 and 120")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive")
	}

	if c.Sync.AutoSyncEnabled && len(c.ConfiguredTeams()) == 0 {
		slog.Warn("Auto sync is enabled but no team sheet is configured")
	}
	return nil
}

// ConfiguredTeams returns the teams whose active source has a location.
func (c *Config) ConfiguredTeams() []string {
	var teams []string
	for _, name := range []string{TeamQA, TeamDEV} {
		t := c.Sheets.Teams[name]
		if (c.Sheets.Source == SheetSourceXLSX && t.XLSXPath != "") ||
			(c.Sheets.Source == SheetSourceGoogle && t.SpreadsheetID != "") {
			teams = append(teams, name)
		}
	}
	return teams
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
