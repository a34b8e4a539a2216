package config

import (
	"errors"
	"fmt"
	"os"

	"tablebook/internal/models"
	"tablebook/internal/schedule"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Venue      VenueConfig      `yaml:"venue"`
	Booking    BookingConfig    `yaml:"booking"`
	Search     SearchConfig     `yaml:"search"`
	Session    SessionConfig    `yaml:"session"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	Exports   ExportConfig       `yaml:"exports"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// VenueConfig seeds the venue on first start. After seeding, tables and
// hours live in the database and are edited through the admin surface.
type VenueConfig struct {
	Name               string          `yaml:"name"`
	DefaultDurationMin int             `yaml:"default_duration_min"`
	Tables             []TableConfig   `yaml:"tables"`
	WeeklyHours        []WeeklyConfig  `yaml:"weekly_hours"`
}

type TableConfig struct {
	Number   int    `yaml:"number"`
	Capacity int    `yaml:"capacity"`
	Zone     string `yaml:"zone"`
}

type WeeklyConfig struct {
	Weekday int    `yaml:"weekday"` // 0=Sunday .. 6=Saturday
	Open    string `yaml:"open"`    // HH:MM
	Close   string `yaml:"close"`   // HH:MM, numerically <= open means past midnight
	Closed  bool   `yaml:"closed"`
}

type BookingConfig struct {
	MaxDaysAhead       int `yaml:"max_days_ahead"`
	NextOpenSearchDays int `yaml:"next_open_search_days"`
}

type SearchConfig struct {
	GridStepMin      int `yaml:"grid_step_min"`
	ScanRadiusMin    int `yaml:"scan_radius_min"`
	ReleaseWindowMin int `yaml:"release_window_min"`
	SameDayLeadMin   int `yaml:"same_day_lead_min"`
	NearWindowMin    int `yaml:"near_window_min"`
	ScanFloorMin     int `yaml:"scan_floor_min"`
	ScanCeilMin      int `yaml:"scan_ceil_min"`
	MaxAlternatives  int `yaml:"max_alternatives"`
}

type SessionConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables referenced in the YAML are
	// expanded below either way.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if err := ValidateTables(c.Venue.Tables); err != nil {
		return err
	}
	return ValidateWeeklyHours(c.Venue.WeeklyHours)
}

func ValidateTables(tables []TableConfig) error {
	numbers := make(map[int]bool)
	for _, t := range tables {
		if t.Number <= 0 {
			return fmt.Errorf("table with invalid number %d", t.Number)
		}
		if t.Capacity <= 0 {
			return fmt.Errorf("table %d has invalid capacity %d", t.Number, t.Capacity)
		}
		if numbers[t.Number] {
			return fmt.Errorf("duplicate table number: %d", t.Number)
		}
		numbers[t.Number] = true
	}
	return nil
}

func ValidateWeeklyHours(hours []WeeklyConfig) error {
	weekdays := make(map[int]bool)
	for _, h := range hours {
		if h.Weekday < 0 || h.Weekday > 6 {
			return fmt.Errorf("invalid weekday %d", h.Weekday)
		}
		if weekdays[h.Weekday] {
			return fmt.Errorf("duplicate weekday in hours: %d", h.Weekday)
		}
		weekdays[h.Weekday] = true
		if h.Closed {
			continue
		}
		if _, err := schedule.ToMinutes(h.Open); err != nil {
			return fmt.Errorf("weekday %d open: %w", h.Weekday, err)
		}
		if _, err := schedule.ToMinutes(h.Close); err != nil {
			return fmt.Errorf("weekday %d close: %w", h.Weekday, err)
		}
	}
	return nil
}

// TableModels converts the configured tables into seed rows.
func (v VenueConfig) TableModels() []*models.Table {
	tables := make([]*models.Table, 0, len(v.Tables))
	for _, t := range v.Tables {
		tables = append(tables, &models.Table{
			Number:   t.Number,
			Capacity: t.Capacity,
			Zone:     t.Zone,
			IsActive: true,
		})
	}
	return tables
}

// WeeklyHoursModels converts the configured weekly schedule into seed rows.
// Validation has already checked the clock strings.
func (v VenueConfig) WeeklyHoursModels() []*models.BusinessHours {
	hours := make([]*models.BusinessHours, 0, len(v.WeeklyHours))
	for _, h := range v.WeeklyHours {
		entry := &models.BusinessHours{Weekday: h.Weekday, Closed: h.Closed}
		if !h.Closed {
			entry.OpenMin, _ = schedule.ToMinutes(h.Open)
			entry.CloseMin, _ = schedule.ToMinutes(h.Close)
		}
		hours = append(hours, entry)
	}
	return hours
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Exports.Path == "" {
		c.API.Exports.Path = "exports"
	}

	if c.Venue.DefaultDurationMin == 0 {
		c.Venue.DefaultDurationMin = models.DefaultDurationFallback
	}
	if c.Booking.MaxDaysAhead == 0 {
		c.Booking.MaxDaysAhead = 90
	}
	if c.Booking.NextOpenSearchDays == 0 {
		c.Booking.NextOpenSearchDays = models.DefaultNextOpenSearchDays
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = models.DefaultSessionTTL
	}
}

// ScheduleSearchConfig maps the YAML search section onto the engine's
// search bounds; zero fields keep the engine defaults.
func (c *Config) ScheduleSearchConfig() schedule.SearchConfig {
	return schedule.SearchConfig{
		GridStepMin:      c.Search.GridStepMin,
		ScanRadiusMin:    c.Search.ScanRadiusMin,
		ReleaseWindowMin: c.Search.ReleaseWindowMin,
		SameDayLeadMin:   c.Search.SameDayLeadMin,
		NearWindowMin:    c.Search.NearWindowMin,
		ScanFloorMin:     c.Search.ScanFloorMin,
		ScanCeilMin:      c.Search.ScanCeilMin,
		MaxResults:       c.Search.MaxAlternatives,
	}
}
