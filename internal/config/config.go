// Package config loads application settings from .env, environment variables
// and an optional config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"finova/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	Database DatabaseConfig
	Session  SessionConfig
	Members  models.Household

	CurrencySymbol              string
	RecurrenceLabelInstallments bool

	Advisor  AdvisorConfig
	Pipeline PipelineConfig
	AMQP     AMQPConfig
	Discord  DiscordConfig
	Sheets   SheetsConfig
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SessionConfig controls the household password gate and session tokens.
// PasswordHash, when set, is a bcrypt hash and takes precedence over Password.
type SessionConfig struct {
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// AdvisorConfig holds Gemini settings
type AdvisorConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// PipelineConfig holds the machine-to-machine API key
type PipelineConfig struct {
	APIKey string
}

// AMQPConfig holds broker settings. An empty URL disables messaging.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// DiscordConfig holds the notification bot settings
type DiscordConfig struct {
	BotToken  string
	ChannelID string
}

// SheetsConfig holds Google Sheets export settings
type SheetsConfig struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
}

var appConfig *Config

// devSessionSecret signs sessions outside production only.
const devSessionSecret = "fallback-secret-key-for-dev-only"

// Load reads .env (if present), applies defaults, then overlays environment
// variables and the optional file named by FINOVA_CONFIG.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("FINOVA_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		cfg, err := Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		appConfig = cfg
	}
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "finova")
	v.SetDefault("DB_PASSWORD", "finova")
	v.SetDefault("DB_NAME", "finova")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("APP_PASSWORD", "")
	v.SetDefault("APP_PASSWORD_HASH", "")
	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_TTL", "720h")

	v.SetDefault("HOUSEHOLD_MEMBER_A", "Partner A")
	v.SetDefault("HOUSEHOLD_MEMBER_B", "Partner B")
	v.SetDefault("CURRENCY_SYMBOL", "$")
	v.SetDefault("RECURRENCE_LABEL_INSTALLMENTS", false)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ADVISOR_TIMEOUT", "60s")

	v.SetDefault("PIPELINE_API_KEY", "")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "finova")
	v.SetDefault("AMQP_QUEUE", "finova.jobs")

	v.SetDefault("DISCORD_BOT_TOKEN", "")
	v.SetDefault("DISCORD_CHANNEL_ID", "")

	v.SetDefault("GOOGLE_SPREADSHEET_ID", "")
	v.SetDefault("GOOGLE_SHEET_NAME", "Transactions")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	ttl, err := parseDuration(v, "SESSION_TTL")
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration(v, "ADVISOR_TIMEOUT")
	if err != nil {
		return nil, err
	}

	secret := v.GetString("SESSION_SECRET")
	if v.GetString("ENV") == "production" && (secret == "" || secret == devSessionSecret) {
		return nil, fmt.Errorf("SESSION_SECRET must be set to a private value when ENV=production")
	}

	memberA := models.Owner(v.GetString("HOUSEHOLD_MEMBER_A"))
	memberB := models.Owner(v.GetString("HOUSEHOLD_MEMBER_B"))
	if memberA == memberB || memberA == models.OwnerBoth || memberB == models.OwnerBoth {
		return nil, fmt.Errorf("household members must be two distinct names other than %q", models.OwnerBoth)
	}

	return &Config{
		Port: v.GetString("PORT"),
		Env:  v.GetString("ENV"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Session: SessionConfig{
			Password:     v.GetString("APP_PASSWORD"),
			PasswordHash: v.GetString("APP_PASSWORD_HASH"),
			Secret:       secret,
			TTL:          ttl,
		},
		Members:                     models.Household{MemberA: memberA, MemberB: memberB},
		CurrencySymbol:              v.GetString("CURRENCY_SYMBOL"),
		RecurrenceLabelInstallments: v.GetBool("RECURRENCE_LABEL_INSTALLMENTS"),
		Advisor: AdvisorConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Model:   v.GetString("GEMINI_MODEL"),
			Timeout: timeout,
		},
		Pipeline: PipelineConfig{APIKey: v.GetString("PIPELINE_API_KEY")},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
			Queue:    v.GetString("AMQP_QUEUE"),
		},
		Discord: DiscordConfig{
			BotToken:  v.GetString("DISCORD_BOT_TOKEN"),
			ChannelID: v.GetString("DISCORD_CHANNEL_ID"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
			SheetName:          v.GetString("GOOGLE_SHEET_NAME"),
			ServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		},
	}, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: expected a positive duration", key, raw)
	}
	return d, nil
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the connection string in the URL form golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
