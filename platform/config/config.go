// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides session store connection settings.
type RedisConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// WhatsAppConfig provides settings for the Evolution API client.
type WhatsAppConfig interface {
	GetEvolutionURL() string
	GetEvolutionAPIKey() string
	GetEvolutionInstance() string
	IsWhatsAppEnabled() bool
}

// NotifierConfig provides settings for the lawyer notification dispatcher.
type NotifierConfig interface {
	GetLawyerRoster() []Lawyer
	GetAPIBaseURL() string
	GetNotifyEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPassword() string
	GetNotifyEmailFrom() string
	GetNotifyEmailTo() string
}

// GeminiConfig provides settings for the generative fallback responder.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsGeminiEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetFollowUpDelay() time.Duration
}

// ConversationConfig provides settings for the conversation flow.
type ConversationConfig interface {
	GetLandingPageURL() string
	GetFirmName() string
}

// Lawyer is one entry of the notification roster.
type Lawyer struct {
	Name  string
	Phone string
}

// =============================================================================
// Config Struct
// =============================================================================

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll bool
	CORSOrigins  []string

	DatabaseURL string

	RedisURL   string
	SessionTTL time.Duration

	EvolutionURL      string
	EvolutionAPIKey   string
	EvolutionInstance string

	APIBaseURL string

	LawyerRoster       []Lawyer
	NotifyEmailEnabled bool
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	NotifyEmailFrom    string
	NotifyEmailTo      string

	GeminiAPIKey string
	GeminiModel  string

	AsynqQueueName string
	FollowUpDelay  time.Duration

	LandingPageURL string
	FirmName       string
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		CORSAllowAll: strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:  splitAndTrim(getEnv("CORS_ORIGINS", "")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: getDurationEnv("SESSION_TTL", 30*24*time.Hour),

		EvolutionURL:      getEnv("EVOLUTION_API_URL", ""),
		EvolutionAPIKey:   getEnv("EVOLUTION_API_KEY", ""),
		EvolutionInstance: getEnv("EVOLUTION_INSTANCE_NAME", ""),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),

		NotifyEmailEnabled: strings.EqualFold(getEnv("NOTIFY_EMAIL_ENABLED", "false"), "true"),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getIntEnv("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		NotifyEmailFrom:    getEnv("NOTIFY_EMAIL_FROM", ""),
		NotifyEmailTo:      getEnv("NOTIFY_EMAIL_TO", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		AsynqQueueName: getEnv("ASYNQ_QUEUE", "intake"),
		FollowUpDelay:  getDurationEnv("FOLLOWUP_DELAY", 30*time.Minute),

		LandingPageURL: getEnv("LANDING_PAGE_URL", "https://mlima.adv.br"),
		FirmName:       getEnv("FIRM_NAME", "m.lima Advogados Associados"),
	}

	roster, err := parseRoster(getEnv("LAWYER_ROSTER", ""))
	if err != nil {
		return nil, err
	}
	cfg.LawyerRoster = roster

	if cfg.NotifyEmailEnabled {
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required when NOTIFY_EMAIL_ENABLED is true")
		}
		if cfg.NotifyEmailTo == "" {
			return nil, fmt.Errorf("NOTIFY_EMAIL_TO is required when NOTIFY_EMAIL_ENABLED is true")
		}
	}

	return cfg, nil
}

// parseRoster parses "Name:phone,Name:phone" roster entries.
func parseRoster(raw string) ([]Lawyer, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var roster []Lawyer
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, phone, found := strings.Cut(entry, ":")
		if !found || strings.TrimSpace(phone) == "" {
			return nil, fmt.Errorf("invalid LAWYER_ROSTER entry %q, expected Name:phone", entry)
		}
		roster = append(roster, Lawyer{
			Name:  strings.TrimSpace(name),
			Phone: strings.TrimSpace(phone),
		})
	}
	return roster, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string       { return c.DatabaseURL }
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetEvolutionURL() string      { return c.EvolutionURL }
func (c *Config) GetEvolutionAPIKey() string   { return c.EvolutionAPIKey }
func (c *Config) GetEvolutionInstance() string { return c.EvolutionInstance }
func (c *Config) IsWhatsAppEnabled() bool      { return c.EvolutionURL != "" }

func (c *Config) GetLawyerRoster() []Lawyer   { return c.LawyerRoster }
func (c *Config) GetAPIBaseURL() string       { return c.APIBaseURL }
func (c *Config) GetNotifyEmailEnabled() bool { return c.NotifyEmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUser() string         { return c.SMTPUser }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetNotifyEmailFrom() string  { return c.NotifyEmailFrom }
func (c *Config) GetNotifyEmailTo() string    { return c.NotifyEmailTo }

func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsGeminiEnabled() bool   { return c.GeminiAPIKey != "" }

func (c *Config) GetAsynqQueueName() string       { return c.AsynqQueueName }
func (c *Config) GetFollowUpDelay() time.Duration { return c.FollowUpDelay }

func (c *Config) GetLandingPageURL() string { return c.LandingPageURL }
func (c *Config) GetFirmName() string       { return c.FirmName }
