package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server port
	Port string `env:"PORT" envDefault:"5250"`

	// Path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" envDefault:"database/imobdesk.db"`

	// Secret used to sign session tokens
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// Token lifetime in hours
	TokenTTLHours int `env:"TOKEN_TTL_HOURS" envDefault:"12"`

	// Agenda webhook endpoint; empty disables appointment sync
	AgendaWebhookURL string `env:"AGENDA_WEBHOOK_URL"`

	// WhatsApp gateway
	WhatsAppBaseURL string `env:"WHATSAPP_BASE_URL"`
	WhatsAppAPIKey  string `env:"WHATSAPP_API_KEY"`

	// SMTP settings for appointment confirmations
	SMTP struct {
		Host     string `env:"SMTP_HOST"`
		Port     int    `env:"SMTP_PORT" envDefault:"587"`
		User     string `env:"SMTP_USER"`
		Password string `env:"SMTP_PASSWORD"`
		From     string `env:"SMTP_FROM" envDefault:"nao-responda@imobdesk.com.br"`
	}

	// AMQP broker for lead lifecycle events; empty disables publishing
	AMQPURL string `env:"AMQP_URL"`

	// LeadIntake configuration
	LeadIntake struct {
		// Maximum number of leads to accumulate before processing
		MaxBatchSize int `env:"INTAKE_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"INTAKE_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"INTAKE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"INTAKE_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
