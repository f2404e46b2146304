package application

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportStyle controls how grid exports are titled.
type ExportStyle struct {
	Title     string `yaml:"title"`
	SheetName string `yaml:"sheet_name"`
}

// Config defines workflow configuration.
type Config struct {
	WebhookURL       string                 `yaml:"webhook_url"`
	WebhookTimeoutMS int                    `yaml:"webhook_timeout_ms"`
	MaxSelection     int                    `yaml:"max_selection"`
	Export           ExportStyle            `yaml:"export"`
	Companies        map[string]ExportStyle `yaml:"companies"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		WebhookURL:       os.Getenv("SALESFLOW_WEBHOOK_URL"),
		WebhookTimeoutMS: getenvIntDefault("SALESFLOW_WEBHOOK_TIMEOUT_MS", 5000),
		MaxSelection:     getenvIntDefault("SALESFLOW_MAX_SELECTION", 500),
		Export: ExportStyle{
			Title:     getenvDefault("SALESFLOW_EXPORT_TITLE", "Informe mensual de ventas"),
			SheetName: getenvDefault("SALESFLOW_EXPORT_SHEET", "Informes"),
		},
	}

	if path := os.Getenv("SALESFLOW_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("SALESFLOW_WEBHOOK_URL")
	}
	if cfg.WebhookTimeoutMS <= 0 {
		cfg.WebhookTimeoutMS = 5000
	}
	if cfg.MaxSelection <= 0 {
		cfg.MaxSelection = 500
	}
	if cfg.Export.Title == "" {
		cfg.Export.Title = "Informe mensual de ventas"
	}
	if cfg.Export.SheetName == "" {
		cfg.Export.SheetName = "Informes"
	}
	return cfg, nil
}

// WebhookTimeout returns the webhook timeout as a duration.
func (c Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutMS) * time.Millisecond
}

// ExportStyleForCompany returns the export style for a company, falling
// back to the global style for unset fields.
func (c Config) ExportStyleForCompany(companyID string) ExportStyle {
	style := c.Export
	if c.Companies != nil {
		if override, ok := c.Companies[companyID]; ok {
			if override.Title != "" {
				style.Title = override.Title
			}
			if override.SheetName != "" {
				style.SheetName = override.SheetName
			}
		}
	}
	return style
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
