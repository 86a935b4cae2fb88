// Package config provides configuration parsing and validation for the fan processor service.
package config

import (
	"fmt"
	"strings"
)

// Config holds all configuration parameters for the fan processor service.
type Config struct {
	KafkaBrokers    string
	TelemetryTopic  string
	ConsumerGroupID string
	PostgresDSN     string

	// Outbound REST collaborator. Endpoint URLs are the base URL joined with
	// the per-operation path.
	BaseURL             string
	SetStatusPath       string
	SetAlarmsPath       string
	AcknowledgementPath string
	DeviceStatePath     string
	SpeedCommandPath    string
	PowerCommandPath    string

	// Push notification hub.
	HubURL   string
	HubToken string

	// Optional Redis address for metrics reporting. Empty disables metrics.
	RedisAddr string

	// BatchSize is the maximum number of events fetched and processed per batch.
	BatchSize int
}

// Endpoints holds the fully joined outbound endpoint URLs, built once at
// startup and passed to the router.
type Endpoints struct {
	SetStatus           string
	SetAlarms           string
	SendAcknowledgement string
	SendDeviceState     string
	SpeedCommand        string
	PowerCommand        string
}

// Validate checks that all required configuration fields are set and have valid values.
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.TelemetryTopic == "" {
		return fmt.Errorf("telemetry-topic cannot be empty")
	}
	if c.ConsumerGroupID == "" {
		return fmt.Errorf("consumer-group-id cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base-url cannot be empty")
	}
	if c.HubURL == "" {
		return fmt.Errorf("hub-url cannot be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	return nil
}

// Endpoints joins the base URL with each operation path.
func (c *Config) Endpoints() Endpoints {
	return Endpoints{
		SetStatus:           JoinURL(c.BaseURL, c.SetStatusPath),
		SetAlarms:           JoinURL(c.BaseURL, c.SetAlarmsPath),
		SendAcknowledgement: JoinURL(c.BaseURL, c.AcknowledgementPath),
		SendDeviceState:     JoinURL(c.BaseURL, c.DeviceStatePath),
		SpeedCommand:        JoinURL(c.BaseURL, c.SpeedCommandPath),
		PowerCommand:        JoinURL(c.BaseURL, c.PowerCommandPath),
	}
}

// JoinURL joins URL segments with single slashes between them.
func JoinURL(base string, parts ...string) string {
	joined := strings.TrimSuffix(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		joined += "/" + p
	}
	return joined
}
