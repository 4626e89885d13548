package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shiplink/fedexgate/pkg/carrier"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// FedEx
	FedExBaseURL       string `envconfig:"FEDEX_BASE_URL" default:"https://apis-sandbox.fedex.com"`
	FedExAccountID     string `envconfig:"FEDEX_ACCOUNT_ID" default:"default"`
	FedExAccountNumber string `envconfig:"FEDEX_ACCOUNT_NUMBER"`
	FedExClientID      string `envconfig:"FEDEX_CLIENT_ID"`
	FedExClientSecret  string `envconfig:"FEDEX_CLIENT_SECRET"`
	FedExMeterNumber   string `envconfig:"FEDEX_METER_NUMBER"`
	FedExIsFreight     bool   `envconfig:"FEDEX_IS_FREIGHT" default:"false"`
	FedExUseMock       bool   `envconfig:"FEDEX_USE_MOCK" default:"false"`

	// Labels
	LabelDir string `envconfig:"LABEL_DIR" default:"labels"`

	// Origin party used for outbound shipments
	ShipperName    string `envconfig:"SHIPPER_NAME"`
	ShipperCompany string `envconfig:"SHIPPER_COMPANY"`
	ShipperPhone   string `envconfig:"SHIPPER_PHONE"`
	ShipperStreet  string `envconfig:"SHIPPER_STREET"`
	ShipperCity    string `envconfig:"SHIPPER_CITY"`
	ShipperPostal  string `envconfig:"SHIPPER_POSTAL"`
	ShipperCountry string `envconfig:"SHIPPER_COUNTRY" default:"DE"`

	// Audit trail: a Postgres DSN when set, a directory of JSON files
	// otherwise. AuditQueueSize bounds the async writer queue.
	AuditDSN       string `envconfig:"AUDIT_DSN"`
	AuditDir       string `envconfig:"AUDIT_DIR" default:"audit"`
	AuditQueueSize int    `envconfig:"AUDIT_QUEUE_SIZE" default:"256"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"fedexgate"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Credential builds the carrier credential from this configuration.
func (c *Config) Credential() carrier.Credential {
	return carrier.Credential{
		AccountID:     c.FedExAccountID,
		AccountNumber: c.FedExAccountNumber,
		ClientID:      c.FedExClientID,
		ClientSecret:  c.FedExClientSecret,
		MeterNumber:   c.FedExMeterNumber,
		IsFreight:     c.FedExIsFreight,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("fedex.account_id", c.FedExAccountID),
		attribute.Bool("fedex.use_mock", c.FedExUseMock),
	}
}
