package main

import (
	"context"
	"fmt"

	"github.com/shiplink/fedexgate/internal/config"
	"github.com/shiplink/fedexgate/internal/store"
	"github.com/shiplink/fedexgate/internal/telemetry"
	"github.com/shiplink/fedexgate/pkg/audit"
	"github.com/shiplink/fedexgate/pkg/carrier"
	"github.com/shiplink/fedexgate/pkg/carrier/fedex"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// environment bundles everything a command needs to run.
type environment struct {
	cfg      *config.Config
	logger   *otelzap.Logger
	registry *carrier.Registry
	gateway  carrier.Gateway
	sink     audit.Sink
	shutdown func(context.Context) error
}

func setup(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	tracer, shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	sink, err := buildAuditSink(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing audit sink: %w", err)
	}

	gateway := fedex.New(fedex.Config{
		BaseURL:  cfg.FedExBaseURL,
		LabelDir: cfg.LabelDir,
		UseMock:  cfg.FedExUseMock,
	}, cfg.Credential(), sink, logger, tracer).
		WithMetrics(telemetry.NewMetrics())

	registry := carrier.NewRegistry()
	registry.Register(cfg.FedExAccountID, gateway)

	return &environment{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		gateway:  gateway,
		sink:     sink,
		shutdown: shutdown,
	}, nil
}

// shipper is the origin party used by the CLI commands. It comes from
// the configured account rather than flags since a deployment ships
// from a single warehouse.
func (e *environment) shipper() carrier.Party {
	return carrier.Party{
		Contact: carrier.Contact{
			PersonName:  e.cfg.ShipperName,
			CompanyName: e.cfg.ShipperCompany,
			Phone:       e.cfg.ShipperPhone,
		},
		Address: carrier.Address{
			StreetLines: []string{e.cfg.ShipperStreet},
			City:        e.cfg.ShipperCity,
			PostalCode:  e.cfg.ShipperPostal,
			CountryCode: e.cfg.ShipperCountry,
		},
	}
}

func (e *environment) close(ctx context.Context) {
	if closer, ok := e.sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			e.logger.Warn("Closing audit sink", zap.Error(err))
		}
	}
	if e.shutdown != nil {
		if err := e.shutdown(ctx); err != nil {
			e.logger.Warn("Shutting down tracer", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

// buildAuditSink picks the durable backend: Postgres when a DSN is
// configured, per-record JSON files otherwise. Either way writes go
// through a bounded async queue so slow storage never stalls a call.
func buildAuditSink(cfg *config.Config, logger *otelzap.Logger) (audit.Sink, error) {
	var base audit.Sink
	if cfg.AuditDSN != "" {
		st, err := store.Open(cfg.AuditDSN)
		if err != nil {
			return nil, err
		}
		base = st
		logger.Info("Audit trail backed by Postgres")
	} else {
		fs, err := audit.NewFileSink(cfg.AuditDir)
		if err != nil {
			return nil, err
		}
		base = fs
		logger.Info("Audit trail backed by files", zap.String("dir", cfg.AuditDir))
	}
	return audit.NewAsyncSink(base, cfg.AuditQueueSize), nil
}
