// Package fedex provides the FedEx implementation of the carrier gateway:
// OAuth token lifecycle, request construction, response extraction and an
// audit record per outbound call.
package fedex

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/shiplink/fedexgate/pkg/audit"
	"github.com/shiplink/fedexgate/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "fedex"

// Config holds FedEx gateway configuration.
type Config struct {
	BaseURL  string
	LabelDir string        // directory label files are written into
	Timeout  time.Duration // per-call HTTP timeout, defaults to 30s
	UseMock  bool          // when true, uses the mock API client
}

// Client is the FedEx carrier gateway. One instance is scoped to one
// credential; the cached access token is its only mutable state, so callers
// needing several accounts build one Client per credential. It implements
// carrier.Gateway.
type Client struct {
	config  Config
	cred    carrier.Credential
	api     APIClient
	tokens  *tokenSource
	auditor *audit.Logger
	logger  *otelzap.Logger
	tracer  trace.Tracer
	metrics carrier.CallRecorder
}

// New creates a FedEx gateway for one credential. Outbound calls are
// recorded through sink; pass an audit.MemorySink when no durable store is
// wired. If cfg.UseMock is true the mock API client is used instead of the
// real HTTP transport.
func New(cfg Config, cred carrier.Credential, sink audit.Sink, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	}
	return NewWithAPIClient(cfg, cred, apiClient, sink, logger, tracer)
}

// NewWithAPIClient creates a gateway with a custom API client. This is how
// tests inject the mock with per-test hooks.
func NewWithAPIClient(cfg Config, cred carrier.Credential, api APIClient, sink audit.Sink, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	auditor := audit.NewLogger(sink, logger)
	return &Client{
		config:  cfg,
		cred:    cred,
		api:     api,
		tokens:  newTokenSource(api, cred, auditor),
		auditor: auditor,
		logger:  logger,
		tracer:  tracer,
	}
}

// WithMetrics attaches a call recorder. Returns the client for chaining.
func (c *Client) WithMetrics(m carrier.CallRecorder) *Client {
	c.metrics = m
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Quote returns rate quotes for a prospective shipment. With a specific
// service requested exactly one quote comes back; with none, every service
// the carrier prices for the lane, in carrier order.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.RateQuote, error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "fedex.quote")
	defer span.End()

	c.logger.Info("Requesting FedEx rates",
		zap.String("destination_country", req.DestinationCountry),
		zap.String("service", string(req.Service)),
		zap.Float64("weight_kg", req.WeightKG),
	)

	payload, err := buildRateRequest(c.cred, req)
	if err != nil {
		return nil, c.fail("quote", start, err)
	}

	resp, err := c.call(ctx, EndpointRates, payload, func(ctx context.Context, bearer string) (*APIResponse, error) {
		return c.api.Rates(ctx, bearer, payload)
	})
	if err != nil {
		return nil, c.fail("quote", start, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail("quote", start, &carrier.CarrierError{
			Carrier:    carrierName,
			Operation:  "quote",
			StatusCode: resp.StatusCode,
			Message:    "rate request rejected",
			Body:       string(resp.Body),
		})
	}

	quotes := parseRateQuotes(resp.Body, req.Service)
	if req.Service != "" && len(quotes) == 0 {
		return nil, c.fail("quote", start, &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "quote",
			Message:   "rate missing in response",
			Body:      string(resp.Body),
		})
	}

	c.ok("quote", start)
	return quotes, nil
}

// Ship creates a shipment and writes its label file. The tracking number is
// required; the label write is best-effort and falls back to a textual
// placeholder so shipment creation never fails on label extraction alone.
func (c *Client) Ship(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResult, error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "fedex.ship")
	defer span.End()

	c.logger.Info("Creating FedEx shipment",
		zap.String("shipment_id", req.ShipmentID),
		zap.String("service", string(req.Service)),
		zap.Bool("is_return", req.IsReturn),
	)

	payload, err := buildShipRequest(c.cred, req)
	if err != nil {
		return nil, c.fail("ship", start, err)
	}

	resp, err := c.call(ctx, EndpointShipments, payload, func(ctx context.Context, bearer string) (*APIResponse, error) {
		return c.api.CreateShipment(ctx, bearer, payload)
	})
	if err != nil {
		return nil, c.fail("ship", start, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.fail("ship", start, &carrier.CarrierError{
			Carrier:    carrierName,
			Operation:  "ship",
			StatusCode: resp.StatusCode,
			Message:    "shipment request rejected",
			Body:       string(resp.Body),
		})
	}

	trackingNumber, ok := parseTrackingNumber(resp.Body)
	if !ok {
		return nil, c.fail("ship", start, &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "ship",
			Message:   "tracking number missing in response",
			Body:      string(resp.Body),
		})
	}

	labelPath, err := c.writeLabel(resp.Body, req)
	if err != nil {
		return nil, c.fail("ship", start, err)
	}

	c.ok("ship", start)
	return &carrier.ShipmentResult{
		TrackingNumber: trackingNumber,
		LabelPath:      labelPath,
	}, nil
}

// Track returns the raw tracking detail for a tracking number.
func (c *Client) Track(ctx context.Context, trackingNumber string) (carrier.TrackingDetail, error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "fedex.track")
	defer span.End()

	c.logger.Info("Tracking FedEx shipment", zap.String("tracking_number", trackingNumber))

	payload := buildTrackRequest(trackingNumber)
	resp, err := c.call(ctx, EndpointTracking, payload, func(ctx context.Context, bearer string) (*APIResponse, error) {
		return c.api.Track(ctx, bearer, payload)
	})
	if err != nil {
		return nil, c.fail("track", start, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail("track", start, &carrier.CarrierError{
			Carrier:    carrierName,
			Operation:  "track",
			StatusCode: resp.StatusCode,
			Message:    "tracking request rejected",
			Body:       string(resp.Body),
		})
	}

	detail, ok := parseTrackDetail(resp.Body)
	if !ok {
		return nil, c.fail("track", start, &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "track",
			Message:   "tracking detail missing in response",
			Body:      string(resp.Body),
		})
	}

	c.ok("track", start)
	return detail, nil
}

// ProofOfDelivery writes the delivery document to savePath and returns the
// path. When the carrier returns no document content the raw response is
// persisted instead as a diagnostic artifact.
func (c *Client) ProofOfDelivery(ctx context.Context, trackingNumber, savePath string) (string, error) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "fedex.pod")
	defer span.End()

	c.logger.Info("Fetching FedEx proof of delivery",
		zap.String("tracking_number", trackingNumber),
		zap.String("save_path", savePath),
	)

	payload := buildPODRequest(trackingNumber)
	resp, err := c.call(ctx, EndpointProofOfDelivery, payload, func(ctx context.Context, bearer string) (*APIResponse, error) {
		return c.api.ProofOfDelivery(ctx, bearer, payload)
	})
	if err != nil {
		return "", c.fail("pod", start, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.fail("pod", start, &carrier.CarrierError{
			Carrier:    carrierName,
			Operation:  "pod",
			StatusCode: resp.StatusCode,
			Message:    "proof-of-delivery request rejected",
			Body:       string(resp.Body),
		})
	}

	content, ok := parsePOD(resp.Body)
	if !ok {
		// No document content: keep the raw body for diagnosis.
		c.logger.Warn("Proof of delivery content missing, persisting raw response",
			zap.String("tracking_number", trackingNumber),
		)
		content = resp.Body
	}

	if err := os.WriteFile(savePath, content, 0o644); err != nil {
		return "", c.fail("pod", start, &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "pod",
			Message:   "writing proof-of-delivery file",
			Cause:     err,
		})
	}

	c.ok("pod", start)
	return savePath, nil
}

// call obtains a bearer token and performs one outbound exchange, auditing
// it unconditionally: on a transport failure the record carries a nil status
// and the error text in place of a response body. A 401 drops the cached
// token so the next call re-authenticates.
func (c *Client) call(ctx context.Context, endpoint string, payload any, do func(ctx context.Context, bearer string) (*APIResponse, error)) (*APIResponse, error) {
	bearer, err := c.tokens.bearer(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := do(ctx, bearer)
	if err != nil {
		c.auditor.Log(ctx, c.cred.AccountID, endpoint, http.MethodPost, payload, nil, err.Error())
		return nil, &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: endpoint,
			Message:   "transport failure",
			Cause:     err,
		}
	}
	c.auditor.Log(ctx, c.cred.AccountID, endpoint, http.MethodPost, payload, &resp.StatusCode, string(resp.Body))

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.invalidate()
	}
	return resp, nil
}

// writeLabel persists the label bytes under the label directory. When the
// response carries no decodable label a textual fallback naming the
// shipment, destination and service is written instead.
func (c *Client) writeLabel(body []byte, req *carrier.ShipmentRequest) (string, error) {
	if err := os.MkdirAll(c.config.LabelDir, 0o755); err != nil {
		return "", &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "ship",
			Message:   "creating label directory",
			Cause:     err,
		}
	}
	labelPath := filepath.Join(c.config.LabelDir, fmt.Sprintf("label_%s.pdf", req.ShipmentID))

	content, ok := parseLabel(body)
	if !ok {
		c.logger.Warn("Label content missing, writing fallback label",
			zap.String("shipment_id", req.ShipmentID),
		)
		content = []byte(fmt.Sprintf("FedEx Shipment\nID: %s\nDestination: %s, %s\nService: %s\n",
			req.ShipmentID, req.Recipient.Address.City, req.Recipient.Address.CountryCode, req.Service))
	}

	if err := os.WriteFile(labelPath, content, 0o644); err != nil {
		return "", &carrier.CarrierError{
			Carrier:   carrierName,
			Operation: "ship",
			Message:   "writing label file",
			Cause:     err,
		}
	}
	return labelPath, nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return c.tracer.Start(ctx, name)
}

func (c *Client) ok(op string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordRequest(op, carrierName, "ok", time.Since(start).Seconds())
}

func (c *Client) fail(op string, start time.Time, err error) error {
	c.logger.Error("FedEx operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	if c.metrics != nil {
		c.metrics.RecordRequest(op, carrierName, "error", time.Since(start).Seconds())
		c.metrics.RecordError(carrierName, errorType(err))
	}
	return err
}

func errorType(err error) string {
	switch {
	case carrier.IsUnsupportedService(err):
		return "unsupported_service"
	case carrier.IsAuth(err):
		return "auth"
	case carrier.IsCarrier(err):
		return "carrier"
	default:
		return "other"
	}
}

// Ensure Client implements carrier.Gateway
var _ carrier.Gateway = (*Client)(nil)
