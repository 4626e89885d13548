// Package carrier defines the contract between the shipment gateway core and
// carrier-specific implementations.
package carrier

import (
	"context"
)

// Gateway is the set of operations a carrier implementation exposes. One
// gateway instance is scoped to one credential; the cached access token is
// its only mutable state.
type Gateway interface {
	// Name returns the carrier identifier (e.g., "fedex").
	Name() string

	// Quote returns rate quotes for a prospective shipment. When the request
	// names a specific service exactly one quote is returned; otherwise all
	// services the carrier offers for the lane are returned in carrier order.
	Quote(ctx context.Context, req *QuoteRequest) ([]RateQuote, error)

	// Ship creates a shipment and writes its label file. Both the tracking
	// number and the label path are populated on success.
	Ship(ctx context.Context, req *ShipmentRequest) (*ShipmentResult, error)

	// Track returns the raw carrier tracking detail for a tracking number.
	Track(ctx context.Context, trackingNumber string) (TrackingDetail, error)

	// ProofOfDelivery writes the carrier's delivery document to savePath and
	// returns the path. When the carrier returns no document content, the raw
	// response is written instead as a diagnostic artifact.
	ProofOfDelivery(ctx context.Context, trackingNumber, savePath string) (string, error)
}

// CallRecorder receives per-operation metrics from a gateway. Implemented by
// internal/telemetry.Metrics; gateways tolerate a nil recorder.
type CallRecorder interface {
	RecordRequest(operation, carrier, status string, duration float64)
	RecordError(carrier, errorType string)
}
