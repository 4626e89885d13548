// Package mock provides a mock carrier gateway for testing.
package mock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shiplink/fedexgate/pkg/carrier"
)

// Client is a mock gateway for testing. Every operation succeeds with
// deterministic-shaped data; Err, when set, is returned by all of them.
type Client struct {
	name string

	// Err makes every operation fail with this error.
	Err error
}

// New creates a new mock gateway.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Quote returns mock rate quotes.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.RateQuote, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if req.Service != "" {
		return []carrier.RateQuote{
			{Service: req.Service, Amount: 42.10, Currency: "EUR"},
		}, nil
	}
	return []carrier.RateQuote{
		{Service: carrier.ServiceInternationalPriority, Amount: 74.20, Currency: "EUR"},
		{Service: carrier.ServiceInternationalEconomy, Amount: 51.85, Currency: "EUR"},
	}, nil
}

// Ship creates a mock shipment; no label file is written.
func (c *Client) Ship(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return &carrier.ShipmentResult{
		TrackingNumber: fmt.Sprintf("%d", 100000000000+time.Now().UnixNano()%900000000000),
		LabelPath:      fmt.Sprintf("label_%s.pdf", req.ShipmentID),
	}, nil
}

// Track returns mock tracking detail.
func (c *Client) Track(ctx context.Context, trackingNumber string) (carrier.TrackingDetail, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return carrier.TrackingDetail{
		"trackingNumber": trackingNumber,
		"status":         "IN_TRANSIT",
	}, nil
}

// ProofOfDelivery writes a placeholder document at savePath.
func (c *Client) ProofOfDelivery(ctx context.Context, trackingNumber, savePath string) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	content := fmt.Sprintf("mock proof of delivery for %s", trackingNumber)
	if err := os.WriteFile(savePath, []byte(content), 0o644); err != nil {
		return "", err
	}
	return savePath, nil
}

// Ensure Client implements carrier.Gateway
var _ carrier.Gateway = (*Client)(nil)
