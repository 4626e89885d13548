package fedex

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing. Each
// operation can be overridden per test through its On* hook; without a hook
// a canned FedEx-shaped response is returned. Call counters let tests assert
// how many outbound exchanges an operation performed.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnToken           func(ctx context.Context, form url.Values) (*APIResponse, error)
	OnRates           func(ctx context.Context, bearer string, req *RateRequest) (*APIResponse, error)
	OnCreateShipment  func(ctx context.Context, bearer string, req *ShipRequest) (*APIResponse, error)
	OnTrack           func(ctx context.Context, bearer string, req *TrackRequest) (*APIResponse, error)
	OnProofOfDelivery func(ctx context.Context, bearer string, req *PODRequest) (*APIResponse, error)

	mu         sync.Mutex
	TokenCalls int
	RateCalls  int
	ShipCalls  int
	TrackCalls int
	PODCalls   int
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) before(counter *int) error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	m.mu.Lock()
	*counter++
	m.mu.Unlock()
	if m.SimulateErrors {
		return fmt.Errorf("simulated transport error")
	}
	return nil
}

// Token returns a mock OAuth token response.
func (m *MockAPIClient) Token(ctx context.Context, form url.Values) (*APIResponse, error) {
	if err := m.before(&m.TokenCalls); err != nil {
		return nil, err
	}
	if m.OnToken != nil {
		return m.OnToken(ctx, form)
	}
	return &APIResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"access_token":"mock-bearer-token","token_type":"bearer","expires_in":3600}`),
	}, nil
}

// Rates returns two priced mock quotes.
func (m *MockAPIClient) Rates(ctx context.Context, bearer string, req *RateRequest) (*APIResponse, error) {
	if err := m.before(&m.RateCalls); err != nil {
		return nil, err
	}
	if m.OnRates != nil {
		return m.OnRates(ctx, bearer, req)
	}
	body := `{
	  "output": {
	    "rateReplyDetails": [
	      {
	        "serviceType": "INTERNATIONAL_PRIORITY",
	        "ratedShipmentDetails": [{"totalNetCharge": {"amount": 74.2, "currency": "EUR"}}]
	      },
	      {
	        "serviceType": "INTERNATIONAL_ECONOMY",
	        "ratedShipmentDetails": [{"totalNetCharge": {"amount": 51.85, "currency": "EUR"}}]
	      }
	    ]
	  }
	}`
	return &APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// CreateShipment returns a mock shipment with a tracking number and an
// inline base64 label.
func (m *MockAPIClient) CreateShipment(ctx context.Context, bearer string, req *ShipRequest) (*APIResponse, error) {
	if err := m.before(&m.ShipCalls); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, bearer, req)
	}
	label := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock label"))
	body := fmt.Sprintf(`{
	  "output": {
	    "transactionShipments": [
	      {
	        "masterTrackingNumber": "794644790138",
	        "pieceResponses": [
	          {
	            "trackingNumber": "794644790138",
	            "packageDocuments": [{"contentType": "LABEL", "encodedLabel": "%s"}]
	          }
	        ]
	      }
	    ]
	  }
	}`, label)
	return &APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// Track returns a mock tracking detail.
func (m *MockAPIClient) Track(ctx context.Context, bearer string, req *TrackRequest) (*APIResponse, error) {
	if err := m.before(&m.TrackCalls); err != nil {
		return nil, err
	}
	if m.OnTrack != nil {
		return m.OnTrack(ctx, bearer, req)
	}
	trackingNumber := ""
	if len(req.TrackingInfo) > 0 {
		trackingNumber = req.TrackingInfo[0].TrackingNumberInfo.TrackingNumber
	}
	body := fmt.Sprintf(`{
	  "output": {
	    "completeTrackResults": [
	      {
	        "trackingNumber": "%s",
	        "trackResults": [
	          {
	            "latestStatusDetail": {"code": "IT", "description": "In transit"},
	            "scanEvents": [
	              {"eventType": "PU", "eventDescription": "Picked up", "scanLocation": {"city": "COTTBUS"}}
	            ]
	          }
	        ]
	      }
	    ]
	  }
	}`, trackingNumber)
	return &APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// ProofOfDelivery returns a mock signature proof-of-delivery document.
func (m *MockAPIClient) ProofOfDelivery(ctx context.Context, bearer string, req *PODRequest) (*APIResponse, error) {
	if err := m.before(&m.PODCalls); err != nil {
		return nil, err
	}
	if m.OnProofOfDelivery != nil {
		return m.OnProofOfDelivery(ctx, bearer, req)
	}
	doc := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock proof of delivery"))
	body := fmt.Sprintf(`{"output": {"documents": ["%s"]}}`, doc)
	return &APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
