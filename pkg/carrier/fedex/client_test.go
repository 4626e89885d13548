package fedex_test

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/shiplink/fedexgate/pkg/audit"
	"github.com/shiplink/fedexgate/pkg/carrier"
	"github.com/shiplink/fedexgate/pkg/carrier/fedex"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, mockAPI *fedex.MockAPIClient) (*fedex.Client, *audit.MemorySink) {
	t.Helper()
	logger := otelzap.New(zap.NewNop())
	sink := audit.NewMemorySink()
	client := fedex.NewWithAPIClient(
		fedex.Config{LabelDir: t.TempDir()},
		carrier.Credential{
			AccountID:     "acct-1",
			AccountNumber: "510087100",
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
		},
		mockAPI,
		sink,
		logger,
		nil,
	)
	return client, sink
}

func TestClient_Quote_AllServices(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	req := &carrier.QuoteRequest{
		Shipper: carrier.Party{
			Address: carrier.Address{
				StreetLines: []string{"Hauptstrasse 1"},
				City:        "Berlin",
				PostalCode:  "10115",
				CountryCode: "DE",
			},
		},
		DestinationPostal:  "10001",
		DestinationCountry: "US",
		WeightKG:           2.5,
	}

	quotes, err := client.Quote(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, carrier.ServiceInternationalPriority, quotes[0].Service)
	assert.Equal(t, 74.2, quotes[0].Amount)
	assert.Equal(t, "EUR", quotes[0].Currency)
	assert.Equal(t, carrier.ServiceInternationalEconomy, quotes[1].Service)
	assert.Equal(t, 51.85, quotes[1].Amount)
	for _, q := range quotes {
		assert.Greater(t, q.Amount, 0.0)
		assert.NotEmpty(t, q.Currency)
	}
}

func TestClient_Quote_SpecificService(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		assert.Equal(t, "INTERNATIONAL_PRIORITY", req.RequestedShipment.ServiceType)
		assert.Empty(t, req.RateRequestTypes)
		body := `{"output":{"rateReplyDetails":[
			{"serviceType":"INTERNATIONAL_PRIORITY","ratedShipmentDetails":[{"totalNetCharge":{"amount":88.1,"currency":"EUR"}}]}
		]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	quotes, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
		Service:            carrier.ServiceInternationalPriority,
	})

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, carrier.ServiceInternationalPriority, quotes[0].Service)
	assert.Equal(t, 88.1, quotes[0].Amount)
}

func TestClient_Quote_UnsupportedService_NoNetworkCall(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, sink := newTestClient(t, mockAPI)

	_, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
		Service:            carrier.ServiceType("NO_SUCH_SERVICE"),
	})

	require.Error(t, err)
	assert.True(t, carrier.IsUnsupportedService(err))
	assert.Equal(t, 0, mockAPI.TokenCalls)
	assert.Equal(t, 0, mockAPI.RateCalls)
	assert.Equal(t, 0, sink.Len())
}

func TestClient_Quote_SkipsUnpricedEntries(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		body := `{"output":{"rateReplyDetails":[
			{"serviceType":"INTERNATIONAL_PRIORITY","ratedShipmentDetails":[{"totalNetCharge":{"amount":74.2,"currency":"EUR"}}]},
			{"serviceType":"INTERNATIONAL_FIRST","ratedShipmentDetails":[]},
			{"serviceType":"INTERNATIONAL_ECONOMY","ratedShipmentDetails":[{"totalNetCharge":{"amount":51.85,"currency":"EUR"}}]}
		]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	quotes, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
	})

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, carrier.ServiceInternationalPriority, quotes[0].Service)
	assert.Equal(t, carrier.ServiceInternationalEconomy, quotes[1].Service)
}

func TestClient_Quote_UnknownCarrierServicePassesThrough(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		body := `{"output":{"rateReplyDetails":[
			{"serviceType":"FEDEX_FUTURE_SERVICE","ratedShipmentDetails":[{"totalNetCharge":{"amount":10.0,"currency":"EUR"}}]}
		]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	quotes, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
	})

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, carrier.ServiceType("FEDEX_FUTURE_SERVICE"), quotes[0].Service)
}

func TestClient_Quote_RateMissingForRequestedService(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(`{"output":{"rateReplyDetails":[]}}`)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
		Service:            carrier.ServiceInternationalEconomy,
	})

	require.Error(t, err)
	assert.True(t, carrier.IsCarrier(err))
}

func TestClient_Quote_RejectedStatus(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusBadRequest, Body: []byte(`{"errors":[{"code":"RATE.ERROR"}]}`)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.Quote(context.Background(), &carrier.QuoteRequest{
		DestinationCountry: "US",
		WeightKG:           1,
	})

	require.Error(t, err)
	assert.True(t, carrier.IsCarrier(err))
}

func TestClient_TokenReusedAcrossCalls(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)
	ctx := context.Background()

	_, err := client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.NoError(t, err)
	_, err = client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, mockAPI.TokenCalls)
	assert.Equal(t, 2, mockAPI.RateCalls)
}

func TestClient_UnauthorizedDropsCachedToken(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnRates = func(ctx context.Context, bearer string, req *fedex.RateRequest) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusUnauthorized, Body: []byte(`{"errors":[{"code":"NOT.AUTHORIZED.ERROR"}]}`)}, nil
	}
	client, _ := newTestClient(t, mockAPI)
	ctx := context.Background()

	_, err := client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.Error(t, err)
	_, err = client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.Error(t, err)

	// The 401 invalidated the cached token, so the second call exchanged again.
	assert.Equal(t, 2, mockAPI.TokenCalls)
}

func TestClient_AuthFailure(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnToken = func(ctx context.Context, form url.Values) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusUnauthorized, Body: []byte(`{"errors":[{"code":"NOT.AUTHORIZED.ERROR"}]}`)}, nil
	}
	client, sink := newTestClient(t, mockAPI)

	_, err := client.Quote(context.Background(), &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})

	require.Error(t, err)
	assert.True(t, carrier.IsAuth(err))
	assert.Equal(t, 0, mockAPI.RateCalls)

	// The rejected exchange itself is still audited.
	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, fedex.EndpointToken, records[0].Endpoint)
	require.NotNil(t, records[0].StatusCode)
	assert.Equal(t, http.StatusUnauthorized, *records[0].StatusCode)
}

func TestClient_TransportFailureAudited(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client, sink := newTestClient(t, mockAPI)

	_, err := client.Quote(context.Background(), &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})

	require.Error(t, err)
	assert.True(t, carrier.IsAuth(err))

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Nil(t, records[0].StatusCode)
	assert.Contains(t, records[0].ResponsePayload, "simulated transport error")
}

func TestClient_AuditRecordsMatchOutboundCalls(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, sink := newTestClient(t, mockAPI)
	ctx := context.Background()

	// Fresh token: one exchange plus the rate call.
	_, err := client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.NoError(t, err)
	require.Equal(t, 2, sink.Len())

	// Cached token: only the rate call.
	_, err = client.Quote(ctx, &carrier.QuoteRequest{DestinationCountry: "US", WeightKG: 1})
	require.NoError(t, err)
	require.Equal(t, 3, sink.Len())

	records := sink.Records()
	assert.Equal(t, fedex.EndpointToken, records[0].Endpoint)
	assert.Equal(t, fedex.EndpointRates, records[1].Endpoint)
	assert.Equal(t, fedex.EndpointRates, records[2].Endpoint)
	for _, rec := range records {
		assert.Equal(t, "acct-1", rec.AccountID)
		assert.Equal(t, http.MethodPost, rec.Method)
		assert.NotEmpty(t, rec.RequestPayload)
		require.NotNil(t, rec.StatusCode)
		assert.Equal(t, http.StatusOK, *rec.StatusCode)
	}
}

func TestClient_Ship_Success(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	result, err := client.Ship(context.Background(), &carrier.ShipmentRequest{
		ShipmentID: "SHIP-1001",
		Recipient: carrier.Party{
			Contact: carrier.Contact{PersonName: "Jane Receiver"},
			Address: carrier.Address{
				StreetLines: []string{"456 Oak Ave"},
				City:        "New York",
				PostalCode:  "10001",
				CountryCode: "US",
			},
		},
		Service:  carrier.ServiceInternationalPriority,
		WeightKG: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "794644790138", result.TrackingNumber)

	content, err := os.ReadFile(result.LabelPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "%PDF")
	assert.Equal(t, "label_SHIP-1001.pdf", filepath.Base(result.LabelPath))
}

func TestClient_Ship_LabelFallback(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, bearer string, req *fedex.ShipRequest) (*fedex.APIResponse, error) {
		body := `{"output":{"transactionShipments":[{"masterTrackingNumber":"794600000001","pieceResponses":[]}]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	result, err := client.Ship(context.Background(), &carrier.ShipmentRequest{
		ShipmentID: "SHIP-2002",
		Recipient: carrier.Party{
			Address: carrier.Address{City: "Paris", CountryCode: "FR"},
		},
		Service:  carrier.ServiceInternationalEconomy,
		WeightKG: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "794600000001", result.TrackingNumber)

	content, err := os.ReadFile(result.LabelPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "SHIP-2002")
	assert.Contains(t, string(content), "Paris, FR")
}

func TestClient_Ship_MissingTrackingNumber(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, bearer string, req *fedex.ShipRequest) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(`{"output":{"transactionShipments":[]}}`)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.Ship(context.Background(), &carrier.ShipmentRequest{
		ShipmentID: "SHIP-3003",
		Service:    carrier.ServiceInternationalPriority,
		WeightKG:   1,
	})

	require.Error(t, err)
	assert.True(t, carrier.IsCarrier(err))
}

func TestClient_Ship_ReturnShipment(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	var captured *fedex.ShipRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, bearer string, req *fedex.ShipRequest) (*fedex.APIResponse, error) {
		captured = req
		body := `{"output":{"transactionShipments":[{"masterTrackingNumber":"794600000002"}]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.Ship(context.Background(), &carrier.ShipmentRequest{
		ShipmentID:      "SHIP-4004",
		Service:         carrier.ServiceInternationalEconomy,
		WeightKG:        1,
		IsReturn:        true,
		ReturnReference: "RMA-1",
	})

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "INTERNATIONAL_PRIORITY", captured.RequestedShipment.ServiceType)
	require.NotNil(t, captured.RequestedShipment.ReturnShipmentDetail)
	assert.Equal(t, "PRINT_RETURN_LABEL", captured.RequestedShipment.ReturnShipmentDetail.ReturnType)
	require.NotNil(t, captured.RequestedShipment.ReturnShipmentDetail.RMA)
	assert.Equal(t, "RMA-1", captured.RequestedShipment.ReturnShipmentDetail.RMA.Reason)
}

func TestClient_Ship_FreightCarriesTotalWeight(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	var captured *fedex.ShipRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, bearer string, req *fedex.ShipRequest) (*fedex.APIResponse, error) {
		captured = req
		body := `{"output":{"transactionShipments":[{"masterTrackingNumber":"794600000003"}]}}`
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	_, err := client.Ship(context.Background(), &carrier.ShipmentRequest{
		ShipmentID: "SHIP-5005",
		Service:    carrier.ServiceInternationalPriorityFreight,
		WeightKG:   120,
	})

	require.NoError(t, err)
	require.NotNil(t, captured)
	require.NotNil(t, captured.RequestedShipment.TotalWeight)
	assert.Equal(t, 120.0, *captured.RequestedShipment.TotalWeight)
}

func TestClient_Track_Success(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	detail, err := client.Track(context.Background(), "794644790138")

	require.NoError(t, err)
	require.Contains(t, detail, "output")
}

func TestClient_ProofOfDelivery_Success(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)
	savePath := filepath.Join(t.TempDir(), "pod.pdf")

	path, err := client.ProofOfDelivery(context.Background(), "794644790138", savePath)

	require.NoError(t, err)
	assert.Equal(t, savePath, path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "%PDF")
}

func TestClient_ProofOfDelivery_MissingContentPersistsRawBody(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnProofOfDelivery = func(ctx context.Context, bearer string, req *fedex.PODRequest) (*fedex.APIResponse, error) {
		return &fedex.APIResponse{StatusCode: http.StatusOK, Body: []byte(`{"output":{"documents":[]}}`)}, nil
	}
	client, _ := newTestClient(t, mockAPI)
	savePath := filepath.Join(t.TempDir(), "pod.pdf")

	path, err := client.ProofOfDelivery(context.Background(), "794644790138", savePath)

	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "documents")
}

func TestClient_Name(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)
	assert.Equal(t, "fedex", client.Name())
}
