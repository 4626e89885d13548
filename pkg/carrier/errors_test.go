package carrier_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/shiplink/fedexgate/pkg/carrier"
)

func TestUnsupportedServiceError(t *testing.T) {
	err := &carrier.UnsupportedServiceError{Carrier: "fedex", Service: "BOGUS"}

	assert.Contains(t, err.Error(), "fedex")
	assert.Contains(t, err.Error(), "BOGUS")
	assert.True(t, carrier.IsUnsupportedService(err))
	assert.False(t, carrier.IsAuth(err))
	assert.False(t, carrier.IsCarrier(err))
}

func TestAuthError(t *testing.T) {
	err := &carrier.AuthError{Carrier: "fedex", StatusCode: 401, Body: `{"errors":[]}`}

	assert.Contains(t, err.Error(), "401")
	assert.True(t, carrier.IsAuth(err))
	assert.False(t, carrier.IsCarrier(err))
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &carrier.AuthError{Carrier: "fedex", Cause: cause}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCarrierError(t *testing.T) {
	err := &carrier.CarrierError{
		Carrier:    "fedex",
		Operation:  "quote",
		StatusCode: 503,
		Message:    "rate request rejected",
		Body:       `{"errors":[{"code":"SERVICE.UNAVAILABLE"}]}`,
	}

	assert.Contains(t, err.Error(), "quote")
	assert.Contains(t, err.Error(), "503")
	assert.True(t, carrier.IsCarrier(err))
	assert.False(t, carrier.IsAuth(err))
}

func TestCarrierError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &carrier.CarrierError{Carrier: "fedex", Operation: "ship", Message: "transport failure", Cause: cause}

	assert.True(t, errors.Is(err, cause))
}

func TestIsHelpers_MatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("quoting acct-1: %w",
		&carrier.AuthError{Carrier: "fedex", StatusCode: 401})

	assert.True(t, carrier.IsAuth(wrapped))
	assert.False(t, carrier.IsAuth(errors.New("plain")))
}
