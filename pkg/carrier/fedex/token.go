package fedex

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/shiplink/fedexgate/pkg/audit"
	"github.com/shiplink/fedexgate/pkg/carrier"
)

// tokenSafetyMargin is how long before expiry a cached token stops being
// reused. A token inside the margin is treated as already expired.
const tokenSafetyMargin = 30 * time.Second

var errTokenMissing = errors.New("access token missing in response")

// tokenSource caches one (token, expiry) pair per gateway instance. The
// mutex keeps at most one refresh in flight; concurrent callers block and
// reuse its result. Tokens are never persisted and die with the instance.
type tokenSource struct {
	api     APIClient
	cred    carrier.Credential
	auditor *audit.Logger
	now     func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(api APIClient, cred carrier.Credential, auditor *audit.Logger) *tokenSource {
	return &tokenSource{
		api:     api,
		cred:    cred,
		auditor: auditor,
		now:     time.Now,
	}
}

// bearer returns a valid bearer token, exchanging credentials when the cache
// is empty or inside the safety margin. The cached fast path makes no
// network call. Every exchange is audited, including failures; a rejected
// exchange or a missing token field is a fatal AuthError and is not retried
// here.
func (t *tokenSource) bearer(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry.Add(-tokenSafetyMargin)) {
		return t.token, nil
	}

	form := buildTokenForm(t.cred)
	resp, err := t.api.Token(ctx, form)
	if err != nil {
		t.auditor.Log(ctx, t.cred.AccountID, EndpointToken, http.MethodPost, form.Encode(), nil, err.Error())
		return "", &carrier.AuthError{Carrier: carrierName, Cause: err}
	}
	t.auditor.Log(ctx, t.cred.AccountID, EndpointToken, http.MethodPost, form.Encode(), &resp.StatusCode, string(resp.Body))

	if resp.StatusCode != http.StatusOK {
		return "", &carrier.AuthError{
			Carrier:    carrierName,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	token, expiresIn, ok := parseToken(resp.Body)
	if !ok {
		return "", &carrier.AuthError{
			Carrier: carrierName,
			Body:    string(resp.Body),
			Cause:   errTokenMissing,
		}
	}

	t.token = token
	t.expiry = t.now().Add(time.Duration(expiresIn) * time.Second)
	return token, nil
}

// invalidate drops the cached token so the next call performs a fresh
// exchange. Called when the carrier rejects a bearer mid-lifetime.
func (t *tokenSource) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.expiry = time.Time{}
}
