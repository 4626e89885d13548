package carrier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrAccountNotFound indicates the requested account has no registered gateway.
var ErrAccountNotFound = errors.New("account not found")

// Registry manages gateway instances, one per carrier credential. Callers
// that ship on several accounts register each account's gateway here and fan
// quote requests out across them.
type Registry struct {
	gateways map[string]Gateway
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[string]Gateway),
	}
}

// Register adds a gateway for an account id, replacing any previous one.
func (r *Registry) Register(accountID string, g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[accountID] = g
}

// Get returns the gateway registered for an account id.
func (r *Registry) Get(accountID string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.gateways[accountID]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
}

// AccountIDs returns the ids of all registered accounts.
func (r *Registry) AccountIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.gateways))
	for id := range r.gateways {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered accounts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.gateways)
}

// AccountQuotes pairs one account's quotes with the account they came from.
type AccountQuotes struct {
	AccountID string
	Quotes    []RateQuote
}

// QuoteAll fetches quotes from every registered account in parallel. Errors
// from individual accounts are collected but don't fail the whole request;
// gateways keep their own per-instance token state so no cross-instance
// coordination is needed.
func (r *Registry) QuoteAll(ctx context.Context, req *QuoteRequest) ([]AccountQuotes, []error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.gateways))
	gws := make([]Gateway, 0, len(r.gateways))
	for id, g := range r.gateways {
		ids = append(ids, id)
		gws = append(gws, g)
	}
	r.mu.RUnlock()

	if len(gws) == 0 {
		return nil, []error{ErrAccountNotFound}
	}

	results := make([]AccountQuotes, 0, len(gws))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for i := range gws {
		id, gw := ids[i], gws[i]
		g.Go(func() error {
			quotes, err := gw.Quote(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				return nil // keep quoting the other accounts
			}
			results = append(results, AccountQuotes{AccountID: id, Quotes: quotes})
			return nil
		})
	}

	g.Wait()
	return results, errs
}
