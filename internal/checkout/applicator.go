// Package checkout contains the client-side address applicator: it watches
// the channels a checkout session exposes (account metafields for logged-in
// buyers, cart attributes for guests), and applies the imported shipping
// address to the live checkout exactly once.
package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"operator-panel/internal/domain"

	"go.uber.org/zap"
)

// Signal is an observable string value: an initial read plus change
// notifications. Unsubscribing is done through the returned cancel func.
type Signal interface {
	Value() string
	Subscribe(fn func(string)) (cancel func())
}

// AddressApplier mutates the in-progress checkout's shipping address.
type AddressApplier interface {
	ApplyShippingAddress(ctx context.Context, addr domain.CheckoutAddress) error
}

// State of the applicator's one-shot lifecycle.
type State int

const (
	StateIdle State = iota
	StateApplying
	StateAppliedSuccess
	StateAppliedFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplying:
		return "applying"
	case StateAppliedSuccess:
		return "applied"
	case StateAppliedFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures an Applicator.
type Option func(*Applicator)

// WithApplyTimeout bounds the apply call. Zero (the default) waits
// indefinitely, matching the platform's own behavior.
func WithApplyTimeout(d time.Duration) Option {
	return func(a *Applicator) { a.applyTimeout = d }
}

// Applicator applies an address payload to the checkout at most once per
// session instance. Both payload channels may notify it any number of
// times; the latch guarantees a single mutation so buyer edits are never
// overwritten afterwards.
type Applicator struct {
	applier      AddressApplier
	logger       *zap.Logger
	applyTimeout time.Duration

	mu      sync.Mutex
	state   State
	latched bool
}

// NewApplicator builds an Applicator around the injected capabilities.
func NewApplicator(applier AddressApplier, logger *zap.Logger, opts ...Option) *Applicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Applicator{applier: applier, logger: logger, state: StateIdle}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State reports the current lifecycle state.
func (a *Applicator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Watch reads the initial value of each source and subscribes for changes.
// Either source may be nil; only whichever one carries a payload drives
// the transition. The returned stop func cancels all subscriptions.
func (a *Applicator) Watch(ctx context.Context, sources ...Signal) (stop func()) {
	var cancels []func()
	for _, src := range sources {
		if src == nil {
			continue
		}
		src := src
		cancels = append(cancels, src.Subscribe(func(raw string) {
			a.Notify(ctx, raw)
		}))
		a.Notify(ctx, src.Value())
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// Notify feeds one raw payload into the state machine. Payloads without a
// primary address line leave the machine in Idle; the first qualifying
// payload wins the latch and triggers the apply call.
func (a *Applicator) Notify(ctx context.Context, raw string) {
	addr, ok := parseAddress(raw)
	if !ok {
		return
	}

	a.mu.Lock()
	if a.latched {
		a.mu.Unlock()
		return
	}
	a.latched = true
	a.state = StateApplying
	a.mu.Unlock()

	if a.applyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.applyTimeout)
		defer cancel()
	}

	err := a.applier.ApplyShippingAddress(ctx, addr)

	a.mu.Lock()
	if err != nil {
		a.state = StateAppliedFailed
	} else {
		a.state = StateAppliedSuccess
	}
	a.mu.Unlock()

	if err != nil {
		// Terminal; surfaced to the UI only, never retried.
		a.logger.Warn("apply shipping address failed", zap.Error(err))
	}
}

// parseAddress decodes the embedded JSON payload. Malformed payloads and
// payloads lacking address1 are not applicable.
func parseAddress(raw string) (domain.CheckoutAddress, bool) {
	var addr domain.CheckoutAddress
	if raw == "" {
		return addr, false
	}
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		return addr, false
	}
	if addr.Address1 == "" {
		return addr, false
	}
	if addr.CountryCode == "" {
		addr.CountryCode = domain.DefaultCountryCode
	}
	return addr, true
}
