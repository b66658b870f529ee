package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"operator-panel/internal/domain"
)

type stubApplier struct {
	mu    sync.Mutex
	calls []domain.CheckoutAddress
	err   error
}

func (s *stubApplier) ApplyShippingAddress(_ context.Context, addr domain.CheckoutAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, addr)
	return s.err
}

func (s *stubApplier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

const addressPayload = `{"address1":"1-2-3 Ginza","city":"Chuo-ku","countryCode":"JP","provinceCode":"JP-13","zip":"104-0061"}`

func TestApplicator_AppliesExactlyOnce(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	a.Notify(context.Background(), addressPayload)
	a.Notify(context.Background(), addressPayload)

	if got := applier.callCount(); got != 1 {
		t.Fatalf("apply called %d times, want exactly 1", got)
	}
	if a.State() != StateAppliedSuccess {
		t.Fatalf("state = %s, want applied", a.State())
	}
}

func TestApplicator_PayloadWithoutAddress1StaysIdle(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	a.Notify(context.Background(), `{"city":"Chuo-ku"}`)
	a.Notify(context.Background(), `{}`)

	if applier.callCount() != 0 {
		t.Fatalf("apply must not be called without a primary address line")
	}
	if a.State() != StateIdle {
		t.Fatalf("state = %s, want idle", a.State())
	}
}

func TestApplicator_MalformedPayloadStaysIdle(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	a.Notify(context.Background(), "not json")
	a.Notify(context.Background(), "")

	if applier.callCount() != 0 || a.State() != StateIdle {
		t.Fatalf("malformed payloads must leave the machine idle")
	}
}

func TestApplicator_FailureIsTerminal(t *testing.T) {
	applier := &stubApplier{err: errors.New("checkout rejected address")}
	a := NewApplicator(applier, nil)

	a.Notify(context.Background(), addressPayload)
	if a.State() != StateAppliedFailed {
		t.Fatalf("state = %s, want failed", a.State())
	}

	// No retry even when more data arrives.
	a.Notify(context.Background(), addressPayload)
	if got := applier.callCount(); got != 1 {
		t.Fatalf("apply retried after terminal failure (%d calls)", got)
	}
}

func TestApplicator_DefaultsCountryCode(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	a.Notify(context.Background(), `{"address1":"1-2-3 Ginza"}`)

	if applier.callCount() != 1 {
		t.Fatalf("expected one apply call")
	}
	if got := applier.calls[0].CountryCode; got != domain.DefaultCountryCode {
		t.Fatalf("countryCode = %q, want %q", got, domain.DefaultCountryCode)
	}
}

func TestApplicator_WatchGuestChannelDrivesApply(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	metafields := NewValueSignal("")
	cartAttrs := NewValueSignal("")
	stop := a.Watch(context.Background(), metafields, cartAttrs)
	defer stop()

	if applier.callCount() != 0 {
		t.Fatalf("empty sources must not trigger an apply")
	}

	cartAttrs.Set(addressPayload)
	if applier.callCount() != 1 {
		t.Fatalf("guest channel should drive the transition")
	}

	// The other source waking up later must not re-apply.
	metafields.Set(addressPayload)
	if got := applier.callCount(); got != 1 {
		t.Fatalf("apply called %d times after both sources fired, want 1", got)
	}
}

func TestApplicator_WatchReadsInitialValue(t *testing.T) {
	applier := &stubApplier{}
	a := NewApplicator(applier, nil)

	metafields := NewValueSignal(addressPayload)
	stop := a.Watch(context.Background(), metafields, nil)
	defer stop()

	if applier.callCount() != 1 {
		t.Fatalf("initial value should drive the transition")
	}
}

func TestCartAttributeBag(t *testing.T) {
	bag := CartAttributeBag{
		AttrOperatorName:               " 山田 ",
		AttrShippingAddress:            addressPayload,
		AttrCustomerPrefix + "card_id": "7",
		AttrCustomerPrefix + "points":  "150",
		"unrelated":                    "x",
	}

	if bag.OperatorName() != "山田" {
		t.Fatalf("operator name = %q", bag.OperatorName())
	}
	if bag.ShippingAddressPayload() != addressPayload {
		t.Fatalf("shipping address payload mismatch")
	}
	fields := bag.CustomerFields()
	if len(fields) != 2 || fields["card_id"] != "7" || fields["points"] != "150" {
		t.Fatalf("customer fields = %#v", fields)
	}
}
