package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/invoicing"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
)

// IssuedReceipts subscribes to ReceiptIssued and keeps every event it sees
type IssuedReceipts struct {
	mu     sync.Mutex
	issued []*invoicing.ReceiptIssuedEvent
}

func (r *IssuedReceipts) EventTypes() []string {
	return []string{invoicing.EventTypeReceiptIssued}
}

func (r *IssuedReceipts) Handle(_ context.Context, event shared.DomainEvent) error {
	if issued, ok := event.(*invoicing.ReceiptIssuedEvent); ok {
		r.mu.Lock()
		r.issued = append(r.issued, issued)
		r.mu.Unlock()
	}
	return nil
}

// Issued returns the recorded events in arrival order
func (r *IssuedReceipts) Issued() []*invoicing.ReceiptIssuedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*invoicing.ReceiptIssuedEvent(nil), r.issued...)
}

// WaitForCondition polls condition every interval until it holds or
// timeout passes, and reports the final result.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.After(timeout)
	for !condition() {
		select {
		case <-deadline:
			return condition()
		case <-ticker.C:
		}
	}
	return true
}

// WaitForReceipts waits until at least n receipts have been recorded
func WaitForReceipts(t *testing.T, r *IssuedReceipts, n int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool { return len(r.Issued()) >= n }, timeout, 10*time.Millisecond)
}
