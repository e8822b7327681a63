package testkit

import (
	"context"
	"fmt"
	"sync"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/domain/notification"
	"salescrm-service/internal/domain/quote"
	"salescrm-service/internal/service/effects"
)

var (
	_ effects.ActivityLogger = (*ActivityLog)(nil)
	_ effects.Notifier       = (*Notifier)(nil)
	_ effects.QuoteInitiator = (*Quotes)(nil)
)

// ActivityLog records every logged event. A non-nil Err fails every call.
type ActivityLog struct {
	mu      sync.Mutex
	Entries []activity.LogRequest
	Err     error
}

func (a *ActivityLog) Log(ctx context.Context, req activity.LogRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.Entries = append(a.Entries, req)
	return nil
}

// Events returns the event types logged for one entity, in order.
func (a *ActivityLog) Events(entity activity.EntityType, id int64) []activity.EventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []activity.EventType
	for _, e := range a.Entries {
		if e.EntityType == entity && e.EntityID == id {
			out = append(out, e.EventType)
		}
	}
	return out
}

// Notifier records every notification. A non-nil Err fails every call.
type Notifier struct {
	mu   sync.Mutex
	Sent []notification.CreateNotificationRequest
	Err  error
}

func (n *Notifier) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, req)
	return nil
}

// Quotes creates draft quotes in Store, so later existence checks see them.
type Quotes struct {
	Store *MemStore

	mu     sync.Mutex
	Drafts []quote.DraftRequest
	Err    error
}

func (q *Quotes) CreateDraft(ctx context.Context, req quote.DraftRequest) (*quote.Ref, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return nil, q.Err
	}
	q.Drafts = append(q.Drafts, req)
	if q.Store != nil {
		q.Store.AddQuote(req.OpportunityID)
	}
	n := len(q.Drafts)
	return &quote.Ref{ID: int64(n), QuoteNumber: fmt.Sprintf("Q-TEST-%04d", n)}, nil
}
