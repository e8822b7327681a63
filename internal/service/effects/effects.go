// Package effects holds the collaborators invoked after a workflow write
// commits, and the Recorder that turns their failures into warnings.
package effects

import (
	"context"
	"fmt"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/domain/notification"
	"salescrm-service/internal/domain/quote"

	"go.uber.org/zap"
)

// ActivityLogger appends an immutable event to an entity's timeline.
type ActivityLogger interface {
	Log(ctx context.Context, req activity.LogRequest) error
}

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, req notification.CreateNotificationRequest) error
}

// QuoteInitiator creates a draft quote linked to an opportunity.
type QuoteInitiator interface {
	CreateDraft(ctx context.Context, req quote.DraftRequest) (*quote.Ref, error)
}

type Name string

const (
	ActivityLog  Name = "activity_log"
	Notification Name = "notification"
	DraftQuote   Name = "draft_quote"
)

// Warning reports a side effect that failed after the primary write committed.
type Warning struct {
	Effect  Name   `json:"effect"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Effect, w.Message)
}

// Recorder runs side effects best-effort and collects their failures.
// It is not safe for concurrent use; one Recorder serves one request.
type Recorder struct {
	logger   *zap.Logger
	warnings []Warning
}

func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger}
}

// Run invokes fn once. A returned error or panic becomes a warning.
func (r *Recorder) Run(name Name, fn func() error) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.add(name, fmt.Errorf("panic: %v", p))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		r.add(name, err)
		return false
	}
	return true
}

func (r *Recorder) add(name Name, err error) {
	r.logger.Warn("side effect failed",
		zap.String("effect", string(name)),
		zap.Error(err),
	)
	r.warnings = append(r.warnings, Warning{Effect: name, Message: err.Error()})
}

// Warnings returns the collected warnings, never nil.
func (r *Recorder) Warnings() []Warning {
	if r.warnings == nil {
		return []Warning{}
	}
	return append([]Warning(nil), r.warnings...)
}
