package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"salescrm-service/internal/domain/notification"
	wstypes "salescrm-service/internal/domain/websocket"
	xerrors "salescrm-service/internal/pkg/errors"
	ws "salescrm-service/internal/websocket"

	"github.com/google/uuid"
)

type memRepo struct {
	items     []notification.Notification
	createErr error
}

func (r *memRepo) Create(ctx context.Context, n *notification.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = int64(len(r.items) + 1)
	n.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.items = append(r.items, *n)
	return nil
}

func (r *memRepo) GetUserNotifications(ctx context.Context, tenantID uuid.UUID, identityID int64, filters *notification.NotificationListFilters) ([]notification.Notification, int64, error) {
	out := []notification.Notification{}
	for _, n := range r.items {
		if n.TenantID == tenantID && n.IdentityID == identityID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) MarkAsRead(ctx context.Context, tenantID uuid.UUID, id, identityID int64) error {
	for i := range r.items {
		n := &r.items[i]
		if n.ID == id && n.TenantID == tenantID && n.IdentityID == identityID && !n.IsRead {
			n.IsRead = true
			return nil
		}
	}
	return xerrors.Newf(xerrors.KindNotFound, "notification %d not found or already read", id)
}

func (r *memRepo) GetUnreadCount(ctx context.Context, tenantID uuid.UUID, identityID int64) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.TenantID == tenantID && n.IdentityID == identityID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type recordingPusher struct {
	pushed []*wstypes.NotificationData
	counts []int
}

func (p *recordingPusher) PushNotification(to ws.Recipient, data *wstypes.NotificationData) bool {
	p.pushed = append(p.pushed, data)
	return true
}

func (p *recordingPusher) PushUnreadCount(to ws.Recipient, count int) bool {
	p.counts = append(p.counts, count)
	return true
}

func TestNotifyStoresAndPushes(t *testing.T) {
	repo := &memRepo{}
	pusher := &recordingPusher{}
	svc := NewNotificationService(repo, pusher, nil)
	tenant := uuid.New()

	err := svc.Notify(context.Background(), notification.CreateNotificationRequest{
		TenantID:   tenant,
		IdentityID: 5,
		Title:      "Opportunity won",
		Category:   notification.CategorySales,
		Priority:   notification.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(repo.items) != 1 || len(pusher.pushed) != 1 {
		t.Fatalf("expected stored and pushed once, got %d/%d", len(repo.items), len(pusher.pushed))
	}
	if pusher.pushed[0].Priority != "high" || pusher.counts[0] != 1 {
		t.Fatalf("unexpected push %+v counts %v", pusher.pushed[0], pusher.counts)
	}
}

func TestNotifyDefaultsAndValidation(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, nil, nil)

	n, err := svc.CreateAndPush(context.Background(), notification.CreateNotificationRequest{IdentityID: 1, Title: "Hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Category != notification.CategorySystem || n.Priority != notification.PriorityMedium {
		t.Fatalf("expected defaults, got %s/%s", n.Category, n.Priority)
	}

	if err := svc.Notify(context.Background(), notification.CreateNotificationRequest{Title: "x"}); !errors.Is(err, xerrors.ErrMissingRequiredField) {
		t.Fatalf("expected missing recipient, got %v", err)
	}

	failing := NewNotificationService(&memRepo{createErr: errors.New("db down")}, nil, nil)
	if err := failing.Notify(context.Background(), notification.CreateNotificationRequest{IdentityID: 1, Title: "x"}); xerrors.KindOf(err) != xerrors.KindInternal {
		t.Fatalf("expected internal, got %v", err)
	}
}

func TestListAndMarkAsRead(t *testing.T) {
	repo := &memRepo{}
	pusher := &recordingPusher{}
	svc := NewNotificationService(repo, pusher, nil)
	tenant := uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.Notify(context.Background(), notification.CreateNotificationRequest{TenantID: tenant, IdentityID: 8, Title: "n"}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	filters := &notification.NotificationListFilters{PageSize: 2}
	list, err := svc.GetUserNotifications(context.Background(), tenant, 8, filters)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Page != 1 || list.TotalPages != 2 || list.Unread != 3 {
		t.Fatalf("unexpected page %+v", list)
	}

	count, err := svc.MarkAsRead(context.Background(), tenant, 2, 8)
	if err != nil {
		t.Fatalf("mark as read: %v", err)
	}
	if count != 2 || pusher.counts[len(pusher.counts)-1] != 2 {
		t.Fatalf("expected unread count 2, got %d", count)
	}

	if _, err := svc.MarkAsRead(context.Background(), uuid.New(), 1, 8); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected not found for another tenant, got %v", err)
	}
}
