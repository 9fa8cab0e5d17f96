package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/strokewatch/platform/internal/shared/types"
)

func TestSendAndInbox(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryStore())

	from := types.NewID()
	to := types.NewID()

	m, err := service.Send(ctx, from, to, "Keep it up", "You are doing great!", MessageEncouragement)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Type != MessageEncouragement {
		t.Errorf("Expected type %s, got %s", MessageEncouragement, m.Type)
	}
	if m.IsRead {
		t.Error("New messages must start unread")
	}

	inbox, _ := service.Inbox(ctx, to)
	if len(inbox) != 1 {
		t.Fatalf("Expected 1 message in inbox, got %d", len(inbox))
	}

	sent, _ := service.Sent(ctx, from)
	if len(sent) != 1 {
		t.Fatalf("Expected 1 sent message, got %d", len(sent))
	}

	otherInbox, _ := service.Inbox(ctx, from)
	if len(otherInbox) != 0 {
		t.Error("Sender's inbox must not contain their own sent message")
	}
}

func TestSendDefaultsToGeneral(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryStore())

	m, _ := service.Send(ctx, types.NewID(), types.NewID(), "hi", "hello", "")
	if m.Type != MessageGeneral {
		t.Errorf("Expected type %s, got %s", MessageGeneral, m.Type)
	}
}

func TestMarkReadOneWay(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryStore())
	to := types.NewID()

	m, _ := service.Send(ctx, types.NewID(), to, "hi", "hello", MessageGeneral)

	for i := 0; i < 3; i++ {
		read, err := service.MarkRead(ctx, m.ID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !read.IsRead {
			t.Error("Message must stay read")
		}
	}

	messages, _, _ := service.UnreadCounts(ctx, to)
	if messages != 0 {
		t.Errorf("Expected 0 unread messages, got %d", messages)
	}
}

func TestMarkReadUnknownMessage(t *testing.T) {
	service := NewService(NewMemoryStore())

	if _, err := service.MarkRead(context.Background(), types.NewID()); err == nil {
		t.Error("Expected error for unknown message")
	}
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC) }
	service := NewServiceWithClock(NewMemoryStore(), clock)
	user := types.NewID()

	n, err := service.Notify(ctx, user, "Health reassessment due", "Please submit new data.", NotificationReminder)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n.Type != NotificationReminder {
		t.Errorf("Expected type %s, got %s", NotificationReminder, n.Type)
	}
	if !n.CreatedAt.Equal(clock()) {
		t.Errorf("Expected created at %v, got %v", clock(), n.CreatedAt)
	}

	_, notifications, _ := service.UnreadCounts(ctx, user)
	if notifications != 1 {
		t.Fatalf("Expected 1 unread notification, got %d", notifications)
	}

	service.MarkNotificationRead(ctx, n.ID)

	_, notifications, _ = service.UnreadCounts(ctx, user)
	if notifications != 0 {
		t.Errorf("Expected 0 unread notifications, got %d", notifications)
	}
}
