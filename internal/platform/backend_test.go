package platform

import "testing"

func TestNotificationString(t *testing.T) {
	tests := []struct {
		kind Notification
		want string
	}{
		{Shown, "shown"},
		{Hidden, "hidden"},
		{Closed, "closed"},
		{MoveResize, "move-resize"},
		{TitleChanged, "title-changed"},
		{Notification(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}

	if len(Notifications) != 5 {
		t.Fatalf("Notifications has %d kinds, want 5", len(Notifications))
	}
}
