package model

import "testing"

func TestTripStatus_Next_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from TripStatus
		want TripStatus
	}{
		{TripStatusUpcoming, TripStatusOngoing},
		{TripStatusOngoing, TripStatusCompleted},
		{TripStatusCompleted, TripStatusUpcoming},
		{TripStatusCancelled, TripStatusCancelled},
	}

	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestTripStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []TripStatus{TripStatusUpcoming, TripStatusOngoing, TripStatusCompleted, TripStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if TripStatus("departed").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestAmount_Coercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float64", 12.5, 12.5},
		{"int", 7, 7},
		{"int64", int64(3), 3},
		{"numeric string", "199.99", 199.99},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Amount(tt.in); got != tt.want {
				t.Errorf("Amount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewShareNotification_Message(t *testing.T) {
	t.Parallel()

	sharer := User{ID: "user:x", DisplayName: "Xenia"}

	n := NewShareNotification("user:f1", sharer, "shared_group:g1", 2)
	if n.Message != "Xenia shared 2 trips with you" {
		t.Errorf("unexpected message: %q", n.Message)
	}
	if n.Recipient != "user:f1" || n.SharerID != "user:x" || n.TripCount != 2 {
		t.Errorf("payload not populated: %+v", n)
	}
	if n.Read {
		t.Error("new notification should be unread")
	}

	single := NewShareNotification("user:f1", sharer, "shared_group:g1", 1)
	if single.Message != "Xenia shared 1 trip with you" {
		t.Errorf("unexpected singular message: %q", single.Message)
	}
}
