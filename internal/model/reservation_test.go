package model

import "testing"

func TestReservationHeldTableIDs(t *testing.T) {
	main, joined := int64(3), int64(4)

	tests := []struct {
		name string
		res  Reservation
		want []int64
	}{
		{name: "no tables", res: Reservation{}, want: nil},
		{name: "main only", res: Reservation{TableID: &main}, want: []int64{3}},
		{name: "joined pair", res: Reservation{TableID: &main, JoinedTableID: &joined}, want: []int64{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.res.HeldTableIDs()
			if len(got) != len(tt.want) {
				t.Fatalf("HeldTableIDs() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("HeldTableIDs() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if ReservationStatusPending.IsTerminal() || ReservationStatusConfirmed.IsTerminal() {
		t.Error("pending/confirmed reported terminal")
	}
	if !ReservationStatusCanceled.IsTerminal() || !ReservationStatusStopped.IsTerminal() {
		t.Error("canceled/stopped not reported terminal")
	}
}

func TestStatusSets(t *testing.T) {
	holding := HoldingStatuses()
	if len(holding) != 2 {
		t.Fatalf("HoldingStatuses() = %v, want pending+confirmed", holding)
	}
	for _, s := range holding {
		if s.IsTerminal() {
			t.Errorf("terminal status %q holds a table", s)
		}
	}

	// Лимит считает все неотменённые заявки
	countable := CountableStatuses()
	seen := make(map[ReservationStatus]bool, len(countable))
	for _, s := range countable {
		seen[s] = true
	}
	if !seen[ReservationStatusPending] || !seen[ReservationStatusConfirmed] || !seen[ReservationStatusStopped] {
		t.Errorf("CountableStatuses() = %v, want pending+confirmed+stopped", countable)
	}
	if seen[ReservationStatusCanceled] {
		t.Errorf("CountableStatuses() includes canceled: %v", countable)
	}
}
