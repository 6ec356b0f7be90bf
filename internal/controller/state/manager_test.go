package state

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBeginStartsDialog(t *testing.T) {
	sm := NewManager()

	draft := sm.Begin(42)
	if draft.ID == uuid.Nil {
		t.Error("Begin() draft ID is nil")
	}
	if got := sm.Step(42); got != StepDate {
		t.Errorf("Step() = %q, want %q", got, StepDate)
	}
	if _, ok := sm.Draft(42); !ok {
		t.Error("Draft() not found after Begin")
	}
}

func TestBeginReplacesPreviousDraft(t *testing.T) {
	sm := NewManager()

	first := sm.Begin(42)
	sm.Update(42, func(d *BookingDraft) { d.Name = "Мария" })
	sm.SetStep(42, StepPhone)

	second := sm.Begin(42)
	if second.ID == first.ID {
		t.Error("Begin() reused previous draft ID")
	}
	if got := sm.Step(42); got != StepDate {
		t.Errorf("Step() after restart = %q, want %q", got, StepDate)
	}
	draft, _ := sm.Draft(42)
	if draft.Name != "" {
		t.Errorf("draft.Name = %q, want empty after restart", draft.Name)
	}
}

func TestStepUnknownDialog(t *testing.T) {
	sm := NewManager()

	if got := sm.Step(42); got != StepNone {
		t.Errorf("Step(unknown) = %q, want %q", got, StepNone)
	}
	if _, ok := sm.Draft(42); ok {
		t.Error("Draft(unknown) found a session")
	}
}

func TestUpdateMutatesStoredDraft(t *testing.T) {
	sm := NewManager()
	sm.Begin(42)

	sm.Update(42, func(d *BookingDraft) {
		d.PartySize = 4
		d.Name = "Иван"
	})

	draft, ok := sm.Draft(42)
	if !ok {
		t.Fatal("Draft() not found")
	}
	if draft.PartySize != 4 || draft.Name != "Иван" {
		t.Errorf("draft = %+v, update lost", draft)
	}

	// Draft отдаёт копию: правка возвращённого значения не трогает сессию
	draft.PartySize = 99
	again, _ := sm.Draft(42)
	if again.PartySize != 4 {
		t.Errorf("stored draft mutated through returned copy: PartySize = %d", again.PartySize)
	}
}

func TestUpdateUnknownDialogIsNoop(t *testing.T) {
	sm := NewManager()

	sm.Update(42, func(d *BookingDraft) { d.Name = "Иван" })
	if _, ok := sm.Draft(42); ok {
		t.Error("Update(unknown) created a session")
	}
}

func TestSetStepNoneEndsDialog(t *testing.T) {
	sm := NewManager()
	sm.Begin(42)

	sm.SetStep(42, StepNone)
	if got := sm.Step(42); got != StepNone {
		t.Errorf("Step() = %q, want %q", got, StepNone)
	}
	if _, ok := sm.Draft(42); ok {
		t.Error("Draft() survived StepNone")
	}
}

func TestClearEndsDialog(t *testing.T) {
	sm := NewManager()
	sm.Begin(42)

	sm.Clear(42)
	if got := sm.Step(42); got != StepNone {
		t.Errorf("Step() after Clear = %q, want %q", got, StepNone)
	}
}

func TestExpireStale(t *testing.T) {
	sm := NewManager()
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	sm.now = func() time.Time { return base }
	sm.Begin(1)
	sm.Begin(2)

	// Второй диалог живёт: гость продолжает отвечать
	sm.now = func() time.Time { return base.Add(20 * time.Minute) }
	sm.Update(2, func(d *BookingDraft) { d.PartySize = 2 })

	sm.now = func() time.Time { return base.Add(35 * time.Minute) }
	if removed := sm.ExpireStale(DraftTTL); removed != 1 {
		t.Fatalf("ExpireStale() = %d, want 1", removed)
	}

	if _, ok := sm.Draft(1); ok {
		t.Error("stale dialog survived ExpireStale")
	}
	if _, ok := sm.Draft(2); !ok {
		t.Error("active dialog removed by ExpireStale")
	}
}
