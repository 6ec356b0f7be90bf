package reminder

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"go.uber.org/zap"
)

type fakeReservationSource struct {
	mu        sync.Mutex
	byID      map[int64]*model.Reservation
	confirmed []*model.Reservation
}

func (f *fakeReservationSource) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeReservationSource) GetConfirmedFuture(ctx context.Context, now time.Time) ([]*model.Reservation, error) {
	return f.confirmed, nil
}

type fakeGuestSource struct {
	byID map[int64]*model.Guest
}

func (f *fakeGuestSource) GetByID(ctx context.Context, id int64) (*model.Guest, error) {
	return f.byID[id], nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	ch   chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan string, 8)}
}

func (f *fakeNotifier) Send(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	f.sent = append(f.sent, text)
	f.mu.Unlock()
	f.ch <- text
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func confirmedReservation(id int64, startsAt time.Time) *model.Reservation {
	return &model.Reservation{
		ID:       id,
		GuestID:  7,
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(2 * time.Hour),
		Status:   model.ReservationStatusConfirmed,
	}
}

func newTestScheduler(lead time.Duration, source *fakeReservationSource, notifier *fakeNotifier) *Scheduler {
	guests := &fakeGuestSource{byID: map[int64]*model.Guest{7: {ID: 7, ChatID: 700}}}
	return New(source, guests, notifier, lead, "Тестовый зал", zap.NewNop())
}

func timerCount(s *Scheduler) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func waitForSend(t *testing.T, notifier *fakeNotifier) string {
	t.Helper()
	select {
	case text := <-notifier.ch:
		return text
	case <-time.After(3 * time.Second):
		t.Fatal("reminder not delivered in time")
		return ""
	}
}

func TestScheduleFiresReminder(t *testing.T) {
	startsAt := time.Now().Add(100 * time.Millisecond)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, startsAt)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(50*time.Millisecond, source, notifier)
	defer s.Stop()

	s.Schedule(9, 700, startsAt)

	text := waitForSend(t, notifier)
	if !strings.Contains(text, "№9") || !strings.Contains(text, "Тестовый зал") {
		t.Errorf("reminder text = %q, want reservation number and venue name", text)
	}
}

func TestScheduleImmediateWhenLeadAlreadyPassed(t *testing.T) {
	// До визита меньше, чем lead: напоминание уходит сразу
	startsAt := time.Now().Add(10 * time.Second)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, startsAt)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(time.Hour, source, notifier)
	defer s.Stop()

	s.Schedule(9, 700, startsAt)

	waitForSend(t, notifier)
	if got := timerCount(s); got != 0 {
		t.Errorf("timers = %d, want 0 after immediate fire", got)
	}
}

func TestSchedulePastStartDoesNothing(t *testing.T) {
	startsAt := time.Now().Add(-time.Minute)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, startsAt)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(time.Hour, source, notifier)
	defer s.Stop()

	s.Schedule(9, 700, startsAt)

	if got := timerCount(s); got != 0 {
		t.Errorf("timers = %d, want 0 for a reservation in the past", got)
	}
	time.Sleep(50 * time.Millisecond)
	if notifier.count() != 0 {
		t.Errorf("sent = %d, want 0", notifier.count())
	}
}

func TestRescheduleSupersedesPreviousTimer(t *testing.T) {
	farFuture := time.Now().Add(time.Hour)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, farFuture)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(0, source, notifier)
	defer s.Stop()

	// Перенос брони: второй вызов снимает первый таймер
	s.Schedule(9, 700, time.Now().Add(60*time.Millisecond))
	s.Schedule(9, 700, time.Now().Add(150*time.Millisecond))

	waitForSend(t, notifier)
	time.Sleep(150 * time.Millisecond)
	if got := notifier.count(); got != 1 {
		t.Errorf("sent = %d, want exactly 1 after reschedule", got)
	}
}

func TestRescheduleIgnoresLateFiringOfReplacedTimer(t *testing.T) {
	farFuture := time.Now().Add(time.Hour)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, farFuture)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(0, source, notifier)
	defer s.Stop()

	s.Schedule(9, 700, time.Now().Add(10*time.Hour))
	s.mu.Lock()
	replaced := s.timers[9]
	s.mu.Unlock()

	s.Schedule(9, 700, time.Now().Add(300*time.Millisecond))

	// Снятый таймер всё же срабатывает, уже после замены
	replaced.Reset(0)
	time.Sleep(50 * time.Millisecond)

	if got := notifier.count(); got != 0 {
		t.Fatalf("sent = %d, want 0 from the replaced timer", got)
	}
	if got := timerCount(s); got != 1 {
		t.Fatalf("timers = %d, want the replacement to stay armed", got)
	}

	waitForSend(t, notifier)
	time.Sleep(100 * time.Millisecond)
	if got := notifier.count(); got != 1 {
		t.Errorf("sent = %d, want exactly 1 from the replacement timer", got)
	}
}

func TestStopCancelsReplacementAfterLateFiring(t *testing.T) {
	farFuture := time.Now().Add(time.Hour)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{9: confirmedReservation(9, farFuture)}}
	notifier := newFakeNotifier()
	s := newTestScheduler(0, source, notifier)

	s.Schedule(9, 700, time.Now().Add(10*time.Hour))
	s.mu.Lock()
	replaced := s.timers[9]
	s.mu.Unlock()

	s.Schedule(9, 700, time.Now().Add(5*time.Hour))

	replaced.Reset(0)
	time.Sleep(50 * time.Millisecond)

	s.Stop()
	if got := timerCount(s); got != 0 {
		t.Errorf("timers = %d, want 0 after Stop", got)
	}
	time.Sleep(50 * time.Millisecond)
	if got := notifier.count(); got != 0 {
		t.Errorf("sent = %d, want 0", got)
	}
}

func TestFireSkipsStaleReservation(t *testing.T) {
	startsAt := time.Now().Add(time.Hour)

	canceled := confirmedReservation(1, startsAt)
	canceled.Status = model.ReservationStatusCanceled
	past := confirmedReservation(2, time.Now().Add(-time.Minute))

	source := &fakeReservationSource{byID: map[int64]*model.Reservation{1: canceled, 2: past}}
	notifier := newFakeNotifier()
	s := newTestScheduler(time.Hour, source, notifier)

	s.fire(1, 700) // отменена
	s.fire(2, 700) // визит уже прошёл
	s.fire(3, 700) // брони нет вовсе

	if notifier.count() != 0 {
		t.Errorf("sent = %d, want 0 for stale reservations", notifier.count())
	}
}

func TestRecoverReschedulesConfirmed(t *testing.T) {
	startsAt := time.Now().Add(time.Hour)
	first := confirmedReservation(1, startsAt)
	second := confirmedReservation(2, startsAt.Add(time.Hour))
	orphan := confirmedReservation(3, startsAt)
	orphan.GuestID = 999 // гость не найдётся

	source := &fakeReservationSource{
		byID:      map[int64]*model.Reservation{1: first, 2: second, 3: orphan},
		confirmed: []*model.Reservation{first, second, orphan},
	}
	notifier := newFakeNotifier()
	s := newTestScheduler(10*time.Minute, source, notifier)
	defer s.Stop()

	scheduled, err := s.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if scheduled != 2 {
		t.Errorf("Recover() = %d, want 2", scheduled)
	}
	if got := timerCount(s); got != 2 {
		t.Errorf("timers = %d, want 2", got)
	}
}

func TestStopDropsAllTimers(t *testing.T) {
	startsAt := time.Now().Add(time.Hour)
	source := &fakeReservationSource{byID: map[int64]*model.Reservation{}}
	notifier := newFakeNotifier()
	s := newTestScheduler(10*time.Minute, source, notifier)

	s.Schedule(1, 700, startsAt)
	s.Schedule(2, 700, startsAt.Add(time.Hour))
	if got := timerCount(s); got != 2 {
		t.Fatalf("timers = %d, want 2 before Stop", got)
	}

	s.Stop()
	if got := timerCount(s); got != 0 {
		t.Errorf("timers = %d, want 0 after Stop", got)
	}
}

func TestFormatLead(t *testing.T) {
	tests := []struct {
		lead time.Duration
		want string
	}{
		{lead: 2 * time.Hour, want: "2 ч"},
		{lead: time.Hour, want: "1 ч"},
		{lead: 90 * time.Minute, want: "90 мин"},
		{lead: 30 * time.Minute, want: "30 мин"},
	}

	for _, tt := range tests {
		if got := formatLead(tt.lead); got != tt.want {
			t.Errorf("formatLead(%v) = %q, want %q", tt.lead, got, tt.want)
		}
	}
}
