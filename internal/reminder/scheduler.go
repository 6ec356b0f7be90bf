package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"go.uber.org/zap"
)

// ReservationSource доступ к броням для проверки актуальности в момент
// срабатывания и для восстановления после рестарта.
type ReservationSource interface {
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	GetConfirmedFuture(ctx context.Context, now time.Time) ([]*model.Reservation, error)
}

// GuestSource разрешает гостя брони в телеграм-чат.
type GuestSource interface {
	GetByID(ctx context.Context, id int64) (*model.Guest, error)
}

// Notifier доставляет напоминание гостю.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// fetchTimeout ограничение на перечитывание брони и отправку в момент
// срабатывания.
const fetchTimeout = 10 * time.Second

// Scheduler держит по одному одноразовому таймеру на бронь. Повторное
// планирование для того же id снимает прежний таймер, поэтому напоминание
// не срабатывает дважды. Таймеры живут в памяти процесса; после рестарта
// их восстанавливает Recover, источник истины - само хранилище.
type Scheduler struct {
	reservations ReservationSource
	guests       GuestSource
	notifier     Notifier
	lead         time.Duration
	venueName    string
	logger       *zap.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
	now    func() time.Time
}

func New(
	reservations ReservationSource,
	guests GuestSource,
	notifier Notifier,
	lead time.Duration,
	venueName string,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		reservations: reservations,
		guests:       guests,
		notifier:     notifier,
		lead:         lead,
		venueName:    venueName,
		logger:       logger,
		timers:       make(map[int64]*time.Timer),
		now:          time.Now,
	}
}

// Schedule взводит напоминание на момент за lead до начала брони.
// Прежний таймер этой брони снимается. Колбэк снятого таймера, если он
// уже успел сработать, сверяет свой таймер с картой и выходит без
// отправки, поэтому напоминание не дублируется. Если момент напоминания
// уже прошёл, а визит ещё впереди, напоминание уходит сразу - так ведёт
// себя позднее подтверждение.
func (s *Scheduler) Schedule(reservationID, chatID int64, startsAt time.Time) {
	fireAt := startsAt.Add(-s.lead)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[reservationID]; ok {
		t.Stop()
		delete(s.timers, reservationID)
	}

	if !startsAt.After(now) {
		return
	}

	delay := fireAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[reservationID] != t {
			// Таймер уже снят или заменён более поздним Schedule
			s.mu.Unlock()
			return
		}
		delete(s.timers, reservationID)
		s.mu.Unlock()
		s.fire(reservationID, chatID)
	})
	s.timers[reservationID] = t

	s.logger.Debug("Reminder scheduled",
		zap.Int64("reservation_id", reservationID),
		zap.Time("fire_at", fireAt),
	)
}

// Recover восстанавливает напоминания после рестарта процесса по
// подтверждённым броням с началом в будущем. Возвращает число взведённых
// таймеров.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	rows, err := s.reservations.GetConfirmedFuture(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list confirmed future reservations: %w", err)
	}

	scheduled := 0
	for _, res := range rows {
		guest, err := s.guests.GetByID(ctx, res.GuestID)
		if err != nil || guest == nil {
			s.logger.Warn("Skipping reminder recovery, guest not found",
				zap.Int64("reservation_id", res.ID),
				zap.Int64("guest_id", res.GuestID),
				zap.Error(err),
			)
			continue
		}
		s.Schedule(res.ID, guest.ChatID, res.StartsAt)
		scheduled++
	}

	s.logger.Info("Startup reminders scheduled", zap.Int("count", scheduled))
	return scheduled, nil
}

// Stop снимает все таймеры при остановке процесса.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// fire перечитывает бронь и молча выходит, если она уже не подтверждена
// или время визита прошло. Гонка напоминания с отменой разрешается этой
// проверкой, а не снятием таймера при отмене. Из карты таймер к этому
// моменту уже удалён колбэком.
func (s *Scheduler) fire(reservationID, chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		s.logger.Warn("Reminder reservation fetch failed",
			zap.Int64("reservation_id", reservationID),
			zap.Error(err),
		)
		return
	}
	if res == nil || res.Status != model.ReservationStatusConfirmed {
		return
	}
	if !res.StartsAt.After(s.now()) {
		return
	}

	text := fmt.Sprintf("🔔 Напоминание: через %s у вас бронь №%d в %s.",
		formatLead(s.lead), reservationID, s.venueName)
	if err := s.notifier.Send(ctx, chatID, text); err != nil {
		s.logger.Warn("Failed to send reminder",
			zap.Int64("reservation_id", reservationID),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Reminder sent",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("chat_id", chatID),
	)
}

// formatLead "2 ч" для целого числа часов, иначе в минутах.
func formatLead(lead time.Duration) string {
	if lead >= time.Hour && lead%time.Hour == 0 {
		return fmt.Sprintf("%d ч", int(lead/time.Hour))
	}
	return fmt.Sprintf("%d мин", int(lead/time.Minute))
}
