package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/config"
	"github.com/BadSnail11/Bookingbot/internal/model"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// phoneRe допускает ведущий + или цифру и дальше минимум пять цифр,
// скобок, дефисов или пробелов.
var phoneRe = regexp.MustCompile(`^[+0-9][0-9()\s-]{5,}$`)

// ValidPhone проверяет телефон по тем же правилам, что и валидация заявки.
// Используется диалогом для переспроса на шаге телефона.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	if err != nil {
		panic("failed to register phone validation: " + err.Error())
	}
	return v
}

// BookingPolicy правила приёма заявок, снятые с конфигурации при старте.
type BookingPolicy struct {
	DailyLimit          int
	LimitScope          config.LimitScope
	AutoConfirmMaxParty int
}

// CreateReservationInput данные заявки, собранные диалогом бронирования.
type CreateReservationInput struct {
	Date      time.Time `validate:"required"` // локальная полночь даты визита
	Slot      timetable.Clock
	PartySize int    `validate:"gt=0"`
	SetCount  int    `validate:"gte=0,lte=100"`
	Name      string `validate:"required,min=2"`
	Phone     string `validate:"required,phone_number"`
	Comment   string `validate:"max=500"`
}

// CreateResult исход создания заявки.
type CreateResult struct {
	Reservation   *model.Reservation
	Table         *model.Table // подобранный стол, nil если свободных нет
	AutoConfirmed bool
}

// ConfirmResult исход подтверждения. AssignedTable заполнен, только если
// стол назначен самим подтверждением, а не раньше.
type ConfirmResult struct {
	Reservation   *model.Reservation
	AssignedTable *model.Table
}

// BookingService жизненный цикл брони: создание с автоподтверждением,
// ручное подтверждение и отмена администратором, выборки для диалога.
type BookingService struct {
	reservationRepo ReservationStore
	tableRepo       TableStore
	guestRepo       GuestStore
	availability    TableFinder
	timetable       *timetable.Timetable
	policy          BookingPolicy
	venue           config.Venue
	notifier        Notifier
	alerter         AdminAlerter
	reminders       ReminderScheduler
	logger          *zap.Logger
	now             func() time.Time
}

func NewBookingService(
	reservationRepo ReservationStore,
	tableRepo TableStore,
	guestRepo GuestStore,
	availability TableFinder,
	tt *timetable.Timetable,
	policy BookingPolicy,
	venue config.Venue,
	notifier Notifier,
	alerter AdminAlerter,
	reminders ReminderScheduler,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		reservationRepo: reservationRepo,
		tableRepo:       tableRepo,
		guestRepo:       guestRepo,
		availability:    availability,
		timetable:       tt,
		policy:          policy,
		venue:           venue,
		notifier:        notifier,
		alerter:         alerter,
		reminders:       reminders,
		logger:          logger,
		now:             time.Now,
	}
}

// Create создаёт заявку на бронь. Компания не больше лимита
// автоподтверждения при найденном столе получает статус confirmed сразу,
// иначе заявка остаётся pending с предварительным столом или без него.
//
// Проверка свободного стола и вставка не атомарны: одновременная заявка
// может успеть занять тот же стол между ними. Наложение разбирает
// администратор при подтверждении.
func (s *BookingService) Create(ctx context.Context, guest *model.Guest, in CreateReservationInput) (*CreateResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate reservation input: %w", err)
	}

	exceeded, err := s.exceedsDailyLimit(ctx, guest.ID)
	if err != nil {
		return nil, err
	}
	if exceeded {
		return nil, ErrDailyLimitReached
	}

	startsAt, endsAt := s.timetable.ReservationInterval(in.Date, in.Slot)

	table, err := s.availability.FindTable(ctx, in.PartySize, startsAt, endsAt)
	if err != nil {
		return nil, err
	}

	autoConfirm := table != nil && in.PartySize <= s.policy.AutoConfirmMaxParty
	status := model.ReservationStatusPending
	if autoConfirm {
		status = model.ReservationStatusConfirmed
	}

	res := &model.Reservation{
		GuestID:   guest.ID,
		Name:      in.Name,
		Phone:     in.Phone,
		PartySize: in.PartySize,
		SetCount:  &in.SetCount,
		Comment:   in.Comment,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    status,
	}
	if table != nil {
		res.TableID = &table.ID
	}

	if err := s.reservationRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("guest_id", guest.ID),
		zap.String("status", string(status)),
		zap.Time("starts_at", startsAt),
		zap.Int("party_size", in.PartySize),
	)

	if autoConfirm {
		s.reminders.Schedule(res.ID, guest.ChatID, res.StartsAt)
	}

	s.alertAdmins(ctx, res, table)

	return &CreateResult{Reservation: res, Table: table, AutoConfirmed: autoConfirm}, nil
}

// Confirm подтверждает заявку от имени администратора. Если стол не был
// привязан при создании, подбор повторяется здесь; без свободного стола
// заявка остаётся pending.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*ConfirmResult, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}

	switch res.Status {
	case model.ReservationStatusConfirmed:
		return nil, ErrAlreadyConfirmed
	case model.ReservationStatusCanceled, model.ReservationStatusStopped:
		return nil, ErrTerminalStatus
	}

	var assigned *model.Table
	if res.TableID == nil {
		table, err := s.availability.FindTable(ctx, res.PartySize, res.StartsAt, res.EndsAt)
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, ErrNoTableAvailable
		}
		if err := s.reservationRepo.ConfirmWithTable(ctx, id, table.ID); err != nil {
			return nil, err
		}
		res.TableID = &table.ID
		assigned = table
	} else {
		if err := s.reservationRepo.UpdateStatus(ctx, id, model.ReservationStatusConfirmed); err != nil {
			return nil, err
		}
	}
	res.Status = model.ReservationStatusConfirmed

	s.logger.Info("Reservation confirmed",
		zap.Int64("reservation_id", id),
		zap.Int64p("table_id", res.TableID),
		zap.Time("starts_at", res.StartsAt),
	)

	guest, err := s.guestRepo.GetByID(ctx, res.GuestID)
	if err != nil || guest == nil {
		s.logger.Warn("Confirmed reservation guest not reachable",
			zap.Int64("reservation_id", id),
			zap.Int64("guest_id", res.GuestID),
			zap.Error(err),
		)
		return &ConfirmResult{Reservation: res, AssignedTable: assigned}, nil
	}

	s.reminders.Schedule(res.ID, guest.ChatID, res.StartsAt)
	s.notifyGuest(ctx, guest.ChatID, fmt.Sprintf(
		"✅ Ваша бронь №%d подтверждена! До встречи в %s. Встречаемся %s.",
		res.ID, s.venue.Name, s.timetable.FormatLocal(res.StartsAt),
	))

	return &ConfirmResult{Reservation: res, AssignedTable: assigned}, nil
}

// Cancel отменяет бронь от имени администратора. Стол отдельно не
// освобождается: отменённая бронь перестаёт учитываться запросом
// пересечений.
func (s *BookingService) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}

	switch res.Status {
	case model.ReservationStatusCanceled:
		return nil, ErrAlreadyCanceled
	case model.ReservationStatusStopped:
		return nil, ErrTerminalStatus
	}

	if err := s.reservationRepo.UpdateStatus(ctx, id, model.ReservationStatusCanceled); err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatusCanceled

	s.logger.Info("Reservation canceled", zap.Int64("reservation_id", id))

	guest, err := s.guestRepo.GetByID(ctx, res.GuestID)
	if err != nil || guest == nil {
		s.logger.Warn("Canceled reservation guest not reachable",
			zap.Int64("reservation_id", id),
			zap.Int64("guest_id", res.GuestID),
			zap.Error(err),
		)
		return res, nil
	}

	s.notifyGuest(ctx, guest.ChatID, fmt.Sprintf(
		"❌ К сожалению, бронь №%d была отменена. Если есть вопросы, свяжитесь с нами:\n%s",
		res.ID, s.venue.HumanContacts(),
	))

	return res, nil
}

// ListPending ожидающие подтверждения заявки с именами столов для вывода.
func (s *BookingService) ListPending(ctx context.Context) ([]*model.Reservation, map[int64]string, error) {
	rows, err := s.reservationRepo.GetPending(ctx)
	if err != nil {
		return nil, nil, err
	}
	names, err := s.tableNames(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return rows, names, nil
}

// GuestReservations ещё не закончившиеся брони гостя. Для неизвестного
// чата возвращает пустой список без ошибки.
func (s *BookingService) GuestReservations(ctx context.Context, chatID int64) ([]*model.Reservation, map[int64]string, error) {
	guest, err := s.guestRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if guest == nil {
		return nil, nil, nil
	}

	rows, err := s.reservationRepo.GetFutureByGuestID(ctx, guest.ID, s.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	names, err := s.tableNames(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return rows, names, nil
}

// tableNames собирает имена столов, упомянутых в списке броней.
func (s *BookingService) tableNames(ctx context.Context, rows []*model.Reservation) (map[int64]string, error) {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, res := range rows {
		for _, id := range res.HeldTableIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	names, err := s.tableRepo.GetNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve table names: %w", err)
	}
	return names, nil
}

// exceedsDailyLimit проверяет лимит заявок, созданных в течение текущего
// локального дня. Лимит считается по дню создания заявки, а не по дате
// визита: это ограничение потока обращений, вместимость проверяет подбор
// стола.
func (s *BookingService) exceedsDailyLimit(ctx context.Context, guestID int64) (bool, error) {
	from, to := s.timetable.DayBoundsUTC(s.now())

	var scopeGuest *int64
	if s.policy.LimitScope == config.LimitScopePerUser {
		scopeGuest = &guestID
	}

	count, err := s.reservationRepo.CountCreatedBetween(ctx, from, to, model.CountableStatuses(), scopeGuest)
	if err != nil {
		return false, fmt.Errorf("count today's reservations: %w", err)
	}
	return count >= s.policy.DailyLimit, nil
}

// notifyGuest доставляет личное сообщение гостю. Сбой доставки только
// логируется: переход статуса уже записан и не откатывается.
func (s *BookingService) notifyGuest(ctx context.Context, chatID int64, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, chatID, text); err != nil {
		s.logger.Warn("Failed to notify guest",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// alertAdmins отправляет администраторам сводку по новой заявке.
// Доставка best-effort: сбой не трогает уже созданную бронь.
func (s *BookingService) alertAdmins(ctx context.Context, res *model.Reservation, table *model.Table) {
	if s.alerter == nil {
		return
	}

	tableText := "—"
	if table != nil {
		tableText = fmt.Sprintf("%s (до %d)", table.Name, table.Capacity)
	}
	comment := res.Comment
	if comment == "" {
		comment = "—"
	}
	sets := 0
	if res.SetCount != nil {
		sets = *res.SetCount
	}

	text := fmt.Sprintf(
		"🆕 Запрос на бронь #%d\n"+
			"Дата/время: %s\n"+
			"Гостей: %d\n"+
			"Сеты: %d\n"+
			"Имя: %s\n"+
			"Телефон: %s\n"+
			"Предварительный стол: %s\n"+
			"Комментарий: %s\n"+
			"Статус: %s",
		res.ID,
		s.timetable.FormatLocal(res.StartsAt),
		res.PartySize,
		sets,
		res.Name,
		res.Phone,
		tableText,
		comment,
		res.Status,
	)

	s.alerter.Broadcast(ctx, res.ID, text)
}
