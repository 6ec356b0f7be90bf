package service

import (
	"context"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
)

// Интерфейсы хранилища с точки зрения сервисов. Реализуются
// репозиториями пакета repository, в тестах подменяются моками.

// ReservationStore операции над бронями.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	HeldTableIDs(ctx context.Context, startsAt, endsAt time.Time, statuses []model.ReservationStatus) (map[int64]struct{}, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time, statuses []model.ReservationStatus, guestID *int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) error
	ConfirmWithTable(ctx context.Context, id, tableID int64) error
	GetPending(ctx context.Context) ([]*model.Reservation, error)
	GetFutureByGuestID(ctx context.Context, guestID int64, now time.Time) ([]*model.Reservation, error)
}

// TableStore справочник столов.
type TableStore interface {
	ListByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error)
	GetNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// GuestStore операции над гостями.
type GuestStore interface {
	Create(ctx context.Context, guest *model.Guest) error
	GetByChatID(ctx context.Context, chatID int64) (*model.Guest, error)
	GetByID(ctx context.Context, id int64) (*model.Guest, error)
}

// TableFinder подбирает свободный стол под компанию на интервал.
// Реализуется AvailabilityService.
type TableFinder interface {
	FindTable(ctx context.Context, partySize int, startsAt, endsAt time.Time) (*model.Table, error)
}

// Notifier доставляет личное сообщение гостю. Ошибка доставки не
// откатывает вызвавший её переход - она только логируется.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// AdminAlerter рассылает служебный алерт администраторам, по возможности
// с кнопками быстрых действий для указанной брони. Доставка best-effort.
type AdminAlerter interface {
	Broadcast(ctx context.Context, reservationID int64, text string)
}

// ReminderScheduler взводит напоминание о предстоящей брони.
type ReminderScheduler interface {
	Schedule(reservationID, chatID int64, startsAt time.Time)
}
