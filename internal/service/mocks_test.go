package service

import (
	"context"
	"sort"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
)

// Ручные моки хранилищ и доставки. Поведение настраивается полями,
// вызовы записываются для проверок.

type fakeReservationStore struct {
	byID map[int64]*model.Reservation

	held         map[int64]struct{}
	heldErr      error
	heldStatuses []model.ReservationStatus

	createdCount  int
	countStatuses []model.ReservationStatus
	countGuestID  *int64

	created   []*model.Reservation
	createErr error

	statusByID      map[int64]model.ReservationStatus
	confirmedTables map[int64]int64

	pending []*model.Reservation
	future  []*model.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{
		byID:            make(map[int64]*model.Reservation),
		held:            make(map[int64]struct{}),
		statusByID:      make(map[int64]model.ReservationStatus),
		confirmedTables: make(map[int64]int64),
	}
}

func (f *fakeReservationStore) add(res *model.Reservation) *model.Reservation {
	f.byID[res.ID] = res
	return res
}

func (f *fakeReservationStore) Create(ctx context.Context, res *model.Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	res.ID = int64(len(f.created) + 1)
	res.CreatedAt = time.Now()
	f.created = append(f.created, res)
	f.byID[res.ID] = res
	return nil
}

func (f *fakeReservationStore) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return f.byID[id], nil
}

func (f *fakeReservationStore) HeldTableIDs(ctx context.Context, startsAt, endsAt time.Time, statuses []model.ReservationStatus) (map[int64]struct{}, error) {
	f.heldStatuses = statuses
	if f.heldErr != nil {
		return nil, f.heldErr
	}
	return f.held, nil
}

func (f *fakeReservationStore) CountCreatedBetween(ctx context.Context, from, to time.Time, statuses []model.ReservationStatus, guestID *int64) (int, error) {
	f.countStatuses = statuses
	f.countGuestID = guestID
	return f.createdCount, nil
}

func (f *fakeReservationStore) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	f.statusByID[id] = status
	if res, ok := f.byID[id]; ok {
		res.Status = status
	}
	return nil
}

func (f *fakeReservationStore) ConfirmWithTable(ctx context.Context, id, tableID int64) error {
	f.confirmedTables[id] = tableID
	if res, ok := f.byID[id]; ok {
		res.TableID = &tableID
		res.Status = model.ReservationStatusConfirmed
	}
	return nil
}

func (f *fakeReservationStore) GetPending(ctx context.Context) ([]*model.Reservation, error) {
	return f.pending, nil
}

func (f *fakeReservationStore) GetFutureByGuestID(ctx context.Context, guestID int64, now time.Time) ([]*model.Reservation, error) {
	return f.future, nil
}

type fakeTableStore struct {
	tables []*model.Table
	names  map[int64]string
}

// ListByMinCapacity повторяет контракт репозитория: вместимость по
// возрастанию, при равной вместимости по id.
func (f *fakeTableStore) ListByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error) {
	var out []*model.Table
	for _, table := range f.tables {
		if table.Capacity >= minCapacity {
			out = append(out, table)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeTableStore) GetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

type fakeGuestStore struct {
	byChatID map[int64]*model.Guest
	byID     map[int64]*model.Guest
	created  []*model.Guest
}

func newFakeGuestStore(guests ...*model.Guest) *fakeGuestStore {
	f := &fakeGuestStore{
		byChatID: make(map[int64]*model.Guest),
		byID:     make(map[int64]*model.Guest),
	}
	for _, g := range guests {
		f.byChatID[g.ChatID] = g
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGuestStore) Create(ctx context.Context, guest *model.Guest) error {
	guest.ID = int64(len(f.byID) + 1)
	guest.CreatedAt = time.Now()
	f.byChatID[guest.ChatID] = guest
	f.byID[guest.ID] = guest
	f.created = append(f.created, guest)
	return nil
}

func (f *fakeGuestStore) GetByChatID(ctx context.Context, chatID int64) (*model.Guest, error) {
	return f.byChatID[chatID], nil
}

func (f *fakeGuestStore) GetByID(ctx context.Context, id int64) (*model.Guest, error) {
	return f.byID[id], nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return f.err
}

type adminAlert struct {
	reservationID int64
	text          string
}

type fakeAlerter struct {
	alerts []adminAlert
}

func (f *fakeAlerter) Broadcast(ctx context.Context, reservationID int64, text string) {
	f.alerts = append(f.alerts, adminAlert{reservationID: reservationID, text: text})
}

type scheduledReminder struct {
	reservationID int64
	chatID        int64
	startsAt      time.Time
}

type fakeReminders struct {
	scheduled []scheduledReminder
}

func (f *fakeReminders) Schedule(reservationID, chatID int64, startsAt time.Time) {
	f.scheduled = append(f.scheduled, scheduledReminder{reservationID: reservationID, chatID: chatID, startsAt: startsAt})
}
