package model

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"   // Ожидает подтверждения администратора
	ReservationStatusConfirmed ReservationStatus = "confirmed" // Подтверждена
	ReservationStatusCanceled  ReservationStatus = "canceled"  // Отменена
	ReservationStatusStopped   ReservationStatus = "stopped"   // Остановлена администратором вне обычного потока
)

// IsTerminal сообщает, допускает ли статус дальнейшие переходы.
// Из canceled и stopped выхода нет.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCanceled || s == ReservationStatusStopped
}

// HoldingStatuses статусы, в которых бронь удерживает стол.
// Отменённые и остановленные брони стол не занимают.
func HoldingStatuses() []ReservationStatus {
	return []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}
}

// CountableStatuses статусы, учитываемые дневным лимитом заявок.
func CountableStatuses() []ReservationStatus {
	return []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusStopped}
}

type Reservation struct {
	ID            int64             `json:"id"`
	GuestID       int64             `json:"guest_id"`
	TableID       *int64            `json:"table_id"`        // указатель - стол может быть не назначен
	JoinedTableID *int64            `json:"joined_table_id"` // второй стол при объединении под большую компанию
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	PartySize     int               `json:"party_size"`
	SetCount      *int              `json:"set_count"` // предзаказ сетов, nil если не указан
	Comment       string            `json:"comment"`
	StartsAt      time.Time         `json:"starts_at"` // UTC, точность до секунды
	EndsAt        time.Time         `json:"ends_at"`   // UTC, всегда StartsAt + длительность брони
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// HeldTableIDs столы, которые удерживает эта бронь (основной и присоединённый).
func (r *Reservation) HeldTableIDs() []int64 {
	var ids []int64
	if r.TableID != nil {
		ids = append(ids, *r.TableID)
	}
	if r.JoinedTableID != nil {
		ids = append(ids, *r.JoinedTableID)
	}
	return ids
}
