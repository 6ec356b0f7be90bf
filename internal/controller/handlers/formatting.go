package handlers

import (
	"fmt"

	"github.com/BadSnail11/Bookingbot/internal/model"
)

// StatusDisplay возвращает emoji и текст статуса брони для гостя
func StatusDisplay(status model.ReservationStatus) string {
	switch status {
	case model.ReservationStatusPending:
		return "⏳ ожидание"
	case model.ReservationStatusConfirmed:
		return "✅ подтверждено"
	case model.ReservationStatusCanceled:
		return "❌ отменено"
	case model.ReservationStatusStopped:
		return "⛔️ остановлено"
	default:
		return string(status)
	}
}

// tableLabel имя назначенного стола или прочерк
func tableLabel(res *model.Reservation, names map[int64]string) string {
	if res.TableID == nil {
		return "—"
	}
	if name, ok := names[*res.TableID]; ok {
		return name
	}
	return "—"
}

// orDash подставляет прочерк вместо пустой строки
func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// formatGuestReservation строка списка /my
func (h *Handlers) formatGuestReservation(res *model.Reservation, names map[int64]string) string {
	return fmt.Sprintf("№%d • %s • %s • Стол: %s • Гостей: %d",
		res.ID,
		h.timetable.FormatLocal(res.StartsAt),
		StatusDisplay(res.Status),
		tableLabel(res, names),
		res.PartySize,
	)
}

// formatPendingReservation строка списка /pending для администратора
func (h *Handlers) formatPendingReservation(res *model.Reservation, names map[int64]string) string {
	return fmt.Sprintf("#%d • %s • %d чел • %s %s • стол: %s",
		res.ID,
		h.timetable.FormatLocal(res.StartsAt),
		res.PartySize,
		res.Name,
		res.Phone,
		tableLabel(res, names),
	)
}
