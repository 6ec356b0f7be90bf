package state

import (
	"time"

	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/google/uuid"
)

// Step представляет текущий шаг гостя в анкете бронирования
type Step string

const (
	StepNone Step = "" // Нет активного диалога

	// Шаги анкеты бронирования, в порядке прохождения
	StepDate    Step = "booking_date"
	StepParty   Step = "booking_party"
	StepTime    Step = "booking_time"
	StepSets    Step = "booking_sets"
	StepName    Step = "booking_name"
	StepPhone   Step = "booking_phone"
	StepComment Step = "booking_comment"
	StepConfirm Step = "booking_confirm"
)

// BookingDraft хранит накопленные ответы анкеты до отправки заявки
type BookingDraft struct {
	ID        uuid.UUID // сквозной идентификатор черновика для логов
	Date      time.Time
	Slot      timetable.Clock
	PartySize int
	SetCount  int
	Name      string
	Phone     string
	Comment   string
}

// Session текущий шаг и черновик одного гостя
type Session struct {
	Step      Step
	Draft     BookingDraft
	UpdatedAt time.Time
}
