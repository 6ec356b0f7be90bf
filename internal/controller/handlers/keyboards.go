package handlers

import (
	"time"

	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-telegram/bot/models"
)

// buttonRows раскладывает подписи по строкам фиксированной ширины
func buttonRows(labels []string, perRow int) [][]models.KeyboardButton {
	var rows [][]models.KeyboardButton
	for i := 0; i < len(labels); i += perRow {
		end := i + perRow
		if end > len(labels) {
			end = len(labels)
		}
		row := make([]models.KeyboardButton, 0, perRow)
		for _, label := range labels[i:end] {
			row = append(row, models.KeyboardButton{Text: label})
		}
		rows = append(rows, row)
	}
	return rows
}

func replyKeyboard(rows [][]models.KeyboardButton) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}

// dateKeyboard доступные даты, по три в строке
func (h *Handlers) dateKeyboard(now time.Time) *models.ReplyKeyboardMarkup {
	choices := h.timetable.DateChoices(now)
	labels := make([]string, 0, len(choices))
	for _, d := range choices {
		labels = append(labels, d.Format(timetable.DateLayout))
	}
	return replyKeyboard(buttonRows(labels, 3))
}

// slotsKeyboard времена посадки даты, по четыре в строке
func (h *Handlers) slotsKeyboard(date time.Time) *models.ReplyKeyboardMarkup {
	slots := h.timetable.SlotsForDate(date)
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.String())
	}
	return replyKeyboard(buttonRows(labels, 4))
}

// partyKeyboard типовые размеры компании
func partyKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]models.KeyboardButton{
		{{Text: "2"}, {Text: "3"}, {Text: "4"}},
		{{Text: "5"}, {Text: "6"}, {Text: "7"}},
		{{Text: "8"}},
	})
}

// setsKeyboard количество сетов предзаказа
func setsKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]models.KeyboardButton{
		{{Text: "0"}, {Text: "1"}, {Text: "2"}, {Text: "3"}, {Text: "4"}},
		{{Text: "5"}, {Text: "6"}, {Text: "7"}, {Text: "8"}, {Text: "9"}},
	})
}

// skipKeyboard единственная кнопка пропуска необязательного шага
func skipKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]models.KeyboardButton{{{Text: SkipLabel}}})
}

// confirmKeyboard инлайн-кнопки отправки или переделки заявки
func confirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "Отправить заявку", CallbackData: "booking_confirm"},
			{Text: "Изменить", CallbackData: "booking_restart"},
		}},
	}
}

// removeKeyboard убирает reply-клавиатуру
func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}
