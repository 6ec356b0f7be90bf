package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBook обрабатывает команду /book - начало анкеты бронирования.
// Повторный /book сбрасывает незаконченную анкету и начинает заново.
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	draft := h.stateManager.Begin(telegramID)

	h.logger.Info("Booking dialog started",
		zap.Int64("telegram_id", telegramID),
		zap.String("draft_id", draft.ID.String()))

	h.sendWithKeyboard(ctx, b, update.Message.Chat.ID,
		"Выберите дату (ДД.ММ.ГГГГ) или введите вручную:",
		h.dateKeyboard(time.Now()))
}

// handleDateStep шаг выбора даты визита
func (h *Handlers) handleDateStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	date, err := h.timetable.ParseDate(update.Message.Text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "Пожалуйста, укажите корректную дату, формат ДД.ММ.ГГГГ.")
		return
	}
	if h.timetable.IsBlocked(date) {
		h.sendMessage(ctx, b, chatID, "К сожалению, бронирование в эту дату недоступно.")
		return
	}

	minDate := h.timetable.MinDate(time.Now())
	if date.Before(minDate) {
		if h.timetable.OnlyTomorrow() {
			h.sendMessage(ctx, b, chatID, "Бронь в день обращения не доступна. Можно бронировать только на завтра.")
		} else {
			h.sendMessage(ctx, b, chatID, fmt.Sprintf(
				"Бронь в день обращения не доступна. Выберите дату начиная с %s.",
				minDate.Format(timetable.DateLayout)))
		}
		return
	}
	if h.timetable.OnlyTomorrow() && !date.Equal(minDate) {
		h.sendMessage(ctx, b, chatID, "Сейчас принимаем брони только на завтра. Выберите завтрашнюю дату.")
		return
	}
	if len(h.timetable.SlotsForDate(date)) == 0 {
		h.sendMessage(ctx, b, chatID, "В этот день бронирования не принимаются. Выберите другой день.")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.Date = date })
	h.stateManager.SetStep(telegramID, state.StepParty)

	h.sendWithKeyboard(ctx, b, chatID, "Сколько человек?", partyKeyboard())
}

// handlePartyStep шаг размера компании
func (h *Handlers) handlePartyStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	party, err := strconv.Atoi(strings.TrimSpace(update.Message.Text))
	if err != nil || party <= 0 {
		h.sendMessage(ctx, b, chatID, "Укажите число гостей (целое положительное).")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.PartySize = party })
	draft, ok := h.stateManager.Draft(telegramID)
	if !ok {
		return
	}
	h.stateManager.SetStep(telegramID, state.StepTime)

	h.sendWithKeyboard(ctx, b, chatID, "Во сколько? (например, 19:30)", h.slotsKeyboard(draft.Date))
}

// handleTimeStep шаг выбора времени. Помимо сетки слотов сразу
// проверяется наличие свободного стола, чтобы не гонять гостя по
// остальным шагам впустую.
func (h *Handlers) handleTimeStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	draft, ok := h.stateManager.Draft(telegramID)
	if !ok || draft.Date.IsZero() {
		h.stateManager.Clear(telegramID)
		h.sendMessage(ctx, b, chatID, "Анкета устарела. Начните заново: /book")
		return
	}

	slot, err := timetable.ParseClock(update.Message.Text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "Пожалуйста, укажите время в формате HH:MM, например 19:30.")
		return
	}
	if !h.timetable.IsBookableSlot(draft.Date, slot) {
		if w, open := h.timetable.Window(draft.Date); open {
			h.sendMessage(ctx, b, chatID, fmt.Sprintf(
				"В этот день принимаем с %s до %s (последняя запись). Выберите время из предложенных.",
				w.Open, w.Last))
		} else {
			h.sendMessage(ctx, b, chatID, "В этот день бронирования не принимаются. Выберите другой день.")
		}
		return
	}

	startsAt, endsAt := h.timetable.ReservationInterval(draft.Date, slot)
	table, err := h.availability.FindTable(ctx, draft.PartySize, startsAt, endsAt)
	if err != nil {
		h.logger.Error("Failed to check table availability",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if table == nil {
		h.sendMessage(ctx, b, chatID,
			"К сожалению, на выбранное время невозможно найти стол. Пожалуйста, выберите другое время:")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.Slot = slot })
	h.stateManager.SetStep(telegramID, state.StepSets)

	h.sendWithKeyboard(ctx, b, chatID,
		"Сколько сетов хотите предзаказать? (0 — решим на месте)", setsKeyboard())
}

// handleSetsStep шаг предзаказа сетов
func (h *Handlers) handleSetsStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	sets, err := strconv.Atoi(strings.TrimSpace(update.Message.Text))
	if err != nil || sets < 0 || sets > SetCountMax {
		h.sendMessage(ctx, b, chatID, "Укажите количество сетов числом (0 или больше).")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.SetCount = sets })
	h.stateManager.SetStep(telegramID, state.StepName)

	h.sendWithKeyboard(ctx, b, chatID, "Ваше имя и фамилия:", removeKeyboard())
}

// handleNameStep шаг контактного имени
func (h *Handlers) handleNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	name := strings.TrimSpace(update.Message.Text)
	if utf8.RuneCountInString(name) < NameMinLength {
		h.sendMessage(ctx, b, chatID, "Имя слишком короткое. Повторите.")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.Name = name })
	h.stateManager.SetStep(telegramID, state.StepPhone)

	h.sendMessage(ctx, b, chatID, "Ваш номер телефона (с кодом страны, например +375...):")
}

// handlePhoneStep шаг контактного телефона
func (h *Handlers) handlePhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	phone := strings.TrimSpace(update.Message.Text)
	if !service.ValidPhone(phone) {
		h.sendMessage(ctx, b, chatID, "Похоже, номер некорректен. Введите еще раз (например +375123456789).")
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.Phone = phone })
	h.stateManager.SetStep(telegramID, state.StepComment)

	h.sendWithKeyboard(ctx, b, chatID,
		"Оставите комментарий к бронированию? (например, пожелание по столу, детское кресло и т. п.)\n"+
			"Если нет — нажмите «Пропустить».",
		skipKeyboard())
}

// handleCommentStep шаг комментария и превью заявки
func (h *Handlers) handleCommentStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	comment := strings.TrimSpace(update.Message.Text)
	if strings.EqualFold(comment, SkipLabel) {
		comment = ""
	}
	if utf8.RuneCountInString(comment) > CommentMaxLength {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf(
			"Комментарий слишком длинный (до %d символов). Попробуйте короче.", CommentMaxLength))
		return
	}

	h.stateManager.Update(telegramID, func(d *state.BookingDraft) { d.Comment = comment })
	draft, ok := h.stateManager.Draft(telegramID)
	if !ok {
		return
	}
	h.stateManager.SetStep(telegramID, state.StepConfirm)

	summary := fmt.Sprintf(
		"Проверьте данные:\n"+
			"📅 Дата: %s\n"+
			"⏰ Время: %s\n"+
			"👥 Гостей: %d\n"+
			"🍣 Сеты: %d\n"+
			"💬 Комментарий: %s\n"+
			"🧾 Имя: %s\n"+
			"📞 Телефон: %s\n\n"+
			"Подтверждаете?",
		draft.Date.Format(timetable.DateLayout),
		draft.Slot,
		draft.PartySize,
		draft.SetCount,
		orDash(draft.Comment),
		draft.Name,
		draft.Phone,
	)
	h.sendWithKeyboard(ctx, b, chatID, summary, confirmKeyboard())
}
