package callbacks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BadSnail11/Bookingbot/internal/config"
	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================

// Гостевые callbacks - итоговое подтверждение анкеты
const (
	BookingConfirm = "booking_confirm" // отправить заявку
	BookingRestart = "booking_restart" // начать анкету заново
)

// Админские callbacks - быстрые действия из алерта о новой заявке
const (
	AdminConfirm = "adm_confirm:" // adm_confirm:123
	AdminCancel  = "adm_cancel:"  // adm_cancel:123
)

// Handler обрабатывает нажатия инлайн-кнопок
type Handler struct {
	cfg            *config.Config
	timetable      *timetable.Timetable
	guestService   *service.GuestService
	bookingService *service.BookingService
	stateManager   *state.Manager
	logger         *zap.Logger
}

// NewHandler создаёт обработчик callback query
func NewHandler(
	cfg *config.Config,
	tt *timetable.Timetable,
	guestService *service.GuestService,
	bookingService *service.BookingService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:            cfg,
		timetable:      tt,
		guestService:   guestService,
		bookingService: bookingService,
		stateManager:   stateManager,
		logger:         logger,
	}
}

// HandleCallbackQuery распределяет callback query по соответствующим обработчикам
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}
	data := callback.Data

	h.logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	case data == BookingConfirm:
		h.handleBookingConfirm(ctx, b, callback)
	case data == BookingRestart:
		h.handleBookingRestart(ctx, b, callback)
	case strings.HasPrefix(data, AdminConfirm):
		h.handleAdminConfirm(ctx, b, callback)
	case strings.HasPrefix(data, AdminCancel):
		h.handleAdminCancel(ctx, b, callback)
	default:
		h.logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		answerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
	}
}

// handleBookingConfirm гость отправляет собранную анкету
func (h *Handler) handleBookingConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	answerCallback(ctx, b, callback.ID, "")

	message := messageFromCallback(callback)
	if message == nil {
		return
	}
	chatID := message.Chat.ID
	telegramID := callback.From.ID

	draft, ok := h.stateManager.Draft(telegramID)
	if !ok || h.stateManager.Step(telegramID) != state.StepConfirm {
		// Кнопка нажата после сброса анкеты или рестарта бота
		h.editMessage(ctx, b, chatID, message.ID, "Анкета устарела. Начните заново: /book")
		return
	}
	h.stateManager.Clear(telegramID)

	guest, err := h.guestService.Ensure(ctx, chatID,
		callback.From.FirstName, callback.From.LastName, callback.From.Username)
	if err != nil {
		h.logger.Error("Failed to ensure guest",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		h.editMessage(ctx, b, chatID, message.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	result, err := h.bookingService.Create(ctx, guest, service.CreateReservationInput{
		Date:      draft.Date,
		Slot:      draft.Slot,
		PartySize: draft.PartySize,
		SetCount:  draft.SetCount,
		Name:      draft.Name,
		Phone:     draft.Phone,
		Comment:   draft.Comment,
	})
	if err != nil {
		if errors.Is(err, service.ErrDailyLimitReached) {
			h.editMessage(ctx, b, chatID, message.ID, h.limitReachedText())
			return
		}
		h.logger.Error("Failed to create reservation",
			zap.Int64("chat_id", chatID),
			zap.String("draft_id", draft.ID.String()),
			zap.Error(err))
		h.editMessage(ctx, b, chatID, message.ID, "❌ Не удалось создать бронь. Попробуйте позже.")
		return
	}

	res := result.Reservation
	if result.AutoConfirmed {
		h.editMessage(ctx, b, chatID, message.ID, fmt.Sprintf(
			"✅ Ваша бронь №%d подтверждена! Встречаемся %s в %s. Стол: %s.",
			res.ID, h.timetable.FormatLocal(res.StartsAt), h.cfg.Venue.Name, result.Table.Name))
		return
	}

	var msg string
	if result.Table != nil {
		msg = fmt.Sprintf(
			"Пока бронь в ожидании подтверждения администратора.\n"+
				"Предварительно доступен стол %s (вмещает до %d гостей).",
			result.Table.Name, result.Table.Capacity)
	} else {
		msg = "Пока бронь в ожидании подтверждения администратора.\n" +
			"Сейчас нет подходящих свободных столов на это время — " +
			"администратор свяжется для альтернативы."
	}
	msg += "\n\nЕсли появятся вопросы или захотите отменить, свяжитесь с заведением:\n" +
		h.cfg.Venue.HumanContacts()
	h.editMessageHTML(ctx, b, chatID, message.ID, msg)
}

// handleBookingRestart гость переделывает анкету с нуля
func (h *Handler) handleBookingRestart(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	answerCallback(ctx, b, callback.ID, "")

	h.stateManager.Clear(callback.From.ID)
	if message := messageFromCallback(callback); message != nil {
		h.editMessage(ctx, b, message.Chat.ID, message.ID, "Окей, начнем заново: /book")
	}
}

// handleAdminConfirm быстрое подтверждение заявки из алерта
func (h *Handler) handleAdminConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	if !h.cfg.IsAdmin(callback.From.ID) {
		answerCallbackAlert(ctx, b, callback.ID, "Недостаточно прав")
		return
	}

	id, err := parseID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse reservation ID",
			zap.String("data", callback.Data),
			zap.Error(err))
		answerCallbackAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	result, err := h.bookingService.Confirm(ctx, id)
	if err != nil {
		h.answerConfirmError(ctx, b, callback.ID, id, err)
		return
	}

	tableName := "—"
	if result.AssignedTable != nil {
		tableName = result.AssignedTable.Name
	}
	answerCallback(ctx, b, callback.ID, "Бронь подтверждена")
	if message := messageFromCallback(callback); message != nil {
		h.editMessage(ctx, b, message.Chat.ID, message.ID, fmt.Sprintf(
			"%s\n\n✅ Подтверждена (стол %s)", message.Text, tableName))
	}
}

// handleAdminCancel быстрая отмена заявки из алерта
func (h *Handler) handleAdminCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	if !h.cfg.IsAdmin(callback.From.ID) {
		answerCallbackAlert(ctx, b, callback.ID, "Недостаточно прав")
		return
	}

	id, err := parseID(callback.Data)
	if err != nil {
		h.logger.Error("Failed to parse reservation ID",
			zap.String("data", callback.Data),
			zap.Error(err))
		answerCallbackAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, err := h.bookingService.Cancel(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			answerCallbackAlert(ctx, b, callback.ID, "Бронь не найдена")
		case errors.Is(err, service.ErrAlreadyCanceled):
			answerCallbackAlert(ctx, b, callback.ID, "Бронь уже отменена")
		case errors.Is(err, service.ErrTerminalStatus):
			answerCallbackAlert(ctx, b, callback.ID, "Бронь остановлена, отмена недоступна")
		default:
			h.logger.Error("Failed to cancel reservation",
				zap.Int64("reservation_id", id),
				zap.Error(err))
			answerCallbackAlert(ctx, b, callback.ID, "❌ Произошла ошибка")
		}
		return
	}

	answerCallback(ctx, b, callback.ID, "Бронь отменена")
	if message := messageFromCallback(callback); message != nil {
		h.editMessage(ctx, b, message.Chat.ID, message.ID, fmt.Sprintf(
			"%s\n\n❌ Отменена", message.Text))
	}
}

// answerConfirmError показывает администратору причину отказа подтверждения
func (h *Handler) answerConfirmError(ctx context.Context, b *bot.Bot, callbackID string, id int64, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		answerCallbackAlert(ctx, b, callbackID, "Бронь не найдена")
	case errors.Is(err, service.ErrAlreadyConfirmed):
		answerCallbackAlert(ctx, b, callbackID, "Бронь уже подтверждена")
	case errors.Is(err, service.ErrNoTableAvailable):
		answerCallbackAlert(ctx, b, callbackID, "Подходящих столов нет для подтверждения")
	case errors.Is(err, service.ErrTerminalStatus):
		answerCallbackAlert(ctx, b, callbackID, "Бронь уже отменена или остановлена")
	default:
		h.logger.Error("Failed to confirm reservation",
			zap.Int64("reservation_id", id),
			zap.Error(err))
		answerCallbackAlert(ctx, b, callbackID, "❌ Произошла ошибка")
	}
}

// limitReachedText текст отказа по дневному лимиту заявок
func (h *Handler) limitReachedText() string {
	scope := "на заведение"
	if h.cfg.LimitScope == config.LimitScopePerUser {
		scope = "на пользователя"
	}
	return fmt.Sprintf(
		"К сожалению, на выбранную дату достигнут лимит бронирований (%d %s в день). "+
			"Пожалуйста, выберите другую дату.",
		h.cfg.DailyReservationLimit, scope)
}

// editMessage заменяет текст сообщения, убирая инлайн-кнопки
func (h *Handler) editMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		h.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// editMessageHTML то же с HTML-разметкой
func (h *Handler) editMessageHTML(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		h.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
