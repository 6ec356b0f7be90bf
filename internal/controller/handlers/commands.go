package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID

	guest, err := h.guestService.Ensure(ctx, chatID, user.FirstName, user.LastName, user.Username)
	if err != nil {
		h.logger.Error("Failed to ensure guest", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	h.logger.Info("Guest started bot",
		zap.Int64("guest_id", guest.ID),
		zap.Int64("chat_id", chatID))

	text := "Привет! Я бот для бронирования столов.\n\n" +
		"Команды:\n" +
		"/book — забронировать стол\n" +
		"/my — мои бронирования\n" +
		"/contacts — контакты заведения\n" +
		"/help — помощь"
	h.sendMessage(ctx, b, chatID, text)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"Чтобы забронировать столик, используйте /book и следуйте шагам. "+
			"Мы принимаем брони только не в день обращения (минимум за %d дн.).",
		h.cfg.MinAdvanceDays,
	))
}

// HandleContacts обрабатывает команду /contacts
func (h *Handlers) HandleContacts(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendHTML(ctx, b, update.Message.Chat.ID, h.cfg.Venue.HumanContacts())
}

// HandleMy обрабатывает команду /my - список будущих броней гостя
func (h *Handlers) HandleMy(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	guest, err := h.guestService.GetByChatID(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to get guest", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if guest == nil {
		h.sendMessage(ctx, b, chatID, "У вас пока нет бронирований. Нажмите /book чтобы создать.")
		return
	}

	rows, names, err := h.bookingService.GuestReservations(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to list guest reservations", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if len(rows) == 0 {
		h.sendMessage(ctx, b, chatID, "Активных бронирований нет. Нажмите /book чтобы создать.")
		return
	}

	lines := make([]string, 0, len(rows)+1)
	for _, res := range rows {
		lines = append(lines, h.formatGuestReservation(res, names))
	}
	lines = append(lines, "\nХотите отменить или есть вопросы?\n"+h.cfg.Venue.HumanContacts())
	h.sendHTML(ctx, b, chatID, strings.Join(lines, "\n"))
}

// HandleCancel обрабатывает команду /cancel - отмена текущей анкеты
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.Step(telegramID) == state.StepNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.Clear(telegramID)
	h.sendWithKeyboard(ctx, b, update.Message.Chat.ID,
		"Окей, бронирование отменено. Нажмите /book чтобы начать заново.", removeKeyboard())
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от шага анкеты
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	step := h.stateManager.Step(telegramID)

	if step == state.StepNone {
		h.logger.Debug("No active dialog, ignoring message",
			zap.Int64("telegram_id", telegramID))
		return
	}

	h.logger.Info("Dialog step message",
		zap.Int64("telegram_id", telegramID),
		zap.String("step", string(step)))

	switch step {
	case state.StepDate:
		h.handleDateStep(ctx, b, update)
	case state.StepParty:
		h.handlePartyStep(ctx, b, update)
	case state.StepTime:
		h.handleTimeStep(ctx, b, update)
	case state.StepSets:
		h.handleSetsStep(ctx, b, update)
	case state.StepName:
		h.handleNameStep(ctx, b, update)
	case state.StepPhone:
		h.handlePhoneStep(ctx, b, update)
	case state.StepComment:
		h.handleCommentStep(ctx, b, update)
	case state.StepConfirm:
		// Ждём нажатия инлайн-кнопки, свободный текст игнорируем
	default:
		h.logger.Warn("Unknown dialog step", zap.String("step", string(step)))
	}
}
