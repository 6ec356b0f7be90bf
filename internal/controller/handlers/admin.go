package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// parseReservationID извлекает id из команды вида "/confirm 123"
func parseReservationID(text, command string) (int64, bool) {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if args == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.Fields(args)[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// HandlePending обрабатывает команду /pending - заявки в ожидании
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(update) {
		return
	}
	chatID := update.Message.Chat.ID

	rows, names, err := h.bookingService.ListPending(ctx)
	if err != nil {
		h.logger.Error("Failed to list pending reservations", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if len(rows) == 0 {
		h.sendMessage(ctx, b, chatID, "Нет ожидающих заявок.")
		return
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, "Ожидают подтверждения:")
	for _, res := range rows {
		lines = append(lines, h.formatPendingReservation(res, names))
	}
	h.sendMessage(ctx, b, chatID, strings.Join(lines, "\n"))
}

// HandleConfirm обрабатывает команду /confirm <id>
func (h *Handlers) HandleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(update) {
		return
	}
	chatID := update.Message.Chat.ID

	id, ok := parseReservationID(update.Message.Text, "/confirm")
	if !ok {
		h.sendMessage(ctx, b, chatID, "Использование: /confirm <reservation_id>")
		return
	}

	result, err := h.bookingService.Confirm(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.sendMessage(ctx, b, chatID, "Бронь не найдена.")
		case errors.Is(err, service.ErrAlreadyConfirmed):
			h.sendMessage(ctx, b, chatID, "Бронь уже подтверждена.")
		case errors.Is(err, service.ErrNoTableAvailable):
			h.sendMessage(ctx, b, chatID, "Подходящих столов нет для подтверждения.")
		case errors.Is(err, service.ErrTerminalStatus):
			h.sendMessage(ctx, b, chatID, "Бронь уже отменена или остановлена.")
		default:
			h.logger.Error("Failed to confirm reservation",
				zap.Int64("reservation_id", id),
				zap.Error(err))
			h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	tableName := "—"
	if result.AssignedTable != nil {
		tableName = result.AssignedTable.Name
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"Бронь #%d подтверждена, стол %s. Уведомляю пользователя.", id, tableName))
}

// HandleCancelReservation обрабатывает команду /cancel_res <id>
func (h *Handlers) HandleCancelReservation(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(update) {
		return
	}
	chatID := update.Message.Chat.ID

	id, ok := parseReservationID(update.Message.Text, "/cancel_res")
	if !ok {
		h.sendMessage(ctx, b, chatID, "Использование: /cancel_res <reservation_id>")
		return
	}

	if _, err := h.bookingService.Cancel(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.sendMessage(ctx, b, chatID, "Бронь не найдена.")
		case errors.Is(err, service.ErrAlreadyCanceled):
			h.sendMessage(ctx, b, chatID, "Бронь уже отменена.")
		case errors.Is(err, service.ErrTerminalStatus):
			h.sendMessage(ctx, b, chatID, "Бронь остановлена, отменить её нельзя.")
		default:
			h.logger.Error("Failed to cancel reservation",
				zap.Int64("reservation_id", id),
				zap.Error(err))
			h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"Бронь #%d отменена. Оповещаю пользователя.", id))
}
