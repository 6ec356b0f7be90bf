package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendTimeout ограничение на один вызов Telegram API.
const sendTimeout = 10 * time.Second

// TelegramNotifier личные сообщения гостям через основного бота.
type TelegramNotifier struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewTelegramNotifier(b *bot.Bot, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: b, logger: logger}
}

// Send отправляет сообщение в чат в пределах sendTimeout. Ошибка уходит
// вызывающему: переходы статусов доставку не ждут и не откатывают.
// Текст размечается HTML, в него попадают только служебные строки.
func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// AdminAlerter служебные алерты по новым заявкам. Работает через
// отдельного алерт-бота, если тот настроен, иначе через основного.
type AdminAlerter struct {
	bot     *bot.Bot
	chatIDs []int64
	logger  *zap.Logger
}

func NewAdminAlerter(b *bot.Bot, chatIDs []int64, logger *zap.Logger) *AdminAlerter {
	return &AdminAlerter{bot: b, chatIDs: chatIDs, logger: logger}
}

// Broadcast рассылает алерт во все настроенные чаты, добавляя кнопки
// быстрых действий по заявке. Неудачная доставка в один чат логируется
// и не мешает остальным.
func (a *AdminAlerter) Broadcast(ctx context.Context, reservationID int64, text string) {
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "✅ Подтвердить", CallbackData: fmt.Sprintf("adm_confirm:%d", reservationID)},
			{Text: "❌ Отменить", CallbackData: fmt.Sprintf("adm_cancel:%d", reservationID)},
		}},
	}

	for _, chatID := range a.chatIDs {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		_, err := a.bot.SendMessage(sendCtx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
		cancel()
		if err != nil {
			a.logger.Warn("Failed to send admin alert",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}
}
