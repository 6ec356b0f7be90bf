package controller

import (
	"context"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/config"
	"github.com/BadSnail11/Bookingbot/internal/controller/callbacks"
	"github.com/BadSnail11/Bookingbot/internal/controller/handlers"
	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requestTimeout ограничение на обработку одного апдейта
const requestTimeout = 30 * time.Second

// RequestTimeout middleware, ограничивающий время обработки каждого
// апдейта. Подключается при создании бота через bot.WithMiddlewares.
func RequestTimeout(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		next(ctx, b, update)
	}
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	cfg *config.Config,
	tt *timetable.Timetable,
	guestService *service.GuestService,
	bookingService *service.BookingService,
	availability *service.AvailabilityService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *BotController {
	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		cfg,
		tt,
		guestService,
		bookingService,
		availability,
		stateManager,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		cfg,
		tt,
		guestService,
		bookingService,
		stateManager,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Гостевые команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/contacts", bot.MatchTypeExact, c.handlers.HandleContacts)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book", bot.MatchTypeExact, c.handlers.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/my", bot.MatchTypeExact, c.handlers.HandleMy)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды администратора. /confirm и /cancel_res принимают id
	// аргументом, поэтому матчатся по префиксу
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypeExact, c.handlers.HandlePending)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/confirm", bot.MatchTypePrefix, c.handlers.HandleConfirm)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel_res", bot.MatchTypePrefix, c.handlers.HandleCancelReservation)

	// Обработчик текстовых сообщений (шаги анкеты)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота.
// Админские команды в меню не показываются.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "book", Description: "📅 Забронировать стол"},
		{Command: "my", Description: "📋 Мои бронирования"},
		{Command: "contacts", Description: "📞 Контакты заведения"},
		{Command: "help", Description: "❓ Помощь"},
		{Command: "cancel", Description: "↩️ Отменить оформление брони"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
