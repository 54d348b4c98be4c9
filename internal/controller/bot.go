package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// DialogTTL - через сколько незавершённый диалог сбрасывается
const DialogTTL = 30 * time.Minute

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	stateManager    *state.Manager
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	engine *service.ReservationService,
	profiles *service.ProfileService,
	reviews *service.ReviewService,
	quickLimit int,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		engine,
		profiles,
		reviews,
		stateManager,
		quickLimit,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		engine,
		profiles,
		reviews,
		stateManager,
		quickLimit,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		stateManager:    stateManager,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Общие команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/subjects", bot.MatchTypeExact, c.handlers.HandleSubjects)

	// Команды для студентов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/dashboard", bot.MatchTypeExact, c.handlers.HandleDashboard)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/quick", bot.MatchTypeExact, c.handlers.HandleQuick)

	// Команды для репетиторов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/requests", bot.MatchTypeExact, c.handlers.HandleRequests)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/available", bot.MatchTypeExact, c.handlers.HandleAvailable)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "dashboard", Description: "📋 Мои записи (студент)"},
		{Command: "quick", Description: "✨ Быстрый выбор репетитора (студент)"},
		{Command: "subjects", Description: "📚 Список предметов"},
		{Command: "requests", Description: "👥 Записи студентов (репетитор)"},
		{Command: "available", Description: "📊 Приём записей (репетитор)"},
		{Command: "cancel", Description: "✖️ Отменить текущий диалог"},
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

// ExpireDialogs сбрасывает незавершённые диалоги старше DialogTTL
func (c *BotController) ExpireDialogs(context.Context) {
	if n := c.stateManager.Expire(DialogTTL); n > 0 {
		c.logger.Info("Expired bot dialogs", zap.Int("count", n))
	}
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
