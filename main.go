package main

import (
	"Genie/bot"
	"Genie/bot/chat"
	"Genie/bot/chat/profile"
	"Genie/bot/chat/urlcheck"
	"Genie/bot/dialog"
	"Genie/impl/core"
	"Genie/internal/config"
	"Genie/internal/database"
	"Genie/internal/http-server/api"
	"Genie/internal/lib/logger"
	"Genie/internal/lib/sl"
	"Genie/internal/service/reputation"
	"flag"
	"log/slog"
	"os"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else if conf.Telegram.AdminId != 0 {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
		}
	}

	lg.Info("starting genie", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	var storage dialog.StateStore = dialog.NewMemoryStateStorage()
	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		storage = dialog.NewMongoStateStorage(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		lg.Warn("conversation state kept in memory")
	}

	rep := reputation.NewReputationService(conf, lg)
	lg.With(
		slog.String("url", conf.Reputation.BaseURL),
	).Info("reputation service initialized")

	dialogs := dialog.NewSet(lg)
	if err = profile.Register(dialogs, lg); err != nil {
		lg.Error("register profile dialog", sl.Err(err))
		os.Exit(1)
	}
	if err = urlcheck.Register(dialogs, rep, lg); err != nil {
		lg.Error("register urlcheck dialog", sl.Err(err))
		os.Exit(1)
	}

	engine, err := chat.NewChatEngine(storage, dialogs, conf.Bot.DefaultDialog, conf.Bot.Name, lg)
	if err != nil {
		lg.Error("chat engine", sl.Err(err))
		os.Exit(1)
	}

	handler := core.New(lg)
	handler.SetEngine(engine)
	handler.SetBotAccount(conf.Bot.ID, conf.Bot.Name)
	handler.SetAuthKey(conf.Listen.ApiKey)

	if tgBot != nil {
		tgBot.SetTurnHandler(handler)
		lg.With(
			slog.String("bot_name", conf.Telegram.BotName),
		).Info("telegram bot initialized")

		go func() {
			if err := tgBot.Start(); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
		}()
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
