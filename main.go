package main

import (
	"TimerBot/bot"
	"TimerBot/bot/chat"
	"TimerBot/bot/chat/timer"
	"TimerBot/impl/core"
	"TimerBot/internal/config"
	"TimerBot/internal/database"
	"TimerBot/internal/http-server/api"
	"TimerBot/internal/lib/logger"
	"TimerBot/internal/lib/sl"
	"TimerBot/internal/service/harvest"
	"TimerBot/internal/ws"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// store is a database backend holding sessions, history and API keys.
type store interface {
	core.Repository
	chat.ChainRepository
	GenerateApiKey(username string) (string, error)
}

func main() {

	// secrets may come from a .env file next to the binary
	_ = godotenv.Load()

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	issueKey := flag.String("issue-key", "", "print the API key of the username, issuing one if needed, and exit")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	db, err := openStore(conf, lg)
	if err != nil {
		lg.Error("open storage", sl.Err(err))
		return
	}

	if *issueKey != "" {
		if db == nil {
			lg.Error("api keys need mongo or sqlite session storage")
			return
		}
		key, err := db.GenerateApiKey(*issueKey)
		if err != nil {
			lg.Error("issue api key", sl.Err(err))
			return
		}
		fmt.Println(key)
		return
	}

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting timerbot",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("session_storage", conf.Session.Storage),
	)
	lg.Debug("debug messages enabled")

	var storage chat.ChainStorage = chat.NewMemoryStorage(conf.Session.TTL)
	if db != nil {
		storage = chat.NewRepositoryStorage(db)
	}
	sessions := chat.NewSessionStore(storage, lg)
	resolver := chat.NewResolver(sessions, lg)

	if conf.Harvest.BaseURL == "" {
		lg.Error("harvest base url is not configured")
		return
	}
	tracker := harvest.NewHarvestService(conf, lg)
	if err = timer.Register(resolver, sessions, tracker, lg); err != nil {
		lg.Error("register timer dialogues", sl.Err(err))
		return
	}

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)
	handler.SetResolver(resolver)
	resolver.SetMessageListener(handler)
	if db != nil {
		handler.SetRepository(db)
	}

	hub := ws.NewHub(lg.With(sl.Module("ws")))
	hub.SetHandler(handler)
	handler.SetWsHub(hub)
	go hub.Run()

	if tgBot != nil {
		tgBot.SetMessageHandler(handler)
		go func() {
			if err := tgBot.Start(); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
		}()
	}

	if conf.Discord.Enabled {
		discordBot, err := bot.NewDiscordBot(conf.Discord.Token, lg)
		if err != nil {
			lg.Error("failed to initialize discord bot", sl.Err(err))
		} else {
			discordBot.SetMessageHandler(handler)
			if err = discordBot.Start(); err != nil {
				lg.Error("discord bot error", sl.Err(err))
			} else {
				defer discordBot.Close()
			}
		}
	}

	if !conf.Listen.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		lg.Info("service stopped")
		return
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}

func openStore(conf *config.Config, lg *slog.Logger) (store, error) {
	switch conf.Session.Storage {
	case "", "memory":
		return nil, nil
	case "mongo":
		db, err := repository.NewMongoClient(conf, lg)
		if err != nil {
			return nil, err
		}
		if err = db.EnsureChainIndexes(context.Background(), conf.Session.TTL); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
		return db, nil
	case "sqlite":
		db, err := repository.NewSQLite(conf.Sqlite.Path, conf.Session.TTL, lg)
		if err != nil {
			return nil, err
		}
		lg.Info("sqlite storage initialized", slog.String("path", conf.Sqlite.Path))
		return db, nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", conf.Session.Storage)
	}
}
