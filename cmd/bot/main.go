// Package main is the entry point for the Hydrogen Discord bot.
// It initializes all systems and starts the Discord client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nashiradeer/hydrogen-go/internal/commands"
	"github.com/nashiradeer/hydrogen-go/internal/discordbot"
	"github.com/nashiradeer/hydrogen-go/internal/events"
	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/config"
	"github.com/nashiradeer/hydrogen-go/pkg/database"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
	"github.com/nashiradeer/hydrogen-go/pkg/eventbus"
	"github.com/nashiradeer/hydrogen-go/pkg/i18n"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
	"github.com/nashiradeer/hydrogen-go/pkg/statusweb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Starting hydrogen-go...", "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	if _, err := i18n.Init(cfg.LanguagePath, cfg.DefaultLanguage); err != nil {
		logger.Critical(fmt.Sprintf("Error loading translations: %v", err), "Main")
		os.Exit(1)
	}

	var discordClient *discord.ExtendedClient
	panel := errpanel.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})
	defer panel.Stop()

	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
	}
	defer func() {
		if db != nil {
			_ = db.Disconnect()
		}
	}()

	if db != nil {
		database.InitGlobalDataManagers(db)
	}

	busClientID := "hydrogen"
	if !cfg.IsProd() {
		busClientID = "hydrogen_canary"
	}
	bus := eventbus.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, busClientID)
	defer bus.Close()

	statusServer := statusweb.Init()
	statusServer.StartAsync(cfg.Port)

	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	voiceManager := discordbot.NewVoiceManager(discordClient)
	channelCache := discordbot.NewChannelCache(discordClient)
	chatClient := discordbot.NewChatClient(discordClient)

	orch := orchestrator.New(orchestrator.Config{
		EmptyChatTimeout: 30 * time.Second,
		FatalExit: func() {
			errpanel.ReportFatal("node pool exhausted", "every Lavalink node disconnected; shutting down")
		},
	}, voiceManager, channelCache, chatClient, i18n.Get())
	orchestrator.Set(orch)

	commands.RegisterAll(discordClient)
	events.RegisterAll(discordClient)

	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		_ = discordClient.Stop()
	}()

	for _, node := range cfg.Lavalink {
		if _, err := orch.AddNode(context.Background(), node.Address, node.Password, node.TLS, discordClient.Session.State.User.ID); err != nil {
			logger.Error(fmt.Sprintf("Error connecting to Lavalink node %s: %v", node.Address, err), "Main")
		}
	}

	logger.Success("hydrogen-go started successfully!", "Main")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down hydrogen-go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
