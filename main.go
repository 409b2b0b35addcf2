package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "elias/app/configs"
	"elias/app/core/ai"
	"elias/app/core/directory"
	"elias/app/core/interaction/cli"
	"elias/app/core/interaction/gateway"
	"elias/app/core/interaction/telegram"
	"elias/app/core/notion"
	"elias/app/core/workflow"
	"elias/app/pkg/logger"
)

func main() {
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("ELiaS Starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	if err := cfgManager.Validate(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("Configuration incomplete: %v", cfgErr)
		} else {
			logger.Error("Configuration invalid: %v", err)
		}
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	store, err := notion.NewClient(notion.Config{
		Token:   cfg.Notion.Token,
		APIRoot: cfg.Notion.APIRoot,
		Timeout: time.Duration(cfg.Notion.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Error("Failed to initialize store client: %v", err)
		os.Exit(1)
	}

	tasks, err := notion.NewTasksService(store, cfg.Notion.TasksDatabaseID)
	if err != nil {
		logger.Error("Failed to initialize tasks service: %v", err)
		os.Exit(1)
	}

	var projects *directory.Directory
	if strings.TrimSpace(cfg.Notion.ProjectsDatabaseID) != "" {
		projectsService, err := notion.NewProjectsService(store, cfg.Notion.ProjectsDatabaseID)
		if err != nil {
			logger.Error("Failed to initialize projects service: %v", err)
			os.Exit(1)
		}
		ttl := time.Duration(cfg.Workflow.ProjectCacheTTLSec) * time.Second
		projects = directory.New(projectsService, ttl)
	} else {
		logger.Info("Projects database not configured, tasks will be created without projects")
		projects = directory.New(nil, directory.DefaultTTL)
	}

	llm, err := ai.NewClient(cfg.AI)
	if err != nil {
		logger.Error("Failed to initialize AI client: %v", err)
		os.Exit(1)
	}

	brain := workflow.NewOrchestrator(llm, tasks, projects, cfg.Workflow)
	gw := gateway.NewGateway(brain)

	gw.RegisterChannel(cli.NewChannel())

	if strings.TrimSpace(cfg.Telegram.BotToken) != "" {
		gw.RegisterChannel(telegram.NewChannel(telegram.Config{
			BotToken:     cfg.Telegram.BotToken,
			PollInterval: time.Duration(cfg.Telegram.PollIntervalSec) * time.Second,
			AdminUserIDs: cfg.Telegram.AdminUserIDs,
		}))
	} else {
		logger.Info("Telegram bot token not configured, running CLI only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := gw.Start(ctx); err != nil {
			logger.Error("Gateway crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("%s is ready to serve.", cfg.Agent.Name)
	fmt.Println("- CLI Interface: Interactive")
	if strings.TrimSpace(cfg.Telegram.BotToken) != "" {
		fmt.Println("- Telegram Bot:  long polling")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. ELiaS Shutting Down...", sig)
	cancel()
}
