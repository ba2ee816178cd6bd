package main

import (
	"log"

	"github.com/codefoundry/foundry-backend/config"
	"github.com/codefoundry/foundry-backend/internal/bootstrap"
	"github.com/codefoundry/foundry-backend/internal/finetune"
	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/hub"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	st := store.NewSeeded(cfg.Ollama.MaxDatasetChars)
	streamHub := hub.New()
	gateway := ollama.New(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.ChatTimeout)
	orchestrator := finetune.New(st, gateway, cfg.Ollama.MaxDatasetChars)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "foundry-backend",
		Version:        cfg.App.Version,
		Store:          st,
		Hub:            streamHub,
		Chat:           gateway,
		Orchestrator:   orchestrator,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
