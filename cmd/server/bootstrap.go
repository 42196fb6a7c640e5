package main

import (
	"os"

	"github.com/thelocal/backend/internal/config"
	"github.com/thelocal/backend/internal/dashboard"
	"github.com/thelocal/backend/internal/diagnostics"
	"github.com/thelocal/backend/internal/handlers"
	"github.com/thelocal/backend/internal/services"
	"github.com/thelocal/backend/internal/settings"
	"github.com/thelocal/backend/pkg/logger"
)

// appServices holds the initialized stores, probes and handlers.
type appServices struct {
	settingsStore  *settings.Store
	dashboardStore *dashboard.Store

	settingsHandler  *handlers.SettingsHandler
	dashboardHandler *handlers.DashboardHandler
	userHandler      *handlers.UserHandler
	inviteHandler    *handlers.InviteHandler
	tailscaleHandler *handlers.TailscaleHandler
	storageHandler   *handlers.StorageHandler
	toolsHandler     *handlers.ToolsHandler
	modelsHandler    *handlers.ModelsHandler
	chatHandler      *handlers.ChatHandler
}

// bootstrap wires stores, diagnostics and handlers together.
func bootstrap(cfg *config.Config) *appServices {
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		logger.Fatalf("Failed to create data dir: %v", err)
	}

	settingsStore := settings.New(cfg.SettingsFile(), cfg.Defaults)
	settingsStore.Load()

	storageMonitor := diagnostics.NewStorageMonitor()
	settingsStore.OnStoragePathChange(func(path string) {
		storageMonitor.Update(path)
	})
	storageMonitor.Update(settingsStore.Value(settings.KeyCloudStoragePath))

	prober := diagnostics.NewTailscaleProber()
	if ip := settingsStore.Value(settings.KeyTailscaleIP); ip != "" {
		// Initial probe off the startup path; the result lands in the cache.
		go prober.Update(ip)
	}

	dashboardStore := dashboard.NewStore(cfg.DashboardFile())
	dashboardStore.Load()

	openaiService := services.NewOpenAIService(settingsStore)
	ollamaService := services.NewOllamaService(settingsStore)

	return &appServices{
		settingsStore:    settingsStore,
		dashboardStore:   dashboardStore,
		settingsHandler:  handlers.NewSettingsHandler(settingsStore),
		dashboardHandler: handlers.NewDashboardHandler(dashboardStore),
		userHandler:      handlers.NewUserHandler(dashboardStore),
		inviteHandler:    handlers.NewInviteHandler(dashboardStore),
		tailscaleHandler: handlers.NewTailscaleHandler(settingsStore, prober),
		storageHandler:   handlers.NewStorageHandler(settingsStore, storageMonitor),
		toolsHandler:     handlers.NewToolsHandler(),
		modelsHandler:    handlers.NewModelsHandler(openaiService, ollamaService),
		chatHandler:      handlers.NewChatHandler(openaiService, ollamaService),
	}
}
