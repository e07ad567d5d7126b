package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"gmportal/internal/auth"
	"gmportal/internal/config"
	"gmportal/internal/db"
	"gmportal/internal/discord"
	"gmportal/internal/upload"
	"gmportal/internal/vtt"
)

//go:embed static/*
var staticFS embed.FS

var (
	cfg      config.Config
	store    *db.Store
	authsvc  *auth.Service
	notifier *discord.Dispatcher
	uploader *upload.Saver
	tracker  *vtt.Tracker
	logger   *slog.Logger
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var err error
	cfg, err = config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	store, err = db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if username, password, err := store.SeedDeveloper(ctx); err != nil {
		logger.Error("seed developer account", "err", err)
		os.Exit(1)
	} else if username != "" {
		logger.Info("seeded developer account", "username", username, "password", password)
	}
	if err := store.PruneLegacySessions(ctx); err != nil {
		logger.Warn("prune legacy sessions", "err", err)
	}

	authsvc = auth.NewService(store, cfg.JWTSecret, cfg.CredentialTTL)
	notifier = discord.NewDispatcher(store, cfg.BaseURL, cfg.WebhookBotName, cfg.WebhookTimeout, logger)
	uploader = &upload.Saver{Root: cfg.UploadDir}
	tracker = vtt.NewTracker()

	initTemplates()
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("create upload dir", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	// Static assets and uploaded media
	staticSub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	mux.Handle("GET /img/", http.StripPrefix("/img/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Public routes
	mux.HandleFunc("GET /{$}", maintenanceGate(handleHome))
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("GET /register", handleRegisterPage)
	mux.HandleFunc("POST /register", handleRegister)
	mux.HandleFunc("GET /c/{slug}", maintenanceGate(handleCampaignFeed))
	mux.HandleFunc("GET /c/{slug}/news/{id}", maintenanceGate(handleCampaignNewsDetail))

	// Virtual tabletop integration API
	mux.HandleFunc("POST /api/integration/ping", handleVTTPing)
	mux.HandleFunc("GET /api/integration/status", handleVTTStatus)
	mux.HandleFunc("GET /api/integration/last-session", handleLastSession)

	// Authenticated routes
	app := http.NewServeMux()
	app.HandleFunc("POST /logout", handleLogout)
	app.HandleFunc("GET /profile", handleProfile)
	app.HandleFunc("POST /profile", handleProfileUpdate)
	app.HandleFunc("POST /profile/image", handleProfileImage)
	app.HandleFunc("POST /profile/password", handleChangePassword)

	app.HandleFunc("GET /admin", requireMaster(handleNewsList))
	app.HandleFunc("GET /admin/news/create", requireMaster(handleNewsCreateForm))
	app.HandleFunc("POST /admin/news/create", requireMaster(handleNewsCreate))
	app.HandleFunc("GET /admin/news/{id}", requireMaster(handleNewsDetail))
	app.HandleFunc("GET /admin/news/{id}/edit", requireMaster(handleNewsEditForm))
	app.HandleFunc("POST /admin/news/{id}/edit", requireMaster(handleNewsEdit))
	app.HandleFunc("POST /admin/news/{id}/delete", requireMaster(handleNewsDelete))

	app.HandleFunc("GET /admin/campaigns", requireMaster(handleCampaignList))
	app.HandleFunc("GET /admin/campaigns/create", requireMaster(handleCampaignCreateForm))
	app.HandleFunc("POST /admin/campaigns/create", requireMaster(handleCampaignCreate))
	app.HandleFunc("GET /admin/campaigns/{id}/edit", requireMaster(handleCampaignEditForm))
	app.HandleFunc("POST /admin/campaigns/{id}/edit", requireMaster(handleCampaignEdit))
	app.HandleFunc("POST /admin/campaigns/{id}/delete", requireMaster(handleCampaignDelete))
	app.HandleFunc("POST /admin/campaigns/{id}/webhook", requireMaster(handleWebhookSave))
	app.HandleFunc("POST /admin/campaigns/{id}/webhook/test", requireMaster(handleWebhookTest))

	app.HandleFunc("GET /admin/accounts", requireAdmin(handleAccountList))
	app.HandleFunc("POST /admin/accounts/create", requireAdmin(handleAccountCreate))
	app.HandleFunc("POST /admin/accounts/{id}/delete", requireAdmin(handleAccountDelete))
	app.HandleFunc("POST /admin/maintenance", requireAdmin(handleMaintenanceToggle))

	mux.Handle("/", authMiddleware(app))

	logger.Info("portal listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
