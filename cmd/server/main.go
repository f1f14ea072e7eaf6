package main // Entry point package

import (
	"context" // request-scoped cancellation for the warm-up queries
	"log"     // Logging library
	"time"

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avdeev/script-access/internal/cache"
	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/config"
	"github.com/avdeev/script-access/internal/database"
	"github.com/avdeev/script-access/internal/handler"
	"github.com/avdeev/script-access/internal/queue"
	"github.com/avdeev/script-access/internal/repository"
	"github.com/avdeev/script-access/internal/router"
	"github.com/avdeev/script-access/internal/service"
	"github.com/avdeev/script-access/internal/session"
)

func main() {
	// Load .env first so config.Load sees local overrides.  Missing file is
	// fine in production where the environment is set externally.
	_ = godotenv.Load()

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	retryCfg := config.LoadRetryConfig()
	dialogCfg := config.LoadDialogConfig()
	rlCfg := config.LoadRateLimitConfig()

	// Open the MySQL pool and wrap it in the retry store.  The service can
	// start even when the database is briefly down; the readiness gate in
	// the retry layer keeps requests failing soft until it comes back.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("mysql: open failed, starting degraded: %v", err)
	}
	store := database.NewStore(db, retryCfg.Attempts, retryCfg.Delay)

	// Redis backs the dialog scratch store and the spam-control buckets.
	// A nil client degrades both gracefully.
	rdb := config.NewRedisClient()

	accessRepo := repository.NewAccessRepo(store)
	banRepo := repository.NewBanRepo(store)
	suggestionRepo := repository.NewSuggestionRepo(store)

	accessCache := cache.NewAccessCache(cacheCfg.MaxEntries, cacheCfg.TTL)
	banRegistry := cache.NewBanRegistry()
	warmUp(accessRepo, banRepo, accessCache, banRegistry)

	notifier := service.NewAMQPNotifier()
	sessions := session.NewSessions()
	dialogs := session.NewDialogStore(rdb, dialogCfg.TTL, dialogCfg.Prefix)

	accessSvc := service.NewAccessService(accessRepo, accessCache, banRegistry)
	banSvc := service.NewBanService(banRepo, accessRepo, banRegistry, accessCache, notifier)
	approvalSvc := service.NewApprovalService(accessRepo, accessCache, banRegistry, banSvc, sessions, notifier)
	suggestionSvc := service.NewSuggestionService(suggestionRepo, accessSvc, notifier)
	broadcastSvc := service.NewBroadcastService(accessRepo, banRegistry, notifier)

	// Drain the notification queue in the background.  The consumer
	// reconnects on its own when the broker drops.
	go func() {
		if err := queue.StartNotifyConsumer(nil); err != nil {
			log.Printf("rabbitmq: consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(&cfg))
	router.RegisterUser(e, &handler.UserHandler{
		Access:      accessSvc,
		Approval:    approvalSvc,
		Bans:        banSvc,
		Suggestions: suggestionSvc,
		Dialogs:     dialogs,
	}, rlCfg, rdb)
	router.RegisterAdmin(e, &handler.AdminHandler{
		Access:      accessSvc,
		Approval:    approvalSvc,
		Bans:        banSvc,
		Suggestions: suggestionSvc,
		Broadcast:   broadcastSvc,
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// warmUp pre-loads the ban registry and the access cache so the first
// requests after a restart answer from memory.  Failures are logged and
// ignored; both structures fill lazily anyway.
func warmUp(accessRepo *repository.AccessRepo, banRepo *repository.BanRepo, ac *cache.AccessCache, br *cache.BanRegistry) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if entries, err := banRepo.List(ctx); err != nil {
		log.Printf("warmup: loading bans: %v", err)
	} else {
		for _, e := range entries {
			br.Add(e.UserID)
		}
		log.Printf("warmup: %d banned users loaded", br.Len())
	}

	if recs, err := accessRepo.ListApproved(ctx); err != nil {
		log.Printf("warmup: loading approved users: %v", err)
	} else {
		loaded := 0
		for _, rec := range recs {
			set := capability.Decode(rec.Approved)
			if set == nil || !rec.UserID.Valid {
				continue
			}
			ac.Put(rec.UserID.Int64, rec.Nickname, set)
			loaded++
		}
		log.Printf("warmup: %d approved users cached", loaded)
	}
}
