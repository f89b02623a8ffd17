package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loremaster/internal/access"
	"loremaster/internal/config"
	"loremaster/internal/infrastructure"
	httpapi "loremaster/internal/interfaces/http"
	"loremaster/internal/logger"
	"loremaster/internal/repository"
	"loremaster/internal/usecases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", "json")
		l.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL, infrastructure.PoolConfig{
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	files, err := infrastructure.NewLocalFileStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	// Initialize Repositories
	db := pgClient.Pool
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	factionRepo := repository.NewFactionRepository(db)
	worldInfoRepo := repository.NewWorldInfoRepository(db)
	creatureRepo := repository.NewCreatureRepository(db)
	itemRepo := repository.NewContentItemRepository(db)
	questRepo := repository.NewQuestRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	tagRepo := repository.NewTagRepository(db)
	imageRepo := repository.NewImageRepository(db)
	entityRepo := repository.NewEntityRepository(db)

	// Initialize Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	uc := httpapi.Usecases{
		Auth:       authUsecase,
		Campaigns:  usecases.NewCampaignUsecase(campaignRepo, userRepo, files),
		Characters: usecases.NewCharacterUsecase(characterRepo, campaignRepo, files),
		Locations:  usecases.NewLocationUsecase(locationRepo, files),
		Factions:   usecases.NewFactionUsecase(factionRepo, locationRepo, files),
		WorldInfo:  usecases.NewWorldInfoUsecase(worldInfoRepo, files),
		Creatures:  usecases.NewCreatureUsecase(creatureRepo, files),
		Items:      usecases.NewContentItemUsecase(itemRepo, files),
		Quests:     usecases.NewQuestUsecase(questRepo, sessionRepo, entityRepo, files),
		Sessions:   usecases.NewSessionUsecase(sessionRepo, files),
		Tags:       usecases.NewTagUsecase(tagRepo, entityRepo),
		Images:     usecases.NewImageUsecase(imageRepo, files, entityRepo),
	}

	userLimiter := infrastructure.NewKeyedRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer userLimiter.Close()
	authLimiter := infrastructure.NewKeyedRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	defer authLimiter.Close()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	middleware := httpapi.NewMiddleware(authUsecase, access.NewResolver(campaignRepo), log, cfg.CORSOrigin)
	handler := httpapi.NewHandler(uc, pgClient, log)
	httpapi.SetupRoutes(r, handler, middleware, httpapi.Limits{
		MaxUploadBytes: cfg.MaxUploadBytes,
		UserLimiter:    userLimiter,
		AuthLimiter:    authLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
