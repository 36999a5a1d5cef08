package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/auth"
	"github.com/rogerio-castellano/inventory-master/internal/config"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	"github.com/rogerio-castellano/inventory-master/internal/db"
	api "github.com/rogerio-castellano/inventory-master/internal/http"
	"github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-master/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-master/internal/logger"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
	"github.com/rogerio-castellano/inventory-master/internal/redissvc"
	"github.com/rogerio-castellano/inventory-master/internal/repo"
	"github.com/rogerio-castellano/inventory-master/internal/sse"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type stores struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
	suppliers  repo.SupplierRepository
	movements  repo.MovementRepository
	users      repo.UserRepository
	source     realtime.Source
}

func postgresStores(database *sql.DB, dbURL string) stores {
	return stores{
		products:   repo.NewPostgresProductRepository(database),
		categories: repo.NewPostgresCategoryRepository(database),
		suppliers:  repo.NewPostgresSupplierRepository(database),
		movements:  repo.NewPostgresMovementRepository(database),
		users:      repo.NewPostgresUserRepository(database),
		source:     realtime.NewPGSource(dbURL),
	}
}

// memoryStores wires the in-memory repositories to an in-process change
// source, standing in for the database triggers.
func memoryStores() stores {
	source := realtime.NewMemorySource()

	categories := repo.NewInMemoryCategoryRepository()
	categories.SetPublisher(source)
	suppliers := repo.NewInMemorySupplierRepository()
	suppliers.SetPublisher(source)
	products := repo.NewInMemoryProductRepository()
	products.SetPublisher(source)
	products.SetLabelSources(categories, suppliers)
	categories.SetProductRepo(products)
	suppliers.SetProductRepo(products)

	return stores{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		movements:  repo.NewInMemoryMovementRepository(),
		users:      repo.NewInMemoryUserRepository(),
		source:     source,
	}
}

// ensureAdmin creates the configured administrator if no user has that email.
func ensureAdmin(ctx context.Context, users repo.UserRepository, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	if _, err := users.GetByEmail(ctx, admin.Email); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = users.CreateUser(ctx, models.User{
		Email:        admin.Email,
		FullName:     admin.FullName,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	if err == nil {
		log.Info().Str("email", admin.Email).Msg("admin user created")
	}
	return err
}

// @title Inventory Master API
// @version 1.0
// @description REST API for the inventory dashboard: products, categories, suppliers, users and live metrics.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Str("store", cfg.Store).Msg("starting inventory master")

	auth.SetSecret(cfg.JWTSecret)
	rl.Configure(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st stores
	switch cfg.Store {
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		st = postgresStores(database, cfg.DatabaseURL)
	default:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		st = memoryStores()
	}

	handlers.SetProductRepo(st.products)
	handlers.SetCategoryRepo(st.categories)
	handlers.SetSupplierRepo(st.suppliers)
	handlers.SetMovementRepo(st.movements)
	handlers.SetUserRepo(st.users)

	var cache dashboard.Cache
	if cfg.Redis.Addr != "" {
		redisService, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisService.Close()

		cache = redissvc.NewSnapshotCache(redisService, cfg.Dashboard.SnapshotTTL)
		handlers.SetTokenStore(auth.NewRedisTokenStore(redisService.Rdb()))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	if err := ensureAdmin(ctx, st.users, cfg.Admin); err != nil {
		log.Fatal().Err(err).Msg("could not create admin user")
	}

	hub := sse.NewHub()
	handlers.SetStreamHub(hub)

	svc := dashboard.NewService(
		repo.NewDashboardFetcher(st.products, st.suppliers, st.categories, st.movements),
		dashboard.Options{
			TopN:          cfg.Dashboard.TopN,
			LowStockLimit: cfg.Dashboard.LowStockLimit,
			TrendDays:     cfg.Dashboard.TrendDays,
		},
		cache,
		sse.NewSnapshotNotifier(hub),
	)
	handlers.SetDashboardService(svc)

	sub, err := svc.Mount(ctx, realtime.NewManager(st.source))
	if err != nil {
		log.Fatal().Err(err).Msg("could not subscribe to table changes")
	}
	defer sub.Close()

	go rl.StartVisitorCleanupLoop(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-sub.Done():
		log.Error().Msg("change subscription ended, shutting down")
	}

	log.Info().Msg("shutting down server")
	// Ends open dashboard streams, which would otherwise hold Shutdown open.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
