package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang-food-cart/configs"
	"golang-food-cart/internal/cart"
	"golang-food-cart/internal/catalog"
	"golang-food-cart/internal/checkout"
	"golang-food-cart/internal/events"
	"golang-food-cart/internal/handlers"
	"golang-food-cart/internal/middleware"
	"golang-food-cart/internal/persistence"
	"golang-food-cart/pkg/auth"
	"golang-food-cart/pkg/database"
	"golang-food-cart/pkg/logger"
	"golang-food-cart/pkg/messaging"
	"golang-food-cart/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	log := logger.New(config.Log.Level, config.Log.Format)

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable cart storage, in-memory when the backend is unreachable
	store := openStorage(ctx, config.Storage, log)
	defer store.Close()

	adapter := persistence.NewAdapter(store, config.Storage.Key, config.Storage.Timeout, log)
	cartStore := cart.NewStore(
		cart.WithInitialCart(adapter.Rehydrate(ctx)),
		cart.WithLogger(log),
	)
	adapter.Attach(cartStore)
	defer adapter.Close()

	// Initialize Kafka
	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if config.Kafka.Enabled {
		publisher = messaging.NewKafkaProducer(config.Kafka.Brokers)
		log.WithField("brokers", config.Kafka.Brokers).Info("Kafka publishing enabled")
	}
	defer publisher.Close()

	sessionID := uuid.NewString()
	detachEvents := events.NewCartPublisher(publisher, config.Kafka.CartTopic, sessionID, log).Attach(cartStore)
	defer detachEvents()

	// Menu item lookups
	menu, closeCatalog, err := openCatalog(ctx, config.Catalog, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize catalog")
	}
	defer closeCatalog()

	fees := checkout.Fees{Delivery: config.Checkout.DeliveryFee, Service: config.Checkout.ServiceFee}
	checkoutService := checkout.NewService(cartStore, publisher, config.Kafka.OrderTopic, fees, log)

	// Initialize middleware
	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartStore, menu, log)
	checkoutHandler := handlers.NewCheckoutHandler(cartStore, checkoutService, log)
	sessionHandler := handlers.NewSessionHandler(cartStore)

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(config.Server.AllowOrigins))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "golang-food-cart",
			"storage":    config.Storage.Driver,
			"session_id": sessionID,
		})
	})

	// API routes
	api := router.Group("/api/v1")

	// Register routes
	cartHandler.RegisterRoutes(api, authMiddleware)
	checkoutHandler.RegisterRoutes(api, authMiddleware)
	sessionHandler.RegisterRoutes(api, authMiddleware)

	server := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Graceful shutdown failed")
		}
	}()

	log.WithField("port", config.Server.Port).Info("Server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Server error")
	}
}

func openStorage(ctx context.Context, cfg configs.StorageConfig, log logrus.FieldLogger) storage.Storage {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := storage.Open(connectCtx, storage.Options{
		Driver:        cfg.Driver,
		Dir:           cfg.Dir,
		RedisAddr:     cfg.RedisURL,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisTTL:      cfg.RedisTTL,
		PostgresURL:   cfg.PostgresURL,
		MySQLDSN:      cfg.MySQLDSN,
		SQLitePath:    cfg.SQLitePath,
	})
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Driver).Warn("Cart storage unavailable, keeping the cart in memory only")
		return storage.NewMemoryStorage()
	}
	log.WithField("driver", cfg.Driver).Info("Cart storage ready")
	return store
}

func openCatalog(ctx context.Context, cfg configs.CatalogConfig, log logrus.FieldLogger) (catalog.Catalog, func(), error) {
	switch cfg.Source {
	case "mongo":
		db, err := database.NewMongoDB(ctx, cfg.MongoURL, cfg.MongoDBName, cfg.Timeout, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("Failed to disconnect MongoDB")
			}
		}
		return catalog.NewMongoCatalog(db.Database), closeFn, nil
	case "http", "":
		log.WithField("base_url", cfg.BaseURL).Info("Using HTTP catalog")
		return catalog.NewHTTPCatalog(cfg.BaseURL, cfg.Token, cfg.Timeout), func() {}, nil
	default:
		return nil, nil, errors.New("unknown catalog source " + cfg.Source)
	}
}
