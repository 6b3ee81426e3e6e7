package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/cache"
	"github.com/storekit/storefront/internal/cart"
	"github.com/storekit/storefront/internal/checkout"
	"github.com/storekit/storefront/internal/coupon"
	"github.com/storekit/storefront/internal/events"
	"github.com/storekit/storefront/internal/httpapi"
	"github.com/storekit/storefront/internal/repository"
	"github.com/storekit/storefront/internal/tenant"
)

type Config struct {
	HTTPPort        string
	BackendBaseURL  string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	CompanyCacheTTL time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:9000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		CompanyCacheTTL: 5 * time.Minute,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(ctx)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	sessionRepo := repository.NewMongoPaymentRepository(mongoDB)
	for _, repo := range []interface{}{cartRepo, sessionRepo} {
		if idx, ok := repo.(repository.Indexer); ok {
			if err := idx.CreateIndexes(ctx); err != nil {
				log.Fatalf("Failed to create indexes: %v", err)
			}
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		kp := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kp.Close()
		publisher = kp
		log.Printf("Publishing order events to %s", cfg.KafkaBrokers)
	}

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.RequestTimeout)
	cartCache := cache.NewRedisCache(redisClient)
	cartService := cart.NewService(cartRepo, cartCache)
	tenantService := tenant.NewService(backendClient, cfg.CompanyCacheTTL)
	validator := checkout.NewValidator(backendClient, backendClient, cartService)
	flow := checkout.NewFlow(backendClient, backendClient, cartService, sessionRepo, publisher)
	couponRegistry := coupon.NewRegistry()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			couponRegistry.Sweep(30 * time.Minute)
		}
	}()

	cartHandler := httpapi.NewCartHandler(cartService, tenantService, backendClient, couponRegistry)
	checkoutHandler := httpapi.NewCheckoutHandler(cartService, tenantService, validator, flow, backendClient)
	addressHandler := httpapi.NewAddressHandler(backendClient)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httpapi.TenantMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemID}/quantity", cartHandler.UpdateQuantity)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/validate", checkoutHandler.Validate)
			r.Post("/payment", checkoutHandler.InitiatePayment)
			r.Post("/payment/verify", checkoutHandler.VerifyPayment)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", addressHandler.List)
			r.Post("/", addressHandler.Create)
			r.Put("/{addressID}", addressHandler.Update)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
