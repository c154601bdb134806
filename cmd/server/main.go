package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	httpapi "storefront/internal/controllers/http"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redis"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: pool handle: %v", err)
	}
	defer sqlDB.Close()

	categoryRepo := mysqlrepo.NewCategoryRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	orderRepo := mysqlrepo.NewOrderRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Println("RABBITMQ_URL not set, order events are dropped")
	}

	catalog := services.NewCatalogService(categoryRepo, productRepo)
	if cfg.RedisHost != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisHost)
		if err != nil {
			log.Printf("WARNING: %v, product cache disabled", err)
		} else {
			defer redisClient.Close()
			catalog.SetRedisClient(redisClient, cfg.CacheTTL)
			go func() {
				if err := catalog.WarmupProductCache(ctx); err != nil {
					log.Printf("Failed to warm up cache: %v", err)
				}
			}()
		}
	}

	orders := services.NewOrderService(orderRepo, publisher)
	cart := services.NewCartService(productRepo)
	auth := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("admin seed: %v", err)
		}
	}

	handler := httpapi.NewHandler(catalog, cart, orders, auth, cfg.MaxImageBytes)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxImageBytes + 1<<20
	r.Use(gin.Logger(), gin.Recovery(), httpapi.RequestID(), httpapi.CORS(cfg.CORSOrigin))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting storefront on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		orders.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
