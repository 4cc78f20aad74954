package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"commerce-backend/internal/api"
	"commerce-backend/internal/auth"
	"commerce-backend/internal/cache"
	"commerce-backend/internal/config"
	"commerce-backend/internal/consumer"
	"commerce-backend/internal/payment"
	"commerce-backend/internal/repository"
	"commerce-backend/internal/service"
	"commerce-backend/internal/token"
	"commerce-backend/migrations"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB")
				return db, nil
			}
		}
		log.Printf("Retry %d: failed to connect to DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %v", err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectDB(cfg.DB.DSN())
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(db, 3); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	store := cache.NewRedis(rdb)

	orderWriter := config.NewKafkaWriter("order-topic")
	paymentWriter := config.NewKafkaWriter("payment-notifications")

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	tokens := token.NewService(cfg.JWTSecret, cfg.JWTLifetime)
	gateway := payment.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.AccessToken)

	userService := service.NewUserService(userRepo, orderRepo, tokens)
	productService := service.NewProductService(productRepo, store)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, store, service.NewKafkaPublisher(orderWriter))
	paymentService := service.NewPaymentService(gateway, store, service.NewKafkaPublisher(paymentWriter),
		cfg.Gateway.PublicKey, cfg.AllowedOrigins)

	userHandler := api.NewUserHandler(userService)
	productHandler := api.NewProductHandler(productService)
	orderHandler := api.NewOrderHandler(orderService)
	paymentHandler := api.NewPaymentHandler(paymentService)

	notificationConsumer := consumer.NewConsumer(gateway, orderService)
	go notificationConsumer.StartKafkaConsumer(config.NewKafkaReader("payment-notifications", "commerce-backend-group"))

	gate := auth.NewGate(auth.DefaultRules, tokens, userRepo)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     40,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(cfg.AllowedOrigins, ","),
	}))
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(gate.Middleware())
	e.Use(gate.Enforce())

	e.POST("/auth/register", userHandler.Register)
	e.POST("/auth/login", userHandler.Login)

	e.GET("/users", userHandler.ListUsers)
	e.POST("/users", userHandler.CreateUser)
	e.GET("/users/email/:email", userHandler.GetUserByEmail)
	e.GET("/users/:id", userHandler.GetUserByID)
	e.PUT("/users/:id", userHandler.UpdateUser)
	e.DELETE("/users/:id", userHandler.DeleteUser)
	e.GET("/users/:id/orders", userHandler.UserOrders)
	e.GET("/users/:id/orders/count", userHandler.CountUserOrders)

	e.GET("/products", productHandler.ListProducts)
	e.POST("/products", productHandler.CreateProduct)
	e.GET("/products/search", productHandler.SearchProducts)
	e.GET("/products/category/:category", productHandler.ListProductsByCategory)
	e.GET("/products/:id", productHandler.GetProductByID)
	e.PUT("/products/:id", productHandler.UpdateProduct)
	e.DELETE("/products/:id", productHandler.DeleteProduct)

	e.POST("/orders", orderHandler.CreateOrder)
	e.GET("/orders", orderHandler.ListOrders)
	e.GET("/orders/user/:userId", orderHandler.ListOrdersByUser)
	e.GET("/orders/:id", orderHandler.GetOrderByID)
	e.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
	e.PUT("/orders/:id", orderHandler.UpdateOrder)
	e.DELETE("/orders/:id", orderHandler.DeleteOrder)

	e.POST("/payments/create-preference", paymentHandler.CreatePreference)
	e.POST("/payments/webhook", paymentHandler.Webhook)
	e.GET("/payments/status/:paymentId", paymentHandler.PaymentStatus)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "commerce-backend",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.HTTPPort)))
}
