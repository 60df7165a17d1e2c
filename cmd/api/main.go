package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/patcharw/ecommerce-backend/internal/address"
	"github.com/patcharw/ecommerce-backend/internal/cart"
	"github.com/patcharw/ecommerce-backend/internal/category"
	"github.com/patcharw/ecommerce-backend/internal/config"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/middleware"
	"github.com/patcharw/ecommerce-backend/internal/order"
	"github.com/patcharw/ecommerce-backend/internal/payment"
	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/patcharw/ecommerce-backend/internal/review"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	app := buildApp(cfg, db)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func openDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildApp(cfg config.Config, db *sql.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ecommerce-backend",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(log.Logger))

	userService := user.NewService(user.NewPostgresRepository(db))
	productService := product.NewService(product.NewPostgresRepository(db))
	categoryService := category.NewService(category.NewPostgresRepository(db))
	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo, productService)
	orderService := order.NewService(order.NewPostgresRepository(db), cartRepo, nil)
	reviewService := review.NewService(review.NewPostgresRepository(db), productService)
	paymentService := payment.NewService(payment.NewPostgresRepository(db), orderService, nil)
	addressService := address.NewService(address.NewPostgresRepository(db))

	userHandler := user.NewHandler(userService, []byte(cfg.JWTSecret))
	productHandler := product.NewHandler(productService)
	categoryHandler := category.NewHandler(categoryService)
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService)
	reviewHandler := review.NewHandler(reviewService, userService)
	paymentHandler := payment.NewHandler(paymentService)
	addressHandler := address.NewHandler(addressService)

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Filter:     isPublicRoute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httperr.Unauthorized(c)
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)

	orderHandler.RegisterAdminRoutes(app, middleware.RequireAdmin())

	admin := app.Group("/api/admin", middleware.RequireAdmin())
	productHandler.RegisterAdminRoutes(admin)

	return app
}

// isPublicRoute skips JWT parsing for the catalog reads and auth
// endpoints registered before the middleware.
func isPublicRoute(c *fiber.Ctx) bool {
	path := c.Path()
	if strings.HasPrefix(path, "/api/auth/") {
		return true
	}
	if c.Method() != fiber.MethodGet {
		return false
	}
	return strings.HasPrefix(path, "/api/products") || strings.HasPrefix(path, "/api/categories")
}
