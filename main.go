package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"panaderia/internal/handlers"
	"panaderia/internal/middleware"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
	"panaderia/internal/services"
	"panaderia/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_ISSUER", "panaderia-api")
	viper.SetDefault("JWT_AUDIENCE", "panaderia-clients")
	viper.SetDefault("JWT_EXPIRES_MINUTES", 60)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}

	// The token configuration is frozen here; nothing reads viper after
	// wiring is done.
	tokenConfig := services.TokenConfig{
		Secret:         jwtSecret,
		Issuer:         viper.GetString("JWT_ISSUER"),
		Audience:       viper.GetString("JWT_AUDIENCE"),
		ExpiresMinutes: viper.GetInt("JWT_EXPIRES_MINUTES"),
	}

	// --- Database ---
	db, err := openDatabase(viper.GetString("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	seedData(db)

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, sale events disabled")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	saleRepo := repositories.NewGORMSaleRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, tokenConfig)
	productService := services.NewProductService(productRepo)
	userService := services.NewUserService(userRepo)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	saleService := services.NewSaleService(saleRepo, publisher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	saleHandler := handlers.NewSaleHandler(saleService)
	userHandler := handlers.NewUserHandler(userService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Use(logger.New())

	// --- Guards ---
	authRequired := middleware.AuthRequired(authService)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	sellerOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleVendedor)

	// --- API routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, authRequired, adminOnly)
	saleHandler.RegisterRoutes(apiV1, authRequired, sellerOrAdmin, adminOnly)
	userHandler.RegisterRoutes(apiV1, authRequired, adminOnly)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Sale event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for sale events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received sale event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeSaleEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase connects to postgres when a DSN is configured and falls
// back to a local sqlite file otherwise.
func openDatabase(dsn string) (*gorm.DB, error) {
	if dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open("panaderia.db"), &gorm.Config{})
}

// seedData loads the initial accounts and catalog on an empty database.
func seedData(db *gorm.DB) {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Printf("Error checking existing users: %v", err)
		return
	}
	if userCount > 0 {
		return
	}

	users := []models.User{
		{Email: "admin@panaderia.com", Password: "admin123", Role: models.RoleAdmin},
		{Email: "vendedor@panaderia.com", Password: "vendedor123", Role: models.RoleVendedor},
	}
	products := []models.Product{
		{Name: "Pan Francés", Price: decimal.NewFromFloat(0.25), Stock: 100, Category: "Pan"},
		{Name: "Pan Dulce", Price: decimal.NewFromFloat(0.50), Stock: 50, Category: "Pan"},
		{Name: "Pastel de Chocolate", Price: decimal.NewFromFloat(15.00), Stock: 10, Category: "Pasteles"},
	}

	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			log.Printf("Error seeding user %s: %v", users[i].Email, err)
		}
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %d)", products[i].Name, products[i].ID)
		}
	}
}
