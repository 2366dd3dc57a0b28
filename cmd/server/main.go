package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "restaurant-inventory/internal/adapters/web"
	"restaurant-inventory/internal/app"
	"restaurant-inventory/internal/core"
	"restaurant-inventory/internal/db"
	"restaurant-inventory/internal/extract"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	unitService := core.NewUnitService(pool)
	ingredientService := core.NewIngredientService(pool)
	ingestionService := core.NewIngestionService(
		pool,
		core.NewColumnarLineParser(),
		core.NewNormalizer(core.DefaultDeptCategories()),
		unitService,
		ingredientService,
		core.DefaultUnitCatalog(),
	)

	svc := app.NewAppService(pool, extract.NewPDFExtractor(), ingestionService, unitService, ingredientService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, log)

	log.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
