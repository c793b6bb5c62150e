package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/notehub/notehub/config"
	"github.com/notehub/notehub/internal/api/handlers"
	"github.com/notehub/notehub/internal/api/middleware"
	"github.com/notehub/notehub/internal/api/routes"
	"github.com/notehub/notehub/internal/cache"
	"github.com/notehub/notehub/internal/logger"
	"github.com/notehub/notehub/internal/models"
	pgrepo "github.com/notehub/notehub/internal/repositories/postgres"
	"github.com/notehub/notehub/internal/services"
	"github.com/notehub/notehub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	log.Info("PostgreSQL connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.Profile{},
		&models.Resource{},
		&models.Review{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	blobs, err := newStorage()
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	profileRepo := pgrepo.NewProfileRepo(config.PostgresDB)
	resourceRepo := pgrepo.NewResourceRepo(config.PostgresDB)
	reviewRepo := pgrepo.NewReviewRepo(config.PostgresDB)

	rc := cache.NewRedisCache(config.RedisClient)

	profileSvc := services.NewProfileService(profileRepo)
	resourceSvc := services.NewResourceService(resourceRepo, profileRepo, profileSvc, blobs, rc)
	reviewSvc := services.NewReviewService(reviewRepo, resourceRepo, profileRepo, rc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Profile:  handlers.NewProfileHandler(profileSvc),
		Resource: handlers.NewResourceHandler(resourceSvc),
		Review:   handlers.NewReviewHandler(reviewSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// newStorage picks the blob-store backend: GCS by default, GridFS when
// STORAGE_BACKEND=gridfs.
func newStorage() (storage.Storage, error) {
	if os.Getenv("STORAGE_BACKEND") == "gridfs" {
		if err := config.InitMongo(); err != nil {
			return nil, err
		}
		dbName := os.Getenv("MONGO_DB")
		if dbName == "" {
			dbName = "notehub"
		}
		return storage.NewGridFSStorage(config.MongoClient.Database(dbName))
	}

	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		bucket = "notehub-resources"
	}
	return storage.NewGCSStorage(context.Background(), bucket)
}
