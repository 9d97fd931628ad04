// Command chatserver accepts broadcast messages over HTTP and fans them out
// to every active room over Redis pub/sub.
package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"

	"broadcast/internal/api"
	"broadcast/internal/repository"
	"broadcast/internal/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "postgres")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	mainRoom := getEnv("MAIN_ROOM", "MainRoom")

	debug, err := strconv.ParseBool(getEnv("DEBUG", "false"))
	if err != nil {
		log.Fatalf("Invalid DEBUG value: %v", err)
	}
	debugInterval, err := time.ParseDuration(getEnv("DEBUG_INTERVAL", "60s"))
	if err != nil {
		log.Fatalf("Invalid DEBUG_INTERVAL value: %v", err)
	}
	if debugInterval <= 0 {
		log.Fatalf("Invalid DEBUG_INTERVAL value: %s must be positive", debugInterval)
	}

	connStr := "host=" + dbHost +
		" port=" + dbPort +
		" user=" + dbUser +
		" password=" + dbPassword +
		" dbname=" + dbName +
		" sslmode=disable"
	repo, err := repository.NewPostgresRepo(connStr)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repo.Close()
	log.Info("Connected to PostgreSQL")

	hub, err := repository.NewRedisHub(redisHost+":"+redisPort, redisPassword)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer hub.Close()
	log.Info("Connected to Redis")

	serv := service.NewBroadcastService(hub, hub, repo, mainRoom)
	scheduler := service.NewScheduler(serv, debugInterval)
	if debug {
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start debug broadcaster: %v", err)
		}
	}

	r := gin.Default()
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	api.RegisterRoutes(r, api.NewAPIHandler(scheduler, serv))

	port := getEnv("PORT", "8888")
	log.Infof("Server starting on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func getEnv(key string, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
