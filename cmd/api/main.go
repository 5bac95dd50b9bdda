package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/nmbsms/scholarship-backend/internal/blacklist"
	"github.com/nmbsms/scholarship-backend/internal/config"
	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/nmbsms/scholarship-backend/internal/database/pg"
	"github.com/nmbsms/scholarship-backend/internal/database/seed"
	"github.com/nmbsms/scholarship-backend/internal/http/router"
	"github.com/nmbsms/scholarship-backend/internal/logging"
)

func main() {
	// load environment variables
	cfg := config.GetConfig()
	log.Println("Loaded environment", cfg.Environment)

	logging.SetupLogger("")

	switch cfg.Environment {
	case "development":
		gin.SetMode(gin.DebugMode)
	case "production":
		gin.SetMode(gin.ReleaseMode)
	}
	log.Printf("Gin mode set to: %s", gin.Mode())

	if cfg.JWTSecret == "" {
		log.Fatal("Server configuration error: JWT_SECRET must be set")
	}

	// initialize database connection
	db, err := pg.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := model.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	if err := seed.Admins(db, cfg); err != nil {
		log.Fatal("Failed to seed admin accounts: ", err)
	}

	// hourly blacklist sweep, independent of request traffic
	cleaner := blacklist.NewCleaner(blacklist.NewStore(db), cfg.SweepInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleaner.Run(ctx)

	r := router.New(db, cfg)
	slog.Info("Starting server on port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
