package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/handlers"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/middleware"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/routes"
)

func main() {
	config.LoadEnv()
	config.ConnectDB()
	config.ConnectRedis()

	handlers.InitServices()
	go handlers.GlobalHub.Run()

	r := gin.Default()
	r.MaxMultipartMemory = 16 << 20

	routes.RegisterAuthRoutes(r)

	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	routes.RegisterAPIRoutes(authRequired)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
