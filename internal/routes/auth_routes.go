package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/handlers"
)

// RegisterAuthRoutes registers the public authentication routes.
// These do not require a token.
func RegisterAuthRoutes(r *gin.Engine) {
	// Account creation is open to faculty and supervisors only; students are
	// provisioned through roster uploads.
	r.POST("/register", handlers.RegisterHandler)

	r.POST("/login", handlers.LoginHandler)
	r.GET("/logout", handlers.LogoutHandler)
}
