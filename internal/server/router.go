package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursecompass-backend/internal/handlers"
	"github.com/yungbote/coursecompass-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	CourseHandler  *handlers.CourseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireIdentity())
	// Auth
	api.GET("/auth/session-token", cfg.AuthHandler.SessionToken)
	// Courses
	api.POST("/courses", cfg.CourseHandler.CreateCourse)
	api.GET("/courses", cfg.CourseHandler.ListUserCourses)
	api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	api.PATCH("/courses/:id/progress", cfg.CourseHandler.UpdateProgress)

	return router
}
