package main

import (
	"fmt"
	"os"

	"github.com/yungbote/coursecompass-backend/internal/db"
	"github.com/yungbote/coursecompass-backend/internal/handlers"
	"github.com/yungbote/coursecompass-backend/internal/logger"
	"github.com/yungbote/coursecompass-backend/internal/middleware"
	"github.com/yungbote/coursecompass-backend/internal/repos"
	"github.com/yungbote/coursecompass-backend/internal/server"
	"github.com/yungbote/coursecompass-backend/internal/services"
	"github.com/yungbote/coursecompass-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	auth0Domain := utils.GetEnv("AUTH0_DOMAIN", "", log)
	auth0Audience := utils.GetEnv("AUTH0_AUDIENCE", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	studyPlanRepo := repos.NewStudyPlanRepo(thePG, log)

	// Services
	// Clients are process-wide singletons built once before serving traffic;
	// missing credentials fail closed here.
	log.Info("Setting up Services from main...")
	identityVerifier, err := services.NewIdentityVerifier(nil, auth0Domain, auth0Audience)
	if err != nil {
		log.Error("Could not init IdentityVerifier", "error", err)
		os.Exit(1)
	}
	supabaseClient, err := services.NewSupabaseAdminClient(log)
	if err != nil {
		log.Error("Could not init SupabaseAdminClient", "error", err)
		os.Exit(1)
	}
	geminiClient, err := services.NewGeminiClient(log)
	if err != nil {
		log.Error("Could not init GeminiClient", "error", err)
		os.Exit(1)
	}
	bridgeService := services.NewSessionBridgeService(thePG, log, userRepo, supabaseClient)
	planService := services.NewPlanService(thePG, log, bridgeService, courseRepo, studyPlanRepo, geminiClient)
	courseService := services.NewCourseService(thePG, log, bridgeService, courseRepo, studyPlanRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(bridgeService)
	courseHandler := handlers.NewCourseHandler(log, planService, courseService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, identityVerifier)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		CourseHandler:  courseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
