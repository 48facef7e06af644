package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskboard/taskboard/docs"
	"github.com/taskboard/taskboard/internal/api/handler"
	"github.com/taskboard/taskboard/internal/api/middleware"
	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/service"
	mongodb "github.com/taskboard/taskboard/internal/infrastructure/db/mongo"
	redisdb "github.com/taskboard/taskboard/internal/infrastructure/db/redis"
	"github.com/taskboard/taskboard/internal/infrastructure/queue"
)

// Options carries the tunables the router needs beyond its connections.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Workers    int
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the projection-refresh dispatcher, which the caller must
// Start.
func NewRouter(db *mongo.Database, rdb *redis.Client, opts Options, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskboard"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	stateRepo := mongodb.NewStateRepository(db)
	cache := redisdb.NewProjectionCache(rdb)

	projectionService := service.NewProjectionService(taskRepo, userRepo, cache, log)
	dispatcher := queue.NewDispatcher(opts.Workers, projectionService, log)

	authService := service.NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL, opts.BcryptCost)
	userService := service.NewUserService(userRepo, log)
	projectService := service.NewProjectService(projectRepo, taskRepo, userRepo, stateRepo, cache, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, stateRepo, dispatcher, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)

	authRequired := middleware.Auth(opts.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes (unauthenticated) ---
	e.POST("/users/register", authHandler.Register)
	e.POST("/users/login", authHandler.Login)

	// --- User routes ---
	users := e.Group("/users", authRequired)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Project routes ---
	projects := e.Group("/projects", authRequired)
	projects.POST("", projectHandler.Create, adminOnly)
	projects.GET("", projectHandler.List)
	projects.GET("/states", projectHandler.ListStates)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)
	projects.POST("/:id/members", projectHandler.AddMember)
	projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember)

	// --- Task routes ---
	tasks := e.Group("/tasks", authRequired)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.GET("/project/:projectId", taskHandler.ListByProject)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, dispatcher
}
