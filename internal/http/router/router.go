package router

import (
	"github.com/gin-gonic/gin"

	"github.com/patelvedant312/team-matching/internal/config"
	"github.com/patelvedant312/team-matching/internal/http/handlers"
	"github.com/patelvedant312/team-matching/internal/http/middleware"
)

func SetupRouter(
	cfg *config.Config,
	tokens middleware.TokenParser,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	resourceHandler *handlers.ResourceHandler,
	projectHandler *handlers.ProjectHandler,
	teamHandler *handlers.TeamHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/organizations", authHandler.Register)
		authGroup.POST("/token", authHandler.Token)
	}

	if wsHandler != nil {
		api.GET("/ws", wsHandler.Handle)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.GET("/resources", resourceHandler.List)
		protected.POST("/resources", resourceHandler.Create)
		protected.POST("/resources/import", resourceHandler.Import)
		protected.GET("/resources/:id", middleware.UUIDValidator("id"), resourceHandler.Get)
		protected.PUT("/resources/:id", middleware.UUIDValidator("id"), resourceHandler.Update)
		protected.DELETE("/resources/:id", middleware.UUIDValidator("id"), resourceHandler.Delete)

		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Update)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Delete)

		// Команды
		protected.POST("/projects/:id/team", middleware.UUIDValidator("id"), teamHandler.Form)
		protected.DELETE("/projects/:id/team", middleware.UUIDValidator("id"), teamHandler.Release)
		protected.GET("/teams", teamHandler.List)
		protected.GET("/teams/:id", middleware.UUIDValidator("id"), teamHandler.Get)

		protected.POST("/match/preview", teamHandler.Preview)
		protected.POST("/match/run", teamHandler.Run)
	}

	return r
}
