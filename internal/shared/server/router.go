package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a domain's routes.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// RouterDeps holds the handlers mounted by NewRouter.
type RouterDeps struct {
	Config    config.Config
	Documents RouteRegistrar
	Chat      RouteRegistrar
	Audio     RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	for _, reg := range []RouteRegistrar{deps.Documents, deps.Chat, deps.Audio} {
		if reg != nil {
			reg.RegisterRoutes(r)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
