package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/codefoundry/foundry-backend/internal/api/http"
	"github.com/codefoundry/foundry-backend/internal/api/http/middleware"
	"github.com/codefoundry/foundry-backend/internal/finetune"
	"github.com/codefoundry/foundry-backend/internal/workspace/hub"
	workspacehttp "github.com/codefoundry/foundry-backend/internal/workspace/http"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Store          *store.Store
	Hub            *hub.Hub
	Chat           workspacehttp.ChatGateway
	Orchestrator   *finetune.Orchestrator
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/")
	api.Use(middleware.RequestIDMiddleware())
	if dep.RateLimitRPS > 0 {
		api.Use(middleware.RateLimitMiddleware(dep.RateLimitRPS, dep.RateLimitBurst))
	}

	workspaceHandler := workspacehttp.New(dep.Store, dep.Hub, dep.Chat, dep.Orchestrator)
	workspaceHandler.Register(api)

	return r
}
