package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/casadecor/portfolio-backend/internal/api/http"
	apimiddleware "github.com/casadecor/portfolio-backend/internal/api/http/middleware"
	authhttp "github.com/casadecor/portfolio-backend/internal/auth/http"
	authmiddleware "github.com/casadecor/portfolio-backend/internal/auth/middleware"
	authservice "github.com/casadecor/portfolio-backend/internal/auth/service"
	cataloghttp "github.com/casadecor/portfolio-backend/internal/catalog/http"
	"github.com/casadecor/portfolio-backend/internal/catalog/repository"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	Backend      string
	AllowOrigins []string
	Repo         *repository.Facade
	Auth         *authservice.AuthService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimiddleware.RequestIDMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = dep.AllowOrigins
	for _, origin := range dep.AllowOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowOrigins = nil
			break
		}
	}
	if len(dep.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowOrigins = nil
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Backend, dep.Repo.Probe())
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	catalogHandler := cataloghttp.NewHandler(dep.Repo)
	catalogHandler.RegisterPublic(api.Group("/projects"))

	authhttp.NewHandler(dep.Auth).Register(api.Group("/auth"))

	admin := api.Group("/admin")
	admin.Use(authmiddleware.AdminAuth(dep.Auth))
	catalogHandler.RegisterAdmin(admin)

	return r
}
