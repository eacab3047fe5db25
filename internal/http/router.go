package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/http/middleware"
	"github.com/nurpe/licitaciones-portal/internal/session"
)

type RouterOptions struct {
	Environment    string
	AllowedOrigins []string
}

func NewRouter(handler *Handler, sessions *session.Store, opts RouterOptions, log zerolog.Logger) *gin.Engine {
	if opts.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}

	secureCookie := opts.Environment != "development"
	handler.Register(router, middleware.Session(sessions, secureCookie), cors.New(corsConfig))
	return router
}
