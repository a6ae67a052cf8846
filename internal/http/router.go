package http

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed ui_index.html
var uiIndexHTML []byte

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

type RouterOptions struct {
	// AllowedOrigins are browser origins allowed to call the API cross-site.
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), loopbackOnly())

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       10 * time.Minute,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/session", h.Session)

		api.POST("/connect", h.Connect)
		api.POST("/address", h.FetchAddress)
		api.POST("/balance", h.FetchBalance)
		api.POST("/mint", h.Mint)
		api.POST("/transfer", h.Transfer)
	}

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", uiIndexHTML)
	})

	return r
}

// NewServer wraps the router for a local listener.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
