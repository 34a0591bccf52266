package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/models"
	"newsagg/internal/security"
	"newsagg/internal/upstream"
	"newsagg/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	successMessage = "Successfully fetched the data"
	failureMessage = "Failed to fetch data from the API"
)

type Server struct {
	router        *gin.Engine
	fetcher       upstream.Fetcher
	port          int
	swaggerServer *web.SwaggerServer
}

// NewServer wires the proxy routes. limiters backs the per-client rate
// limiter and may be nil.
func NewServer(fetcher upstream.Fetcher, cfg *config.Config, limiters *cache.Manager) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	securityConfig := &security.SecurityConfig{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
	}
	security.SetupSecurityMiddleware(router, securityConfig, limiters)

	server := &Server{
		router:        router,
		fetcher:       fetcher,
		port:          cfg.Port,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	s.router.GET("/all-news", s.getLatestNews)
	s.router.GET("/category/:category", s.getCategoryNews)
	s.router.GET("/country/:iso", s.getCountryNews)

	s.swaggerServer.RegisterRoutes(s.router)
}

// Handler exposes the router, mainly for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ModeForLogLevel maps the configured log level to a gin mode. Only debug
// keeps gin's route and request debugging output.
func ModeForLogLevel(level string) string {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

// StartWithContext serves until ctx is canceled, then shuts down gracefully
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Println("Proxy server stopped")
		return ctx.Err()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "news-proxy",
	})
}

func (s *Server) getLatestNews(c *gin.Context) {
	s.relay(c, models.PageRequest{
		Kind:     models.Latest,
		Query:    c.Query("q"),
		PageSize: parseSize(c.Query("size")),
		Cursor:   c.Query("page"),
	})
}

func (s *Server) getCategoryNews(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		validationFailed(c, "category is required")
		return
	}

	s.relay(c, models.PageRequest{
		Kind:     models.Category,
		Category: strings.ToLower(category),
		Country:  strings.ToLower(strings.TrimSpace(c.Query("country"))),
		PageSize: parseSize(c.Query("size")),
		Cursor:   c.Query("page"),
	})
}

func (s *Server) getCountryNews(c *gin.Context) {
	iso := strings.TrimSpace(c.Param("iso"))
	if iso == "" {
		validationFailed(c, "country code is required")
		return
	}

	s.relay(c, models.PageRequest{
		Kind:     models.Country,
		Country:  strings.ToLower(iso),
		PageSize: parseSize(c.Query("size")),
		Cursor:   c.Query("page"),
	})
}

// relay passes the adapter envelope through unchanged apart from JSON mapping
func (s *Server) relay(c *gin.Context, req models.PageRequest) {
	env := s.fetcher.Fetch(c.Request.Context(), req)

	if !env.OK {
		status := env.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{
			"success": false,
			"status":  status,
			"message": failureMessage,
			"error":   env.ErrorDetail,
		})
		return
	}

	items := env.Items
	if items == nil {
		items = []models.Article{}
	}

	resp := models.FeedResponse{
		Success:      true,
		Status:       http.StatusOK,
		Message:      successMessage,
		Data:         items,
		TotalResults: env.TotalCount,
	}
	if env.NextCursor != "" {
		next := env.NextCursor
		resp.NextPage = &next
	}

	c.JSON(http.StatusOK, resp)
}

func validationFailed(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"status":  http.StatusBadRequest,
		"message": "Invalid request",
		"error":   detail,
	})
}

// parseSize mirrors the lenient parsing of the browser client: anything
// that is not a positive integer means "use the default"
func parseSize(value string) int {
	size, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || size <= 0 {
		return upstream.MaxPageSize
	}
	return upstream.ClampPageSize(size)
}
