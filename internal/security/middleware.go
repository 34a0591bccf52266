package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"newsagg/internal/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	maxCategoryLength = 50
	maxCursorLength   = 256
	maxQueryLength    = 512
)

// RateLimiter hands out one token bucket per client. Buckets of idle
// clients expire from the backing store.
type RateLimiter struct {
	limiters *cache.Manager
	r        rate.Limit
	b        int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(r rate.Limit, b int, store *cache.Manager) *RateLimiter {
	if store == nil {
		store = cache.NewManager(10 * time.Minute)
	}
	return &RateLimiter{
		limiters: store,
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the rate limiter for the given key (IP address)
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	value := rl.limiters.GetOrCreate(key, func() interface{} {
		return rate.NewLimiter(rl.r, rl.b)
	})
	return value.(*rate.Limiter)
}

// Forget drops the bucket of a client
func (rl *RateLimiter) Forget(key string) {
	rl.limiters.Delete(key)
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		EnableRateLimit:       true,
		RateLimitPerSecond:    10.0, // 10 requests per second
		RateLimitBurst:        20,   // Allow bursts up to 20 requests
		EnableCORS:            true,
		AllowedOrigins:        []string{"*"}, // The browser client may be served from anywhere
		EnableSecurityHeaders: true,
		MaxRequestSize:        1 << 20, // 1MB
		EnableRequestID:       true,
	}
}

// SetupSecurityMiddleware configures all security middleware. store backs
// the per-client rate limiters and may be nil.
func SetupSecurityMiddleware(router *gin.Engine, config *SecurityConfig, store *cache.Manager) {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	if config.EnableRequestID {
		router.Use(requestid.New())
	}

	if config.EnableSecurityHeaders {
		router.Use(secure.New(secure.Config{
			SSLRedirect:           false, // TLS is terminated in front of the proxy
			STSSeconds:            31536000,
			STSIncludeSubdomains:  true,
			FrameDeny:             true,
			ContentTypeNosniff:    true,
			BrowserXssFilter:      true,
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
		}))
	}

	if config.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = config.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
		corsConfig.ExposeHeaders = []string{"X-Request-ID"}
		router.Use(cors.New(corsConfig))
	}

	if config.EnableRateLimit {
		limiter := NewRateLimiter(rate.Limit(config.RateLimitPerSecond), config.RateLimitBurst, store)
		router.Use(RateLimitMiddleware(limiter))
	}

	router.Use(RequestSizeMiddleware(config.MaxRequestSize))
	router.Use(InputValidationMiddleware())
	router.Use(SecurityLoggingMiddleware())
}

// RateLimitMiddleware implements rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		limiter := limiter.GetLimiter(ip)

		if !limiter.Allow() {
			reject(c, http.StatusTooManyRequests, "Rate limit exceeded", "Too many requests, please try again later")
			return
		}

		c.Next()
	}
}

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize > 0 && c.Request.ContentLength > maxSize {
			reject(c, http.StatusRequestEntityTooLarge, "Request too large", "Request body exceeds maximum allowed size")
			return
		}

		c.Next()
	}
}

// InputValidationMiddleware rejects malformed route and query input before
// it can reach the upstream provider
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateFeedQuery(c); err != nil {
			reject(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
			return
		}

		if err := validatePathParams(c); err != nil {
			reject(c, http.StatusBadRequest, "Invalid path parameters", err.Error())
			return
		}

		c.Next()
	}
}

// SecurityLoggingMiddleware logs security-relevant information
func SecurityLoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		securityInfo := []string{
			"ip=" + param.ClientIP,
			"method=" + param.Method,
			"path=" + param.Path,
			"status=" + fmt.Sprintf("%d", param.StatusCode),
			"latency=" + param.Latency.String(),
			"user_agent=" + param.Request.UserAgent(),
		}

		if id := param.Request.Header.Get("X-Request-ID"); id != "" {
			securityInfo = append(securityInfo, "request_id="+id)
		}

		if param.StatusCode >= 400 {
			securityInfo = append(securityInfo, "error=true")
		}

		return strings.Join(securityInfo, " ") + "\n"
	})
}

func reject(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"status":  status,
		"message": message,
		"error":   detail,
	})
}

// validateFeedQuery validates the query parameters understood by the feed routes
func validateFeedQuery(c *gin.Context) error {
	// size is parsed leniently by the handlers, only its length is bounded here
	if size := c.Query("size"); len(size) > 10 {
		return fmt.Errorf("size parameter too long: maximum 10 characters")
	}

	if page := c.Query("page"); page != "" {
		if len(page) > maxCursorLength {
			return fmt.Errorf("page parameter too long: maximum %d characters", maxCursorLength)
		}
		if strings.ContainsAny(page, " \t\r\n") {
			return fmt.Errorf("invalid page parameter: must not contain whitespace")
		}
	}

	if country := c.Query("country"); country != "" {
		if !isValidCountryCode(country) {
			return fmt.Errorf("invalid country parameter: must be a two-letter ISO code")
		}
	}

	if q := c.Query("q"); len(q) > maxQueryLength {
		return fmt.Errorf("q parameter too long: maximum %d characters", maxQueryLength)
	}

	return nil
}

// validatePathParams validates path parameters
func validatePathParams(c *gin.Context) error {
	if category := c.Param("category"); category != "" {
		if !isValidCategoryName(category) {
			return fmt.Errorf("invalid category name: must contain only alphanumeric characters and hyphens")
		}
	}

	if iso := c.Param("iso"); iso != "" {
		if !isValidCountryCode(iso) {
			return fmt.Errorf("invalid country code: must be a two-letter ISO code")
		}
	}

	return nil
}

// getClientIP extracts the real client IP address
func getClientIP(c *gin.Context) string {
	// Check for forwarded headers (when behind proxy/load balancer)
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if commaIndex := strings.Index(ip, ","); commaIndex != -1 {
			return strings.TrimSpace(ip[:commaIndex])
		}
		return strings.TrimSpace(ip)
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	if ip := c.GetHeader("X-Client-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	return c.ClientIP()
}

// isValidCategoryName checks if a category slug is valid
func isValidCategoryName(s string) bool {
	if s == "" || len(s) > maxCategoryLength {
		return false
	}

	for _, char := range s {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-') {
			return false
		}
	}

	return true
}

// isValidCountryCode accepts two ASCII letters in any case
func isValidCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}

	for _, char := range s {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')) {
			return false
		}
	}

	return true
}
