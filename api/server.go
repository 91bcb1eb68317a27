// Package api exposes the community platform over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/bitcoinperu/comunidad/internal/community"
	"github.com/bitcoinperu/comunidad/internal/directory"
	"github.com/bitcoinperu/comunidad/internal/price"
	"github.com/bitcoinperu/comunidad/pkg/models"
)

const sessionCookie = "comunidad_session"

const ctxUserKey = "currentUser"

// PriceService is the aggregated/cached BTC price pipeline consumed by the
// price endpoint. The boolean reports a stale fallback quote.
type PriceService interface {
	GetPrice(ctx context.Context) (price.Quote, bool, error)
}

// IdentityService handles registration, login, and session validation.
type IdentityService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*models.User, error)
}

// Config holds the HTTP-layer knobs.
type Config struct {
	AllowedOrigins []string
	RateLimit      string // ulule formatted rate, e.g. "60-M"
	RedisAddr      string // optional; memory store when empty
	SessionTTL     time.Duration
}

// Server is the API server.
type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	cfg         Config
	rateLimiter gin.HandlerFunc

	prices     PriceService
	identities IdentityService
	community  *community.Service
	directory  *directory.Service
}

// NewServer creates the API server with injected services.
func NewServer(
	logger *zap.Logger,
	cfg Config,
	prices PriceService,
	identities IdentityService,
	communitySvc *community.Service,
	directorySvc *directory.Service,
) *Server {
	server := &Server{
		logger:     logger,
		cfg:        cfg,
		prices:     prices,
		identities: identities,
		community:  communitySvc,
		directory:  directorySvc,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.rateLimiter = server.buildRateLimiter()
	server.router = router
	server.registerRoutes()
	return server
}

func (s *Server) buildRateLimiter() gin.HandlerFunc {
	rateStr := s.cfg.RateLimit
	if rateStr == "" {
		rateStr = "60-M"
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		s.logger.Warn("invalid rate limit, using 60-M", zap.String("rate", rateStr), zap.Error(err))
		rate, _ = limiter.NewRateFromFormatted("60-M")
	}

	var store limiter.Store = memory.NewStore()
	if s.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: s.cfg.RedisAddr})
		redisStore, err := sredis.NewStore(client)
		if err != nil {
			s.logger.Warn("redis limiter store unavailable, falling back to memory", zap.Error(err))
		} else {
			store = redisStore
		}
	}
	return ginlimiter.NewMiddleware(limiter.New(store, rate))
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	public := s.router.Group("/api")
	{
		public.GET("/health", s.healthCheck)
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))

		public.GET("/bitcoin/price", s.rateLimiter, s.getBitcoinPrice)

		auth := public.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		public.GET("/posts", s.listPosts)
		public.GET("/posts/:id", s.getPost)
		public.GET("/events", s.listEvents)
		public.GET("/resources", s.listResources)
		public.GET("/carousel", s.listSlides)
		public.GET("/directory", s.listBusinesses)
	}

	protected := s.router.Group("/api")
	protected.Use(s.authMiddleware(), s.rateLimiter)
	{
		protected.POST("/auth/logout", s.logout)
		protected.GET("/auth/me", s.me)

		protected.POST("/posts", s.createPost)
		protected.PUT("/posts/:id", s.updatePost)
		protected.DELETE("/posts/:id", s.deletePost)

		protected.POST("/events", s.createEvent)
		protected.PUT("/events/:id", s.updateEvent)
		protected.DELETE("/events/:id", s.deleteEvent)

		protected.POST("/resources", s.createResource)
		protected.DELETE("/resources/:id", s.deleteResource)

		protected.POST("/directory", s.submitBusiness)
	}

	admin := s.router.Group("/api/admin")
	admin.Use(s.authMiddleware(), s.adminMiddleware())
	{
		admin.GET("/directory/pending", s.listPendingBusinesses)
		admin.POST("/directory/:id/approve", s.approveBusiness)
		admin.DELETE("/directory/:id", s.deleteBusiness)

		admin.POST("/carousel", s.createSlide)
		admin.PUT("/carousel/:id", s.updateSlide)
		admin.DELETE("/carousel/:id", s.deleteSlide)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		user, err := s.identities.ValidateSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func (s *Server) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
