package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"prizedraw/internal/audit"
	"prizedraw/internal/auth"
	"prizedraw/internal/authz"
	"prizedraw/internal/config"
	"prizedraw/internal/donation"
	"prizedraw/internal/draw"
	"prizedraw/internal/giveaway"
	"prizedraw/internal/notify"
	"prizedraw/internal/ratelimit"
	"prizedraw/internal/ticket"
	"prizedraw/internal/user"
	"prizedraw/internal/wallet"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config

	// GiveawayService is exposed for the background close sweep.
	GiveawayService giveaway.Service
}

func New(db *sqlx.DB, cfg *config.Config, dispatcher notify.Dispatcher, limiter ratelimit.Limiter) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	giveawayRepo := giveaway.NewRepository(db)
	ticketRepo := ticket.NewRepository(db)
	donationRepo := donation.NewRepository(db, cfg.PlatformUserID)
	drawRepo := draw.NewRepository(db)

	userSvc := user.NewService(userRepo, cfg.JWTSecret)
	giveawaySvc := giveaway.NewService(giveawayRepo)
	ticketSvc := ticket.NewService(ticketRepo, giveawayRepo)
	donationSvc := donation.NewService(donationRepo, giveawayRepo)
	drawSvc := draw.NewService(drawRepo, giveawayRepo, ticketRepo, auditRepo, dispatcher)

	userHandler := user.NewHandler(userSvc)
	walletHandler := wallet.NewHandler(walletRepo)
	giveawayHandler := giveaway.NewHandler(giveawaySvc)
	ticketHandler := ticket.NewHandler(ticketSvc)
	donationHandler := donation.NewHandler(donationSvc)
	drawHandler := draw.NewHandler(drawSvc)
	auditHandler := audit.NewHandler(auditRepo)

	policy := authz.NewAny(
		authz.NewAllowList(cfg.AdminUserIDs),
		authz.NewRoleTable(db),
	)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/topup", walletHandler.TopUp)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.GET("/giveaways", giveawayHandler.List)
		protected.POST("/giveaways", giveawayHandler.Create)
		protected.GET("/giveaways/:giveawayID", giveawayHandler.Get)
		protected.GET("/giveaways/:giveawayID/audit", auditHandler.ListForGiveaway)
		protected.GET("/giveaways/:giveawayID/donations", donationHandler.ListForGiveaway)

		protected.POST("/giveaways/:giveawayID/tickets", ticketHandler.Buy)
		protected.POST("/giveaways/:giveawayID/tickets/free", ticketHandler.ClaimFree)
		protected.POST("/giveaways/:giveawayID/donate", donationHandler.Donate)
		protected.POST("/giveaways/:giveawayID/claim", drawHandler.ClaimPrize)

		protected.GET("/tickets", ticketHandler.ListMine)
	}

	// Admin review gateway: authorization policy plus a per-admin,
	// per-endpoint rate limit in front of every lifecycle mutation.
	admin := router.Group("/admin")
	admin.Use(authMiddleware, RequireAdmin(policy), AdminRateLimit(limiter))
	{
		admin.POST("/giveaways/:giveawayID/activate", giveawayHandler.Activate)
		admin.POST("/giveaways/:giveawayID/close", giveawayHandler.Close)
		admin.POST("/giveaways/:giveawayID/cancel", giveawayHandler.Cancel)
		admin.POST("/giveaways/:giveawayID/draft-winner", drawHandler.DraftWinner)
		admin.POST("/giveaways/:giveawayID/finalize", drawHandler.FinalizeWinner)
		admin.POST("/giveaways/:giveawayID/repick", drawHandler.RepickWinner)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:          router,
		db:              db,
		config:          cfg,
		GiveawayService: giveawaySvc,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router is exposed for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
