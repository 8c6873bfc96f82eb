package server

import (
	"context"
	"net/http"

	_ "matbook/docs"
	"matbook/internal/auth"
	"matbook/internal/booking"
	"matbook/internal/config"
	"matbook/internal/credit"
	"matbook/internal/email"
	"matbook/internal/gym"
	"matbook/internal/membership"
	"matbook/internal/program"
	"matbook/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	gymHandler := gym.NewHandler(db)
	membershipHandler := membership.NewHandler(db)
	programHandler := program.NewHandler(db)
	creditHandler := credit.NewHandler(db)

	bookingService := booking.NewService(booking.NewRepository(db), emailService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/me/memberships", membershipHandler.MyMemberships)
		protected.GET("/me/credits", creditHandler.GetMyBalance)
		protected.GET("/me/credits/ledger", creditHandler.GetMyLedger)
		protected.POST("/me/credits/purchase", creditHandler.Purchase)
		protected.GET("/me/attendance", bookingHandler.MyAttendance)
		protected.GET("/me/weekly-count", bookingHandler.MyWeeklyCount)
		protected.GET("/me/eligibility", bookingHandler.MyEligibility)
		protected.GET("/me/programs/:programID/rank", programHandler.MyRank)

		protected.GET("/gyms", gymHandler.ListGyms)
		protected.GET("/gyms/:gymID/classes", gymHandler.ListClasses)
		protected.GET("/gyms/:gymID/plans", membershipHandler.ListPlans)
		protected.GET("/programs/:programID", programHandler.GetProgram)

		protected.POST("/classes/:classID/book", bookingHandler.Book)
		protected.POST("/bookings/:attendanceID/cancel", bookingHandler.Cancel)
	}

	staffMiddleware := auth.RequireRole(auth.RoleStaff, auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, staffMiddleware)
	{
		admin.POST("/gyms", gymHandler.CreateGym)
		admin.POST("/gyms/:gymID/classes", gymHandler.CreateClass)
		admin.POST("/gyms/:gymID/plans", membershipHandler.CreatePlan)
		admin.POST("/gyms/:gymID/programs", programHandler.CreateProgram)
		admin.POST("/classes/:classID/cancel-date", gymHandler.CancelClassDate)
		admin.POST("/classes/:classID/waitlist/process", bookingHandler.ProcessWaitlist)
		admin.GET("/classes/:classID/roster", bookingHandler.Roster)
		admin.POST("/memberships", membershipHandler.AssignMembership)
		admin.POST("/bookings/:attendanceID/checkin", bookingHandler.CheckIn)
		admin.POST("/users/:userID/credits/adjust", creditHandler.AdjustCredits)
		admin.GET("/analytics/attendance", bookingHandler.AttendanceAnalytics)
	}

	router.GET("/health", Health(db, emailService))
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
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

// Router exposes the engine for tests.
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
