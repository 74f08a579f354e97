package routes

import (
	"time"

	"lawdesk/handlers"
	"lawdesk/middleware"
	"lawdesk/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers login and device endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/auth/login", hb.LoginHandler)

	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache))
	{
		protected.PUT("/devices/fcm", hb.UpdateFCMTokenHandler)
		protected.POST("/chat/token", hb.ChatTokenHandler)
	}
}

// RegisterLawyerRoutes registers the public lawyer directory.
func RegisterLawyerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/lawyers")
	{
		api.GET("", hb.ListLawyersHandler)
		api.GET("/:lawyerId", hb.GetLawyerHandler)
	}
}

// RegisterBookingRoutes registers the payment and session lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache))
	{
		clients := api.Group("")
		clients.Use(middleware.RequireRole(models.RoleClient))
		clients.POST("/order", hb.CreateOrderHandler)
		clients.POST("/verify", hb.VerifyPaymentHandler)

		api.GET("/mine", hb.MyBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.PUT("/:id", hb.UpdateStatusHandler)
	}
}

// RegisterRequestRoutes registers client-to-lawyer enquiries.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache))
	{
		api.POST("", middleware.RequireRole(models.RoleClient), hb.SendRequestHandler)
		api.GET("/mine", hb.MyRequestsHandler)
		api.GET("/user/:userId", hb.ClientRequestsHandler)
		api.GET("/lawyer/:lawyerId", hb.LawyerRequestsHandler)
		api.PUT("/:id", middleware.RequireRole(models.RoleLawyer), hb.RespondRequestHandler)
	}
}

// RegisterAdminRoutes registers back-office lawyer and account management.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache))
	api.Use(middleware.RequireRole(models.RoleAdmin))
	{
		api.GET("/users", hb.ListUsersHandler)
		api.PUT("/lawyers/:lawyerId/verify", hb.VerifyLawyerHandler)
		api.PUT("/lawyers/:lawyerId", hb.UpdateLawyerHandler)
		api.DELETE("/lawyers/:lawyerId", hb.DeleteLawyerHandler)
	}

	r.GET("/api/lawyers/:lawyerId/transactions",
		middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache),
		middleware.RequireRole(models.RoleAdmin, models.RoleLawyer),
		hb.LawyerTransactionsHandler)
}

// RegisterMessageRoutes registers chat persistence endpoints.
func RegisterMessageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/messages")
	api.Use(middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache))
	{
		api.POST("", hb.SendMessageHandler)
		api.GET("/:bookingId", hb.HistoryHandler)
	}
}

// RegisterSocketRoute registers the signaling websocket.
func RegisterSocketRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/socket", middleware.JWTAuthMiddleware(hb.AccountRepo, hb.AuthCache), hb.SocketHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterLawyerRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterRequestRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterMessageRoutes(r, hb)
	RegisterSocketRoute(r, hb)
	RegisterHealthRoute(r, hb)
}
