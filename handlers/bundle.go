package handlers

import (
	accountRepo "lawdesk/database/repository/account"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	AccountRepo accountRepo.AccountRepository
	AuthCache   *redis.Client

	// Auth and devices
	LoginHandler          gin.HandlerFunc
	UpdateFCMTokenHandler gin.HandlerFunc
	ChatTokenHandler      gin.HandlerFunc

	// Lawyer directory
	ListLawyersHandler gin.HandlerFunc
	GetLawyerHandler   gin.HandlerFunc

	// Bookings
	CreateOrderHandler   gin.HandlerFunc
	VerifyPaymentHandler gin.HandlerFunc
	UpdateStatusHandler  gin.HandlerFunc
	GetBookingHandler    gin.HandlerFunc
	MyBookingsHandler    gin.HandlerFunc

	// Lawyer requests
	SendRequestHandler    gin.HandlerFunc
	MyRequestsHandler     gin.HandlerFunc
	ClientRequestsHandler gin.HandlerFunc
	LawyerRequestsHandler gin.HandlerFunc
	RespondRequestHandler gin.HandlerFunc

	// Admin
	ListUsersHandler          gin.HandlerFunc
	VerifyLawyerHandler       gin.HandlerFunc
	UpdateLawyerHandler       gin.HandlerFunc
	DeleteLawyerHandler       gin.HandlerFunc
	LawyerTransactionsHandler gin.HandlerFunc

	// Messages
	SendMessageHandler gin.HandlerFunc
	HistoryHandler     gin.HandlerFunc

	SocketHandler gin.HandlerFunc
	HealthHandler gin.HandlerFunc
}
