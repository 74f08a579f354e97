package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lawdesk/config"
	"lawdesk/cron"
	"lawdesk/database"
	accountRepo "lawdesk/database/repository/account"
	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	messageRepo "lawdesk/database/repository/message"
	requestRepo "lawdesk/database/repository/request"
	"lawdesk/handlers"
	"lawdesk/middleware"
	"lawdesk/routes"
	"lawdesk/services/account"
	"lawdesk/services/admin"
	"lawdesk/services/booking"
	"lawdesk/services/chat"
	"lawdesk/services/media"
	"lawdesk/services/notification"
	"lawdesk/services/payment"
	"lawdesk/services/request"
	"lawdesk/services/signaling"
	"lawdesk/services/storage"
	"lawdesk/services/tasks"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	utils.SetSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	utils.InitRedis()
	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient, 30*time.Second)

	// repositories.
	accounts := accountRepo.NewMongoAccountRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	lawyers := lawyerRepo.NewMongoLawyerRepo()
	messages := messageRepo.NewMongoMessageRepo()
	requests := requestRepo.NewMongoRequestRepo()

	gateway, err := payment.NewGateway(cfg)
	if err != nil {
		logger.Fatal("main: payment gateway", zap.Error(err))
	}
	issuer := media.NewIssuer(cfg.MediaAppID, cfg.MediaAppCertificate, cfg.ChatAppKey, cfg.MediaTokenTTL)

	attachments, err := storage.NewAttachmentStore(ctx, cfg)
	if err != nil {
		logger.Warn("main: chat attachments disabled", zap.Error(err))
		attachments = nil
	}

	var pusher booking.Pusher
	if cfg.FirebaseCredentials != "" {
		fcm, err := notification.NewFCMPusher(ctx, cfg.FirebaseCredentials, logger)
		if err != nil {
			logger.Warn("main: push notifications disabled", zap.Error(err))
		} else {
			pusher = fcm
		}
	}

	events := notification.NewAMQPPublisher(cfg.AMQPURL, logger)
	defer events.Close()
	go cron.StartEventConsumer(ctx, cfg.AMQPURL, logger)

	taskClient := asynq.NewClient(cron.RedisTaskOpt())
	defer taskClient.Close()

	// signaling.
	hub := signaling.NewHub(
		signaling.WithBus(signaling.NewRedisBus(utils.GetCacheClient())),
		signaling.WithLogger(logger.Named("signaling")),
	)

	// services.
	defaultFee, err := decimal.NewFromString(cfg.DefaultFee)
	if err != nil {
		logger.Fatal("main: invalid DEFAULT_CONSULTATION_FEE", zap.String("value", cfg.DefaultFee), zap.Error(err))
	}
	bookingService := booking.NewDefaultBookingService(booking.Deps{
		Bookings: bookings,
		Lawyers:  lawyers,
		Accounts: accounts,
		Gateway:  gateway,
		Issuer:   issuer,
		Signaler: hub,
		Pusher:   pusher,
		Events:   events,
		Expiry:   tasks.NewScheduler(taskClient),
		Sessions: booking.NewRedisSessionStore(utils.GetCacheClient()),
		Logger:   logger.Named("booking"),
	}, booking.Settings{
		DefaultFee:     defaultFee,
		Currency:       cfg.Currency,
		SessionSeconds: cfg.SessionDurationSeconds,
	})
	chatService := chat.NewDefaultChatService(messages, bookings, attachments, hub, logger.Named("chat"))
	accountService := account.NewDefaultAccountService(accounts)
	requestService := request.NewDefaultRequestService(requests, lawyers, accounts, hub, pusher, logger.Named("request"))
	adminService := admin.NewDefaultAdminService(accounts, lawyers, bookings, logger.Named("admin"))

	hub.SetAuthorizer(bookingService.Authorize)
	bookingService.RegisterSignalHandlers(hub)
	chatService.RegisterSignalHandlers(hub)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("main: signaling bus stopped", zap.Error(err))
		}
	}()

	worker := cron.InitExpiryWorker(bookingService, logger)
	defer worker.Shutdown()

	// handlers.
	authHandler := handlers.NewAuthHandler(accountService, issuer)
	lawyerHandler := handlers.NewLawyerHandler(lawyers)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	messageHandler := handlers.NewMessageHandler(chatService)
	requestHandler := handlers.NewRequestHandler(requestService)
	adminHandler := handlers.NewAdminHandler(adminService)
	socketHandler := handlers.NewSocketHandler(hub)

	handlerBundle := &handlers.HandlerBundle{
		AccountRepo: accounts,
		AuthCache:   utils.GetAuthCacheClient(),

		LoginHandler:          authHandler.LoginHandler,
		UpdateFCMTokenHandler: authHandler.UpdateFCMTokenHandler,
		ChatTokenHandler:      authHandler.ChatTokenHandler,

		ListLawyersHandler: lawyerHandler.ListLawyersHandler,
		GetLawyerHandler:   lawyerHandler.GetLawyerHandler,

		CreateOrderHandler:   bookingHandler.CreateOrderHandler,
		VerifyPaymentHandler: bookingHandler.VerifyPaymentHandler,
		UpdateStatusHandler:  bookingHandler.UpdateStatusHandler,
		GetBookingHandler:    bookingHandler.GetBookingHandler,
		MyBookingsHandler:    bookingHandler.MyBookingsHandler,

		SendRequestHandler:    requestHandler.SendRequestHandler,
		MyRequestsHandler:     requestHandler.MyRequestsHandler,
		ClientRequestsHandler: requestHandler.ClientRequestsHandler,
		LawyerRequestsHandler: requestHandler.LawyerRequestsHandler,
		RespondRequestHandler: requestHandler.RespondRequestHandler,

		ListUsersHandler:          adminHandler.ListUsersHandler,
		VerifyLawyerHandler:       adminHandler.VerifyLawyerHandler,
		UpdateLawyerHandler:       adminHandler.UpdateLawyerHandler,
		DeleteLawyerHandler:       adminHandler.DeleteLawyerHandler,
		LawyerTransactionsHandler: adminHandler.LawyerTransactionsHandler,

		SendMessageHandler: messageHandler.SendMessageHandler,
		HistoryHandler:     messageHandler.HistoryHandler,

		SocketHandler: socketHandler.ServeSocket,
		HealthHandler: handlers.HealthHandler,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	logger.Sugar().Info("main: server stopped gracefully")
}
