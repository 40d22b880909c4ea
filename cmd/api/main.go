package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"channelmarket/internal/adapter/api"
	"channelmarket/internal/adapter/api/handler"
	apimiddleware "channelmarket/internal/adapter/api/middleware"
	"channelmarket/internal/adapter/api/router"
	"channelmarket/internal/adapter/repository"
	"channelmarket/internal/domain/service"
	"channelmarket/internal/infrastructure/firebase"
	"channelmarket/internal/infrastructure/ratelimit"
	"channelmarket/internal/infrastructure/realtime"
	"channelmarket/internal/usecase"
	"channelmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (production) or file (local).
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:   cfg.FirebaseProject,
		DatabaseURL: cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	rtdbClient, err := firebaseApp.Database(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Realtime Database: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)
	transactionRepo := repository.NewFirestoreTransactionRepository(firestoreClient)
	summaryRepo := repository.NewFirestoreSummaryRepository(firestoreClient)
	claimRepo := repository.NewFirestoreClaimRepository(firestoreClient)
	alertRepo := repository.NewFirestoreAlertRepository(firestoreClient)
	chatLogRepo := repository.NewRTDBChatLogRepository(rtdbClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	hub := realtime.NewHub(func(ctx context.Context, transactionID, userID string) bool {
		transaction, err := transactionRepo.GetByID(ctx, transactionID)
		if err != nil {
			return false
		}
		return transaction.IsParticipant(userID)
	})
	hub.Start(ctx)

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine()

	paymentService := service.NewStripePaymentService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	chatUseCase := usecase.NewChatUseCase(chatLogRepo, transactionRepo, summaryRepo, hub, limiter)
	listingUseCase := usecase.NewListingUseCase(listingRepo)
	transactionUseCase := usecase.NewTransactionUseCase(transactionRepo, listingRepo, chatUseCase)
	checkoutUseCase := usecase.NewCheckoutUseCase(
		transactionRepo,
		transactionUseCase,
		paymentService,
		cfg.DefaultCheckoutOrigin,
		cfg.AllowedCheckoutOrigins,
		cfg.CheckoutTimeout,
	)
	webhookUseCase := usecase.NewWebhookUseCase(paymentService, transactionRepo, claimRepo, alertRepo, chatUseCase)
	claimUseCase := usecase.NewClaimUseCase(claimRepo, transactionRepo, alertRepo, chatUseCase)
	adminUseCase := usecase.NewAdminUseCase(userRepo, alertRepo)

	handler.Setup(
		listingUseCase,
		transactionUseCase,
		checkoutUseCase,
		webhookUseCase,
		chatUseCase,
		claimUseCase,
		adminUseCase,
		firebaseAuthClient,
		hub,
		append(cfg.AllowedCheckoutOrigins, cfg.DefaultCheckoutOrigin),
	)

	e := echo.New()
	e.Validator = api.NewValidator()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	agentMiddleware := apimiddleware.NewAgentMiddleware(userRepo)

	router.Setup(e, authMiddleware, agentMiddleware, limiter)

	log.Printf("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
