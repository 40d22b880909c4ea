package handler

import (
	"channelmarket/internal/infrastructure/firebase"
	"channelmarket/internal/infrastructure/realtime"
	"channelmarket/internal/usecase"
)

var (
	listingHandler     *ListingHandler
	transactionHandler *TransactionHandler
	paymentHandler     *PaymentHandler
	chatHandler        *ChatHandler
	claimHandler       *ClaimHandler
	adminHandler       *AdminHandler
	healthHandler      *HealthHandler
	webSocketHandler   *WebSocketHandler
)

func Setup(
	listingUseCase *usecase.ListingUseCase,
	transactionUseCase *usecase.TransactionUseCase,
	checkoutUseCase *usecase.CheckoutUseCase,
	webhookUseCase *usecase.WebhookUseCase,
	chatUseCase *usecase.ChatUseCase,
	claimUseCase *usecase.ClaimUseCase,
	adminUseCase *usecase.AdminUseCase,
	firebaseAuth *firebase.FirebaseAuthClient,
	hub *realtime.Hub,
	allowedOrigins []string,
) {
	listingHandler = NewListingHandler(listingUseCase)
	transactionHandler = NewTransactionHandler(transactionUseCase)
	paymentHandler = NewPaymentHandler(checkoutUseCase, webhookUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	claimHandler = NewClaimHandler(claimUseCase)
	adminHandler = NewAdminHandler(adminUseCase)
	healthHandler = NewHealthHandler(firebaseAuth)
	webSocketHandler = NewWebSocketHandler(hub, allowedOrigins)
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetTransactionHandler() *TransactionHandler {
	return transactionHandler
}

func GetPaymentHandler() *PaymentHandler {
	return paymentHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetClaimHandler() *ClaimHandler {
	return claimHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}
