package usecase

import (
	"context"
	"testing"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/infrastructure/ratelimit"
	"channelmarket/internal/infrastructure/realtime"
)

type testEnv struct {
	transactionRepo *memTransactionRepo
	listingRepo     *memListingRepo
	userRepo        *memUserRepo
	summaryRepo     *memSummaryRepo
	logRepo         *memChatLogRepo
	claimRepo       *memClaimRepo
	alertRepo       *memAlertRepo
	gateway         *fakeGateway
	limiter         *ratelimit.RateLimiter

	chat         *ChatUseCase
	transactions *TransactionUseCase
	checkout     *CheckoutUseCase
	webhook      *WebhookUseCase
	claims       *ClaimUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		transactionRepo: newMemTransactionRepo(),
		listingRepo:     newMemListingRepo(),
		userRepo:        newMemUserRepo(),
		summaryRepo:     newMemSummaryRepo(),
		logRepo:         newMemChatLogRepo(),
		alertRepo:       newMemAlertRepo(),
		gateway:         newFakeGateway(),
	}
	env.claimRepo = newMemClaimRepo(env.transactionRepo)
	env.limiter = ratelimit.NewRateLimiter()

	hub := realtime.NewHub(func(ctx context.Context, transactionID, userID string) bool {
		transaction, err := env.transactionRepo.GetByID(ctx, transactionID)
		if err != nil {
			return false
		}
		return transaction.IsParticipant(userID)
	})

	env.chat = NewChatUseCase(env.logRepo, env.transactionRepo, env.summaryRepo, hub, env.limiter)
	env.transactions = NewTransactionUseCase(env.transactionRepo, env.listingRepo, env.chat)
	env.checkout = NewCheckoutUseCase(
		env.transactionRepo,
		env.transactions,
		env.gateway,
		"https://app.channelmarket.dev",
		[]string{"https://staging.channelmarket.dev"},
		5*time.Second,
	)
	env.webhook = NewWebhookUseCase(env.gateway, env.transactionRepo, env.claimRepo, env.alertRepo, env.chat)
	env.claims = NewClaimUseCase(env.claimRepo, env.transactionRepo, env.alertRepo, env.chat)

	return env
}

func (env *testEnv) seedListing(t *testing.T, sellerID string, priceCents int64) *entity.Listing {
	t.Helper()

	listing := &entity.Listing{
		SellerID:    sellerID,
		Title:       "Tech channel",
		Platform:    "youtube",
		Handle:      "@techchannel",
		Subscribers: 120000,
		PriceCents:  priceCents,
		Status:      "active",
	}
	if err := env.listingRepo.Create(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func (env *testEnv) seedTransaction(t *testing.T, buyerID, sellerID string, status entity.TransactionStatus, priceCents int64) *entity.Transaction {
	t.Helper()

	listing := env.seedListing(t, sellerID, priceCents)
	transaction := &entity.Transaction{
		ListingID:    listing.ID,
		BuyerID:      buyerID,
		SellerID:     sellerID,
		Participants: []string{buyerID, sellerID},
		Status:       status,
	}
	if err := env.transactionRepo.Create(context.Background(), transaction); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return transaction
}
