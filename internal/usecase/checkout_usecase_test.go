package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelmarket/internal/domain/entity"
	"channelmarket/pkg/errors"
)

func TestResolveReturnOrigin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input CreateSessionInput
		want  string
	}{
		{
			"explicit hint wins",
			CreateSessionInput{OriginHint: "https://staging.channelmarket.dev", OriginHeader: "https://app.channelmarket.dev"},
			"https://staging.channelmarket.dev",
		},
		{
			"falls back to Origin header",
			CreateSessionInput{OriginHeader: "https://staging.channelmarket.dev"},
			"https://staging.channelmarket.dev",
		},
		{
			"falls back to Referer origin",
			CreateSessionInput{Referer: "https://staging.channelmarket.dev/listings/42"},
			"https://staging.channelmarket.dev",
		},
		{
			"nothing provided uses default",
			CreateSessionInput{},
			"https://app.channelmarket.dev",
		},
		{
			"unlisted origin is replaced by default",
			CreateSessionInput{OriginHint: "https://evil.example.com"},
			"https://app.channelmarket.dev",
		},
		{
			"unlisted hint does not block listed header",
			CreateSessionInput{OriginHint: "https://evil.example.com", OriginHeader: "https://staging.channelmarket.dev"},
			"https://staging.channelmarket.dev",
		},
		{
			"garbage referer uses default",
			CreateSessionInput{Referer: "not a url"},
			"https://app.channelmarket.dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.checkout.ResolveReturnOrigin(tt.input))
		})
	}
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusCreated, 50000)

	session, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.CheckoutURL)

	stored, err := env.transactionRepo.GetByID(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSessionCreated, stored.Status)
	assert.Equal(t, session.SessionID, stored.CheckoutSessionID)
	assert.Equal(t, int64(4000), stored.FeeAmountCents)
}

func TestCreateSessionRetryReturnsSameSession(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusCreated, 50000)

	first, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.NoError(t, err)

	// The client dropped the response and retries; no second gateway session
	// is created.
	second, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.CheckoutURL, second.CheckoutURL)
	assert.Len(t, env.gateway.sessions, 1)
}

func TestCreateSessionGatewayFailureLeavesRetryableState(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusCreated, 50000)
	env.gateway.failCreate = true

	_, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAVAILABLE"))

	// No session reference was stored, so a retry can run the flow again.
	stored, err := env.transactionRepo.GetByID(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CheckoutSessionID)
	assert.Equal(t, entity.StatusAwaitingPayment, stored.Status)

	env.gateway.failCreate = false
	session, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
}

func TestCreateSessionNonParticipant(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusCreated, 50000)

	_, err := env.checkout.CreateSession(context.Background(), "stranger", CreateSessionInput{TransactionID: transaction.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestCreateSessionAfterPayment(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusPaymentConfirmed, 50000)

	_, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestCreateSessionFeeUsesMinimumWhenListingGone(t *testing.T) {
	env := newTestEnv(t)
	transaction := env.seedTransaction(t, "buyer-1", "seller-1", entity.StatusCreated, 50000)
	env.listingRepo.failGet = true

	_, err := env.checkout.CreateSession(context.Background(), "buyer-1", CreateSessionInput{TransactionID: transaction.ID})
	require.NoError(t, err)

	stored, err := env.transactionRepo.GetByID(context.Background(), transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), stored.FeeAmountCents)
}
