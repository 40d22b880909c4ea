package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{"created to awaiting payment", StatusCreated, StatusAwaitingPayment, true},
		{"created skips ahead to session", StatusCreated, StatusSessionCreated, true},
		{"awaiting to confirmed", StatusAwaitingPayment, StatusPaymentConfirmed, true},
		{"confirmed to escrow", StatusPaymentConfirmed, StatusEscrowActive, true},
		{"escrow to resolved", StatusEscrowActive, StatusResolved, true},
		{"no regression to created", StatusPaymentConfirmed, StatusCreated, false},
		{"no regression to awaiting", StatusEscrowActive, StatusAwaitingPayment, false},
		{"same status is not a transition", StatusEscrowActive, StatusEscrowActive, false},
		{"any active status can fail", StatusCreated, StatusFailed, true},
		{"escrow can fail", StatusEscrowActive, StatusFailed, true},
		{"resolved is terminal", StatusResolved, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusAwaitingPayment, false},
		{"failed cannot resolve", StatusFailed, StatusResolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatusAtOrPast(t *testing.T) {
	assert.True(t, StatusEscrowActive.AtOrPast(StatusPaymentConfirmed))
	assert.True(t, StatusPaymentConfirmed.AtOrPast(StatusPaymentConfirmed))
	assert.False(t, StatusSessionCreated.AtOrPast(StatusPaymentConfirmed))
	assert.False(t, StatusResolved.AtOrPast(StatusFailed))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusResolved.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusCreated.IsTerminal())
	assert.False(t, StatusEscrowActive.IsTerminal())
}

func TestIsParticipant(t *testing.T) {
	transaction := &Transaction{Participants: []string{"buyer-1", "seller-1"}}

	assert.True(t, transaction.IsParticipant("buyer-1"))
	assert.True(t, transaction.IsParticipant("seller-1"))
	assert.False(t, transaction.IsParticipant("stranger"))
}
