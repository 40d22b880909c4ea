package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

type ClaimRepository interface {
	// Enqueue creates the claim request if absent. Re-enqueueing an existing
	// request is a no-op.
	Enqueue(ctx context.Context, claim *entity.ClaimRequest) error

	ListPending(ctx context.Context, limit, offset int) ([]*entity.ClaimRequest, int64, error)

	// Claim atomically removes the request and assigns the agent to the
	// transaction. Exactly one concurrent caller observes newly=true; a
	// repeat call by the winning agent is accepted but not newly, and an
	// agent can never take over a claim already won by another.
	Claim(ctx context.Context, transactionID, agentID string) (accepted, newly bool, err error)
}
