package ports

import (
	"context"

	"github.com/camaradigital/plenario/internal/core/domain"
)

// VoteGateway is the REST collaborator for vote resources.
type VoteGateway interface {
	ListByVotacao(ctx context.Context, votacaoID string) ([]domain.Vote, error)
	// FindByVereador returns nil (and no error) when the vereador has not
	// voted on the votacao yet.
	FindByVereador(ctx context.Context, votacaoID, vereadorID string) (*domain.Vote, error)
	Create(ctx context.Context, input CreateVoteInput) (*domain.Vote, error)
	Update(ctx context.Context, voteID string, choice domain.Choice) (*domain.Vote, error)
}

type CreateVoteInput struct {
	VotacaoID  string
	VereadorID string
	Choice     domain.Choice
}

type SubmitInput struct {
	VotacaoID  string
	VereadorID string
	Choice     domain.Choice
	// KnownVoteID, when set, skips the lookup and updates by id directly.
	// A value equal to VereadorID is ignored: the backend has been observed
	// defaulting the ballot id to the voter id on broadcast records.
	KnownVoteID string
}

// BallotService is the write path. Only the server-confirmed record is
// committed to the tally; a failed submission leaves prior state intact.
type BallotService interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.Vote, error)
}
