package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type ballotService struct {
	votes  ports.VoteGateway
	tally  ports.TallyService
	logger *slog.Logger
}

func NewBallotService(votes ports.VoteGateway, tally ports.TallyService, logger *slog.Logger) ports.BallotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ballotService{
		votes:  votes,
		tally:  tally,
		logger: logger,
	}
}

// Submit resolves create-vs-update for the vereador's ballot and commits the
// server-confirmed record to the tally. Re-submitting the same choice is a
// valid update, not a rejection. On any failure the tally is left untouched.
func (s *ballotService) Submit(ctx context.Context, input ports.SubmitInput) (*domain.Vote, error) {
	if !input.Choice.Valid() {
		return nil, domain.ErrInvalidChoice
	}
	if input.VotacaoID == "" {
		return nil, domain.ErrNoActiveVotacao
	}

	var (
		confirmed *domain.Vote
		err       error
	)

	// WORKAROUND: the backend has been observed defaulting a ballot's id to
	// the voter's id on some records. An id equal to the vereador id cannot
	// be trusted for an update, so fall through to the lookup instead.
	if input.KnownVoteID != "" && input.KnownVoteID != input.VereadorID {
		confirmed, err = s.votes.Update(ctx, input.KnownVoteID, input.Choice)
		if err != nil {
			return nil, fmt.Errorf("update vote %s: %w", input.KnownVoteID, err)
		}
	} else {
		existing, lookupErr := s.votes.FindByVereador(ctx, input.VotacaoID, input.VereadorID)
		if lookupErr != nil {
			return nil, fmt.Errorf("look up existing vote: %w", lookupErr)
		}

		if existing != nil {
			confirmed, err = s.votes.Update(ctx, existing.ID, input.Choice)
			if err != nil {
				return nil, fmt.Errorf("update vote %s: %w", existing.ID, err)
			}
		} else {
			confirmed, err = s.votes.Create(ctx, ports.CreateVoteInput{
				VotacaoID:  input.VotacaoID,
				VereadorID: input.VereadorID,
				Choice:     input.Choice,
			})
			if err != nil {
				return nil, fmt.Errorf("create vote: %w", err)
			}
		}
	}

	// Commit only what the server confirmed, never the optimistic guess.
	s.tally.Upsert(input.VotacaoID, *confirmed)
	s.logger.Info("vote submitted",
		"votacao_id", input.VotacaoID,
		"vereador_id", input.VereadorID,
		"choice", confirmed.Choice,
	)
	return confirmed, nil
}
