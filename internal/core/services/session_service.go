package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type sessionService struct {
	votacoes ports.VotacaoGateway
	votes    ports.VoteGateway
	tally    ports.TallyService
	feed     ports.Feed
	logger   *slog.Logger

	mu      sync.Mutex
	current *domain.Votacao
	open    []domain.Votacao
}

func NewSessionService(
	votacoes ports.VotacaoGateway,
	votes ports.VoteGateway,
	tally ports.TallyService,
	feed ports.Feed,
	logger *slog.Logger,
) ports.SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{
		votacoes: votacoes,
		votes:    votes,
		tally:    tally,
		feed:     feed,
		logger:   logger,
	}
}

func (s *sessionService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.feed.Events():
			if !ok {
				return
			}
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *sessionService) LoadActive(ctx context.Context) ([]domain.Votacao, error) {
	list, err := s.votacoes.ListByStatus(ctx, domain.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("list open votacoes: %w", err)
	}

	s.mu.Lock()
	s.open = list
	autoSelect := s.current == nil && len(list) > 0
	var first domain.Votacao
	if autoSelect {
		first = list[0]
	}
	s.mu.Unlock()

	if autoSelect {
		if err := s.Select(ctx, first); err != nil {
			s.logger.Warn("auto-select failed", "votacao_id", first.ID, "error", err)
		}
	}
	return list, nil
}

func (s *sessionService) Select(ctx context.Context, votacao domain.Votacao) error {
	s.mu.Lock()
	if old := s.current; old != nil && old.ID != votacao.ID {
		// State for a non-current votacao is discarded, never merged.
		s.tally.Clear(old.ID)
	}
	selected := votacao
	s.current = &selected
	s.mu.Unlock()

	votes, err := s.votes.ListByVotacao(ctx, votacao.ID)
	if err != nil {
		return fmt.Errorf("load ballots for votacao %s: %w", votacao.ID, err)
	}

	// The current votacao may have changed while the fetch was in flight;
	// a result tagged with a stale id must not land in the new one's state.
	s.mu.Lock()
	stale := s.current == nil || s.current.ID != votacao.ID
	s.mu.Unlock()
	if stale {
		s.logger.Debug("dropping stale ballot load", "votacao_id", votacao.ID)
		return nil
	}

	s.tally.ReplaceAll(votacao.ID, votes)
	s.logger.Info("votacao selected", "votacao_id", votacao.ID, "title", votacao.Title, "ballots", len(votes))
	return nil
}

func (s *sessionService) Current() (domain.Votacao, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Votacao{}, false
	}
	return *s.current, true
}

func (s *sessionService) Open() []domain.Votacao {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Votacao, len(s.open))
	copy(out, s.open)
	return out
}

func (s *sessionService) ClearCurrent() {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	if cur != nil {
		s.tally.Clear(cur.ID)
	}
}

func (s *sessionService) handleEvent(ctx context.Context, ev domain.Event) {
	switch ev := ev.(type) {
	case domain.BallotCast:
		s.handleBallot(ev)
	case domain.SessionStatusChanged:
		s.handleStatus(ctx, ev)
	}
}

func (s *sessionService) handleBallot(ev domain.BallotCast) {
	cur, ok := s.Current()
	if !ok || ev.VotacaoID != cur.ID {
		s.logger.Debug("ignoring ballot for non-current votacao", "votacao_id", ev.VotacaoID)
		return
	}

	// The broadcast carries no ballot id; the voter id stands in for it.
	// This is also why the submission path refuses to trust an id that
	// equals the vereador id.
	s.tally.Upsert(ev.VotacaoID, domain.Vote{
		ID:         ev.VereadorID,
		VotacaoID:  ev.VotacaoID,
		VereadorID: ev.VereadorID,
		Choice:     ev.Choice,
		CreatedAt:  ev.Timestamp,
		Vereador: domain.Vereador{
			ID:    ev.VereadorID,
			Name:  ev.VereadorName,
			Party: ev.Party,
		},
	})
}

func (s *sessionService) handleStatus(ctx context.Context, ev domain.SessionStatusChanged) {
	switch ev.Status {
	case domain.StatusInProgress:
		s.logger.Info("votacao started", "votacao_id", ev.VotacaoID, "title", ev.Titulo)
		if cur, ok := s.Current(); ok && ev.VotacaoID != "" && cur.ID != ev.VotacaoID {
			s.ClearCurrent()
		}
		if _, err := s.LoadActive(ctx); err != nil {
			s.logger.Warn("refreshing open votacoes failed", "error", err)
		}

	case domain.StatusCompleted, domain.StatusCancelled:
		s.logger.Info("votacao ended", "votacao_id", ev.VotacaoID)
		if cur, ok := s.Current(); ok && (ev.VotacaoID == "" || ev.VotacaoID == cur.ID) {
			s.ClearCurrent()
		}
		if _, err := s.LoadActive(ctx); err != nil {
			s.logger.Warn("refreshing open votacoes failed", "error", err)
		}

	case domain.StatusNone:
		s.ClearCurrent()
	}
}
