package services

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type tallyService struct {
	logger *slog.Logger

	mu      sync.RWMutex
	ballots map[string]map[string]domain.Vote // votacaoID -> vereadorID -> vote
}

func NewTallyService(logger *slog.Logger) ports.TallyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tallyService{
		logger:  logger,
		ballots: make(map[string]map[string]domain.Vote),
	}
}

func (s *tallyService) Upsert(votacaoID string, vote domain.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVereador, ok := s.ballots[votacaoID]
	if !ok {
		byVereador = make(map[string]domain.Vote)
		s.ballots[votacaoID] = byVereador
	}

	if existing, ok := byVereador[vote.VereadorID]; ok {
		// Replace choice and timestamp in place, keeping the record's
		// identity. Duplicate deliveries for the same vereador collapse
		// into the most recent write.
		existing.Choice = vote.Choice
		existing.CreatedAt = vote.CreatedAt
		byVereador[vote.VereadorID] = existing
		return
	}
	byVereador[vote.VereadorID] = vote
}

func (s *tallyService) StatsFor(votacaoID string) domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.Stats
	for _, vote := range s.ballots[votacaoID] {
		stats.Total++
		switch vote.Choice {
		case domain.ChoiceSim:
			stats.Sim++
		case domain.ChoiceNao:
			stats.Nao++
		case domain.ChoiceAbstencao:
			stats.Abstencao++
		case domain.ChoiceAusente:
			stats.Ausente++
		}
	}

	if stats.Total > 0 {
		stats.PercentSim = roundPercent(stats.Sim, stats.Total)
		stats.PercentNao = roundPercent(stats.Nao, stats.Total)
	}
	return stats
}

func (s *tallyService) Ballots(votacaoID string) []domain.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := make([]domain.Vote, 0, len(s.ballots[votacaoID]))
	for _, vote := range s.ballots[votacaoID] {
		votes = append(votes, vote)
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].Vereador.Name < votes[j].Vereador.Name
	})
	return votes
}

func (s *tallyService) ReplaceAll(votacaoID string, votes []domain.Vote) {
	byVereador := make(map[string]domain.Vote, len(votes))
	for _, vote := range votes {
		byVereador[vote.VereadorID] = vote
	}

	s.mu.Lock()
	s.ballots[votacaoID] = byVereador
	s.mu.Unlock()
}

func (s *tallyService) Clear(votacaoID string) {
	s.mu.Lock()
	delete(s.ballots, votacaoID)
	s.mu.Unlock()

	s.logger.Debug("cleared tally", "votacao_id", votacaoID)
}

func roundPercent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
