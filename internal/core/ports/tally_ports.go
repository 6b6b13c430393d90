package ports

import "github.com/camaradigital/plenario/internal/core/domain"

// TallyService owns the in-memory per-votacao ballot aggregation. Both the
// live feed and confirmed submissions converge on Upsert, which enforces at
// most one ballot per (votacao, vereador).
type TallyService interface {
	Upsert(votacaoID string, vote domain.Vote)
	StatsFor(votacaoID string) domain.Stats
	Ballots(votacaoID string) []domain.Vote
	// ReplaceAll discards any state held for the votacao and installs the
	// given ballots wholesale.
	ReplaceAll(votacaoID string, votes []domain.Vote)
	Clear(votacaoID string)
}
