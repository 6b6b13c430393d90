package ports

import (
	"context"

	"github.com/camaradigital/plenario/internal/core/domain"
)

// SessionService tracks which votacao is current and drives the tally from
// realtime events and gateway loads.
type SessionService interface {
	// Run consumes the feed's event stream until the context ends or the
	// stream closes. It is the only goroutine that ingests live events.
	Run(ctx context.Context)
	// LoadActive refreshes the open-votacao list. When no votacao is
	// current, the first of the loaded list is selected automatically.
	LoadActive(ctx context.Context) ([]domain.Votacao, error)
	// Select makes the votacao current, discarding any state held for the
	// previously current one, and loads its ballots from the gateway.
	Select(ctx context.Context, votacao domain.Votacao) error
	Current() (domain.Votacao, bool)
	Open() []domain.Votacao
	// ClearCurrent drops the current votacao and its aggregation state.
	ClearCurrent()
}
