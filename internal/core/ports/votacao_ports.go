package ports

import (
	"context"

	"github.com/camaradigital/plenario/internal/core/domain"
)

// VotacaoGateway is the REST collaborator for votacao resources.
type VotacaoGateway interface {
	// ListByStatus returns the votacoes matching any of the given statuses.
	ListByStatus(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error)
	GetByID(ctx context.Context, id string) (*domain.Votacao, error)
	ListByPauta(ctx context.Context, pautaID string) ([]domain.Votacao, error)
}
