package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type votacaoGateway struct {
	c *Client
}

func NewVotacaoGateway(c *Client) ports.VotacaoGateway {
	return &votacaoGateway{c: c}
}

func (g *votacaoGateway) ListByStatus(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
	query := url.Values{}
	if len(statuses) > 0 {
		tokens := make([]string, len(statuses))
		for i, s := range statuses {
			tokens[i] = string(s)
		}
		query.Set("status", strings.Join(tokens, "|"))
	}

	var votacoes []domain.Votacao
	if err := g.c.do(ctx, http.MethodGet, "/votacoes", query, nil, &votacoes); err != nil {
		return nil, err
	}
	return votacoes, nil
}

func (g *votacaoGateway) GetByID(ctx context.Context, id string) (*domain.Votacao, error) {
	var votacao domain.Votacao
	err := g.c.do(ctx, http.MethodGet, "/votacoes/"+id, nil, nil, &votacao)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, domain.ErrVotacaoNotFound
		}
		return nil, err
	}
	return &votacao, nil
}

func (g *votacaoGateway) ListByPauta(ctx context.Context, pautaID string) ([]domain.Votacao, error) {
	query := url.Values{"pautaId": {pautaID}}
	var votacoes []domain.Votacao
	if err := g.c.do(ctx, http.MethodGet, "/votacoes", query, nil, &votacoes); err != nil {
		return nil, err
	}
	return votacoes, nil
}
