package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type voteGateway struct {
	c *Client
}

func NewVoteGateway(c *Client) ports.VoteGateway {
	return &voteGateway{c: c}
}

// voteDTO mirrors the API's vote shape; the vereador's party arrives as a
// nested object, flattened here to its acronym.
type voteDTO struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	VotacaoID  string    `json:"votacaoId"`
	VereadorID string    `json:"vereadorId"`
	Vote       string    `json:"vote"`
	CreatedAt  time.Time `json:"createdAt"`
	Vereador   struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Party struct {
			Acronym string `json:"acronym"`
			Name    string `json:"name"`
		} `json:"party"`
	} `json:"vereador"`
}

func (d voteDTO) toDomain() domain.Vote {
	return domain.Vote{
		ID:         d.ID,
		TenantID:   d.TenantID,
		VotacaoID:  d.VotacaoID,
		VereadorID: d.VereadorID,
		Choice:     domain.Choice(d.Vote),
		CreatedAt:  d.CreatedAt,
		Vereador: domain.Vereador{
			ID:    d.Vereador.ID,
			Name:  d.Vereador.Name,
			Party: d.Vereador.Party.Acronym,
		},
	}
}

func (g *voteGateway) ListByVotacao(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
	query := url.Values{"votacaoId": {votacaoID}}
	var dtos []voteDTO
	if err := g.c.do(ctx, http.MethodGet, "/votes", query, nil, &dtos); err != nil {
		return nil, err
	}

	votes := make([]domain.Vote, len(dtos))
	for i, dto := range dtos {
		votes[i] = dto.toDomain()
	}
	return votes, nil
}

func (g *voteGateway) FindByVereador(ctx context.Context, votacaoID, vereadorID string) (*domain.Vote, error) {
	query := url.Values{
		"votacaoId":  {votacaoID},
		"vereadorId": {vereadorID},
	}
	var dtos []voteDTO
	if err := g.c.do(ctx, http.MethodGet, "/votes", query, nil, &dtos); err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}
	// The API returns a list; the first element is canonical.
	vote := dtos[0].toDomain()
	return &vote, nil
}

type createVoteBody struct {
	VotacaoID  string `json:"votacaoId"`
	VereadorID string `json:"vereadorId"`
	Vote       string `json:"vote"`
}

func (g *voteGateway) Create(ctx context.Context, input ports.CreateVoteInput) (*domain.Vote, error) {
	body := createVoteBody{
		VotacaoID:  input.VotacaoID,
		VereadorID: input.VereadorID,
		Vote:       string(input.Choice),
	}
	var dto voteDTO
	if err := g.c.do(ctx, http.MethodPost, "/votes", nil, body, &dto); err != nil {
		return nil, err
	}
	vote := dto.toDomain()
	return &vote, nil
}

type updateVoteBody struct {
	Vote string `json:"vote"`
}

func (g *voteGateway) Update(ctx context.Context, voteID string, choice domain.Choice) (*domain.Vote, error) {
	var dto voteDTO
	err := g.c.do(ctx, http.MethodPut, "/votes/"+voteID, nil, updateVoteBody{Vote: string(choice)}, &dto)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, domain.ErrVoteNotFound
		}
		return nil, err
	}
	vote := dto.toDomain()
	return &vote, nil
}
