package services

import (
	"context"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type fakeVotacaoGateway struct {
	listByStatus func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error)
}

func (f *fakeVotacaoGateway) ListByStatus(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
	return f.listByStatus(ctx, statuses...)
}

func (f *fakeVotacaoGateway) GetByID(ctx context.Context, id string) (*domain.Votacao, error) {
	return nil, domain.ErrVotacaoNotFound
}

func (f *fakeVotacaoGateway) ListByPauta(ctx context.Context, pautaID string) ([]domain.Votacao, error) {
	return nil, nil
}

type fakeVoteGateway struct {
	listByVotacao  func(ctx context.Context, votacaoID string) ([]domain.Vote, error)
	findByVereador func(ctx context.Context, votacaoID, vereadorID string) (*domain.Vote, error)
	create         func(ctx context.Context, input ports.CreateVoteInput) (*domain.Vote, error)
	update         func(ctx context.Context, voteID string, choice domain.Choice) (*domain.Vote, error)
}

func (f *fakeVoteGateway) ListByVotacao(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
	if f.listByVotacao == nil {
		return nil, nil
	}
	return f.listByVotacao(ctx, votacaoID)
}

func (f *fakeVoteGateway) FindByVereador(ctx context.Context, votacaoID, vereadorID string) (*domain.Vote, error) {
	if f.findByVereador == nil {
		return nil, nil
	}
	return f.findByVereador(ctx, votacaoID, vereadorID)
}

func (f *fakeVoteGateway) Create(ctx context.Context, input ports.CreateVoteInput) (*domain.Vote, error) {
	return f.create(ctx, input)
}

func (f *fakeVoteGateway) Update(ctx context.Context, voteID string, choice domain.Choice) (*domain.Vote, error) {
	return f.update(ctx, voteID, choice)
}

type fakeFeed struct {
	events chan domain.Event
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan domain.Event, 16)}
}

func (f *fakeFeed) Connect(ctx context.Context, tenantID, token string) {}
func (f *fakeFeed) Disconnect()                                         {}
func (f *fakeFeed) Reconnect()                                          {}
func (f *fakeFeed) Events() <-chan domain.Event                         { return f.events }
func (f *fakeFeed) Status() ports.ConnStatus                            { return ports.ConnStatus{} }
