package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

func votacao(id string) domain.Votacao {
	return domain.Votacao{ID: id, Title: "Votacao " + id, Status: domain.StatusInProgress}
}

func TestSelectLoadsBallots(t *testing.T) {
	tally := NewTallyService(nil)
	votes := &fakeVoteGateway{
		listByVotacao: func(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
			return []domain.Vote{ballot(votacaoID, "a", domain.ChoiceSim)}, nil
		},
	}
	svc := NewSessionService(&fakeVotacaoGateway{}, votes, tally, newFakeFeed(), nil)

	require.NoError(t, svc.Select(context.Background(), votacao("v1")))

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "v1", current.ID)
	assert.Equal(t, 1, tally.StatsFor("v1").Total)
}

func TestSwitchingVotacaoClearsPriorState(t *testing.T) {
	tally := NewTallyService(nil)
	votes := &fakeVoteGateway{
		listByVotacao: func(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
			return []domain.Vote{ballot(votacaoID, "a", domain.ChoiceSim)}, nil
		},
	}
	svc := NewSessionService(&fakeVotacaoGateway{}, votes, tally, newFakeFeed(), nil)

	require.NoError(t, svc.Select(context.Background(), votacao("v1")))
	require.NoError(t, svc.Select(context.Background(), votacao("v2")))

	assert.Equal(t, 0, tally.StatsFor("v1").Total)
	assert.Equal(t, 1, tally.StatsFor("v2").Total)
}

func TestSelectFailureLeavesPriorBallotsUntouched(t *testing.T) {
	tally := NewTallyService(nil)
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	votes := &fakeVoteGateway{
		listByVotacao: func(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
			return nil, errors.New("gateway down")
		},
	}
	svc := NewSessionService(&fakeVotacaoGateway{}, votes, tally, newFakeFeed(), nil)

	err := svc.Select(context.Background(), votacao("v1"))

	require.Error(t, err)
	assert.Equal(t, 1, tally.StatsFor("v1").Total)
}

func TestStaleLoadResultIsDropped(t *testing.T) {
	tally := NewTallyService(nil)
	var svc ports.SessionService

	// While v1's ballots are still in flight the current votacao switches to
	// v2; the late result for v1 must not be applied.
	votes := &fakeVoteGateway{}
	votes.listByVotacao = func(ctx context.Context, votacaoID string) ([]domain.Vote, error) {
		if votacaoID == "v1" {
			require.NoError(t, svc.Select(ctx, votacao("v2")))
		}
		return []domain.Vote{ballot(votacaoID, "a", domain.ChoiceSim)}, nil
	}
	svc = NewSessionService(&fakeVotacaoGateway{}, votes, tally, newFakeFeed(), nil)

	require.NoError(t, svc.Select(context.Background(), votacao("v1")))

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "v2", current.ID)
	assert.Equal(t, 0, tally.StatsFor("v1").Total)
	assert.Equal(t, 1, tally.StatsFor("v2").Total)
}

func TestLoadActiveAutoSelectsFirstVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	votacoes := &fakeVotacaoGateway{
		listByStatus: func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
			return []domain.Votacao{votacao("v1"), votacao("v2")}, nil
		},
	}
	svc := NewSessionService(votacoes, &fakeVoteGateway{}, tally, newFakeFeed(), nil)

	list, err := svc.LoadActive(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 2)
	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "v1", current.ID)
}

func TestLoadActiveFailureKeepsState(t *testing.T) {
	tally := NewTallyService(nil)
	votacoes := &fakeVotacaoGateway{
		listByStatus: func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
			return nil, errors.New("gateway down")
		},
	}
	svc := NewSessionService(votacoes, &fakeVoteGateway{}, tally, newFakeFeed(), nil)

	_, err := svc.LoadActive(context.Background())

	require.Error(t, err)
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestRunUpsertsBallotForCurrentVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	svc := NewSessionService(&fakeVotacaoGateway{}, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	go svc.Run(ctx)

	feed.events <- domain.BallotCast{
		VotacaoID:    "v1",
		VereadorID:   "a",
		VereadorName: "Ana",
		Party:        "ABC",
		Choice:       domain.ChoiceSim,
		Timestamp:    time.Now(),
	}

	assert.Eventually(t, func() bool {
		return tally.StatsFor("v1").Total == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRunIgnoresBallotForOtherVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	svc := NewSessionService(&fakeVotacaoGateway{}, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	go svc.Run(ctx)

	feed.events <- domain.BallotCast{VotacaoID: "v9", VereadorID: "a", Choice: domain.ChoiceSim}
	// drain marker: a second event for the current votacao proves the first
	// one has been processed by the time it lands
	feed.events <- domain.BallotCast{VotacaoID: "v1", VereadorID: "b", Choice: domain.ChoiceNao}

	assert.Eventually(t, func() bool {
		return tally.StatsFor("v1").Total == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, tally.StatsFor("v9").Total)
}

func TestRunStartedEventSwitchesVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	votacoes := &fakeVotacaoGateway{
		listByStatus: func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
			return []domain.Votacao{votacao("v2")}, nil
		},
	}
	svc := NewSessionService(votacoes, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	go svc.Run(ctx)

	feed.events <- domain.SessionStatusChanged{Status: domain.StatusInProgress, VotacaoID: "v2"}

	assert.Eventually(t, func() bool {
		current, ok := svc.Current()
		return ok && current.ID == "v2"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, tally.StatsFor("v1").Total)
}

func TestRunEndedEventClearsCurrentVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	votacoes := &fakeVotacaoGateway{
		listByStatus: func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
			return nil, nil
		},
	}
	svc := NewSessionService(votacoes, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	go svc.Run(ctx)

	feed.events <- domain.SessionStatusChanged{Status: domain.StatusCompleted, VotacaoID: "v1"}

	assert.Eventually(t, func() bool {
		_, ok := svc.Current()
		return !ok
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, tally.StatsFor("v1").Total)
}

func TestRunEndedEventForOtherVotacaoKeepsCurrent(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	votacoes := &fakeVotacaoGateway{
		listByStatus: func(ctx context.Context, statuses ...domain.VotacaoStatus) ([]domain.Votacao, error) {
			return []domain.Votacao{votacao("v1")}, nil
		},
	}
	svc := NewSessionService(votacoes, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	go svc.Run(ctx)

	feed.events <- domain.SessionStatusChanged{Status: domain.StatusCompleted, VotacaoID: "v9"}
	feed.events <- domain.BallotCast{VotacaoID: "v1", VereadorID: "b", Choice: domain.ChoiceNao}

	assert.Eventually(t, func() bool {
		return tally.StatsFor("v1").Total == 2
	}, time.Second, 10*time.Millisecond)
	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "v1", current.ID)
}

func TestRunNoneStatusClearsCurrent(t *testing.T) {
	tally := NewTallyService(nil)
	feed := newFakeFeed()
	svc := NewSessionService(&fakeVotacaoGateway{}, &fakeVoteGateway{}, tally, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Select(ctx, votacao("v1")))
	go svc.Run(ctx)

	feed.events <- domain.SessionStatusChanged{Status: domain.StatusNone}

	assert.Eventually(t, func() bool {
		_, ok := svc.Current()
		return !ok
	}, time.Second, 10*time.Millisecond)
}
