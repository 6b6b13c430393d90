package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/camaradigital/plenario/internal/core/domain"
)

func ballot(votacaoID, vereadorID string, choice domain.Choice) domain.Vote {
	return domain.Vote{
		ID:         "vote-" + vereadorID,
		VotacaoID:  votacaoID,
		VereadorID: vereadorID,
		Choice:     choice,
		CreatedAt:  time.Now(),
		Vereador:   domain.Vereador{ID: vereadorID, Name: "Vereador " + vereadorID},
	}
}

func TestStatsForEmptyVotacao(t *testing.T) {
	tally := NewTallyService(nil)

	stats := tally.StatsFor("votacao-1")

	assert.Equal(t, domain.Stats{}, stats)
}

func TestStatsForCountsAndPercentages(t *testing.T) {
	tally := NewTallyService(nil)
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "b", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "c", domain.ChoiceNao))
	tally.Upsert("v1", ballot("v1", "d", domain.ChoiceAusente))

	stats := tally.StatsFor("v1")

	assert.Equal(t, domain.Stats{
		Total:      4,
		Sim:        2,
		Nao:        1,
		Abstencao:  0,
		Ausente:    1,
		PercentSim: 50,
		PercentNao: 25,
	}, stats)
}

func TestStatsPercentagesRoundHalfUp(t *testing.T) {
	tally := NewTallyService(nil)
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "b", domain.ChoiceNao))
	tally.Upsert("v1", ballot("v1", "c", domain.ChoiceNao))

	stats := tally.StatsFor("v1")

	// 1/3 -> 33.33 rounds down, 2/3 -> 66.67 rounds up
	assert.Equal(t, 33, stats.PercentSim)
	assert.Equal(t, 67, stats.PercentNao)
}

func TestUpsertLastWriteWinsPerVereador(t *testing.T) {
	tally := NewTallyService(nil)

	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceNao))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceAbstencao))

	votes := tally.Ballots("v1")
	assert.Len(t, votes, 1)
	assert.Equal(t, domain.ChoiceAbstencao, votes[0].Choice)

	stats := tally.StatsFor("v1")
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Abstencao)
}

func TestUpsertDuplicateSameChoiceKeepsSingleEntry(t *testing.T) {
	tally := NewTallyService(nil)

	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))

	assert.Len(t, tally.Ballots("v1"), 1)
	assert.Equal(t, 1, tally.StatsFor("v1").Total)
}

func TestUpsertPreservesEntryIdentity(t *testing.T) {
	tally := NewTallyService(nil)

	first := ballot("v1", "a", domain.ChoiceSim)
	first.ID = "server-id-1"
	tally.Upsert("v1", first)

	// A later delivery with a different id (the broadcast fallback uses the
	// voter id) must not replace the known record identity.
	second := ballot("v1", "a", domain.ChoiceNao)
	second.ID = "a"
	tally.Upsert("v1", second)

	votes := tally.Ballots("v1")
	assert.Len(t, votes, 1)
	assert.Equal(t, "server-id-1", votes[0].ID)
	assert.Equal(t, domain.ChoiceNao, votes[0].Choice)
}

func TestClearDropsOnlyTargetVotacao(t *testing.T) {
	tally := NewTallyService(nil)
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v2", ballot("v2", "a", domain.ChoiceNao))

	tally.Clear("v1")

	assert.Equal(t, 0, tally.StatsFor("v1").Total)
	assert.Equal(t, 1, tally.StatsFor("v2").Total)
}

func TestReplaceAllDiscardsPriorState(t *testing.T) {
	tally := NewTallyService(nil)
	tally.Upsert("v1", ballot("v1", "a", domain.ChoiceSim))
	tally.Upsert("v1", ballot("v1", "b", domain.ChoiceSim))

	tally.ReplaceAll("v1", []domain.Vote{ballot("v1", "c", domain.ChoiceNao)})

	votes := tally.Ballots("v1")
	assert.Len(t, votes, 1)
	assert.Equal(t, "c", votes[0].VereadorID)
}

func TestReplaceAllCollapsesDuplicateVereadores(t *testing.T) {
	tally := NewTallyService(nil)

	tally.ReplaceAll("v1", []domain.Vote{
		ballot("v1", "a", domain.ChoiceSim),
		ballot("v1", "a", domain.ChoiceNao),
	})

	assert.Len(t, tally.Ballots("v1"), 1)
}
