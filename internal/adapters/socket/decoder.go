package socket

import (
	"encoding/json"
	"time"

	"github.com/camaradigital/plenario/internal/core/domain"
)

// The backend has renamed its events more than once; every alias a deployed
// server still emits is folded here. Adding a future alias is a table edit.
type eventKind int

const (
	kindBallot eventKind = iota + 1
	kindStatus
	kindEnvelope // generic painel_update, discriminated by the data's type field
)

var eventKinds = map[string]eventKind{
	"new_vote":        kindBallot,
	"vote_updated":    kindBallot,
	"votacao_started": kindStatus,
	"votacao_ended":   kindStatus,
	"painel_update":   kindEnvelope,
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ballotPayload struct {
	VotacaoID  string `json:"votacaoId"`
	VereadorID string `json:"vereadorId"`
	Vereador   string `json:"vereador"`
	Partido    string `json:"partido"`
	Voto       string `json:"voto"`
	Timestamp  string `json:"timestamp"`
}

type statusPayload struct {
	Status    string `json:"status"`
	VotacaoID string `json:"votacaoId"`
	PautaID   string `json:"pautaId"`
	Titulo    string `json:"titulo"`
}

// Decode classifies a raw frame into a domain event. ok is false for
// anything outside the known set; such frames are dropped by the caller with
// a diagnostic and never propagated.
func Decode(raw []byte) (domain.Event, bool) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, false
	}

	kind, known := eventKinds[frame.Event]
	if !known {
		return nil, false
	}

	if kind == kindEnvelope {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame.Data, &probe); err != nil {
			return nil, false
		}
		switch probe.Type {
		case "voto", "new_vote":
			kind = kindBallot
		case "status":
			kind = kindStatus
		default:
			return nil, false
		}
	}

	switch kind {
	case kindBallot:
		return decodeBallot(frame.Data)
	case kindStatus:
		return decodeStatus(frame.Data)
	}
	return nil, false
}

func decodeBallot(data json.RawMessage) (domain.Event, bool) {
	var p ballotPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}

	choice, ok := domain.ParseChoice(p.Voto)
	if !ok || p.VotacaoID == "" || p.VereadorID == "" {
		return nil, false
	}

	// A malformed timestamp degrades to the zero time rather than dropping
	// the ballot; the tally only uses it for display ordering.
	ts, _ := time.Parse(time.RFC3339, p.Timestamp)

	return domain.BallotCast{
		VotacaoID:    p.VotacaoID,
		VereadorID:   p.VereadorID,
		VereadorName: p.Vereador,
		Party:        p.Partido,
		Choice:       choice,
		Timestamp:    ts,
	}, true
}

func decodeStatus(data json.RawMessage) (domain.Event, bool) {
	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}

	status, ok := domain.ParseWireStatus(p.Status)
	if !ok {
		return nil, false
	}

	return domain.SessionStatusChanged{
		Status:    status,
		VotacaoID: p.VotacaoID,
		PautaID:   p.PautaID,
		Titulo:    p.Titulo,
	}, true
}
