package domain

import "time"

// Event is a decoded realtime message. The closed set of implementations is
// BallotCast and SessionStatusChanged; anything else on the wire is dropped
// before it reaches this type.
type Event interface {
	isEvent()
}

// BallotCast carries one voter's ballot as broadcast by the backend. The
// broadcast does not include the ballot's own id, only the voter's.
type BallotCast struct {
	VotacaoID    string
	VereadorID   string
	VereadorName string
	Party        string
	Choice       Choice
	Timestamp    time.Time
}

func (BallotCast) isEvent() {}

// SessionStatusChanged signals a votacao lifecycle transition. Status is
// StatusNone when no session is open. VotacaoID and Titulo are optional on
// the wire.
type SessionStatusChanged struct {
	Status    VotacaoStatus
	VotacaoID string
	PautaID   string
	Titulo    string
}

func (SessionStatusChanged) isEvent() {}
