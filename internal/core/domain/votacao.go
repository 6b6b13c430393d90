package domain

import "time"

type VotacaoStatus string

const (
	StatusWaiting    VotacaoStatus = "WAITING"
	StatusInProgress VotacaoStatus = "IN_PROGRESS"
	StatusCompleted  VotacaoStatus = "COMPLETED"
	StatusCancelled  VotacaoStatus = "CANCELLED"

	// StatusNone is never stored on a Votacao; it is the decoded form of the
	// wire token "nenhuma" (no session is currently open for voting).
	StatusNone VotacaoStatus = ""
)

type Votacao struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenantId"`
	PautaID     string        `json:"pautaId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      VotacaoStatus `json:"status"`
	StartTime   *time.Time    `json:"startTime,omitempty"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// wireStatuses maps the tokens the realtime channel emits onto the REST
// status enum. The channel speaks a different dialect than the REST API.
var wireStatuses = map[string]VotacaoStatus{
	"nenhuma":          StatusNone,
	"aguardando_votos": StatusInProgress,
	"encerrada":        StatusCompleted,
}

// ParseWireStatus resolves a realtime status token. ok is false for tokens
// outside the known dialect.
func ParseWireStatus(token string) (VotacaoStatus, bool) {
	s, ok := wireStatuses[token]
	return s, ok
}
