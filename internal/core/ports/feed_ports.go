package ports

import (
	"context"

	"github.com/camaradigital/plenario/internal/core/domain"
)

type ConnPhase string

const (
	PhaseDisconnected   ConnPhase = "disconnected"
	PhaseConnecting     ConnPhase = "connecting"
	PhaseAuthenticating ConnPhase = "authenticating"
	PhaseConnected      ConnPhase = "connected"
	PhaseReconnecting   ConnPhase = "reconnecting"
	PhaseFailed         ConnPhase = "failed"
	PhaseAuthRejected   ConnPhase = "auth_rejected"
)

// ConnStatus is a read-only snapshot of the realtime connection.
type ConnStatus struct {
	Connected   bool      `json:"connected"`
	Phase       ConnPhase `json:"phase"`
	TenantID    string    `json:"tenantId"`
	HasToken    bool      `json:"hasToken"`
	Attempts    int       `json:"reconnectAttempts"`
	MaxAttempts int       `json:"maxReconnectAttempts"`
}

// Feed is the realtime transport. Connect never returns an error: connection
// failures feed the retry cycle and are observable through Status, so callers
// keep functioning while disconnected.
type Feed interface {
	// Connect establishes the single physical connection for the given
	// tenant and credential, tearing down any previous one first.
	Connect(ctx context.Context, tenantID, token string)
	// Disconnect is the intentional teardown; it never triggers a retry.
	Disconnect()
	// Reconnect resets the attempt counter and retries immediately. It is a
	// no-op while connected; while a backoff timer is pending it cancels the
	// timer and dials at once.
	Reconnect()
	Events() <-chan domain.Event
	Status() ConnStatus
}
