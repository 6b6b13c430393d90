package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

// PanelHandler serves the read-only local panel: the live tally for the
// current votacao, the connection snapshot, and the manual retry affordance.
type PanelHandler struct {
	sessions ports.SessionService
	tally    ports.TallyService
	ballots  ports.BallotService
	feed     ports.Feed

	// vereadorID is the signed-in council member, used when a vote request
	// does not name one.
	vereadorID string
}

func NewPanelHandler(
	sessions ports.SessionService,
	tally ports.TallyService,
	ballots ports.BallotService,
	feed ports.Feed,
	vereadorID string,
) *PanelHandler {
	return &PanelHandler{
		sessions:   sessions,
		tally:      tally,
		ballots:    ballots,
		feed:       feed,
		vereadorID: vereadorID,
	}
}

type panelResponse struct {
	Votacao    *domain.Votacao  `json:"votacao"`
	Stats      domain.Stats     `json:"stats"`
	Votes      []domain.Vote    `json:"votes"`
	Connection ports.ConnStatus `json:"connection"`
}

func (h *PanelHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	resp := panelResponse{
		Votes:      []domain.Vote{},
		Connection: h.feed.Status(),
	}
	if current, ok := h.sessions.Current(); ok {
		resp.Votacao = &current
		resp.Stats = h.tally.StatsFor(current.ID)
		resp.Votes = h.tally.Ballots(current.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PanelHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.Status())
}

func (h *PanelHandler) ListVotacoes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Open())
}

func (h *PanelHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	h.feed.Reconnect()
	writeJSON(w, http.StatusAccepted, h.feed.Status())
}

type voteRequest struct {
	VotacaoID  string `json:"votacaoId"`
	VereadorID string `json:"vereadorId"`
	Vote       string `json:"vote"`
	VoteID     string `json:"voteId"`
}

func (h *PanelHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	votacaoID := req.VotacaoID
	if votacaoID == "" {
		if current, ok := h.sessions.Current(); ok {
			votacaoID = current.ID
		}
	}
	vereadorID := req.VereadorID
	if vereadorID == "" {
		vereadorID = h.vereadorID
	}

	confirmed, err := h.ballots.Submit(r.Context(), ports.SubmitInput{
		VotacaoID:   votacaoID,
		VereadorID:  vereadorID,
		Choice:      domain.Choice(req.Vote),
		KnownVoteID: req.VoteID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidChoice) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrNoActiveVotacao) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, confirmed)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
