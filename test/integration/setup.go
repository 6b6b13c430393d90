package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	panelhttp "github.com/camaradigital/plenario/internal/adapters/handler/http"
	"github.com/camaradigital/plenario/internal/adapters/rest"
	"github.com/camaradigital/plenario/internal/adapters/socket"
	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
	"github.com/camaradigital/plenario/internal/core/services"
)

const (
	testTenantID   = "camara-1"
	testToken      = "token-123"
	testVereadorID = "ver-self"
)

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type upstreamVote struct {
	ID           string
	VotacaoID    string
	VereadorID   string
	Vote         string
	CreatedAt    time.Time
	VereadorName string
	Party        string
}

func (v upstreamVote) dto() map[string]any {
	return map[string]any{
		"id":         v.ID,
		"tenantId":   testTenantID,
		"votacaoId":  v.VotacaoID,
		"vereadorId": v.VereadorID,
		"vote":       v.Vote,
		"createdAt":  v.CreatedAt,
		"vereador": map[string]any{
			"id":   v.VereadorID,
			"name": v.VereadorName,
			"party": map[string]any{
				"acronym": v.Party,
			},
		},
	}
}

// upstream is an in-memory stand-in for the voting backend: the REST API and
// the realtime channel share one test server and one data set.
type upstream struct {
	server *httptest.Server

	mu       sync.Mutex
	votacoes []domain.Votacao
	votes    []upstreamVote
	nextID   int
	conns    []*websocket.Conn
	dials    int
}

func newUpstream() *upstream {
	u := &upstream{}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/votacoes", u.listVotacoes)
	r.Get("/votacoes/{id}", u.getVotacao)
	r.Get("/votes", u.listVotes)
	r.Post("/votes", u.createVote)
	r.Put("/votes/{id}", u.updateVote)
	r.Get("/socket", u.serveSocket)

	u.server = httptest.NewServer(r)
	return u
}

func (u *upstream) Close() {
	u.mu.Lock()
	conns := u.conns
	u.conns = nil
	u.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	u.server.Close()
}

func (u *upstream) socketURL() string {
	return "ws" + strings.TrimPrefix(u.server.URL, "http") + "/socket"
}

func (u *upstream) addVotacao(v domain.Votacao) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.votacoes = append(u.votacoes, v)
}

func (u *upstream) setVotacaoStatus(id string, status domain.VotacaoStatus) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.votacoes {
		if u.votacoes[i].ID == id {
			u.votacoes[i].Status = status
		}
	}
}

func (u *upstream) addVote(v upstreamVote) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.votes = append(u.votes, v)
}

func (u *upstream) votesFor(votacaoID string) []upstreamVote {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []upstreamVote
	for _, v := range u.votes {
		if v.VotacaoID == votacaoID {
			out = append(out, v)
		}
	}
	return out
}

func (u *upstream) dialCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dials
}

// broadcast pushes a realtime frame to every joined client.
func (u *upstream) broadcast(t *testing.T, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)

	// The client reports connected before the server has read its join frame;
	// wait for the registration to land.
	var conns []*websocket.Conn
	require.Eventually(t, func() bool {
		u.mu.Lock()
		conns = append([]*websocket.Conn(nil), u.conns...)
		u.mu.Unlock()
		return len(conns) > 0
	}, time.Second, 5*time.Millisecond, "no realtime client joined")

	for _, c := range conns {
		require.NoError(t, c.WriteJSON(wsFrame{Event: event, Data: payload}))
	}
}

// dropConnections severs every live realtime connection server-side.
func (u *upstream) dropConnections() {
	u.mu.Lock()
	conns := u.conns
	u.conns = nil
	u.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (u *upstream) listVotacoes(w http.ResponseWriter, r *http.Request) {
	wanted := map[string]bool{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, "|") {
			wanted[s] = true
		}
	}

	u.mu.Lock()
	out := []domain.Votacao{}
	for _, v := range u.votacoes {
		if len(wanted) == 0 || wanted[string(v.Status)] {
			out = append(out, v)
		}
	}
	u.mu.Unlock()

	writeData(w, http.StatusOK, out)
}

func (u *upstream) getVotacao(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, v := range u.votacoes {
		if v.ID == id {
			writeData(w, http.StatusOK, v)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (u *upstream) listVotes(w http.ResponseWriter, r *http.Request) {
	votacaoID := r.URL.Query().Get("votacaoId")
	vereadorID := r.URL.Query().Get("vereadorId")

	u.mu.Lock()
	out := []map[string]any{}
	for _, v := range u.votes {
		if votacaoID != "" && v.VotacaoID != votacaoID {
			continue
		}
		if vereadorID != "" && v.VereadorID != vereadorID {
			continue
		}
		out = append(out, v.dto())
	}
	u.mu.Unlock()

	writeData(w, http.StatusOK, out)
}

func (u *upstream) createVote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VotacaoID  string `json:"votacaoId"`
		VereadorID string `json:"vereadorId"`
		Vote       string `json:"vote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	u.nextID++
	vote := upstreamVote{
		ID:         fmt.Sprintf("vote-%d", u.nextID),
		VotacaoID:  body.VotacaoID,
		VereadorID: body.VereadorID,
		Vote:       body.Vote,
		CreatedAt:  time.Now().UTC(),
	}
	u.votes = append(u.votes, vote)
	u.mu.Unlock()

	writeData(w, http.StatusCreated, vote.dto())
}

func (u *upstream) updateVote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Vote string `json:"vote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.votes {
		if u.votes[i].ID == id {
			u.votes[i].Vote = body.Vote
			writeData(w, http.StatusOK, u.votes[i].dto())
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

var upgrader = websocket.Upgrader{}

func (u *upstream) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	u.mu.Lock()
	u.dials++
	u.mu.Unlock()

	var frame wsFrame
	if err := conn.ReadJSON(&frame); err != nil || frame.Event != "authenticate" {
		conn.Close()
		return
	}
	var creds struct {
		Token    string `json:"token"`
		TenantID string `json:"tenantId"`
	}
	json.Unmarshal(frame.Data, &creds)

	ok := creds.Token == testToken && creds.TenantID == testTenantID
	ack, _ := json.Marshal(map[string]any{"success": ok, "error": ""})
	if err := conn.WriteJSON(wsFrame{Event: "authenticated", Data: ack}); err != nil || !ok {
		conn.Close()
		return
	}

	if err := conn.ReadJSON(&frame); err != nil || frame.Event != "join_room" {
		conn.Close()
		return
	}

	u.mu.Lock()
	u.conns = append(u.conns, conn)
	u.mu.Unlock()

	// Drain further client frames so pings or stray writes never block; the
	// test pushes server frames through broadcast.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type testApp struct {
	Upstream *upstream
	Panel    *httptest.Server
	Client   *http.Client
	Feed     ports.Feed
	Sessions ports.SessionService

	cancel context.CancelFunc
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	up := newUpstream()

	client := rest.NewClient(rest.Config{
		BaseURL:  up.server.URL,
		TenantID: testTenantID,
		Token:    testToken,
		Timeout:  5 * time.Second,
	}, nil)
	votacoes := rest.NewVotacaoGateway(client)
	votes := rest.NewVoteGateway(client)

	feed := socket.NewManager(socket.Config{
		URL:           up.socketURL(),
		ReconnectBase: 20 * time.Millisecond,
		ReconnectMax:  100 * time.Millisecond,
		MaxAttempts:   10,
	}, nil)

	tally := services.NewTallyService(nil)
	sessions := services.NewSessionService(votacoes, votes, tally, feed, nil)
	ballots := services.NewBallotService(votes, tally, nil)

	ctx, cancel := context.WithCancel(context.Background())
	feed.Connect(ctx, testTenantID, testToken)
	go sessions.Run(ctx)

	handler := panelhttp.NewHandler(panelhttp.NewPanelHandler(sessions, tally, ballots, feed, testVereadorID))
	panel := httptest.NewServer(handler)

	app := &testApp{
		Upstream: up,
		Panel:    panel,
		Client:   panel.Client(),
		Feed:     feed,
		Sessions: sessions,
		cancel:   cancel,
	}

	require.Eventually(t, func() bool {
		return feed.Status().Connected
	}, 2*time.Second, 10*time.Millisecond, "realtime feed never connected")

	return app
}

func (a *testApp) Teardown(t *testing.T) {
	t.Helper()
	a.cancel()
	a.Feed.Disconnect()
	a.Panel.Close()
	a.Upstream.Close()
}

type panelView struct {
	Votacao *domain.Votacao  `json:"votacao"`
	Stats   domain.Stats     `json:"stats"`
	Votes   []domain.Vote    `json:"votes"`
	Conn    ports.ConnStatus `json:"connection"`
}

func (a *testApp) getPanel(t *testing.T) panelView {
	t.Helper()

	resp, err := a.Client.Get(a.Panel.URL + "/panel")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view panelView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}
