package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/conquest-go/internal/api"
	"github.com/mcoot/conquest-go/internal/api/apierr"
	apimiddleware "github.com/mcoot/conquest-go/internal/api/middleware"
	"github.com/mcoot/conquest-go/internal/api/response"
	"github.com/mcoot/conquest-go/internal/factory"
	"github.com/mcoot/conquest-go/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T, limiter *apimiddleware.RateLimiter) *testServer {
	t.Helper()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     app.AuthService,
		RegistryService: app.RegistryService,
		GameController:  app.GameController,
		Hubs:            app.Hubs,
		RateLimiter:     limiter,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		encoded, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
}

func at(row, col int) map[string]int {
	return map[string]int{"row": row, "col": col}
}

// initialize creates the registry and returns a guest token with a profile
func (ts *testServer) initialize(t *testing.T) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/program/initialize", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return ts.playerWithProfile(t, "Alice")
}

func (ts *testServer) playerWithProfile(t *testing.T, name string) string {
	t.Helper()
	token := createGuestPlayer(t, ts, name)
	rr := ts.request(http.MethodPost, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return token
}

func createGuestPlayer(t *testing.T, ts *testServer, displayName string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": displayName}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.AuthResponse](t, rr).SessionToken
}

func createGame(t *testing.T, ts *testServer, token string, body map[string]any) response.Game {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", body, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Game](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.False(t, decode[response.AuthResponse](t, rr).Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Other",
	}, "")
	assertError(t, rr, http.StatusConflict, apierr.CodeUsernameExists)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode[response.AuthResponse](t, rr).SessionToken

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", decode[response.Player](t, rr).DisplayName)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "wrong-password"}, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeInvalidCredentials)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t, nil)
	token := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/api/v1/players/me", "/api/v1/profile", "/api/v1/games/0"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)
	}
}

func TestProgramInitializesOnce(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/program", nil, "")
	assertError(t, rr, http.StatusConflict, apierr.CodeNotInitialized)

	rr = ts.request(http.MethodPost, "/api/v1/program/initialize", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, uint32(0), decode[response.Registry](t, rr).GameCount)

	rr = ts.request(http.MethodPost, "/api/v1/program/initialize", nil, "")
	assertError(t, rr, http.StatusConflict, apierr.CodeAlreadyInitialized)
}

func TestProfileLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	token := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/profile", nil, token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeProfileNotFound)

	rr = ts.request(http.MethodPost, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/profile", nil, token)
	assertError(t, rr, http.StatusConflict, apierr.CodeProfileAlreadyExists)

	rr = ts.request(http.MethodGet, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode[response.Profile](t, rr)
	assert.Equal(t, uint32(0), profile.Experience)
	assert.Empty(t, profile.ActiveGames)
}

func TestSinglePlayerGameFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.initialize(t)

	g := createGame(t, ts, token, map[string]any{"max_players": 1, "map_size": "small"})
	assert.Equal(t, "live", g.Status)
	assert.Equal(t, uint32(1), g.Round)
	require.NotNil(t, g.Players[0])
	assert.Nil(t, g.Players[1])
	assert.Len(t, g.Tiles, 7)

	base := g.Tiles[1][1]
	require.NotNil(t, base.Building)
	assert.Equal(t, "base", base.Building.Type)
	require.NotNil(t, base.Units)

	path := fmt.Sprintf("/api/v1/games/%d", g.ID)

	rr := ts.request(http.MethodPost, path+"/move", map[string]any{"from": at(1, 1), "to": at(2, 1)}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	move := decode[response.MoveResponse](t, rr)
	assert.Equal(t, "captured", move.Outcome)
	assert.True(t, move.Combat)

	rr = ts.request(http.MethodPost, path+"/recruit", map[string]any{"unit_type": "infantry", "quantity": 100, "at": at(1, 1)}, token)
	assertError(t, rr, http.StatusConflict, apierr.CodeInsufficientFunds)

	rr = ts.request(http.MethodPost, path+"/recruit", map[string]any{"unit_type": "infantry", "quantity": 4, "at": at(1, 1)}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	recruit := decode[response.RecruitResponse](t, rr)
	assert.Equal(t, uint32(4), recruit.Cost)
	assert.Equal(t, uint16(4), recruit.Quantity)

	rr = ts.request(http.MethodPost, path+"/build", map[string]any{"building_type": "gas_plant", "at": at(1, 1)}, token)
	assertError(t, rr, http.StatusConflict, apierr.CodeBuildingTypeMismatch)

	rr = ts.request(http.MethodPost, path+"/end-turn", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	end := decode[response.EndTurnResponse](t, rr)
	assert.True(t, end.Wrapped)
	assert.Equal(t, uint32(3), end.Income)
	assert.Equal(t, uint32(2), end.Game.Round)
	assert.Equal(t, uint32(10-4+3), end.Game.Players[0].Balance)

	rr = ts.request(http.MethodGet, "/api/v1/profile", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []uint32{g.ID}, decode[response.Profile](t, rr).ActiveGames)
}

func TestMultiplayerTurnOrder(t *testing.T) {
	ts := newTestServer(t, nil)
	alice := ts.initialize(t)
	bob := ts.playerWithProfile(t, "Bob")

	g := createGame(t, ts, alice, map[string]any{"max_players": 2, "is_multiplayer": true, "map_size": "small"})
	assert.Equal(t, "not_started", g.Status)
	path := fmt.Sprintf("/api/v1/games/%d", g.ID)

	rr := ts.request(http.MethodPost, path+"/end-turn", nil, alice)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotYourTurn)

	rr = ts.request(http.MethodPost, path+"/join", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "live", decode[response.Game](t, rr).Status)

	rr = ts.request(http.MethodPost, path+"/join", nil, bob)
	assertError(t, rr, http.StatusConflict, apierr.CodeGameAlreadyStarted)

	rr = ts.request(http.MethodPost, path+"/end-turn", nil, bob)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotYourTurn)

	rr = ts.request(http.MethodPost, path+"/end-turn", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[response.EndTurnResponse](t, rr).Game.CurrentPlayerIndex)

	rr = ts.request(http.MethodPost, path+"/move", map[string]any{"from": at(1, 1), "to": at(1, 2)}, alice)
	assertError(t, rr, http.StatusForbidden, apierr.CodeNotYourTurn)

	rr = ts.request(http.MethodPost, path+"/end-turn", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	end := decode[response.EndTurnResponse](t, rr)
	assert.True(t, end.Wrapped)
	assert.Equal(t, uint32(2), end.Game.Round)
}

func TestRequestValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.initialize(t)
	g := createGame(t, ts, token, map[string]any{"max_players": 1})
	path := fmt.Sprintf("/api/v1/games/%d", g.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/games", "{", http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"bad map size", http.MethodPost, "/api/v1/games", map[string]any{"max_players": 1, "map_size": "huge"}, http.StatusBadRequest, apierr.CodeInvalidMapSize},
		{"bad max players", http.MethodPost, "/api/v1/games", map[string]any{"max_players": 5}, http.StatusBadRequest, apierr.CodeInvalidMaxPlayers},
		{"unknown game", http.MethodGet, "/api/v1/games/999", nil, http.StatusNotFound, apierr.CodeGameNotFound},
		{"move without target", http.MethodPost, path + "/move", map[string]any{"from": at(1, 1)}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"move off the map", http.MethodPost, path + "/move", map[string]any{"from": at(1, 1), "to": at(0, 9)}, http.StatusBadRequest, apierr.CodeOutOfBounds},
		{"unknown unit type", http.MethodPost, path + "/recruit", map[string]any{"unit_type": "dragon", "quantity": 1, "at": at(1, 1)}, http.StatusBadRequest, apierr.CodeInvalidUnitType},
		{"recruit on neutral tile", http.MethodPost, path + "/recruit", map[string]any{"unit_type": "infantry", "quantity": 1, "at": at(3, 3)}, http.StatusForbidden, apierr.CodeTileNotOwned},
		{"unknown building", http.MethodPost, path + "/build", map[string]any{"building_type": "castle", "at": at(1, 1)}, http.StatusBadRequest, apierr.CodeInvalidBuildingType},
		{"single player join", http.MethodPost, path + "/join", nil, http.StatusConflict, apierr.CodeGameIsSinglePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path, tt.body, token)
			assertError(t, rr, tt.status, tt.code)
		})
	}
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t, nil)
	alice := ts.initialize(t)
	bob := ts.playerWithProfile(t, "Bob")
	g := createGame(t, ts, alice, map[string]any{"max_players": 2, "is_multiplayer": true})
	path := fmt.Sprintf("/api/v1/games/%d", g.ID)

	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "/events?token=" + url.QueryEscape(bob)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = resp.Body.Close()
	})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello.Type)

	rr := ts.request(http.MethodPost, path+"/join", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)

	var seen []string
	for len(seen) < 2 {
		var event response.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, g.ID, event.GameID)
		seen = append(seen, event.Type)
	}
	assert.Equal(t, []string{"player_joined", "game_started"}, seen)
}

func TestEventStreamRejectsUnknownGame(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.initialize(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/42/events", nil, token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, apimiddleware.NewRateLimiter(apimiddleware.RateLimitConfig{PerSecond: 0.001, Burst: 2}))

	assert.Equal(t, http.StatusOK, ts.request(http.MethodGet, "/api/v1/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodGet, "/api/v1/health", nil, "").Code)
	assertError(t, ts.request(http.MethodGet, "/api/v1/health", nil, ""), http.StatusTooManyRequests, apierr.CodeRateLimited)
}
