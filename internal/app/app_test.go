package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/ai"
	"github.com/skyaboveme/yourgency/internal/config"
	"github.com/skyaboveme/yourgency/internal/gateway"
	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/pipeline"
	"github.com/skyaboveme/yourgency/internal/resilience"
)

const (
	adminEmail    = "admin@yourgency.test"
	adminPassword = "admin-pass"
)

type scriptedGenerator struct {
	mu   sync.Mutex
	text string
	n    int
}

func (g *scriptedGenerator) Generate(context.Context, ai.Request) (*ai.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return &ai.Response{Text: g.text}, nil
}

type hotLeads struct {
	mu        sync.Mutex
	companies []string
}

func (h *hotLeads) NotifyHotLead(company string, _ models.LeadScore) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.companies = append(h.companies, company)
	return nil
}

func (h *hotLeads) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.companies...)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = 8080
	cfg.Database.Driver = "sqlite"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.AdminEmail = adminEmail
	cfg.Auth.AdminPassword = adminPassword
	cfg.AI.FastModel = "flash"
	cfg.AI.DeepModel = "pro"
	cfg.AI.MapsModel = "maps"
	cfg.AI.ScoreCacheTTL = time.Minute
	return cfg
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, db *sql.DB, opts Options) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(), db, zap.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	srv := httptest.NewServer(a.Router)
	t.Cleanup(srv.Close)
	return srv
}

func newGatewayClient(t *testing.T, srv *httptest.Server) *gateway.Client {
	t.Helper()
	c := gateway.NewClient(srv.Client(), srv.URL,
		resilience.NewCircuitBreaker("test-"+t.Name()),
		resilience.Config{InitialBackoff: time.Millisecond},
		zap.NewNop(),
	)
	_, err := c.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return c
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func seedDeal(id string, stage models.Stage) models.Deal {
	return models.Deal{
		ID:          id,
		CompanyName: "Company " + id,
		ContactName: "Contact " + id,
		Email:       id + "@example.test",
		Industry:    "HVAC",
		Stage:       stage,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBoardReplicatesThroughGateway(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)
	ctx := context.Background()

	require.NoError(t, client.SaveDeals(ctx, []models.Deal{
		seedDeal("1", models.StageProspect),
		seedDeal("2", models.StageNegotiation),
	}))

	b := pipeline.NewBoard(client, pipeline.WithLogger(zap.NewNop()))
	require.NoError(t, b.Load(ctx))
	assert.Len(t, b.Deals(), 2)

	assert.Equal(t, pipeline.Applied, b.Advance("1"))
	assert.Equal(t, pipeline.Terminal, b.Advance("2"))
	require.NoError(t, b.Flush(ctx))
	require.NoError(t, b.Close())

	stored, err := client.LoadDeals(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	byID := map[string]models.Deal{}
	for _, d := range stored {
		byID[d.ID] = d
	}
	assert.Equal(t, models.StageOutreach, byID["1"].Stage)
	assert.Equal(t, models.StageNegotiation, byID["2"].Stage)
	assert.Equal(t, "Contact 1", byID["1"].ContactName)
}

func TestRemovedDealComesBackOnReload(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)
	ctx := context.Background()
	require.NoError(t, client.SaveDeals(ctx, []models.Deal{seedDeal("1", models.StageProspect), seedDeal("2", models.StageProposal)}))

	b := pipeline.NewBoard(client, pipeline.WithLogger(zap.NewNop()))
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.Load(ctx))

	out, err := b.Remove(ctx, "2", pipeline.AlwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Applied, out)
	require.NoError(t, b.Flush(ctx))

	require.NoError(t, b.Load(ctx))
	_, ok := b.Get("2")
	assert.True(t, ok, "upsert never deletes, so the row is still stored")
	assert.Equal(t, []string{"2"}, b.LocallyRemoved())
}

func TestBulkUpsert_RejectsUnknownStage(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)

	body := []map[string]any{
		{"id": "1", "company_name": "Acme", "stage": "PROSPECT"},
		{"id": "2", "company_name": "Beta", "stage": "WAITING"},
	}
	resp := doJSON(t, srv, http.MethodPut, "/api/opportunities", client.Token(), body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	deals, err := client.LoadDeals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, deals, "a rejected batch writes nothing")
}

func TestBulkUpsert_CountAndLowercaseStage(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)

	body := []map[string]any{
		{"id": "1", "company_name": "Acme", "stage": "proposal"},
		{"id": "2", "company_name": "Beta", "stage": "PROSPECT"},
	}
	resp := doJSON(t, srv, http.MethodPut, "/api/opportunities", client.Token(), body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.Success)
	assert.Equal(t, 2, ack.Count)

	resp = doJSON(t, srv, http.MethodGet, "/api/opportunities/1", client.Token(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "PROPOSAL", got["stage"])

	resp = doJSON(t, srv, http.MethodGet, "/api/opportunities/missing", client.Token(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})

	for _, path := range []string{"/healthz", "/metrics", "/swagger/doc.json"} {
		resp := doJSON(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := doJSON(t, srv, http.MethodGet, "/api/opportunities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodGet, "/api/opportunities", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/login", "", models.LoginRequest{Email: adminEmail, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodOptions, "/api/opportunities", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCreateUser_AdminOnly(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	admin := newGatewayClient(t, srv)

	resp := doJSON(t, srv, http.MethodPost, "/api/users", admin.Token(), map[string]any{
		"name": "Sam", "email": "sam@yourgency.test", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/users", admin.Token(), map[string]any{
		"name": "Sam", "email": "sam@yourgency.test", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	sam := gateway.NewClient(srv.Client(), srv.URL, resilience.NewCircuitBreaker("sam"), resilience.Config{}, zap.NewNop())
	res, err := sam.Login(context.Background(), "sam@yourgency.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)

	resp = doJSON(t, srv, http.MethodPost, "/api/users", sam.Token(), map[string]any{
		"name": "Eve", "email": "eve@yourgency.test", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/users/me", sam.Token(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "sam@yourgency.test", me.Email)
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)
	ctx := context.Background()

	s, err := client.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultIndustries, s.Industries)

	require.NoError(t, client.SaveSettings(ctx, models.Settings{
		Industries:        []string{"HVAC", "hvac", " Solar "},
		SystemInstruction: "Be brief.",
	}))
	s, err = client.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HVAC", "Solar"}, s.Industries)
	assert.Equal(t, "Be brief.", s.SystemInstruction)
}

func TestAI_NotConfiguredIsBadGateway(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)

	resp := doJSON(t, srv, http.MethodPost, "/api/ai/score", client.Token(), models.ScoreRequest{CompanyName: "Acme", Industry: "HVAC"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp = doJSON(t, srv, http.MethodPost, "/api/ai/outreach/send", client.Token(), models.OutreachEmail{To: "a@b.test", Body: "hi"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAI_ScoreStoresOnDealAndAlerts(t *testing.T) {
	gen := &scriptedGenerator{text: `{"fit":10,"need":10,"timing":10,"readiness":10,"composite":100,"rationale":"perfect fit"}`}
	alerts := &hotLeads{}
	srv := newTestServer(t, openTestDB(t), Options{Generator: gen, Notifier: alerts})
	client := newGatewayClient(t, srv)
	ctx := context.Background()
	require.NoError(t, client.SaveDeals(ctx, []models.Deal{seedDeal("1", models.StageProspect)}))

	score, err := client.ScoreLead(ctx, models.ScoreRequest{CompanyName: "Company 1", Industry: "HVAC", DealID: "1"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Composite)
	assert.Equal(t, models.TierHot, score.Tier())

	deals, err := client.LoadDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	require.NotNil(t, deals[0].Score)
	assert.Equal(t, "perfect fit", deals[0].Score.Rationale)
	assert.Equal(t, []string{"Company 1"}, alerts.list())
}

func TestReports(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), Options{})
	client := newGatewayClient(t, srv)
	ctx := context.Background()
	require.NoError(t, client.SaveDeals(ctx, []models.Deal{
		seedDeal("1", models.StageProspect),
		seedDeal("2", models.StageClosedWon),
		seedDeal("3", models.StageClosedLost),
	}))

	sum, err := client.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ActiveProspects)
	assert.Equal(t, 50.0, sum.WinRate)
	assert.Equal(t, 1, sum.Users)

	resp := doJSON(t, srv, http.MethodGet, "/api/reports/pipeline.pdf", client.Token(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestBootstrapAdmin_OnlyOnEmptyTable(t *testing.T) {
	db := openTestDB(t)
	gin.SetMode(gin.TestMode)
	for i := 0; i < 2; i++ {
		a, err := New(context.Background(), testConfig(), db, zap.NewNop(), Options{})
		require.NoError(t, err)
		a.Close()
	}
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenDB(t *testing.T) {
	_, err := OpenDB(config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
	_, err = OpenDB(config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}
