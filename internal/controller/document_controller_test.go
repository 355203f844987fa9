package controller

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
	"docsync-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessing struct {
	counts map[string]int64
}

func (s *stubProcessing) ProcessDocumentsByStatus(ctx context.Context, status string) iter.Seq2[string, error] {
	return nil
}

func (s *stubProcessing) ProcessDocumentsCreatedAfter(ctx context.Context, after time.Time) iter.Seq2[string, error] {
	return nil
}

func (s *stubProcessing) ProcessDocumentsWithCustomQuery(ctx context.Context, queryJSON string) iter.Seq2[string, error] {
	return nil
}

func (s *stubProcessing) CountDocumentsByStatus(ctx context.Context, status string) (int64, error) {
	return s.counts[status], nil
}

type stubHistory struct{}

func (stubHistory) Start(ctx context.Context, trigger string, query dto.DocumentQuery) *entity.ProcessingRun {
	return nil
}

func (stubHistory) Finish(ctx context.Context, run *entity.ProcessingRun, processed int, runErr error) {}

func (stubHistory) Recent(ctx context.Context, limit int) ([]dto.ProcessingRunResponse, error) {
	return []dto.ProcessingRunResponse{{Id: "r1", Status: "COMPLETED", ProcessedCount: limit}}, nil
}

type stubPublisher struct {
	requests []dto.SyncRequestMessage
}

func (p *stubPublisher) PublishSyncRequest(ctx context.Context, req dto.SyncRequestMessage) error {
	p.requests = append(p.requests, req)
	return nil
}

type stubRunStatus bool

func (s stubRunStatus) IsRunning() bool { return bool(s) }

const testSecret = "test-secret"

func newTestApp(pub *stubPublisher, withJwt bool) *fiber.App {
	app := fiber.New()
	var mw fiber.Handler
	if withJwt {
		mw = serverutils.NewJwtMiddleware(testSecret)
	}
	c := NewDocumentController(&stubProcessing{counts: map[string]int64{"NEW": 4, "DONE": 9}}, stubHistory{}, pub, stubRunStatus(true))
	c.RegisterRoutes(app.Group("/api"), mw)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestGetStats(t *testing.T) {
	app := newTestApp(&stubPublisher{}, false)

	tests := []struct {
		url    string
		status string
		count  float64
	}{
		{url: "/api/documents/stats", status: "NEW", count: 4},
		{url: "/api/documents/stats?status=DONE", status: "DONE", count: 9},
		{url: "/api/documents/stats?status=OTHER", status: "OTHER", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			data := decode(t, resp)["data"].(map[string]interface{})
			assert.Equal(t, tt.status, data["status"])
			assert.Equal(t, tt.count, data["count"])
			assert.Equal(t, true, data["scheduler_running"])
		})
	}
}

func TestGetRuns(t *testing.T) {
	app := newTestApp(&stubPublisher{}, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decode(t, resp)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(5), data[0].(map[string]interface{})["processed_count"])
}

func TestSyncRouteAbsentWithoutJwt(t *testing.T) {
	app := newTestApp(&stubPublisher{}, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"mode":"new"}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestSync(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		body       string
		wantStatus int
		published  int
	}{
		{name: "missing token", body: `{"mode":"new"}`, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", token: "wrong", body: `{"mode":"new"}`, wantStatus: http.StatusUnauthorized},
		{name: "invalid mode", token: testSecret, body: `{"mode":"all"}`, wantStatus: http.StatusBadRequest},
		{name: "custom without query", token: testSecret, body: `{"mode":"custom"}`, wantStatus: http.StatusBadRequest},
		{name: "accepted", token: testSecret, body: `{"mode":"recent","hours_back":3}`, wantStatus: http.StatusAccepted, published: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &stubPublisher{}
			app := newTestApp(pub, true)

			req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+signedToken(t, tt.token))
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Len(t, pub.requests, tt.published)
			if tt.published > 0 {
				assert.Equal(t, "ops-user", pub.requests[0].RequestedBy)
				assert.Equal(t, 3, pub.requests[0].HoursBack)
			}
		})
	}
}
