package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/planner"
	"github.com/iwvelando/lever-planner/pkg/testutil"
)

type fakeSimulator struct {
	received matrix.Overrides
	result   []byte
	err      error
}

func (f *fakeSimulator) RunSimulation(ctx context.Context, overrides matrix.Overrides) ([]byte, error) {
	f.received = overrides
	return f.result, f.err
}

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	ctrl := planner.NewController(planner.WithLogger(zap.NewNop()))
	ctrl.SetOffices(testutil.SampleOffices(t))
	return NewHandler(zap.NewNop(), ctrl, opts)
}

func perform(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestHandler(t, Options{Version: "  1.2.3  "})

	rr := perform(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeResponse[map[string]string](t, rr)["status"])

	rr = perform(t, h, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse[map[string]string](t, rr)
	assert.Equal(t, "1.2.3", resp["version"])
	assert.NotEmpty(t, resp["session"])
}

func TestVersionDefaultsToDev(t *testing.T) {
	h := NewHandler(nil, nil, Options{})
	rr := perform(t, h, http.MethodGet, "/api/version", "")
	assert.Equal(t, "dev", decodeResponse[map[string]string](t, rr)["version"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, Options{})
	rr := perform(t, h, http.MethodGet, "/api/levers/apply", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleOffices(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := perform(t, h, http.MethodGet, "/api/offices", "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse[[]officeResponse](t, rr)
	require.Len(t, resp, 3)
	assert.Equal(t, "Stockholm", resp[0].Name)
	assert.InDelta(t, 850, resp[0].TotalFTE, 1e-9)
	assert.Equal(t, "mature", string(resp[0].Journey))
	assert.Equal(t, "established", string(resp[1].Journey))
	assert.Equal(t, "emerging", string(resp[2].Journey))
}

func TestHandleApply(t *testing.T) {
	h := newTestHandler(t, Options{})

	body := `{
		"leverTypes": ["recruitment"],
		"levels": ["A"],
		"cumulativeValue": 0.08,
		"period": "yearly",
		"offices": {"mode": "explicit", "names": ["Stockholm"]}
	}`
	rr := perform(t, h, http.MethodPost, "/api/levers/apply", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeResponse[applyResponse](t, rr)
	assert.True(t, resp.Applied)
	assert.Equal(t, []string{"Recruitment for level A set to 0.69% for months 1–12 in Stockholm"}, resp.Summary)
	assert.Empty(t, resp.Warnings)

	rr = perform(t, h, http.MethodGet, "/api/levers/cell?office=Stockholm&level=A&leverType=recruitment&month=7", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cell := decodeResponse[cellResponse](t, rr)
	assert.InDelta(t, 0.0069244, cell.Value, 1e-6)

	// Other offices keep defaults.
	rr = perform(t, h, http.MethodGet, "/api/levers/cell?office=Munich&level=A&leverType=recruitment&month=7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, 0.025, decodeResponse[cellResponse](t, rr).Value, 1e-12)
}

func TestHandleApplyByJourney(t *testing.T) {
	h := newTestHandler(t, Options{})

	body := `{"leverTypes": ["churn"], "levels": ["AC"], "cumulativeValue": 0.02, "period": "monthly",
		"referenceMonth": 3, "offices": {"mode": "journey", "journey": "established"}}`
	rr := perform(t, h, http.MethodPost, "/api/levers/apply", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeResponse[applyResponse](t, rr)
	assert.Equal(t, []string{"Churn for level AC set to 2.00% for month 3 in Munich"}, resp.Summary)
}

func TestHandleApplyNothingSelected(t *testing.T) {
	h := newTestHandler(t, Options{})

	body := `{"leverTypes": ["utr"], "levels": ["M"], "cumulativeValue": 0.5,
		"offices": {"mode": "explicit", "names": ["Atlantis"]}}`
	rr := perform(t, h, http.MethodPost, "/api/levers/apply", body)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse[applyResponse](t, rr)
	assert.False(t, resp.Applied)
	assert.Equal(t, []string{"No levers applied."}, resp.Summary)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, strings.Join(resp.Warnings, "\n"), "Atlantis")

	rr = perform(t, h, http.MethodGet, "/api/levers/summary", "")
	assert.Equal(t, "[]\n", rr.Body.String(), "nothing applied means nothing audited")
}

func TestHandleApplyErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		opts       Options
		wantStatus int
	}{
		{name: "Empty body", body: "", wantStatus: http.StatusBadRequest},
		{name: "Invalid JSON", body: "{", wantStatus: http.StatusBadRequest},
		{name: "Unknown lever type", body: `{"leverTypes": ["bonus"], "levels": ["A"]}`, wantStatus: http.StatusBadRequest},
		{name: "Unknown level", body: `{"leverTypes": ["churn"], "levels": ["CEO"]}`, wantStatus: http.StatusBadRequest},
		{
			name:       "Body too large",
			body:       `{"leverTypes": ["churn"], "levels": ["A", "AC", "C", "SrC", "AM", "M", "SrM", "PiP"]}`,
			opts:       Options{MaxUploadSize: 16},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.opts)
			rr := perform(t, h, http.MethodPost, "/api/levers/apply", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decodeResponse[map[string]string](t, rr)["error"])
		})
	}
}

func TestHandleSetCell(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantValue  float64
	}{
		{
			name:       "Overwrite",
			body:       `{"office": "Oslo", "level": "C", "leverType": "utr", "month": 4, "value": 0.85}`,
			wantStatus: http.StatusOK,
			wantValue:  0.85,
		},
		{
			name:       "Clamped above one",
			body:       `{"office": "Oslo", "level": "C", "leverType": "churn", "month": 4, "value": 1.5}`,
			wantStatus: http.StatusOK,
			wantValue:  1,
		},
		{
			name:       "Progression on PiP",
			body:       `{"office": "Oslo", "level": "PiP", "leverType": "progression", "month": 5, "value": 0.1}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "Unknown office",
			body:       `{"office": "Atlantis", "level": "A", "leverType": "churn", "month": 1, "value": 0.1}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Month out of range",
			body:       `{"office": "Oslo", "level": "A", "leverType": "churn", "month": 13, "value": 0.1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing office",
			body:       `{"level": "A", "leverType": "churn", "month": 1, "value": 0.1}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, Options{})
			rr := perform(t, h, http.MethodPost, "/api/levers/cell", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.InDelta(t, tt.wantValue, decodeResponse[cellResponse](t, rr).Value, 1e-12)
			}
		})
	}
}

func TestHandleGetCellInvalidMonth(t *testing.T) {
	h := newTestHandler(t, Options{})
	rr := perform(t, h, http.MethodGet, "/api/levers/cell?office=Oslo&level=A&leverType=churn&month=may", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleOverrides(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := perform(t, h, http.MethodGet, "/api/levers/overrides", "")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeResponse[map[string]matrix.Overrides](t, rr)
	overrides := resp["office_overrides"]
	require.Len(t, overrides, 3)

	stockholm := overrides["Stockholm"].Roles
	assert.Contains(t, stockholm, "Consultant")
	assert.Contains(t, stockholm, "Sales", "leveled roles are exported for every office")
	assert.NotContains(t, stockholm, "Operations", "flat roles carry no levers")
	assert.Len(t, stockholm["Consultant"]["A"], 48)
	assert.Len(t, stockholm["Consultant"]["PiP"], 36)
	assert.InDelta(t, 0.025, stockholm["Consultant"]["A"]["recruitment_1"], 1e-12)
	assert.InDelta(t, 0.08, stockholm["Consultant"]["C"]["progression_5"], 1e-12)
}

func TestHandleOverridesYAML(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := perform(t, h, http.MethodGet, "/api/levers/overrides?format=yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "office_overrides:")

	rr = perform(t, h, http.MethodGet, "/api/levers/overrides?format=csv", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSummaryAndReset(t *testing.T) {
	h := newTestHandler(t, Options{})

	body := `{"leverTypes": ["churn"], "levels": ["A"], "cumulativeValue": 0.1, "period": "yearly"}`
	require.Equal(t, http.StatusOK, perform(t, h, http.MethodPost, "/api/levers/apply", body).Code)
	require.Equal(t, http.StatusOK, perform(t, h, http.MethodPost, "/api/levers/reset", "").Code)

	rr := perform(t, h, http.MethodGet, "/api/levers/summary", "")
	require.Equal(t, http.StatusOK, rr.Code)
	audit := decodeResponse[[]planner.AuditEntry](t, rr)
	require.Len(t, audit, 2)
	assert.Contains(t, audit[0].Lines[0], "Churn for level A set to")
	assert.Equal(t, []string{"All levers reset to defaults."}, audit[1].Lines)
	assert.NotEqual(t, audit[0].ID, audit[1].ID)

	rr = perform(t, h, http.MethodGet, "/api/levers/cell?office=Oslo&level=A&leverType=churn&month=1", "")
	assert.InDelta(t, 0.014, decodeResponse[cellResponse](t, rr).Value, 1e-12)
}

func TestHandleNormalize(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := perform(t, h, http.MethodPost, "/api/baseline/normalize", testutil.MonthFirstBaselineJSON)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeResponse[normalizeResponse](t, rr)
	assert.Nil(t, resp.Seeded)
	assert.InDelta(t, 0.03, resp.Baseline.Recruitment["Consultant"]["A"]["202501"], 1e-12)
	assert.InDelta(t, 0.02, resp.Baseline.Recruitment["Consultant"]["AC"]["202501"], 1e-12)
	assert.InDelta(t, 0.014, resp.Baseline.Churn["Consultant"]["A"]["202501"], 1e-12)

	// Not seeded, so the matrix still holds defaults.
	rr = perform(t, h, http.MethodGet, "/api/levers/cell?office=Oslo&level=A&leverType=recruitment&month=1", "")
	assert.InDelta(t, 0.025, decodeResponse[cellResponse](t, rr).Value, 1e-12)
}

func TestHandleNormalizeSeed(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := perform(t, h, http.MethodPost, "/api/baseline/normalize?seed=true", testutil.LevelFirstBaselineJSON)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeResponse[normalizeResponse](t, rr)
	require.NotNil(t, resp.Seeded)
	assert.Equal(t, 12, *resp.Seeded)

	rr = perform(t, h, http.MethodGet, "/api/levers/cell?office=Oslo&level=A&leverType=recruitment&month=1", "")
	assert.InDelta(t, 0.03, decodeResponse[cellResponse](t, rr).Value, 1e-12)
}

func TestHandleNormalizeInvalid(t *testing.T) {
	h := newTestHandler(t, Options{})
	rr := perform(t, h, http.MethodPost, "/api/baseline/normalize", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSimulation(t *testing.T) {
	t.Run("Not configured", func(t *testing.T) {
		h := newTestHandler(t, Options{})
		rr := perform(t, h, http.MethodPost, "/api/simulation/run", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("Forwards overrides", func(t *testing.T) {
		sim := &fakeSimulator{result: []byte(`{"status":"done"}`)}
		h := newTestHandler(t, Options{Simulator: sim})

		rr := perform(t, h, http.MethodPost, "/api/simulation/run", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, bytes.Equal([]byte(`{"status":"done"}`), rr.Body.Bytes()))
		assert.Len(t, sim.received, 3)
	})

	t.Run("Backend failure", func(t *testing.T) {
		sim := &fakeSimulator{err: errors.New("connection refused")}
		h := newTestHandler(t, Options{Simulator: sim})

		rr := perform(t, h, http.MethodPost, "/api/simulation/run", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, decodeResponse[map[string]string](t, rr)["error"], "connection refused")
	})
}
