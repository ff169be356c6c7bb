package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smelter-recon/internal/config"
	"github.com/sells-group/smelter-recon/internal/model"
	"github.com/sells-group/smelter-recon/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	rc := config.ReconConfig{FuzzyFloor: 0.6, ClassifyGate: 0.8, Workers: 2}
	return buildRouter(st, rc, []string{"*"}), st
}

func seedReference(t *testing.T, st store.Store) {
	t.Helper()
	_, err := st.ReplaceReference(context.Background(), model.StandardCMRT, []model.ReferenceFacility{
		{FacilityID: "CID000001", StandardName: "Acme Smelting Ltd", Metal: "Gold", AssessmentStatus: "CMRT: Conformant", Country: "Peru"},
		{FacilityID: "CID000002", StandardName: "Yunnan Tin Company", Metal: "Tin", AssessmentStatus: "CMRT: Active", Country: "China"},
	})
	require.NoError(t, err)
}

func TestServe_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServe_Compare_MissingSupplier(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := compareRequest{
		Declared: []model.DeclaredFacility{{Metal: "Gold", Name: "Acme Smelting"}},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "supplier is required")
}

func TestServe_Compare_EmptyReference(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := compareRequest{
		Supplier: "Initech Supply",
		Declared: []model.DeclaredFacility{{Metal: "Gold", Name: "Acme Smelting"}},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "reference set is empty")
}

func TestServe_Compare_UnknownStandard(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := compareRequest{
		Supplier:  "Initech Supply",
		Standards: []string{"XXRT"},
		Declared:  []model.DeclaredFacility{{Metal: "Gold", Name: "Acme Smelting"}},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown standard")
}

func TestServe_Compare_FullFlow(t *testing.T) {
	router, st := newTestRouter(t)
	seedReference(t, st)

	payload := compareRequest{
		Supplier: "Initech Supply",
		Declared: []model.DeclaredFacility{
			{Metal: "Gold", Name: "ACME SMELTING LTD."},
			{Metal: "Tin", Name: "Unheard Of Metals"},
		},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var run model.ComparisonRun
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.DeclaredCount)
	assert.Equal(t, 2, run.Summary.Total)
	assert.Equal(t, 1, run.Summary.ByStatus[model.StatusConformant])
	assert.Equal(t, 1, run.Summary.ByStatus[model.StatusAttentionRequired])

	// Stored run is retrievable.
	req = httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// And listed.
	req = httptest.NewRequest(http.MethodGet, "/api/runs?supplier=Initech+Supply", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.ComparisonRun
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "Initech Supply", runs[0].Supplier)

	// Audit trail captured the run.
	events, err := st.ListAudit(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.AuditComparisonRun, events[0].Action)
	assert.Equal(t, "api", events[0].Actor)
}

func TestServe_Compare_CanonicalizesMetalVariants(t *testing.T) {
	router, st := newTestRouter(t)
	seedReference(t, st)

	payload := compareRequest{
		Supplier: "Initech Supply",
		Declared: []model.DeclaredFacility{
			{Metal: "Gold (Au)", Name: "Acme Smelting Ltd"},
			{Metal: "Sn", Name: "Yunnan Tin Company"},
		},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var run model.ComparisonRun
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))

	// Template variants match the plain-metal reference rows.
	require.Len(t, run.Outcomes, 2)
	assert.Equal(t, model.TierExact, run.Outcomes[0].Tier)
	assert.Equal(t, model.StatusConformant, run.Outcomes[0].Status)
	assert.Equal(t, model.TierExact, run.Outcomes[1].Tier)
	assert.Equal(t, model.StatusActive, run.Outcomes[1].Status)

	// The summary's metal breakdown agrees with the outcomes it sits beside.
	require.Len(t, run.Summary.Metals, 2)
	assert.Equal(t, "Gold", run.Summary.Metals[0].Metal)
	assert.Equal(t, 1, run.Summary.Metals[0].Total)
	assert.Equal(t, 1, run.Summary.Metals[0].Conformant)
	assert.Equal(t, "Tin", run.Summary.Metals[1].Metal)
	assert.Equal(t, 1, run.Summary.Metals[1].Total)
}

func TestServe_GetRun_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServe_ReferenceStatus(t *testing.T) {
	router, st := newTestRouter(t)
	seedReference(t, st)

	req := httptest.NewRequest(http.MethodGet, "/api/reference/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var counts []store.ReferenceCount
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counts))
	assert.Len(t, counts, 2)
}
