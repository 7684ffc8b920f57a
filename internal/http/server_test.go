package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartorios/internal/core"
	"cartorios/internal/dashboard"
	"cartorios/internal/sources"
)

type fakeRegistry struct {
	offices []core.Office
	err     error
}

func (f *fakeRegistry) ReadOffices(ctx context.Context) ([]core.Office, error) {
	return f.offices, f.err
}

type fakeCollections struct {
	rows []core.RawCollection
	err  error
}

func (f *fakeCollections) ReadCollections(ctx context.Context) ([]core.RawCollection, error) {
	return f.rows, f.err
}

func newTestServer(t *testing.T, reg sources.RegistryReader, col sources.CollectionsReader) *Server {
	t.Helper()
	svc := dashboard.NewService(dashboard.NewLoader(reg, col))
	srv := NewServer(":0", svc, 10, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func seededServer(t *testing.T) *Server {
	t.Helper()
	reg := &fakeRegistry{offices: []core.Office{
		{CNS: "100001", UF: "SP", City: "São Paulo", Name: "1º Tabelionato", Status: "Ativo", Type: "Notas"},
		{CNS: "100002", UF: "SP", City: "Campinas", Name: "2º Registro Civil", Status: "Ativo", Type: "RC"},
		{CNS: "200001", UF: "RJ", City: "Rio de Janeiro", Name: "1º Ofício", Status: "Ativo", Type: "Notas"},
	}}
	col := &fakeCollections{rows: []core.RawCollection{
		{CNS: "100001", Period: "01/01/2024", Amount: "1.000,00"},
		{CNS: "100001", Period: "01/02/2024", Amount: "1.500,00"},
		{CNS: "100002", Period: "01/01/2024", Amount: "500,00"},
		{CNS: "200001", Period: "01/01/2024", Amount: "9.999,99"},
	}}
	return newTestServer(t, reg, col)
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/readyz")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestReadyzSourcesUnavailable(t *testing.T) {
	srv := newTestServer(t,
		&fakeRegistry{err: sources.ErrSourceUnavailable},
		&fakeCollections{})
	rec := doRequest(srv, http.MethodGet, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rec.Code)
	}
}

func TestRegions(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/regions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Regions []string `json:"regions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"RJ", "SP"}
	if len(body.Regions) != len(want) {
		t.Fatalf("regions = %v, want %v", body.Regions, want)
	}
	for i := range want {
		if body.Regions[i] != want[i] {
			t.Fatalf("regions = %v, want %v", body.Regions, want)
		}
	}
}

func TestCitiesRequiresUF(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/cities")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOfficeNotFound(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/office?cns=999999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSeriesRegion(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/series?mode=region&uf=SP")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body seriesPayload
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != "ready" {
		t.Fatalf("state = %q", body.State)
	}
	if len(body.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(body.Points))
	}
	// Jan: 1.000,00 + 500,00 across both SP offices.
	if body.Points[0].Month != "2024-01" || body.Points[0].TotalCents != 150000 {
		t.Fatalf("first point = %+v", body.Points[0])
	}
	if body.Points[0].Total != "R$ 1.500,00" {
		t.Fatalf("formatted total = %q", body.Points[0].Total)
	}
	if body.Metric == nil {
		t.Fatalf("metric missing")
	}
	if body.Metric.Month != "2024-02" || body.Metric.TotalCents != 150000 {
		t.Fatalf("metric = %+v", body.Metric)
	}
	if body.Metric.DeltaCents == nil || *body.Metric.DeltaCents != 0 {
		t.Fatalf("delta = %+v", body.Metric.DeltaCents)
	}
}

func TestSeriesOfficeNotReady(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/series?mode=office&uf=SP")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body seriesPayload
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != "not_ready" || body.Reason == "" {
		t.Fatalf("body = %+v", body)
	}
}

func TestSeriesNoData(t *testing.T) {
	reg := &fakeRegistry{offices: []core.Office{
		{CNS: "300001", UF: "MG", City: "Belo Horizonte", Name: "1º Ofício"},
	}}
	srv := newTestServer(t, reg, &fakeCollections{})
	rec := doRequest(srv, http.MethodGet, "/api/series?mode=region&uf=MG")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body seriesPayload
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != "no_data" {
		t.Fatalf("state = %q", body.State)
	}
}

func TestSeriesSourceFailure(t *testing.T) {
	srv := newTestServer(t,
		&fakeRegistry{err: errors.New("disk gone")},
		&fakeCollections{})
	rec := doRequest(srv, http.MethodGet, "/api/series?mode=region&uf=SP")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSeriesCached(t *testing.T) {
	srv := seededServer(t)
	first := doRequest(srv, http.MethodGet, "/api/series?mode=region&uf=SP")
	second := doRequest(srv, http.MethodGet, "/api/series?mode=region&uf=SP")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if strings.TrimSpace(first.Body.String()) != strings.TrimSpace(second.Body.String()) {
		t.Fatalf("cached response differs from original")
	}
	if _, ok := srv.seriesCache.Get("region|SP|"); !ok {
		t.Fatalf("series not cached under selection key")
	}
}

func TestChartPNG(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/chart?mode=region&uf=SP")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Fatalf("body is not a PNG")
	}
}

func TestChartSingleMonthUnprocessable(t *testing.T) {
	srv := seededServer(t)
	// Campinas only has one month of data, so office 100002 cannot be
	// plotted as a line.
	rec := doRequest(srv, http.MethodGet, "/api/chart?mode=office&cns=100002")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/series?mode=region&uf=SP")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := seededServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/regions")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}
