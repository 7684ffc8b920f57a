package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cartorios/internal/chart"
	"cartorios/internal/core"
	"cartorios/internal/dashboard"
)

const handlerTimeout = 15 * time.Second

type (
	pointPayload struct {
		Month      string `json:"month"` // YYYY-MM
		TotalCents int64  `json:"total_cents"`
		Total      string `json:"total"` // R$ formatted
	}

	metricPayload struct {
		Month       string `json:"month"`
		TotalCents  int64  `json:"total_cents"`
		Total       string `json:"total"`
		DeltaCents  *int64 `json:"delta_cents,omitempty"`
		Delta       string `json:"delta,omitempty"`
		NonAdjacent bool   `json:"non_adjacent,omitempty"`
	}

	seriesPayload struct {
		State  string         `json:"state"`
		Reason string         `json:"reason,omitempty"`
		Points []pointPayload `json:"points,omitempty"`
		Metric *metricPayload `json:"metric,omitempty"`
	}

	officePayload struct {
		CNS    string `json:"cns"`
		UF     string `json:"uf"`
		City   string `json:"city"`
		Name   string `json:"name"`
		Status string `json:"status"`
		Type   string `json:"type"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	regions, err := s.svc.Regions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading regions", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sources unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	uf := strings.TrimSpace(r.URL.Query().Get("uf"))
	if uf == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing uf parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	cities, err := s.svc.Cities(ctx, uf)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading cities", "uf", uf, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sources unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uf": uf, "cities": cities})
}

func (s *Server) handleOffices(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	q := r.URL.Query()
	uf := strings.TrimSpace(q.Get("uf"))
	city := strings.TrimSpace(q.Get("city"))
	if uf == "" || city == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing uf or city parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	offices, err := s.svc.Offices(ctx, uf, city)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading offices", "uf", uf, "city", city, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sources unavailable"})
		return
	}

	out := make([]officePayload, len(offices))
	for i, o := range offices {
		out[i] = toOfficePayload(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{"uf": uf, "city": city, "offices": out})
}

func (s *Server) handleOffice(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	cns := strings.TrimSpace(r.URL.Query().Get("cns"))
	if cns == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing cns parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	office, ok, err := s.svc.Office(ctx, cns)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading office", "cns", cns, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sources unavailable"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "office not found"})
		return
	}
	writeJSON(w, http.StatusOK, toOfficePayload(office))
}

// handleSeries resolves the selection and returns the aggregated
// monthly series with its headline metric. State mapping: ready and
// no_data are 200, not_ready is 409 (the client must finish selecting),
// failed is 502.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	sel := selectionFromQuery(r)

	cacheKey := seriesCacheKey(sel)
	if payload, ok := s.seriesCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, payload)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	out := s.svc.Series(ctx, sel)
	switch out.State {
	case dashboard.StateFailed:
		slog.ErrorContext(ctx, "Series query failed",
			"mode", string(sel.Mode), "uf", sel.UF, "cns", sel.CNS, "error", out.Err)
		writeJSON(w, http.StatusBadGateway, seriesPayload{State: string(out.State)})
		return
	case dashboard.StateNotReady:
		writeJSON(w, http.StatusConflict, seriesPayload{State: string(out.State), Reason: out.Reason})
		return
	}

	payload := toSeriesPayload(out)
	s.seriesCache.Set(cacheKey, payload)
	writeJSON(w, http.StatusOK, payload)
}

// handleChart renders the selection's series as a PNG line chart.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	sel := selectionFromQuery(r)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	out := s.svc.Series(ctx, sel)
	switch out.State {
	case dashboard.StateFailed:
		writeJSON(w, http.StatusBadGateway, seriesPayload{State: string(out.State)})
		return
	case dashboard.StateNotReady:
		writeJSON(w, http.StatusConflict, seriesPayload{State: string(out.State), Reason: out.Reason})
		return
	case dashboard.StateNoData:
		writeJSON(w, http.StatusOK, seriesPayload{State: string(out.State)})
		return
	}

	title := "Evolução da Arrecadação - " + sel.UF
	if sel.Mode == dashboard.ModeOffice {
		title = "Evolução da Arrecadação - CNS " + sel.CNS
	}
	png, err := chart.Render(out.Points, chart.Options{Title: title})
	if err != nil {
		slog.ErrorContext(ctx, "Chart render failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func selectionFromQuery(r *http.Request) dashboard.Selection {
	q := r.URL.Query()
	return dashboard.Selection{
		Mode: dashboard.Mode(q.Get("mode")),
		UF:   q.Get("uf"),
		CNS:  q.Get("cns"),
	}
}

func seriesCacheKey(sel dashboard.Selection) string {
	sel = sel.Normalize()
	return string(sel.Mode) + "|" + sel.UF + "|" + sel.CNS
}

func toOfficePayload(o core.Office) officePayload {
	return officePayload{
		CNS:    o.CNS,
		UF:     o.UF,
		City:   o.City,
		Name:   o.Name,
		Status: o.Status,
		Type:   o.Type,
	}
}

func toSeriesPayload(out dashboard.Outcome) seriesPayload {
	payload := seriesPayload{State: string(out.State)}
	for _, p := range out.Points {
		payload.Points = append(payload.Points, pointPayload{
			Month:      p.Month.Format("2006-01"),
			TotalCents: p.Total.Cents,
			Total:      core.FormatBRL(p.Total.Cents),
		})
	}
	if out.HasMetric {
		m := &metricPayload{
			Month:      out.Metric.Month.Format("2006-01"),
			TotalCents: out.Metric.Total.Cents,
			Total:      core.FormatBRL(out.Metric.Total.Cents),
		}
		if out.Metric.HasDelta {
			cents := out.Metric.Delta.Cents
			m.DeltaCents = &cents
			m.Delta = core.FormatBRL(cents)
			m.NonAdjacent = out.Metric.NonAdjacent()
		}
		payload.Metric = m
	}
	return payload
}
