package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"cartorios/internal/core"
)

// Service answers the queries the presentation boundary needs: the
// region/city/office catalogs and the aggregated series with its
// headline metric.
type Service struct {
	loader *Loader
}

func NewService(loader *Loader) *Service {
	return &Service{loader: loader}
}

// Regions returns the distinct UF codes present in the registry,
// sorted.
func (s *Service) Regions(ctx context.Context) ([]string, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return distinct(snap.Offices, func(o core.Office) string { return o.UF }), nil
}

// Cities returns the distinct cities of a region, sorted.
func (s *Service) Cities(ctx context.Context, uf string) ([]string, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var in []core.Office
	for _, o := range snap.Offices {
		if o.UF == uf {
			in = append(in, o)
		}
	}
	return distinct(in, func(o core.Office) string { return o.City }), nil
}

// Offices returns the offices of a city, sorted by display name.
func (s *Service) Offices(ctx context.Context, uf, city string) ([]core.Office, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Office
	for _, o := range snap.Offices {
		if o.UF == uf && o.City == city {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Office looks an office up by CNS.
func (s *Service) Office(ctx context.Context, cns string) (core.Office, bool, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return core.Office{}, false, err
	}
	for _, o := range snap.Offices {
		if o.CNS == cns {
			return o, true, nil
		}
	}
	return core.Office{}, false, nil
}

// Series runs the full pipeline for one selection: resolve the scope,
// aggregate by month and derive the metric. Load failures surface as
// Failed; an incomplete office choice as NotReady; an empty aggregation
// as NoData.
func (s *Service) Series(ctx context.Context, sel Selection) Outcome {
	sel = sel.Normalize()

	switch sel.Mode {
	case ModeRegion, ModeOffice:
	default:
		return Failed(fmt.Errorf("unknown analysis mode %q", sel.Mode))
	}

	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return Failed(err)
	}

	if sel.Mode == ModeOffice {
		if sel.CNS == "" {
			return NotReady("select an office")
		}
		if _, ok := findOffice(snap.Offices, sel.CNS); !ok {
			return NotReady("unknown office " + sel.CNS)
		}
	}

	scope := Resolve(sel, snap.Offices)
	points := core.Aggregate(snap.Collections, scope)
	if len(points) == 0 {
		slog.DebugContext(ctx, "No data for selection",
			"mode", string(sel.Mode), "uf", sel.UF, "cns", sel.CNS)
		return NoData()
	}

	metric, ok := core.DeriveMetric(points)
	return Ready(points, metric, ok)
}

func findOffice(offices []core.Office, cns string) (core.Office, bool) {
	for _, o := range offices {
		if o.CNS == cns {
			return o, true
		}
	}
	return core.Office{}, false
}

func distinct(offices []core.Office, key func(core.Office) string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(offices))
	for _, o := range offices {
		k := key(o)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
