package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"cartorios/internal/core"
	"cartorios/internal/sources"
)

type fakeRegistry struct {
	offices []core.Office
	err     error
	calls   atomic.Int32
}

func (f *fakeRegistry) ReadOffices(ctx context.Context) ([]core.Office, error) {
	f.calls.Add(1)
	return f.offices, f.err
}

type fakeCollections struct {
	rows  []core.RawCollection
	err   error
	calls atomic.Int32
}

func (f *fakeCollections) ReadCollections(ctx context.Context) ([]core.RawCollection, error) {
	f.calls.Add(1)
	return f.rows, f.err
}

func testService(t *testing.T) (*Service, *fakeRegistry, *fakeCollections) {
	t.Helper()
	reg := &fakeRegistry{offices: []core.Office{
		{CNS: "A", UF: "SP", City: "São Paulo", Name: "1º Ofício"},
		{CNS: "B", UF: "SP", City: "Campinas", Name: "2º Ofício"},
		{CNS: "C", UF: "RJ", City: "Rio de Janeiro", Name: "3º Ofício"},
	}}
	col := &fakeCollections{rows: []core.RawCollection{
		{CNS: "A", Period: "15/01/2024", Amount: "1.000,00"},
		{CNS: "B", Period: "20/01/2024", Amount: "500,00"},
		{CNS: "C", Period: "10/01/2024", Amount: "999,00"},
	}}
	return NewService(NewLoader(reg, col)), reg, col
}

func TestSeriesRegionEndToEnd(t *testing.T) {
	svc, _, _ := testService(t)

	out := svc.Series(context.Background(), Selection{Mode: ModeRegion, UF: "SP"})
	if out.State != StateReady {
		t.Fatalf("expected ready, got %s (%v)", out.State, out.Err)
	}
	if len(out.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(out.Points))
	}
	// A (1.000,00) + B (500,00); C is RJ and stays out.
	if out.Points[0].Total.Cents != 150000 {
		t.Fatalf("expected 150000 cents, got %d", out.Points[0].Total.Cents)
	}
	if !out.HasMetric || out.Metric.HasDelta {
		t.Fatalf("single month should produce a metric without delta: %+v", out.Metric)
	}
}

func TestSeriesOfficeMode(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	out := svc.Series(ctx, Selection{Mode: ModeOffice, UF: "SP", CNS: "A"})
	if out.State != StateReady || out.Points[0].Total.Cents != 100000 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	// No office chosen yet: not ready, distinct from no data.
	out = svc.Series(ctx, Selection{Mode: ModeOffice, UF: "SP"})
	if out.State != StateNotReady || out.Reason == "" {
		t.Fatalf("expected not_ready, got %+v", out)
	}

	out = svc.Series(ctx, Selection{Mode: ModeOffice, UF: "SP", CNS: "ZZ"})
	if out.State != StateNotReady {
		t.Fatalf("unknown office should be not_ready, got %s", out.State)
	}
}

func TestSeriesNoData(t *testing.T) {
	svc, _, _ := testService(t)

	// MG has no registered offices, so the scope is empty.
	out := svc.Series(context.Background(), Selection{Mode: ModeRegion, UF: "MG"})
	if out.State != StateNoData {
		t.Fatalf("expected no_data, got %s", out.State)
	}
}

func TestSeriesFailedLoad(t *testing.T) {
	reg := &fakeRegistry{err: sources.ErrSourceUnavailable}
	svc := NewService(NewLoader(reg, &fakeCollections{}))

	out := svc.Series(context.Background(), Selection{Mode: ModeRegion, UF: "SP"})
	if out.State != StateFailed {
		t.Fatalf("expected failed, got %s", out.State)
	}
	if !errors.Is(out.Err, sources.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", out.Err)
	}
}

func TestSnapshotLoadedOnce(t *testing.T) {
	svc, reg, col := testService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Series(ctx, Selection{Mode: ModeRegion, UF: "SP"})
		}()
	}
	wg.Wait()
	svc.Series(ctx, Selection{Mode: ModeRegion, UF: "RJ"})

	if reg.calls.Load() != 1 || col.calls.Load() != 1 {
		t.Fatalf("expected a single load, got registry=%d collections=%d",
			reg.calls.Load(), col.calls.Load())
	}
}

func TestCatalogs(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	regions, err := svc.Regions(ctx)
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	if len(regions) != 2 || regions[0] != "RJ" || regions[1] != "SP" {
		t.Fatalf("unexpected regions: %v", regions)
	}

	cities, err := svc.Cities(ctx, "SP")
	if err != nil {
		t.Fatalf("cities: %v", err)
	}
	if len(cities) != 2 || cities[0] != "Campinas" {
		t.Fatalf("unexpected cities: %v", cities)
	}

	offices, err := svc.Offices(ctx, "SP", "Campinas")
	if err != nil {
		t.Fatalf("offices: %v", err)
	}
	if len(offices) != 1 || offices[0].CNS != "B" {
		t.Fatalf("unexpected offices: %+v", offices)
	}

	if _, ok, _ := svc.Office(ctx, "C"); !ok {
		t.Fatalf("office C should exist")
	}
	if _, ok, _ := svc.Office(ctx, "ZZ"); ok {
		t.Fatalf("office ZZ should not exist")
	}
}

func TestResolveRegionMembership(t *testing.T) {
	offices := []core.Office{
		{CNS: "A", UF: "SP"},
		{CNS: "B", UF: "SP"},
		{CNS: "C", UF: "RJ"},
	}
	scope := Resolve(Selection{Mode: ModeRegion, UF: "SP"}, offices)
	if len(scope) != 2 || !scope.Contains("A") || !scope.Contains("B") || scope.Contains("C") {
		t.Fatalf("unexpected scope: %v", scope)
	}
}
