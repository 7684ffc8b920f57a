package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"cartorios/internal/core"
)

func TestRenderPNG(t *testing.T) {
	points := []core.Point{
		{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Total: core.Money{Cents: 100000}},
		{Month: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Total: core.Money{Cents: 150000}},
		{Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Total: core.Money{Cents: 120000}},
	}
	png, err := Render(points, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRenderRejectsShortSeries(t *testing.T) {
	if _, err := Render(nil, Options{}); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
	one := []core.Point{{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Total: core.Money{Cents: 100}}}
	if _, err := Render(one, Options{}); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries for single point, got %v", err)
	}
}
