package model

import "testing"

func TestQuoteBand(t *testing.T) {
	cases := []struct {
		confidence float64
		want       ConfidenceBand
	}{
		{0, BandDormant},
		{0.01, BandFading},
		{0.29, BandFading},
		{0.3, BandWaning},
		{0.69, BandWaning},
		{0.7, BandSprouting},
		{0.79, BandSprouting},
		{0.8, BandThriving},
		{1.0, BandThriving},
	}
	for _, c := range cases {
		q := &Quote{Confidence: c.confidence}
		if got := q.Band(); got != c.want {
			t.Fatalf("confidence=%v: expected band %s, got %s", c.confidence, c.want, got)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if got := ClampConfidence(-0.5); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ClampConfidence(1.3); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := ClampConfidence(0.42); got != 0.42 {
		t.Fatalf("expected 0.42, got %v", got)
	}
}
