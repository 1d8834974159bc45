package timeparse

import (
	"testing"
	"time"
)

// anchor is Wednesday, 2024-01-10
var anchor = time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC)

func TestResolve_ExactPhrases(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{"today", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"Yesterday", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)},
		{"day before yesterday", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		{"day after tomorrow", time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)},
		{"last night", time.Date(2024, 1, 9, 21, 0, 0, 0, time.UTC)},
		{"tonight", time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)},
		{"this morning", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{"this afternoon", time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)},
		{"this evening", time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC)},
		{"last week", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"next week", time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)},
		{"last month", time.Date(2023, 12, 11, 0, 0, 0, 0, time.UTC)},
		{"next month", time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := Resolve(tt.expr, anchor)
			if got == nil {
				t.Fatalf("expected %q to resolve", tt.expr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, *got)
			}
		})
	}
}

func TestResolve_LastTuesdayNight(t *testing.T) {
	// The naive same-week offset for Tuesday from a Wednesday anchor is -1;
	// "last" moves a full week further back, so the target is eight days
	// prior, not the immediately preceding day.
	got := Resolve("last Tuesday night", anchor)
	if got == nil {
		t.Fatal("expected resolution")
	}
	want := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestResolve_Weekdays(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		// Bare weekdays resolve forward, including the anchor day itself.
		{"wednesday", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"friday", time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)},
		{"tuesday", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"monday morning", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
		// "last" lands strictly before the anchor for forward weekdays.
		{"last friday", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"last wednesday", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"last saturday evening", time.Date(2024, 1, 6, 19, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := Resolve(tt.expr, anchor)
			if got == nil {
				t.Fatalf("expected %q to resolve", tt.expr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, *got)
			}
		})
	}
}

func TestResolve_AbsoluteFallback(t *testing.T) {
	got := Resolve("2024-03-15", anchor)
	if got == nil {
		t.Fatal("expected absolute date to parse")
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestResolve_Unparseable(t *testing.T) {
	for _, expr := range []string{"", "   ", "a while ago", "the day it rained"} {
		if got := Resolve(expr, anchor); got != nil {
			t.Errorf("expected %q to stay unresolved, got %v", expr, *got)
		}
	}
}
