package model

import "testing"

func TestParseStatus(t *testing.T) {
	tcs := []struct {
		raw  string
		want Status
		open bool
	}{
		{"Publicada", StatusPublicada, true},
		{"Publicada Abierta", StatusAbierta, true},
		{"ABIERTA", StatusAbierta, true},
		{"Cerrada", StatusCerrada, false},
		{"Cerrada - Adjudicada", StatusAdjudicada, false},
		{"desierta (o art. 3 ó 9 Ley Compras)", StatusDesierta, false},
		{"Reabiertas", StatusUnknown, false},
		{"5", StatusPublicada, true},
		{"8", StatusAdjudicada, false},
		{"", StatusUnknown, false},
	}
	for _, tc := range tcs {
		got := ParseStatus(tc.raw)
		if got != tc.want {
			t.Fatalf("ParseStatus(%q)=%q; want %q", tc.raw, got, tc.want)
		}
		if got.IsOpen() != tc.open {
			t.Fatalf("ParseStatus(%q).IsOpen()=%v; want %v", tc.raw, got.IsOpen(), tc.open)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tcs := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 50, 2},
		{7, 0, 1},
	}
	for _, tc := range tcs {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d)=%d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
