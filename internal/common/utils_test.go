package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("geocoding failed: ZERO_RESULTS", "zero_results") {
		t.Fatal("expected case-insensitive match")
	}
	if HasAny("REQUEST_DENIED", "ZERO_RESULTS", "No results") {
		t.Fatal("unexpected match")
	}
	if HasAny("anything") {
		t.Fatal("no substrings should never match")
	}
}
