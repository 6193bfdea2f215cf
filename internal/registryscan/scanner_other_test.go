//go:build !windows

package registryscan

import "testing"

func TestScanEmptyWithoutErrorOffWindows(t *testing.T) {
	entries, err := Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
