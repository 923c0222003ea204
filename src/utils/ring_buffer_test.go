package utils

import "testing"

func TestPriceRingLatestOldestFirst(t *testing.T) {
	rb := NewPriceRing(5)
	for _, v := range []float64{1, 2, 3} {
		rb.Append(v)
	}

	got := rb.Latest(3)
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %g, got %g", i, want[i], got[i])
		}
	}
}

func TestPriceRingWrapsAtCapacity(t *testing.T) {
	rb := NewPriceRing(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		rb.Append(v)
	}

	if rb.Size() != 3 {
		t.Fatalf("expected size 3, got %d", rb.Size())
	}

	got := rb.Latest(3)
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %g, got %g", i, want[i], got[i])
		}
	}
}

func TestPriceRingLatestClampsToSize(t *testing.T) {
	rb := NewPriceRing(10)
	rb.Append(42)

	got := rb.Latest(5)
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected [42], got %v", got)
	}
}

func TestPriceRingEmpty(t *testing.T) {
	rb := NewPriceRing(4)
	if got := rb.Latest(2); got != nil {
		t.Fatalf("expected nil from empty buffer, got %v", got)
	}
}
