package eventgroups

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestSettleAllRunsEveryItem(t *testing.T) {
	var calls int32
	boom := errors.New("boom")

	errs := settleAll(5, func(i int) error {
		atomic.AddInt32(&calls, 1)
		if i == 2 {
			return boom
		}
		return nil
	})

	if got := atomic.LoadInt32(&calls); got != 5 {
		t.Fatalf("expected 5 calls, got %d", got)
	}
	if len(errs) != 5 {
		t.Fatalf("expected 5 results, got %d", len(errs))
	}
	for i, err := range errs {
		if i == 2 {
			if !errors.Is(err, boom) {
				t.Errorf("item 2: expected boom, got %v", err)
			}
			continue
		}
		if err != nil {
			t.Errorf("item %d: unexpected error %v", i, err)
		}
	}
}

func TestSettleAllZeroItems(t *testing.T) {
	errs := settleAll(0, func(i int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	if len(errs) != 0 {
		t.Fatalf("expected no results, got %d", len(errs))
	}
}
