package hw

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimeTickerFiresAndStops(t *testing.T) {
	var n uint32
	tk := &TimeTicker{}
	if err := tk.Start(time.Millisecond, func() { atomic.AddUint32(&n, 1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for atomic.LoadUint32(&n) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if atomic.LoadUint32(&n) == 0 {
		t.Fatal("ticker never fired")
	}

	tk.Stop()
	seen := atomic.LoadUint32(&n)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadUint32(&n); got > seen+1 {
		t.Fatalf("ticker kept firing after Stop: %d -> %d", seen, got)
	}
}

func TestTimeTickerStartWhileRunningIsBusy(t *testing.T) {
	tk := &TimeTicker{}
	if err := tk.Start(time.Millisecond, func() {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer tk.Stop()
	if err := tk.Start(time.Millisecond, func() {}); err == nil {
		t.Fatal("expected Busy on second Start")
	}
}

func TestTimeTickerRestartAfterStop(t *testing.T) {
	tk := &TimeTicker{}
	if err := tk.Start(time.Millisecond, func() {}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	tk.Stop()
	if err := tk.Start(time.Millisecond, func() {}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	tk.Stop()
}

func TestTimeTickerRejectsZeroPeriod(t *testing.T) {
	tk := &TimeTicker{}
	if err := tk.Start(0, func() {}); err == nil {
		t.Fatal("expected error for zero period")
	}
}
