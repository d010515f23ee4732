package input

import (
	"context"
	"testing"
	"time"

	"inputcore-go/bus"
	"inputcore-go/hw"
	"inputcore-go/sched"
	"inputcore-go/types"
)

type rig struct {
	t    *testing.T
	b    *bus.Bus
	pins *hw.HostPinFactory
	sch  *sched.Scheduler
	svc  *Service
	sub  *bus.Subscription
}

// newRig starts a full service: real scheduler loop, real timer, fake pins.
func newRig(t *testing.T, cfg *types.InputConfig, events bus.Topic) *rig {
	r := &rig{
		t:    t,
		b:    bus.New(8),
		pins: &hw.HostPinFactory{},
		sch:  sched.New(32),
	}
	r.svc = New(r.b, r.pins, &hw.TimeTicker{}, r.sch)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r.sch.Start(ctx)
	r.sch.CreateTask(func(_ *sched.Scheduler, _ ...any) { r.svc.Run(ctx) })

	app := r.b.NewConnection("test")
	r.sub = app.Subscribe(events)
	app.Publish(bus.T("config", "input"), cfg, true)

	// Wait for the config to be applied.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(cfg.Pins) > 0 {
			if p, ok := r.pins.Get(cfg.Pins[0].Pin); ok && p.Watched() {
				return r
			}
		} else if p, ok := r.pins.Get(cfg.Rotaries[0].ClkPin); ok && p.Watched() {
			return r
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("config was never applied")
	return nil
}

func (r *rig) recv() *bus.Message {
	r.t.Helper()
	select {
	case m := <-r.sub.Channel():
		return m
	case <-time.After(2 * time.Second):
		r.t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSettledPinPublishesEvent(t *testing.T) {
	cfg := &types.InputConfig{
		Pins: []types.PinSpec{{Pin: 5, Pull: "up", ThresholdMS: 2}},
	}
	r := newRig(t, cfg, bus.T("input", "pin", "5"))

	p, _ := r.pins.Get(5)
	p.Set(true)

	ev := r.recv().Payload.(*types.PinEvent)
	if ev.Pin != 5 || !ev.Level {
		t.Fatalf("event = %+v, want pin 5 high", ev)
	}
	if ev.TimeMs == 0 {
		t.Fatal("event carries no timestamp")
	}
}

func TestRotaryPublishesDetents(t *testing.T) {
	cfg := &types.InputConfig{
		Rotaries: []types.RotarySpec{{Name: "knob", ClkPin: 10, DataPin: 11, Pull: "up"}},
	}
	r := newRig(t, cfg, bus.T("input", "rotary", "knob"))

	clk, _ := r.pins.Get(10)
	data, _ := r.pins.Get(11)
	clk.Set(true)
	data.Set(true)
	clk.Set(false)
	data.Set(false)

	ev := r.recv().Payload.(*types.RotaryEvent)
	if ev.Name != "knob" || ev.Delta != 1 || ev.Position != 1 {
		t.Fatalf("event = %+v, want knob +1 at position 1", ev)
	}

	// Position accumulates across detents.
	deadline := time.Now().Add(2 * time.Second)
	for r.svc.Position("knob") != 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := r.svc.Position("knob"); got != 1 {
		t.Fatalf("Position = %d, want 1", got)
	}
}

func TestDuplicateConfigIsAdditive(t *testing.T) {
	cfg := &types.InputConfig{
		Pins: []types.PinSpec{{Pin: 7, Pull: "down", ThresholdMS: 2}},
	}
	r := newRig(t, cfg, bus.T("input", "pin", "7"))

	// Re-publishing the same config must not disturb the existing watcher.
	app := r.b.NewConnection("test2")
	app.Publish(bus.T("config", "input"), cfg, true)
	time.Sleep(20 * time.Millisecond)

	p, _ := r.pins.Get(7)
	p.Set(true)
	ev := r.recv().Payload.(*types.PinEvent)
	if ev.Pin != 7 || !ev.Level {
		t.Fatalf("event = %+v, want pin 7 high", ev)
	}
}

func TestPullOf(t *testing.T) {
	cases := []struct {
		in   string
		want hw.Pull
	}{
		{"up", hw.PullUp},
		{"down", hw.PullDown},
		{"none", hw.PullNone},
		{"", hw.PullNone},
	}
	for _, c := range cases {
		if got := pullOf(c.in); got != c.want {
			t.Fatalf("pullOf(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
