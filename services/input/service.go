// Package input turns bus configuration into live debounce watchers and
// rotary decoders, and republishes their events on the bus.
package input

import (
	"context"
	"sync"

	"inputcore-go/bus"
	"inputcore-go/debounce"
	"inputcore-go/errcode"
	"inputcore-go/hw"
	"inputcore-go/rotary"
	"inputcore-go/sched"
	"inputcore-go/types"
	"inputcore-go/x/conv"
	"inputcore-go/x/timex"
)

var configTopic = bus.T("config", "input")

// Service owns the debounce coordinator and the rotary decoders built from
// configuration. Events go out on input/pin/<n> and input/rotary/<name>.
type Service struct {
	conn  *bus.Connection
	pins  hw.PinFactory
	sch   *sched.Scheduler
	coord *debounce.Coordinator

	mu        sync.Mutex
	decoders  map[string]*rotary.Decoder
	positions map[string]int
}

// New creates the service on the given bus and hardware. tick drives the
// debounce settle scan.
func New(b *bus.Bus, pins hw.PinFactory, tick hw.Ticker, sch *sched.Scheduler) *Service {
	return &Service{
		conn:      b.NewConnection("input"),
		pins:      pins,
		sch:       sch,
		coord:     debounce.New(sch, tick, pins),
		decoders:  map[string]*rotary.Decoder{},
		positions: map[string]int{},
	}
}

// Run consumes config/input, applying the retained configuration and every
// later update, until ctx is cancelled. Run it as a scheduler task.
func (s *Service) Run(ctx context.Context) {
	sub := s.conn.Subscribe(configTopic)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.Channel():
			if !ok {
				return
			}
			cfg, ok := m.Payload.(*types.InputConfig)
			if !ok {
				println("input: ignoring bad payload on", configTopic.String())
				continue
			}
			s.apply(cfg)
		}
	}
}

// Position reports the running detent count of a named encoder.
func (s *Service) Position(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[name]
}

func (s *Service) apply(cfg *types.InputConfig) {
	for _, p := range cfg.Pins {
		err := s.coord.Watch(p.Pin, s.pinSettled, pullOf(p.Pull), p.ThresholdMS)
		switch err {
		case nil, errcode.PinInUse:
			// PinInUse means an earlier config already claimed the pin;
			// registration is append-only.
		default:
			println("input: watch pin", p.Pin, "failed:", err.Error())
		}
	}

	for _, r := range cfg.Rotaries {
		s.mu.Lock()
		_, exists := s.decoders[r.Name]
		s.mu.Unlock()
		if exists {
			continue
		}
		name := r.Name
		d, err := rotary.New(s.pins, s.sch, r.ClkPin, r.DataPin, func(delta int) {
			s.detent(name, delta)
		}, pullOf(r.Pull), r.Invert, r.Reverse)
		if err != nil {
			println("input: rotary", name, "failed:", err.Error())
			continue
		}
		s.mu.Lock()
		s.decoders[name] = d
		s.positions[name] = 0
		s.mu.Unlock()
	}
}

// pinSettled runs in task context via the debounce scan.
func (s *Service) pinSettled(pin int, level bool) {
	var buf [20]byte
	n := string(conv.Itoa(buf[:], int64(pin)))
	s.conn.Publish(bus.T("input", "pin", n), &types.PinEvent{
		Pin:    pin,
		Level:  level,
		TimeMs: timex.NowMs(),
	}, false)
}

// detent runs in task context via the deferred-call queue.
func (s *Service) detent(name string, delta int) {
	s.mu.Lock()
	s.positions[name] += delta
	pos := s.positions[name]
	s.mu.Unlock()

	s.conn.Publish(bus.T("input", "rotary", name), &types.RotaryEvent{
		Name:     name,
		Delta:    delta,
		Position: pos,
		TimeMs:   timex.NowMs(),
	}, false)
}

func pullOf(v string) hw.Pull {
	switch v {
	case "up":
		return hw.PullUp
	case "down":
		return hw.PullDown
	default:
		return hw.PullNone
	}
}
