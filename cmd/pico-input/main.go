//go:build rp2040 || rp2350

// Firmware demo for a Raspberry Pi Pico: one debounced button on GP5, a
// quadrature encoder on GP10/GP11, the onboard LED heartbeat, an SSD1306
// position bar on i2c0 and an event log on UART0.
package main

import (
	"context"
	"image/color"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ssd1306"

	"inputcore-go/bus"
	"inputcore-go/heartbeat"
	"inputcore-go/hw"
	"inputcore-go/sched"
	"inputcore-go/services/input"
	"inputcore-go/types"
	"inputcore-go/x/conv"
)

const (
	buttonPin = 5
	clkPin    = 10
	dataPin   = 11
	ledPin    = 25

	displayWidth  = 128
	displayHeight = 64
)

var uart = uartx.UART0

func logLine(parts ...string) {
	for _, p := range parts {
		_, _ = uart.Write([]byte(p))
	}
	_, _ = uart.Write([]byte("\r\n"))
}

func itoa(n int) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], int64(n)))
}

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()

	// Defaults inside uartx apply for zero pin values.
	_ = uart.Configure(uartx.UARTConfig{BaudRate: 115200})
	logLine("[boot] pico-input")

	pins := hw.DefaultPinFactory()
	i2cs := hw.DefaultI2CFactory()

	b := bus.New(8)
	s := sched.New(32)

	svc := input.New(b, pins, &hw.TimeTicker{}, s)
	s.CreateTask(func(_ *sched.Scheduler, _ ...any) { svc.Run(ctx) })

	if h, err := heartbeat.New(pins, ledPin, false); err == nil {
		s.CreateTask(h.Beat)
	} else {
		logLine("[boot] heartbeat: ", err.Error())
	}

	app := b.NewConnection("ui")
	pinEvents := app.Subscribe(bus.T("input", "pin", itoa(buttonPin)))
	knobEvents := app.Subscribe(bus.T("input", "rotary", "knob"))

	app.Publish(bus.T("config", "input"), &types.InputConfig{
		Pins: []types.PinSpec{
			{Pin: buttonPin, Pull: "up", ThresholdMS: 20},
		},
		Rotaries: []types.RotarySpec{
			{Name: "knob", ClkPin: clkPin, DataPin: dataPin, Pull: "up", Invert: true},
		},
	}, true)

	s.CreateTask(func(_ *sched.Scheduler, _ ...any) {
		for m := range pinEvents.Channel() {
			ev := m.Payload.(*types.PinEvent)
			if ev.Level {
				logLine("[btn] down")
			} else {
				logLine("[btn] up")
			}
		}
	})

	display := newDisplay(i2cs)
	s.CreateTask(func(_ *sched.Scheduler, _ ...any) {
		for m := range knobEvents.Channel() {
			ev := m.Payload.(*types.RotaryEvent)
			logLine("[knob] ", itoa(ev.Delta), " -> ", itoa(ev.Position))
			if display != nil {
				display.drawPosition(ev.Position)
			}
		}
	})

	logLine("[boot] running")
	s.RunForever()
}

// display renders the knob position as a horizontal bar.
type display struct {
	dev ssd1306.Device
}

func newDisplay(i2cs hw.I2CBusFactory) *display {
	i2c, ok := i2cs.ByID("i2c0")
	if !ok {
		return nil
	}
	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{
		Address: 0x3C,
		Width:   displayWidth,
		Height:  displayHeight,
	})
	dev.ClearDisplay()
	return &display{dev: dev}
}

func (d *display) drawPosition(pos int) {
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Map position to a bar around the screen centre.
	x0 := int16(displayWidth / 2)
	x1 := x0 + int16(pos)
	if x1 < 0 {
		x1 = 0
	}
	if x1 >= displayWidth {
		x1 = displayWidth - 1
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}

	d.dev.ClearBuffer()
	for x := x0; x <= x1; x++ {
		for y := int16(28); y < 36; y++ {
			d.dev.SetPixel(x, y, on)
		}
	}
	_ = d.dev.Display()
}
