//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/delay"

	"tinytemplate/core"
	"tinytemplate/protocol"
)

const (
	baudRate = protocol.DefaultBaud

	txPin core.GPIOPin = 0 // GP0
	rxPin core.GPIOPin = 1 // GP1

	// Onboard LED follows the value of the last received byte
	ledPin = core.GPIOPin(machine.LED)
)

var uart *core.SoftSerial

func main() {
	cpuHz := machine.CPUFrequency()

	gpio := RPGPIODriver{}
	core.SetGPIODriver(gpio)
	core.SetPWMDriver(NewRP2040PWMDriver())

	config := core.Config{
		Features: core.FeatureUART,
		Serial: core.SerialConfig{
			ClockHz:  cpuHz,
			BaudRate: baudRate,
			TxPin:    txPin,
			RxPin:    rxPin,
			RxMode:   core.RxInterrupt,
			RxQueue:  64,
			Model:    rp2040CycleModel,
		},
	}
	if err := config.Validate(); err != nil {
		println("config:", err.Error())
		return
	}

	var err error
	frame := newTickFrame(txPin, rxPin, cpuHz, baudRate)
	uart, err = core.NewSoftSerialFrameIO(config.Serial, gpio, frame)
	if err != nil {
		println("uart:", err.Error())
		return
	}
	if err := uart.Init(); err != nil {
		println("uart init:", err.Error())
		return
	}

	// The debug channel goes to the USB console, the soft serial link carries the echo
	core.SetDebugWriter(func(msg string) {
		println(msg)
	})

	machine.Pin(rxPin).SetInterrupt(machine.PinFalling, func(machine.Pin) {
		uart.PinChange()
	})

	// Hold the line idle for two frame times so the far end sees a clean start edge
	delay.Sleep(350 * time.Microsecond)

	out := protocol.NewPrinter(uart)
	out.Format("tinytemplate %s baud=%u\r\n", protocol.Version, uint16(baudRate))

	buf := make([]byte, 64)
	for {
		last := echo(uart, buf)
		if err := core.PWMOut(ledPin, last); err != nil {
			core.DebugPrintln("led: " + err.Error())
		}
	}
}

// echo blocks for input on link, writes it straight back and returns the last
// byte received
func echo(link drivers.UART, buf []byte) byte {
	n, _ := link.Read(buf)
	link.Write(buf[:n])
	return buf[n-1]
}
