//go:build pico

// Bring-up check for an SC16IS7XX bridge on I2C0: probe, scratch comm
// test, loopback-tested UART init, then an internal echo loop. Everything
// reports over USB serial with println, no fmt.
package main

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-sc16is7xx/drivers/sc16is7xx"
)

const xtalHz = 1_843_200

func main() {
	println("[selftest] boot …")
	time.Sleep(1500 * time.Millisecond)

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		println("[selftest] FAIL: i2c configure:", err.Error())
		return
	}

	tr := sc16is7xx.NewI2CTransport(bus, sc16is7xx.AddrA1VddA0Vdd)
	dev, err := sc16is7xx.New(tr, sc16is7xx.Config{
		Part:     sc16is7xx.SC16IS752,
		XtalFreq: xtalHz,
	})
	if err != nil {
		println("[selftest] FAIL: config:", err.Error())
		return
	}

	println("[selftest] device init (reset + scratch test) …")
	if err := dev.Init(); err != nil {
		println("[selftest] FAIL: device init:", err.Error())
		return
	}
	println("[selftest] device init: PASS")

	u, err := sc16is7xx.NewUART(dev, sc16is7xx.ChannelA, sc16is7xx.UARTOptions{
		LoopbackTest: true,
		TxBufferSize: 256,
		RxBufferSize: 256,
	})
	if err != nil {
		println("[selftest] FAIL: uart:", err.Error())
		return
	}
	err = u.Init(sc16is7xx.UARTConfig{
		BaudRate:       115_200,
		WordLength:     sc16is7xx.Word8Bits,
		Parity:         sc16is7xx.ParityNone,
		StopBits:       sc16is7xx.StopBits1,
		Mode:           sc16is7xx.RS232Mode{},
		UseFIFOs:       true,
		TxTriggerLevel: 16,
		RxTriggerLevel: 16,
	})
	if err != nil {
		println("[selftest] FAIL: uart init:", err.Error())
		return
	}
	println("[selftest] uart init + loopback: PASS")

	if err := u.SetBaudRate(9600); err != nil {
		println("[selftest] FAIL: rebaud:", err.Error())
		return
	}
	println("[selftest] 9600 baud, error(1/1000 %)=", int(u.BaudRateError()))

	// Echo loop: whatever arrives on the line goes straight back out.
	println("[selftest] echo loop (wire TXA to RXA, or connect a peer)")
	var buf [64]byte
	for {
		n, rxErr, err := u.Receive(buf[:])
		if err != nil {
			println("[selftest] rx error:", err.Error(), " bits=", int(rxErr))
		}
		if n > 0 {
			if _, err := u.Transmit(buf[:n]); err != nil {
				println("[selftest] tx error:", err.Error())
			}
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}
