//go:build pico

// Interactive console for poking an SC16IS7XX bridge from USB serial.
// Lines are tokenized with shlex so quoted payloads survive, e.g.
//
//	send "hello world"
//	baud 9600
//	gpio set ff 0f
//
// Type help for the command list.
package main

import (
	"machine"
	"time"

	"github.com/google/shlex"

	"github.com/jangala-dev/tinygo-sc16is7xx/drivers/sc16is7xx"
	"github.com/jangala-dev/tinygo-sc16is7xx/x/conv"
	"github.com/jangala-dev/tinygo-sc16is7xx/x/fmtx"
	"github.com/jangala-dev/tinygo-sc16is7xx/x/strconvx"
)

const xtalHz = 1_843_200

func main() {
	println("[console] boot …")
	time.Sleep(1500 * time.Millisecond)

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		println("[console] FAIL: i2c configure:", err.Error())
		return
	}

	tr := sc16is7xx.NewI2CTransport(bus, sc16is7xx.AddrA1VddA0Vdd)
	dev, err := sc16is7xx.New(tr, sc16is7xx.Config{
		Part:     sc16is7xx.SC16IS752,
		XtalFreq: xtalHz,
	})
	if err != nil {
		println("[console] FAIL: config:", err.Error())
		return
	}
	if err := dev.Init(); err != nil {
		println("[console] FAIL: device init:", err.Error())
		return
	}

	u, err := sc16is7xx.NewUART(dev, sc16is7xx.ChannelA, sc16is7xx.UARTOptions{
		TxBufferSize: 256,
		RxBufferSize: 256,
	})
	if err != nil {
		println("[console] FAIL: uart:", err.Error())
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
		println("[console] FAIL: uart init:", err.Error())
		return
	}
	println("[console] ready, channel A at 115200 8N1. Type help.")

	var line [128]byte
	for {
		n := readLine(line[:])
		args, err := shlex.Split(string(line[:n]))
		if err != nil {
			println("[console] parse:", err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}
		run(dev, u, args)
	}
}

func run(dev *sc16is7xx.Device, u *sc16is7xx.UART, args []string) {
	switch args[0] {
	case "help":
		println("  scratch            run the scratchpad comm test")
		println("  loopback           run the internal loopback test")
		println("  send <text>...     transmit the arguments")
		println("  recv [max]         read pending bytes (default 64)")
		println("  baud <rate>        change the baud rate")
		println("  status             line status + FIFO levels")
		println("  sleep on|off       sleep mode for channel A")
		println("  gpio dir <v> <m>   pin directions, hex value + mask")
		println("  gpio set <v> <m>   drive output pins, hex value + mask")
		println("  gpio get           read input pin levels")

	case "scratch":
		report("scratch", dev.CommTest())

	case "loopback":
		report("loopback", u.CommTest())

	case "send":
		for i, a := range args[1:] {
			if i > 0 {
				_ = u.TransmitByte(' ')
			}
			for _, b := range []byte(a) {
				if err := u.TransmitByte(b); err != nil {
					println("[console] tx:", err.Error())
					return
				}
			}
		}
		if err := u.WaitEndTx(); err != nil {
			println("[console] drain:", err.Error())
			return
		}
		println("[console] sent")

	case "recv":
		max := 64
		if len(args) > 1 {
			v, err := strconvx.Atoi(args[1])
			if err != nil || v <= 0 || v > 512 {
				println("[console] recv: bad count")
				return
			}
			max = v
		}
		buf := make([]byte, max)
		n, rxErr, err := u.Receive(buf)
		if err != nil {
			println("[console] rx:", err.Error(), " bits=", int(rxErr))
		}
		println("[console] got", n, "bytes:")
		if n > 0 {
			println(string(buf[:n]))
		}

	case "baud":
		if len(args) != 2 {
			println("[console] baud: need a rate")
			return
		}
		v, err := strconvx.ParseUint(args[1], 10, 32)
		if err != nil {
			println("[console] baud: bad rate")
			return
		}
		if err := u.SetBaudRate(uint32(v)); err != nil {
			println("[console] baud:", err.Error())
			return
		}
		println("[console] baud set, error(1/1000 %)=", int(u.BaudRateError()))

	case "status":
		st, err := u.Status()
		if err != nil {
			println("[console] status:", err.Error())
			return
		}
		txSpace, _ := u.TxFIFOSpace()
		rxCount, _ := u.RxFIFOCount()
		print(fmtx.Sprintf("[console] data_ready=%t tx_idle=%t fifo_err=%t\r\n",
			st.DataReady(), st.TxIdle(), st.FIFODataError()))
		print(fmtx.Sprintf("[console] tx_space=%d rx_count=%d\r\n", txSpace, rxCount))

	case "sleep":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			println("[console] sleep: on or off")
			return
		}
		report("sleep", dev.SetSleep(sc16is7xx.ChannelA, args[1] == "on"))

	case "gpio":
		gpio(dev, args[1:])

	default:
		println("[console]", args[0], ": unknown, try help")
	}
}

func gpio(dev *sc16is7xx.Device, args []string) {
	if len(args) == 0 {
		println("[console] gpio: dir, set or get")
		return
	}
	switch args[0] {
	case "get":
		v, err := dev.PinInputLevels()
		if err != nil {
			println("[console] gpio:", err.Error())
			return
		}
		println("[console] pins=", conv.U8Hex(v), " driven=", conv.U8Hex(dev.OutputLevels()))

	case "dir", "set":
		if len(args) != 3 {
			println("[console] gpio", args[0], ": need hex value and mask")
			return
		}
		v, okV := parseHexByte(args[1])
		m, okM := parseHexByte(args[2])
		if !okV || !okM {
			println("[console] gpio: bad hex byte")
			return
		}
		if args[0] == "dir" {
			report("gpio dir", dev.SetPinDirections(v, m))
		} else {
			report("gpio set", dev.SetPinOutputLevels(v, m))
		}

	default:
		println("[console] gpio:", args[0], ": unknown")
	}
}

func report(what string, err error) {
	if err != nil {
		println("[console]", what, ": FAIL:", err.Error())
		return
	}
	println("[console]", what, ": OK")
}

func parseHexByte(s string) (byte, bool) {
	v, err := strconvx.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

// readLine polls USB serial for one line with echo and backspace handling.
func readLine(buf []byte) int {
	n := 0
	for {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		switch b {
		case '\r', '\n':
			println()
			return n
		case 0x08, 0x7F:
			if n > 0 {
				n--
				print("\b \b")
			}
		default:
			if n < len(buf) {
				buf[n] = b
				n++
				print(string([]byte{b}))
			}
		}
	}
}
