package sc16is7xx

import (
	"tinygo.org/x/drivers"

	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
)

// Transport moves register data between the host and the device. cmd is the
// already encoded command byte (register index and channel, see cmdByte);
// the transport only adds what the physical bus needs, such as the SPI read
// bit.
//
// Implementations that can tell an address-phase NACK from a data-phase NACK
// should return errcode.NotReady and errcode.InvalidAddress respectively;
// opaque bus errors are passed through as-is.
type Transport interface {
	// Write sends p to the register selected by cmd.
	Write(cmd byte, p []byte) error
	// Read fills p from the register selected by cmd.
	Read(cmd byte, p []byte) error
	// Probe checks that the device answers on the bus without touching any
	// register. Transports with no ack concept return nil.
	Probe() error
}

// cmdByte builds the on-wire command byte for a register access.
func cmdByte(ch Channel, reg byte) byte {
	return reg<<3 | byte(ch)<<1
}

// Default I2C addresses for the common A1/A0 strappings (pins tied to VDD or
// VSS). The full address table in the datasheet also covers SCL/SDA ties.
const (
	AddrA1VddA0Vdd uint16 = 0x48
	AddrA1VddA0Vss uint16 = 0x49
	AddrA1VssA0Vdd uint16 = 0x4C
	AddrA1VssA0Vss uint16 = 0x4D
)

// I2CTransport drives the device over an I2C bus. The bus clock must not
// exceed 400 kHz.
type I2CTransport struct {
	bus  drivers.I2C
	addr uint16
	w    [fifoSize + 1]byte
}

func NewI2CTransport(bus drivers.I2C, addr uint16) *I2CTransport {
	return &I2CTransport{bus: bus, addr: addr}
}

func (t *I2CTransport) Write(cmd byte, p []byte) error {
	if len(p) > fifoSize {
		return errcode.InvalidParams
	}
	t.w[0] = cmd
	n := copy(t.w[1:], p)
	return t.bus.Tx(t.addr, t.w[:n+1], nil)
}

func (t *I2CTransport) Read(cmd byte, p []byte) error {
	t.w[0] = cmd
	return t.bus.Tx(t.addr, t.w[:1], p)
}

// Probe performs an address-only transfer. A NACK means no device (or a
// device still resetting) at the address.
func (t *I2CTransport) Probe() error {
	if err := t.bus.Tx(t.addr, nil, nil); err != nil {
		return errcode.NotReady
	}
	return nil
}

// SPITransport drives the device over an SPI bus in mode 0. cs, when not
// nil, asserts and releases the chip select around each transfer. The bus
// clock must not exceed 4 MHz (15 MHz on SC16IS76X parts).
type SPITransport struct {
	bus drivers.SPI
	cs  func(active bool)
	w   [fifoSize + 1]byte
	r   [fifoSize + 1]byte
}

func NewSPITransport(bus drivers.SPI, cs func(active bool)) *SPITransport {
	return &SPITransport{bus: bus, cs: cs}
}

const spiReadBit = 0x80

func (t *SPITransport) Write(cmd byte, p []byte) error {
	if len(p) > fifoSize {
		return errcode.InvalidParams
	}
	t.w[0] = cmd
	n := copy(t.w[1:], p)
	return t.tx(t.w[:n+1], nil)
}

func (t *SPITransport) Read(cmd byte, p []byte) error {
	if len(p) > fifoSize {
		return errcode.InvalidParams
	}
	t.w[0] = cmd | spiReadBit
	for i := range p {
		t.w[1+i] = 0
	}
	if err := t.tx(t.w[:len(p)+1], t.r[:len(p)+1]); err != nil {
		return err
	}
	copy(p, t.r[1:len(p)+1])
	return nil
}

// Probe is a no-op, SPI has no acknowledge.
func (t *SPITransport) Probe() error { return nil }

func (t *SPITransport) tx(w, r []byte) error {
	if t.cs != nil {
		t.cs(true)
		defer t.cs(false)
	}
	return t.bus.Tx(w, r)
}
