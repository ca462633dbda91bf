package sc16is7xx

import (
	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
)

// FIFOSize is the depth of the Tx and Rx FIFOs, in characters.
const FIFOSize = 64

// fifoSize is the internal alias used for scratch buffer sizing.
const fifoSize = FIFOSize

// Channel selects one of the two UARTs of a dual device. Single UART parts
// only have ChannelA.
type Channel uint8

const (
	ChannelA Channel = 0
	ChannelB Channel = 1
)

// PartNumber identifies the exact device variant. The variants differ in
// UART count, I/O pins way and maximum bus speeds.
type PartNumber uint8

const (
	SC16IS740 PartNumber = iota
	SC16IS741
	SC16IS750
	SC16IS752
	SC16IS760
	SC16IS762
)

type capabilities struct {
	uarts    uint8
	gpio     bool
	fastIrDA bool // 1/4 IrDA pulse ratio available
	maxSPIHz uint32
}

var partCaps = [...]capabilities{
	SC16IS740: {uarts: 1, maxSPIHz: 4_000_000},
	SC16IS741: {uarts: 1, maxSPIHz: 4_000_000},
	SC16IS750: {uarts: 1, gpio: true, maxSPIHz: 4_000_000},
	SC16IS752: {uarts: 2, gpio: true, maxSPIHz: 4_000_000},
	SC16IS760: {uarts: 1, gpio: true, fastIrDA: true, maxSPIHz: 15_000_000},
	SC16IS762: {uarts: 2, gpio: true, fastIrDA: true, maxSPIHz: 15_000_000},
}

func (p PartNumber) valid() bool { return int(p) < len(partCaps) }

// UARTCount returns the number of UART channels on the part.
func (p PartNumber) UARTCount() uint8 {
	if !p.valid() {
		return 0
	}
	return partCaps[p].uarts
}

// HasGPIO reports whether the part has programmable I/O pins.
func (p PartNumber) HasGPIO() bool { return p.valid() && partCaps[p].gpio }

// HasFastIrDA reports whether the part supports the 1/4 IrDA pulse ratio.
func (p PartNumber) HasFastIrDA() bool { return p.valid() && partCaps[p].fastIrDA }

// MaxSPIHz returns the maximum SPI clock for the part.
func (p PartNumber) MaxSPIHz() uint32 {
	if !p.valid() {
		return 0
	}
	return partCaps[p].maxSPIHz
}

// MaxI2CHz is the maximum I2C clock for every part of the family.
const MaxI2CHz = 400_000

// Clock limits.
const (
	minClockHz = 1_600      // below this no baud rate can be generated
	maxXtalHz  = 24_000_000 // crystal between XTAL1 and XTAL2
	maxOscHz   = 80_000_000 // external oscillator on XTAL1
)

// Config describes the device variant and its clock source. Exactly one of
// XtalFreq and OscFreq must be set: XtalFreq for a crystal between XTAL1 and
// XTAL2 (24 MHz maximum), OscFreq for an external oscillator driving XTAL1
// (80 MHz maximum).
type Config struct {
	Part     PartNumber
	XtalFreq uint32
	OscFreq  uint32
}

// DefaultConfig is a dual-UART part on the common 1.8432 MHz crystal.
func DefaultConfig() Config {
	return Config{
		Part:     SC16IS752,
		XtalFreq: 1_843_200,
	}
}

// Validate checks the configuration without touching hardware.
func (c Config) Validate() error {
	if !c.Part.valid() {
		return errcode.UnknownDevice
	}
	switch {
	case c.XtalFreq == 0 && c.OscFreq == 0:
		return errcode.Configuration
	case c.XtalFreq != 0 && c.OscFreq != 0:
		return errcode.Configuration
	case c.XtalFreq > maxXtalHz:
		return errcode.Frequency
	case c.OscFreq > maxOscHz:
		return errcode.Frequency
	}
	return nil
}

func (c Config) clockHz() uint32 {
	if c.XtalFreq != 0 {
		return c.XtalFreq
	}
	return c.OscFreq
}

// Device is one SC16IS7XX chip on a bus. Use NewUART to obtain its UART
// channels.
type Device struct {
	tr   Transport
	part PartNumber
	freq uint32

	// Driven output levels. IOState reads report pin inputs, not what the
	// outputs were last set to, so the driver keeps its own copy.
	ioShadow byte
}

// New validates cfg and binds a device to a transport. No bus traffic
// happens until Init.
func New(tr Transport, cfg Config) (*Device, error) {
	if tr == nil {
		return nil, errcode.InvalidParams
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Device{tr: tr, part: cfg.Part, freq: cfg.clockHz()}, nil
}

// PartNumber returns the configured device variant.
func (d *Device) PartNumber() PartNumber { return d.part }

// ClockHz returns the configured input clock.
func (d *Device) ClockHz() uint32 { return d.freq }

// Init probes the device, soft resets it and verifies register level
// communication through the scratchpad. It must be called before any UART
// is initialized.
func (d *Device) Init() error {
	if err := d.tr.Probe(); err != nil {
		return err
	}
	if err := d.SoftReset(); err != nil {
		return err
	}
	if err := d.CommTest(); err != nil {
		if errcode.Of(err) == errcode.BadData {
			return &errcode.E{C: errcode.NoDevice, Op: "init", Msg: "scratchpad readback mismatch", Err: err}
		}
		return err
	}
	return nil
}

// SoftReset resets the whole device through IOControl. The device aborts
// the bus transfer while it resets, so a data phase NACK from the transport
// is the expected outcome and is not an error.
func (d *Device) SoftReset() error {
	err := d.WriteRegister(ChannelA, regIOCtrl, ioctlSoftReset)
	if err != nil && errcode.Of(err) != errcode.InvalidAddress {
		return err
	}
	return nil
}

// CommTest verifies register communication by writing and reading back two
// complementary patterns through the scratchpad register.
func (d *Device) CommTest() error {
	for _, pattern := range [2]byte{0x55, 0xAA} {
		if err := d.WriteRegister(ChannelA, regSPR, pattern); err != nil {
			return err
		}
		got, err := d.ReadRegister(ChannelA, regSPR)
		if err != nil {
			return err
		}
		if got != pattern {
			return errcode.BadData
		}
	}
	return nil
}

// WriteScratch stores one byte in the scratchpad register of a channel.
func (d *Device) WriteScratch(ch Channel, v byte) error {
	return d.WriteRegister(ch, regSPR, v)
}

// ReadScratch returns the scratchpad register of a channel.
func (d *Device) ReadScratch(ch Channel) (byte, error) {
	return d.ReadRegister(ch, regSPR)
}

// SetSleep enters or leaves sleep mode on a channel. The device only stops
// its clocks once every channel is asleep and idle. Register access keeps
// working in sleep mode.
func (d *Device) SetSleep(ch Channel, sleep bool) error {
	if err := d.enableEnhancedFunctions(ch, true); err != nil {
		return err
	}
	v := byte(0)
	if sleep {
		v = ierSleepMode
	}
	if err := d.ModifyRegister(ch, regIER, v, ierSleepMode); err != nil {
		return err
	}
	return d.enableEnhancedFunctions(ch, false)
}

// IsSleeping reports whether sleep mode is enabled on a channel.
func (d *Device) IsSleeping(ch Channel) (bool, error) {
	ier, err := d.ReadRegister(ch, regIER)
	if err != nil {
		return false, err
	}
	return ier&ierSleepMode != 0, nil
}

func (d *Device) checkChannel(ch Channel) error {
	if uint8(ch) >= d.part.UARTCount() {
		return errcode.UnknownChannel
	}
	return nil
}
