package sc16is7xx

import "github.com/jangala-dev/tinygo-sc16is7xx/errcode"

// WordLength is the number of data bits per character, LCR[1:0] encoding.
type WordLength uint8

const (
	Word5Bits WordLength = iota
	Word6Bits
	Word7Bits
	Word8Bits
)

// StopBits is the stop bit length. StopBits1_5 applies to 5-bit words,
// StopBits2 to 6, 7 and 8-bit words; the chip encodes both with the same
// LCR bit.
type StopBits uint8

const (
	StopBits1 StopBits = iota
	StopBits1_5
	StopBits2
)

// Parity is the LCR[5:3] parity selection.
type Parity uint8

const (
	ParityNone    Parity = 0b000
	ParityOdd     Parity = 0b001
	ParityEven    Parity = 0b011
	ParityForced1 Parity = 0b101
	ParityForced0 Parity = 0b111
)

// RS485RTSControl selects who drives the RTS pin in RS-485 mode.
type RS485RTSControl uint8

const (
	// RS485AutoRTS lets the transmitter drive RTS as a direction signal.
	RS485AutoRTS RS485RTSControl = iota
	// RS485FlowControlRTS hands RTS to the hardware flow control circuitry;
	// requires a HardwareFlow configuration.
	RS485FlowControlRTS
	// RS485ManualRTS leaves RTS to the application or external logic.
	RS485ManualRTS
)

// RS485Multidrop is the 9-bit multidrop selection for RS-485 buses.
type RS485Multidrop uint8

const (
	MultidropOff RS485Multidrop = iota
	// MultidropOn is normal 9-bit mode without address filtering.
	MultidropOn
	// MultidropAutoAddress filters frames by the address character, which
	// the chip holds in Xoff2.
	MultidropAutoAddress
)

// Mode selects the line discipline of a UART: RS232Mode, RS485Mode,
// IrDAMode or ModemMode.
type Mode interface {
	uartMode()
}

// RS232Mode is plain RS-232/RS-422 operation with optional hardware or
// software flow control.
type RS232Mode struct {
	Flow FlowControl
}

// RS485Mode is RS-485 operation. Flow is hardware only and is mutually
// exclusive with RS485AutoRTS and RS485ManualRTS, and mandatory with
// RS485FlowControlRTS.
type RS485Mode struct {
	RTSControl RS485RTSControl
	InvertRTS  bool
	Multidrop  RS485Multidrop
	Address    byte // only with MultidropAutoAddress
	Flow       *HardwareFlow
}

// IrDAMode is infrared SIR operation. FastRatio selects the 1/4 pulse
// ratio, available on SC16IS76X parts only; flow control is software only.
type IrDAMode struct {
	FastRatio bool
	Flow      *SoftwareFlow
}

// ModemMode is full modem operation: the channel's GPIO pins are remapped
// to the RI, CD, DTR and DSR modem lines.
type ModemMode struct {
	Flow *HardwareFlow
}

func (RS232Mode) uartMode() {}
func (RS485Mode) uartMode() {}
func (IrDAMode) uartMode()  {}
func (ModemMode) uartMode() {}

// UARTConfig is the whole line configuration applied by Init.
type UARTConfig struct {
	BaudRate   uint32
	WordLength WordLength
	Parity     Parity
	StopBits   StopBits
	Mode       Mode

	// UseSpecialChar enables detection of SpecialChar in the receive
	// stream (IIR reports it); the character lives in Xoff2 so it is
	// mutually exclusive with soft flow modes using Xoff2 and with
	// MultidropAutoAddress.
	UseSpecialChar bool
	SpecialChar    byte

	// DisableTx stops serial data going out; the Tx FIFO still accepts
	// data until full. DisableRx stops reception immediately.
	DisableTx bool
	DisableRx bool

	UseFIFOs       bool
	TxTriggerLevel FlowLevel // interrupt at this many free Tx spaces, 4..60
	RxTriggerLevel FlowLevel // interrupt at this many received characters, 4..60

	Interrupts Interrupts
}

// UARTOptions selects the driver-side behaviour of a UART, as opposed to
// the line configuration in UARTConfig.
type UARTOptions struct {
	// SafeTx checks the FIFO space register around every transmitted byte
	// instead of bursting; SafeRx reads the line status before every
	// received byte so errors are pinned to the exact character.
	SafeTx bool
	SafeRx bool
	// LoopbackTest runs an internal loopback echo test at the end of Init.
	LoopbackTest bool
	// Buffer sizes in bytes; zero disables the ring buffer on that side
	// and transfers go straight between caller and FIFO.
	TxBufferSize int
	RxBufferSize int
}

// UART is one channel of a Device.
type UART struct {
	dev *Device
	ch  Channel

	safeTx       bool
	safeRx       bool
	loopbackTest bool
	txBuf        *Ring[byte]
	rxBuf        *Ring[byte]

	irda     bool
	irdaFast bool
	baudErr  int32
}

// NewUART binds a UART to a channel of an initialized device. Channel B is
// rejected on single UART parts.
func NewUART(dev *Device, ch Channel, opts UARTOptions) (*UART, error) {
	if dev == nil {
		return nil, errcode.InvalidParams
	}
	if err := dev.checkChannel(ch); err != nil {
		return nil, err
	}
	u := &UART{
		dev:          dev,
		ch:           ch,
		safeTx:       opts.SafeTx,
		safeRx:       opts.SafeRx,
		loopbackTest: opts.LoopbackTest,
	}
	if opts.TxBufferSize > 0 {
		u.txBuf = NewRing[byte](opts.TxBufferSize)
	}
	if opts.RxBufferSize > 0 {
		u.rxBuf = NewRing[byte](opts.RxBufferSize)
	}
	return u, nil
}

// Channel returns the UART channel this object drives.
func (u *UART) Channel() Channel { return u.ch }

// Init applies the whole UART configuration in an order that avoids
// spurious line activity: interrupts, transmitter and receiver are off and
// the FIFOs cleared while the line format, baud rate and flow control are
// programmed. The first register error aborts with no rollback.
func (u *UART) Init(cfg UARTConfig) error {
	d := u.dev
	if cfg.Mode == nil {
		return errcode.InvalidParams
	}
	if u.txBuf != nil {
		u.txBuf.Reset()
	}
	if u.rxBuf != nil {
		u.rxBuf.Reset()
	}

	if err := d.enableEnhancedFunctions(u.ch, true); err != nil {
		return err
	}
	// TCR/TLR are only reachable while MCR[2] is set.
	if err := d.ModifyRegister(u.ch, regMCR, mcrTCRTLREnable, mcrTCRTLREnable); err != nil {
		return err
	}

	savedIER, err := d.ReadRegister(u.ch, regIER)
	if err != nil {
		return err
	}
	if err := d.WriteRegister(u.ch, regIER, 0x00); err != nil {
		return err
	}
	if err := u.setTxRxDisable(true, true); err != nil {
		return err
	}
	if err := u.ResetFIFO(true, true); err != nil {
		return err
	}
	if err := u.configureFlowControl(nil, nil, nil, false); err != nil {
		return err
	}

	if err := u.setUARTConfiguration(&cfg); err != nil {
		return err
	}
	if err := u.SetBaudRate(cfg.BaudRate); err != nil {
		return err
	}
	if err := u.configureFIFOs(cfg.UseFIFOs, cfg.TxTriggerLevel, cfg.RxTriggerLevel); err != nil {
		return err
	}

	// Restore the interrupt enables saved above, sleep state included.
	if err := d.WriteRegister(u.ch, regIER, savedIER); err != nil {
		return err
	}
	if err := u.setTxRxDisable(cfg.DisableTx, cfg.DisableRx); err != nil {
		return err
	}

	if u.loopbackTest && !cfg.DisableTx && !cfg.DisableRx {
		// Before flow control, which would interfere with the echo.
		if err := u.CommTest(); err != nil {
			return err
		}
	}

	var hard *HardwareFlow
	var soft *SoftwareFlow
	useAddressChar := false
	switch m := cfg.Mode.(type) {
	case RS232Mode:
		switch f := m.Flow.(type) {
		case HardwareFlow:
			hard = &f
		case SoftwareFlow:
			soft = &f
		}
	case RS485Mode:
		hard = m.Flow
		useAddressChar = m.Multidrop == MultidropAutoAddress
	case IrDAMode:
		soft = m.Flow
	case ModemMode:
		hard = m.Flow
	}
	var specialChar *byte
	if cfg.UseSpecialChar {
		specialChar = &cfg.SpecialChar
	}
	if hard != nil || soft != nil || specialChar != nil {
		if err := u.configureFlowControl(hard, soft, specialChar, useAddressChar); err != nil {
			return err
		}
	}

	if err := d.ModifyRegister(u.ch, regMCR, 0x00, mcrTCRTLREnable); err != nil {
		return err
	}
	return u.SetInterrupts(cfg.Interrupts)
}

// setUARTConfiguration programs the mode registers (MCR, EFCR, IOControl)
// and the line format (LCR). Only called with the transmitter and receiver
// disabled.
func (u *UART) setUARTConfiguration(cfg *UARTConfig) error {
	d := u.dev
	mcr := byte(0)
	efcr := byte(0)
	ioc := byte(0)
	iocMask := byte(ioctlIO74AsModem)
	if u.ch == ChannelB {
		iocMask = ioctlIO30AsModem
	}
	u.irda, u.irdaFast = false, false

	switch m := cfg.Mode.(type) {
	case RS232Mode:
		// Normal UART mode, all defaults.

	case RS485Mode:
		switch m.RTSControl {
		case RS485AutoRTS:
			if m.Flow != nil {
				return errcode.Configuration
			}
			efcr |= efcrAutoRS485RTS
		case RS485FlowControlRTS:
			if m.Flow == nil {
				return errcode.Configuration
			}
		case RS485ManualRTS:
			if m.Flow != nil {
				return errcode.Configuration
			}
		default:
			return errcode.InvalidParams
		}
		if m.InvertRTS {
			efcr |= efcrInvertRTS
		}
		switch m.Multidrop {
		case MultidropOff:
		case MultidropOn:
			efcr |= efcrMode9Bit
		case MultidropAutoAddress:
			efcr |= efcrMode9Bit
			err := d.withRegisterSet(u.ch, enhancedRegs, func() error {
				if err := d.ModifyRegister(u.ch, regEFR, efrSpecialCharDetect, efrSpecialCharDetect); err != nil {
					return err
				}
				return d.WriteRegister(u.ch, regXoff2, m.Address)
			})
			if err != nil {
				return err
			}
		default:
			return errcode.InvalidParams
		}

	case IrDAMode:
		mcr |= mcrIrDAEnable
		u.irda = true
		if m.FastRatio {
			if !d.part.HasFastIrDA() {
				return errcode.NotSupported
			}
			efcr |= efcrIrDAFast
			u.irdaFast = true
		}

	case ModemMode:
		if u.ch == ChannelB {
			ioc = ioctlIO30AsModem
		} else {
			ioc = ioctlIO74AsModem
		}

	default:
		return errcode.InvalidParams
	}

	if err := d.ModifyRegister(u.ch, regMCR, mcr, mcrIrDAEnable); err != nil {
		return err
	}
	efcrMask := byte(efcrMode9Bit | efcrAutoRS485RTS | efcrInvertRTS | efcrIrDAFast)
	if err := d.ModifyRegister(u.ch, regEFCR, efcr, efcrMask); err != nil {
		return err
	}
	if err := d.ModifyRegister(u.ch, regIOCtrl, ioc, iocMask); err != nil {
		return err
	}

	lcr := byte(cfg.WordLength) & lcrWordLenMask
	if cfg.StopBits != StopBits1 {
		lcr |= lcrExtraStop
	}
	lcr |= byte(cfg.Parity) << lcrParityShift & lcrParityMask
	return d.WriteRegister(u.ch, regLCR, lcr)
}

// setTxRxDisable gates the transmitter and receiver through EFCR.
func (u *UART) setTxRxDisable(disableTx, disableRx bool) error {
	v := byte(0)
	if disableTx {
		v |= efcrTxDisable
	}
	if disableRx {
		v |= efcrRxDisable
	}
	return u.dev.ModifyRegister(u.ch, regEFCR, v, efcrTxDisable|efcrRxDisable)
}

// SetTxRxEnabled enables or disables the transmitter and receiver.
func (u *UART) SetTxRxEnabled(tx, rx bool) error {
	return u.setTxRxDisable(!tx, !rx)
}

// CommTest verifies the UART data path with the internal loopback: two
// complementary patterns are transmitted and must come back unchanged and
// error free. The patterns are reduced to 5 bits so the test works with
// every word length. Normal operating mode is restored on every path.
func (u *UART) CommTest() error {
	d := u.dev
	mcr, err := d.ReadRegister(u.ch, regMCR)
	if err != nil {
		return err
	}
	if err := d.WriteRegister(u.ch, regMCR, mcr|mcrLoopback); err != nil {
		return err
	}
	testErr := u.loopbackEcho()
	restoreErr := d.WriteRegister(u.ch, regMCR, mcr&^mcrLoopback)
	if testErr != nil {
		return testErr
	}
	return restoreErr
}

func (u *UART) loopbackEcho() error {
	if err := u.ResetFIFO(true, true); err != nil {
		return err
	}
	for _, pattern := range [2]byte{0x55 & 0x1F, 0xAA & 0x1F} {
		if err := u.TransmitByte(pattern); err != nil {
			return err
		}
		got, rxErr, err := u.ReceiveByte()
		if err != nil {
			return err
		}
		if rxErr != 0 || got != pattern {
			return errcode.PeripheralNotValid
		}
	}
	return nil
}
