package sc16is7xx

import "github.com/jangala-dev/tinygo-sc16is7xx/errcode"

// Interrupts is the set of interrupt sources written to IER, OR the
// constants together. Bits 4 (sleep) is not part of the set and is managed
// through SetSleep.
type Interrupts uint8

const (
	IntRxFIFO    Interrupts = 0x01 // Rx FIFO reaches RxTriggerLevel
	IntTxFIFO    Interrupts = 0x02 // Tx FIFO free space reaches TxTriggerLevel
	IntRxLine    Interrupts = 0x04 // receive line error anywhere in the Rx FIFO
	IntModemLine Interrupts = 0x08 // modem input pin change
	IntXoff      Interrupts = 0x20 // Xoff or special character received
	IntRTS       Interrupts = 0x40 // RTS goes inactive
	IntCTS       Interrupts = 0x80 // CTS goes inactive

	IntAll Interrupts = 0xEF

	intMask = 0xEF
)

// InterruptSource is the prioritized pending interrupt decoded from IIR.
type InterruptSource uint8

const (
	IntSourceModemStatus InterruptSource = 0b00000
	IntSourceTHR         InterruptSource = 0b00001
	IntSourceRHR         InterruptSource = 0b00010
	IntSourceLineStatus  InterruptSource = 0b00011
	IntSourceRxTimeout   InterruptSource = 0b00110
	IntSourceXoff        InterruptSource = 0b01000
	IntSourceCTSRTS      InterruptSource = 0b10000
	IntSourceInputPins   InterruptSource = 0b11000
)

// Status is the LSR line status snapshot.
type Status uint8

func (s Status) DataReady() bool    { return s&lsrDataReady != 0 }
func (s Status) Overrun() bool      { return s&lsrOverrun != 0 }
func (s Status) ParityError() bool  { return s&lsrParity != 0 }
func (s Status) FramingError() bool { return s&lsrFraming != 0 }
func (s Status) Break() bool        { return s&lsrBreak != 0 }
func (s Status) THREmpty() bool     { return s&lsrTHREmpty != 0 }

// TxIdle reports that both the Tx FIFO and the transmit shift register are
// empty.
func (s Status) TxIdle() bool { return s&lsrTxEmpty != 0 }

// FIFODataError reports at least one parity, framing or break error
// somewhere in the Rx FIFO.
func (s Status) FIFODataError() bool { return s&lsrFIFOError != 0 }

// RxError qualifies one received character, a bitset of the LSR error
// bits. Zero means the character is clean.
type RxError uint8

func (e RxError) Overrun() bool      { return e&lsrOverrun != 0 }
func (e RxError) ParityError() bool  { return e&lsrParity != 0 }
func (e RxError) FramingError() bool { return e&lsrFraming != 0 }
func (e RxError) Break() bool        { return e&lsrBreak != 0 }

// ModemStatus is the MSR snapshot. The pin predicates report the active
// (asserted) pin state; reading MSR clears the delta bits.
type ModemStatus uint8

func (m ModemStatus) CTSChanged() bool { return m&msrDeltaCTS != 0 }
func (m ModemStatus) DSRChanged() bool { return m&msrDeltaDSR != 0 }
func (m ModemStatus) RIChanged() bool  { return m&msrDeltaRI != 0 }
func (m ModemStatus) CDChanged() bool  { return m&msrDeltaCD != 0 }
func (m ModemStatus) CTS() bool        { return m&msrCTS != 0 }
func (m ModemStatus) DSR() bool        { return m&msrDSR != 0 }
func (m ModemStatus) RI() bool         { return m&msrRI != 0 }
func (m ModemStatus) CD() bool         { return m&msrCD != 0 }

// configureFIFOs enables or disables the FIFOs and programs the TLR
// trigger levels. The FCR trigger fields are left at zero, TLR takes
// precedence while it is nonzero. TLR access (MCR[2] with enhanced
// functions) must be enabled by the caller.
func (u *UART) configureFIFOs(useFIFOs bool, txTrig, rxTrig FlowLevel) error {
	if !txTrig.valid() || !rxTrig.valid() || txTrig == 0 || rxTrig == 0 {
		return errcode.InvalidParams
	}
	fcr := byte(0)
	if useFIFOs {
		fcr = fcrFIFOEnable
	}
	if err := u.dev.WriteRegister(u.ch, regFCR, fcr); err != nil {
		return err
	}
	tlr := txTrig.nibble() | rxTrig.nibble()<<4
	return u.dev.WriteRegister(u.ch, regTLR, tlr)
}

// ResetFIFO clears the Tx and/or Rx FIFO. FCR is write only, so the FIFO
// enable state is recovered from its mirror in IIR[7:6] to avoid toggling
// it.
func (u *UART) ResetFIFO(tx, rx bool) error {
	iir, err := u.dev.ReadRegister(u.ch, regIIR)
	if err != nil {
		return err
	}
	fcr := byte(0)
	if iir&iirFIFOEnabled != 0 {
		fcr = fcrFIFOEnable
	}
	if rx {
		fcr |= fcrRxFIFOReset
	}
	if tx {
		fcr |= fcrTxFIFOReset
	}
	return u.dev.WriteRegister(u.ch, regFCR, fcr)
}

// SetInterrupts programs the interrupt enables. The sleep bit is masked
// out so interrupt changes never disturb the sleep state.
func (u *UART) SetInterrupts(ints Interrupts) error {
	return u.dev.ModifyRegister(u.ch, regIER, byte(ints), intMask)
}

// PendingInterrupt returns the highest priority pending interrupt source.
// The pending flag is false when no interrupt is waiting.
func (u *UART) PendingInterrupt() (InterruptSource, bool, error) {
	iir, err := u.dev.ReadRegister(u.ch, regIIR)
	if err != nil {
		return 0, false, err
	}
	src := InterruptSource(iir & iirSourceMask >> iirSourceShift)
	return src, iir&iirNoPending == 0, nil
}

// Status returns the line status register snapshot.
func (u *UART) Status() (Status, error) {
	lsr, err := u.dev.ReadRegister(u.ch, regLSR)
	return Status(lsr), err
}

// ModemStatus returns the modem/control pin status. Reading it clears the
// change flags and the modem status interrupt.
func (u *UART) ModemStatus() (ModemStatus, error) {
	msr, err := u.dev.ReadRegister(u.ch, regMSR)
	return ModemStatus(msr), err
}

// ClearToSend reports whether the peer allows transmission. Any bus error
// reads as not clear to send.
func (u *UART) ClearToSend() bool {
	msr, err := u.ModemStatus()
	if err != nil {
		return false
	}
	return msr.CTS()
}

// TxFIFOSpace returns the free space in the transmit FIFO, in characters.
func (u *UART) TxFIFOSpace() (uint8, error) {
	v, err := u.dev.ReadRegister(u.ch, regTXLVL)
	return v, err
}

// RxFIFOCount returns the number of characters waiting in the receive
// FIFO.
func (u *UART) RxFIFOCount() (uint8, error) {
	v, err := u.dev.ReadRegister(u.ch, regRXLVL)
	return v, err
}
