package sc16is7xx

import "github.com/jangala-dev/tinygo-sc16is7xx/errcode"

// PinControl selects who drives a modem pin during hardware flow control.
type PinControl uint8

const (
	// ManualPinControl leaves the pin to the application, which must read
	// or drive it itself.
	ManualPinControl PinControl = iota
	// AutomaticPinControl lets the UART drive CTS out of the transmitter,
	// or RTS out of the receiver trigger levels.
	AutomaticPinControl
)

// FlowLevel is a FIFO trigger level in characters. Valid levels go from 0
// to 60 with a granularity of four characters.
type FlowLevel uint8

func (l FlowLevel) valid() bool { return l <= 60 && l%4 == 0 }

// nibble converts the level to its 4-bit register field.
func (l FlowLevel) nibble() byte { return byte(l) / 4 }

// SoftFlowMode is the EFR[3:0] software flow control configuration: which
// Xon/Xoff pair the transmitter sends and which pair the receiver compares.
type SoftFlowMode uint8

const (
	SoftFlowTxNoneRxNone SoftFlowMode = 0b0000
	SoftFlowTxNoneRx1    SoftFlowMode = 0b0001 // receiver compares Xon1+Xoff1
	SoftFlowTxNoneRx2    SoftFlowMode = 0b0010 // receiver compares Xon2+Xoff2
	SoftFlowTxNoneRxBoth SoftFlowMode = 0b0011 // receiver compares Xon1 and Xon2 + Xoff1 and Xoff2
	SoftFlowTx1RxNone    SoftFlowMode = 0b0100 // transmitter sends Xon1+Xoff1
	SoftFlowTx1Rx1       SoftFlowMode = 0b0101
	SoftFlowTx1Rx2       SoftFlowMode = 0b0110
	SoftFlowTx1RxEither  SoftFlowMode = 0b0111 // receiver compares Xon1 or Xon2 + Xoff1 or Xoff2
	SoftFlowTx2RxNone    SoftFlowMode = 0b1000 // transmitter sends Xon2+Xoff2
	SoftFlowTx2Rx1       SoftFlowMode = 0b1001
	SoftFlowTx2Rx2       SoftFlowMode = 0b1010
	SoftFlowTx2RxEither  SoftFlowMode = 0b1011
	SoftFlowTxBothRxNone SoftFlowMode = 0b1100 // transmitter sends Xon1 and Xon2 + Xoff1 and Xoff2
	SoftFlowTxBothRx1    SoftFlowMode = 0b1101
	SoftFlowTxBothRx2    SoftFlowMode = 0b1110
	SoftFlowTxBothRxBoth SoftFlowMode = 0b1111
)

// usesXoff2 reports whether the mode makes the UART send or compare Xoff2,
// which conflicts with special character detection.
func (m SoftFlowMode) usesXoff2() bool { return m&0b1010 != 0 }

// FlowControl is the flow control selection of a UART mode: nil for none,
// or a HardwareFlow or SoftwareFlow value.
type FlowControl interface {
	flowControl()
}

// HardwareFlow is CTS/RTS flow control. The receiver asks the peer to hold
// once HoldAt characters pile up in the Rx FIFO and to resume once it
// drains to ResumeAt; HoldAt must be above ResumeAt, the chip does not
// check this itself.
type HardwareFlow struct {
	HoldAt        FlowLevel
	ResumeAt      FlowLevel
	RTSPinControl PinControl
	CTSPinControl PinControl
}

// SoftwareFlow is in-band Xon/Xoff flow control with the same HoldAt and
// ResumeAt trigger semantics as HardwareFlow. XonAnyChar resumes the
// transmitter on any received character rather than a matching Xon.
type SoftwareFlow struct {
	HoldAt     FlowLevel
	ResumeAt   FlowLevel
	Mode       SoftFlowMode
	Xon1       byte
	Xon2       byte
	Xoff1      byte
	Xoff2      byte
	XonAnyChar bool
}

func (HardwareFlow) flowControl() {}
func (SoftwareFlow) flowControl() {}

// validateFlowControl checks every flow control rule before any register is
// touched, so a bad configuration leaves the device untouched.
func validateFlowControl(hard *HardwareFlow, soft *SoftwareFlow, useSpecialChar, useAddressChar bool) error {
	if hard != nil && soft != nil {
		return errcode.Configuration
	}
	if useSpecialChar && useAddressChar {
		// Both are implemented with special character detection on Xoff2.
		return errcode.Configuration
	}
	var hold, resume FlowLevel
	switch {
	case hard != nil:
		hold, resume = hard.HoldAt, hard.ResumeAt
	case soft != nil:
		hold, resume = soft.HoldAt, soft.ResumeAt
		if useSpecialChar && soft.Mode.usesXoff2() {
			return errcode.Configuration
		}
	default:
		return nil
	}
	if !hold.valid() || !resume.valid() {
		return errcode.InvalidParams
	}
	if hold <= resume {
		return errcode.Configuration
	}
	return nil
}

// configureFlowControl programs TCR, EFR, the Xon/Xoff registers and the
// Xon-Any bit for the given selection. Pass nil hard and soft to disable
// flow control. specialChar, when not nil, enables special character
// detection with that character in Xoff2; useAddressChar does the same but
// the address character is written by the caller. TCR and TLR access
// (MCR[2] with enhanced functions) must be enabled by the caller.
func (u *UART) configureFlowControl(hard *HardwareFlow, soft *SoftwareFlow, specialChar *byte, useAddressChar bool) error {
	d := u.dev
	if err := validateFlowControl(hard, soft, specialChar != nil, useAddressChar); err != nil {
		return err
	}

	if hard != nil || soft != nil {
		var hold, resume FlowLevel
		if hard != nil {
			hold, resume = hard.HoldAt, hard.ResumeAt
		} else {
			hold, resume = soft.HoldAt, soft.ResumeAt
		}
		tcr := hold.nibble() | resume.nibble()<<4
		if err := d.WriteRegister(u.ch, regTCR, tcr); err != nil {
			return err
		}
	}

	err := d.withRegisterSet(u.ch, enhancedRegs, func() error {
		// Keep enhanced functions enabled whatever else changes.
		efr := byte(efrEnhancedEnable)
		switch {
		case hard != nil:
			if hard.RTSPinControl == AutomaticPinControl {
				efr |= efrAutoRTS
			}
			if hard.CTSPinControl == AutomaticPinControl {
				efr |= efrAutoCTS
			}
		case soft != nil:
			efr |= byte(soft.Mode) & efrSoftFlowMask
			if err := d.WriteRegister(u.ch, regXon1, soft.Xon1); err != nil {
				return err
			}
			if err := d.WriteRegister(u.ch, regXon2, soft.Xon2); err != nil {
				return err
			}
			if err := d.WriteRegister(u.ch, regXoff1, soft.Xoff1); err != nil {
				return err
			}
			if specialChar == nil {
				if err := d.WriteRegister(u.ch, regXoff2, soft.Xoff2); err != nil {
					return err
				}
			}
		}
		if specialChar != nil {
			efr |= efrSpecialCharDetect
			if err := d.WriteRegister(u.ch, regXoff2, *specialChar); err != nil {
				return err
			}
		}
		if useAddressChar {
			efr |= efrSpecialCharDetect
		}
		return d.WriteRegister(u.ch, regEFR, efr)
	})
	if err != nil {
		return err
	}

	xon := byte(0)
	if soft != nil && soft.XonAnyChar {
		xon = mcrXonAny
	}
	return d.ModifyRegister(u.ch, regMCR, xon, mcrXonAny)
}
