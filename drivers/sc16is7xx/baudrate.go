package sc16is7xx

import (
	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
	"github.com/jangala-dev/tinygo-sc16is7xx/x/mathx"
)

// Baud rate limits.
const (
	BaudRateMin = 100
	BaudRateMax = 5_000_000

	maxIrDABaud     = 115_200   // 3/16 pulse ratio
	maxFastIrDABaud = 1_152_000 // 1/4 pulse ratio, SC16IS76X only
)

type baudSolution struct {
	divisor uint16
	div4    bool  // divide the input clock by 4 (MCR[7])
	err1000 int32 // achieved baud rate error in 1/1000 of a percent
}

// solveBaud picks the divisor and input clock prescaler giving the smallest
// baud rate error. The generator divides the input clock by 16*prescaler*
// divisor; both prescalers are tried and the one with the strictly smaller
// error wins, the prescaler 4 solution on a tie.
func solveBaud(freq, baud uint32) baudSolution {
	div1, err1 := divisorError(freq, baud, 1)
	div4, err4 := divisorError(freq, baud, 4)
	if mathx.Abs(err1) < mathx.Abs(err4) {
		return baudSolution{divisor: div1, err1000: err1}
	}
	return baudSolution{divisor: div4, div4: true, err1000: err4}
}

func divisorError(freq, baud, prescaler uint32) (uint16, int32) {
	den := baud * 16 * prescaler
	div := mathx.Clamp(mathx.RoundDiv(freq, den), 1, 0xFFFF)
	actual1e5 := int64(freq) * 100000 / int64(div*16*prescaler)
	err := (actual1e5 - int64(baud)*100000) / int64(baud)
	return uint16(div), int32(err)
}

// SetBaudRate programs the divisor latch and clock prescaler of the channel
// for the requested baud rate. The achieved error is retained, see
// BaudRateError. MCR[7] is one of the enhanced-locked bits, so enhanced
// functions must be enabled when calling this outside Init.
func (u *UART) SetBaudRate(baud uint32) error {
	d := u.dev
	sleeping, err := d.IsSleeping(u.ch)
	if err != nil {
		return err
	}
	if sleeping {
		return errcode.Sleeping
	}
	if d.freq < minClockHz {
		return errcode.Frequency
	}
	if !mathx.Between(baud, BaudRateMin, BaudRateMax) {
		return errcode.BaudRate
	}
	if u.irda {
		switch {
		case u.irdaFast && !d.part.HasFastIrDA():
			return errcode.NotSupported
		case u.irdaFast && baud > maxFastIrDABaud:
			return errcode.BaudRate
		case !u.irdaFast && baud > maxIrDABaud:
			return errcode.BaudRate
		}
	}

	sol := solveBaud(d.freq, baud)
	mcr := byte(0)
	if sol.div4 {
		mcr = mcrClockDiv4
	}
	if err := d.ModifyRegister(u.ch, regMCR, mcr, mcrClockDiv4); err != nil {
		return err
	}
	err = d.withRegisterSet(u.ch, specialRegs, func() error {
		if err := d.WriteRegister(u.ch, regDLL, byte(sol.divisor)); err != nil {
			return err
		}
		return d.WriteRegister(u.ch, regDLH, byte(sol.divisor>>8))
	})
	if err != nil {
		return err
	}
	u.baudErr = sol.err1000
	return nil
}

// BaudRateError returns the baud rate error achieved by the last successful
// SetBaudRate, in 1/1000 of a percent. Divide by 1000 to get the error as a
// percentage.
func (u *UART) BaudRateError() int32 { return u.baudErr }
