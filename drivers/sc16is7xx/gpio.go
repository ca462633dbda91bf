package sc16is7xx

import "github.com/jangala-dev/tinygo-sc16is7xx/errcode"

// The SC16IS75X/76X parts expose up to eight programmable I/O pins shared
// with the modem lines. All pin operations work on 8-bit masks, bit n for
// pin GPIO n. A direction bit of 1 makes the pin an output. Every
// operation returns errcode.NotSupported on parts without I/O pins.
//
// Reading IOState reports the level of input pins but not what the output
// pins were last set to, so the driver keeps a shadow of the driven output
// levels and folds it into every IOState write.

func (d *Device) checkGPIO() error {
	if !d.part.HasGPIO() {
		return errcode.NotSupported
	}
	return nil
}

// ConfigureGPIO sets up all pins at once: direction, initial output levels
// and per-pin input interrupt enables.
func (d *Device) ConfigureGPIO(directions, levels, interruptEnable byte) error {
	if err := d.checkGPIO(); err != nil {
		return err
	}
	if err := d.WriteRegister(ChannelA, regIODir, directions); err != nil {
		return err
	}
	if err := d.WriteRegister(ChannelA, regIOState, levels); err != nil {
		return err
	}
	d.ioShadow = levels
	return d.WriteRegister(ChannelA, regIOIntEna, interruptEnable)
}

// SetPinDirections changes the direction of the pins selected by mask.
func (d *Device) SetPinDirections(directions, mask byte) error {
	if err := d.checkGPIO(); err != nil {
		return err
	}
	return d.ModifyRegister(ChannelA, regIODir, directions, mask)
}

// PinInputLevels returns the sampled level of the input pins.
func (d *Device) PinInputLevels() (byte, error) {
	if err := d.checkGPIO(); err != nil {
		return 0, err
	}
	return d.ReadRegister(ChannelA, regIOState)
}

// SetPinOutputLevels drives the output pins selected by mask. Pins outside
// the mask keep their previously driven level.
func (d *Device) SetPinOutputLevels(levels, mask byte) error {
	if err := d.checkGPIO(); err != nil {
		return err
	}
	d.ioShadow = d.ioShadow&^mask | levels&mask
	return d.WriteRegister(ChannelA, regIOState, d.ioShadow)
}

// OutputLevels returns the driven output levels from the shadow copy.
func (d *Device) OutputLevels() byte { return d.ioShadow }

// SetPinInterrupts enables or disables the input change interrupt for the
// pins selected by mask.
func (d *Device) SetPinInterrupts(enable, mask byte) error {
	if err := d.checkGPIO(); err != nil {
		return err
	}
	return d.ModifyRegister(ChannelA, regIOIntEna, enable, mask)
}

// SetInputLatch latches input levels until IOState is read, so short
// pulses are not missed between polls.
func (d *Device) SetInputLatch(enable bool) error {
	if err := d.checkGPIO(); err != nil {
		return err
	}
	v := byte(0)
	if enable {
		v = ioctlInputLatch
	}
	return d.ModifyRegister(ChannelA, regIOCtrl, v, ioctlInputLatch)
}
