package sc16is7xx

// registerSet selects one of the three overlapping register banks. The
// special and enhanced sets are reached through LCR and every access is
// bracketed so the device is always left on the general set.
type registerSet uint8

const (
	generalRegs registerSet = iota
	specialRegs
	enhancedRegs
)

// ReadRegister reads a single register of the given UART channel. The
// register index is a general-set index from the datasheet.
func (d *Device) ReadRegister(ch Channel, reg byte) (byte, error) {
	var b [1]byte
	if err := d.tr.Read(cmdByte(ch, reg), b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteRegister writes a single register of the given UART channel.
func (d *Device) WriteRegister(ch Channel, reg byte, v byte) error {
	b := [1]byte{v}
	return d.tr.Write(cmdByte(ch, reg), b[:])
}

// ModifyRegister updates only the mask bits of a register, reading the
// current value first. The read-modify-write is not atomic with respect to
// other bus masters.
func (d *Device) ModifyRegister(ch Channel, reg byte, v byte, mask byte) error {
	cur, err := d.ReadRegister(ch, reg)
	if err != nil {
		return err
	}
	return d.WriteRegister(ch, reg, (cur&^mask)|(v&mask))
}

// withRegisterSet runs fn with the given register set selected, then
// returns the channel to the general set. The saved LCR is restored with
// the divisor latch bit cleared on every exit path, so a failing fn cannot
// strand the device on another set.
func (d *Device) withRegisterSet(ch Channel, set registerSet, fn func() error) error {
	lcr, err := d.ReadRegister(ch, regLCR)
	if err != nil {
		return err
	}
	sel := lcr &^ lcrDivisorLatch
	switch set {
	case specialRegs:
		sel = lcrAccessSpecial
	case enhancedRegs:
		sel = lcrAccessEnhanced
	}
	if err := d.WriteRegister(ch, regLCR, sel); err != nil {
		return err
	}
	ferr := fn()
	rerr := d.WriteRegister(ch, regLCR, lcr&^lcrDivisorLatch)
	if ferr != nil {
		return ferr
	}
	return rerr
}

// enableEnhancedFunctions sets or clears EFR[4], unlocking (or locking)
// IER[7:4], FCR[5:4] and MCR[7:5].
func (d *Device) enableEnhancedFunctions(ch Channel, enable bool) error {
	return d.withRegisterSet(ch, enhancedRegs, func() error {
		v := byte(0)
		if enable {
			v = efrEnhancedEnable
		}
		return d.ModifyRegister(ch, regEFR, v, efrEnhancedEnable)
	})
}
