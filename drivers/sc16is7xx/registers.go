// Package sc16is7xx provides a driver for the NXP SC16IS7XX family of
// single/dual UART bridges with I2C-bus or SPI interface (SC16IS740, 741,
// 750, 752, 760 and 762). The chips expose up to two independent UART
// channels, 64-byte Tx/Rx FIFOs, programmable I/O pins and hardware or
// software flow control, all driven through ordinary register reads and
// writes over the control bus.
package sc16is7xx

// Register indexes. The on-wire command byte is built from the register
// index and the UART channel, see cmdByte. Three overlapping register sets
// exist: the general set, the special set (divisor latch, visible while
// LCR[7]=1) and the enhanced set (visible while LCR=0xBF).
const (
	// General register set.
	regRHR   = 0x00 // R,  receive holding register (FIFO out)
	regTHR   = 0x00 // W,  transmit holding register (FIFO in)
	regIER   = 0x01 // R/W, interrupt enable
	regIIR   = 0x02 // R,  interrupt identification
	regFCR   = 0x02 // W,  FIFO control
	regLCR   = 0x03 // R/W, line control
	regMCR   = 0x04 // R/W, modem control
	regLSR   = 0x05 // R,  line status
	regMSR   = 0x06 // R,  modem status
	regTCR   = 0x06 // R/W, transmission control (only while MCR[2]=1 and EFR[4]=1)
	regSPR   = 0x07 // R/W, scratchpad
	regTLR   = 0x07 // R/W, trigger level (only while MCR[2]=1 and EFR[4]=1)
	regTXLVL = 0x08 // R,  transmit FIFO free space
	regRXLVL = 0x09 // R,  receive FIFO fill level

	// I/O pin registers (SC16IS75X/76X only).
	regIODir    = 0x0A // R/W, pin direction
	regIOState  = 0x0B // R/W, pin state
	regIOIntEna = 0x0C // R/W, pin input interrupt enable
	regIOCtrl   = 0x0E // R/W, pin control / software reset

	regEFCR = 0x0F // R/W, extra features control

	// Special register set (LCR[7]=1).
	regDLL = 0x00 // R/W, divisor latch low
	regDLH = 0x01 // R/W, divisor latch high

	// Enhanced register set (LCR=0xBF).
	regEFR   = 0x02 // R/W, enhanced features
	regXon1  = 0x04 // R/W
	regXon2  = 0x05 // R/W
	regXoff1 = 0x06 // R/W
	regXoff2 = 0x07 // R/W, also the special character in special char detect mode
)

// LCR values selecting the non-general register sets.
const (
	lcrAccessSpecial  = 0x80
	lcrAccessEnhanced = 0xBF
)

// IER bits. Bits 4..7 are writable only while EFR[4]=1.
const (
	ierRxFIFO    = 0x01 // receive holding register interrupt
	ierTxFIFO    = 0x02 // transmit holding register interrupt
	ierRxLine    = 0x04 // receive line status interrupt
	ierModemLine = 0x08 // modem status interrupt
	ierSleepMode = 0x10
	ierXoff      = 0x20
	ierRTS       = 0x40
	ierCTS       = 0x80
)

// FCR bits (write only).
const (
	fcrFIFOEnable  = 0x01
	fcrRxFIFOReset = 0x02 // self-clearing
	fcrTxFIFOReset = 0x04 // self-clearing
)

// IIR bits. Bits 7:6 mirror FCR[0].
const (
	iirNoPending   = 0x01
	iirSourceMask  = 0x3E
	iirSourceShift = 1
	iirFIFOEnabled = 0xC0
)

// LCR bits.
const (
	lcrWordLenMask  = 0x03
	lcrExtraStop    = 0x04 // 1.5 stop bits (5-bit words) or 2 stop bits
	lcrParityMask   = 0x38
	lcrParityShift  = 3
	lcrBreak        = 0x40
	lcrDivisorLatch = 0x80
)

// MCR bits. Bits 5..7 are writable only while EFR[4]=1.
const (
	mcrDTR          = 0x01
	mcrRTS          = 0x02
	mcrTCRTLREnable = 0x04
	mcrLoopback     = 0x10
	mcrXonAny       = 0x20
	mcrIrDAEnable   = 0x40
	mcrClockDiv4    = 0x80 // divide the crystal clock by 4 before the baud generator
)

// LSR bits.
const (
	lsrDataReady = 0x01
	lsrOverrun   = 0x02
	lsrParity    = 0x04
	lsrFraming   = 0x08
	lsrBreak     = 0x10
	lsrTHREmpty  = 0x20 // Tx FIFO empty
	lsrTxEmpty   = 0x40 // Tx FIFO and transmit shift register empty
	lsrFIFOError = 0x80 // at least one error anywhere in the Rx FIFO

	lsrErrorMask = lsrOverrun | lsrParity | lsrFraming | lsrBreak
)

// MSR bits. Upper nibble pins are only wired on SC16IS75X/76X parts.
const (
	msrDeltaCTS = 0x01
	msrDeltaDSR = 0x02
	msrDeltaRI  = 0x04
	msrDeltaCD  = 0x08
	msrCTS      = 0x10 // complement of the CTS input
	msrDSR      = 0x20
	msrRI       = 0x40
	msrCD       = 0x80
)

// EFR bits.
const (
	efrSoftFlowMask      = 0x0F
	efrEnhancedEnable    = 0x10 // unlocks IER[7:4], FCR[5:4], MCR[7:5]
	efrSpecialCharDetect = 0x20 // compare received data against Xoff2
	efrAutoRTS           = 0x40
	efrAutoCTS           = 0x80
)

// EFCR bits.
const (
	efcrMode9Bit     = 0x01 // 9-bit / multidrop mode
	efcrRxDisable    = 0x02
	efcrTxDisable    = 0x04
	efcrAutoRS485RTS = 0x10 // transmitter controls the RTS pin
	efcrInvertRTS    = 0x20 // invert RTS polarity in auto RS-485 RTS mode
	efcrIrDAFast     = 0x80 // 1/4 pulse ratio, SC16IS76X only
)

// IOControl bits.
const (
	ioctlInputLatch  = 0x01
	ioctlIO74AsModem = 0x02 // GPIO[7:4] become the channel A modem pins
	ioctlIO30AsModem = 0x04 // GPIO[3:0] become the channel B modem pins
	ioctlSoftReset   = 0x08 // self-clearing, the device may abort the transfer
)
