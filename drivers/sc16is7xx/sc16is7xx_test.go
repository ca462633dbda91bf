package sc16is7xx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
)

// fakeChip models the register banks, bank switching and loopback data
// path of the device well enough to drive the full init and transfer
// paths. Every register access is appended to log in the form
// "W0 G03=bf" (write, channel 0, general register 0x03, value 0xBF) so
// tests can assert ordering.
type fakeChip struct {
	general  [2][16]byte
	special  [2][2]byte
	enhanced [2][8]byte
	rxfifo   [2][]byte
	log      []string
	calls    int // transport Write/Read invocations

	stuckSPR bool // scratchpad ignores writes
	flipLoop byte // XORed into loopback data
	rxLSR    byte // extra LSR bits reported while Rx data waits
	irq      byte // pending IIR source bits; zero reads as nothing pending
	probeErr error
	failOn   string // fail the access whose log entry starts with this
	failErr  error
}

var _ Transport = (*fakeChip)(nil)

func newFakeChip() *fakeChip { return &fakeChip{} }

func (c *fakeChip) bank(ch int, reg byte) string {
	lcr := c.general[ch][regLCR]
	switch {
	case lcr == lcrAccessEnhanced && (reg == regEFR || reg >= regXon1 && reg <= regXoff2):
		return "E"
	case lcr != lcrAccessEnhanced && lcr&lcrDivisorLatch != 0 && reg <= regDLH:
		return "S"
	}
	return "G"
}

func (c *fakeChip) record(op string, ch int, bank string, reg, v byte) error {
	entry := fmt.Sprintf("%s%d %s%02x=%02x", op, ch, bank, reg, v)
	c.log = append(c.log, entry)
	if c.failOn != "" && strings.HasPrefix(entry, c.failOn) {
		if c.failErr != nil {
			return c.failErr
		}
		return errcode.Error
	}
	return nil
}

func (c *fakeChip) Probe() error { return c.probeErr }

func (c *fakeChip) Write(cmd byte, p []byte) error {
	c.calls++
	ch := int(cmd >> 1 & 0x03)
	reg := cmd >> 3
	for _, v := range p {
		bank := c.bank(ch, reg)
		if err := c.record("W", ch, bank, reg, v); err != nil {
			return err
		}
		switch bank {
		case "S":
			c.special[ch][reg] = v
		case "E":
			c.enhanced[ch][reg] = v
		default:
			c.writeGeneral(ch, reg, v)
		}
	}
	return nil
}

// The I/O pin registers exist once per device, both channel addresses in
// the command byte reach the same storage.
func devReg(reg byte) bool { return reg >= regIODir && reg <= regIOCtrl }

func (c *fakeChip) writeGeneral(ch int, reg, v byte) {
	if devReg(reg) {
		ch = 0
	}
	switch reg {
	case regFCR:
		// Write-only; IIR[7:6] mirrors the FIFO enable bit.
		mirror := byte(0)
		if v&fcrFIFOEnable != 0 {
			mirror = iirFIFOEnabled
		}
		c.general[ch][regIIR] = c.general[ch][regIIR]&^byte(iirFIFOEnabled) | mirror
		if v&fcrRxFIFOReset != 0 {
			c.rxfifo[ch] = nil
		}
	case regTHR:
		if c.general[ch][regMCR]&mcrLoopback != 0 {
			c.rxfifo[ch] = append(c.rxfifo[ch], v^c.flipLoop)
		}
	case regSPR:
		if !c.stuckSPR {
			c.general[ch][reg] = v
		}
	default:
		c.general[ch][reg] = v
	}
}

func (c *fakeChip) Read(cmd byte, p []byte) error {
	c.calls++
	ch := int(cmd >> 1 & 0x03)
	reg := cmd >> 3
	for i := range p {
		bank := c.bank(ch, reg)
		var v byte
		switch {
		case bank == "S":
			v = c.special[ch][reg]
		case bank == "E":
			v = c.enhanced[ch][reg]
		case reg == regRHR:
			if len(c.rxfifo[ch]) > 0 {
				v = c.rxfifo[ch][0]
				c.rxfifo[ch] = c.rxfifo[ch][1:]
			}
		case reg == regRXLVL:
			v = byte(len(c.rxfifo[ch]))
		case reg == regTXLVL:
			v = FIFOSize
		case reg == regLSR:
			v = lsrTHREmpty | lsrTxEmpty
			if len(c.rxfifo[ch]) > 0 {
				v |= lsrDataReady | c.rxLSR
			}
		case reg == regIIR:
			v = c.general[ch][regIIR] | iirNoPending
			if c.irq != 0 {
				v = c.general[ch][regIIR]&byte(iirFIFOEnabled) | c.irq<<iirSourceShift
			}
		case reg == regMSR:
			v = c.general[ch][regMSR]
			c.general[ch][regMSR] &^= msrDeltaCTS | msrDeltaDSR | msrDeltaRI | msrDeltaCD
		case devReg(reg):
			v = c.general[0][reg]
		default:
			v = c.general[ch][reg]
		}
		if err := c.record("R", ch, bank, reg, v); err != nil {
			return err
		}
		p[i] = v
	}
	return nil
}

// find returns the index of the first log entry with the given prefix, or
// -1.
func (c *fakeChip) find(prefix string) int {
	for i, e := range c.log {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

func newTestDevice(t *testing.T, part PartNumber, freq uint32) (*Device, *fakeChip) {
	t.Helper()
	chip := newFakeChip()
	dev, err := New(chip, Config{Part: part, XtalFreq: freq})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dev, chip
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want errcode.Code
	}{
		{"default", DefaultConfig(), errcode.OK},
		{"ok xtal", Config{Part: SC16IS752, XtalFreq: 1_843_200}, errcode.OK},
		{"ok osc", Config{Part: SC16IS740, OscFreq: 80_000_000}, errcode.OK},
		{"no clock", Config{Part: SC16IS750}, errcode.Configuration},
		{"both clocks", Config{Part: SC16IS750, XtalFreq: 1, OscFreq: 1}, errcode.Configuration},
		{"xtal too fast", Config{Part: SC16IS750, XtalFreq: 24_000_001}, errcode.Frequency},
		{"osc too fast", Config{Part: SC16IS750, OscFreq: 80_000_001}, errcode.Frequency},
		{"bad part", Config{Part: PartNumber(99), XtalFreq: 1_843_200}, errcode.UnknownDevice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errcode.Of(tc.cfg.Validate()); got != tc.want {
				t.Fatalf("Validate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeviceInit(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS750, 1_843_200)
	if err := dev.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if i := chip.find("W0 G0e=08"); i < 0 {
		t.Error("soft reset write missing")
	}
	// Scratch test wrote and read back both patterns.
	if chip.find("W0 G07=55") < 0 || chip.find("W0 G07=aa") < 0 {
		t.Errorf("scratch patterns not written, log: %v", chip.log)
	}
}

func TestDeviceInitProbeFails(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS750, 1_843_200)
	chip.probeErr = errcode.NotReady
	if got := errcode.Of(dev.Init()); got != errcode.NotReady {
		t.Fatalf("Init = %v, want not_ready", got)
	}
	if len(chip.log) != 0 {
		t.Errorf("registers touched after failed probe: %v", chip.log)
	}
}

func TestSoftResetToleratesDataNACK(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS750, 1_843_200)
	chip.failOn = "W0 G0e"
	chip.failErr = errcode.InvalidAddress
	if err := dev.SoftReset(); err != nil {
		t.Fatalf("SoftReset: %v", err)
	}
	chip.failErr = errcode.NotReady
	if got := errcode.Of(dev.SoftReset()); got != errcode.NotReady {
		t.Fatalf("SoftReset = %v, want not_ready", got)
	}
}

func TestCommTestMismatch(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS750, 1_843_200)
	chip.stuckSPR = true
	if got := errcode.Of(dev.CommTest()); got != errcode.BadData {
		t.Fatalf("CommTest on stuck scratchpad = %v, want bad_data", got)
	}
	// Init maps the same failure to NoDevice, keeping the cause wrapped.
	err := dev.Init()
	if got := errcode.Of(err); got != errcode.NoDevice {
		t.Fatalf("Init on stuck scratchpad = %v, want no_device", got)
	}
	var e *errcode.E
	if !errors.As(err, &e) {
		t.Fatalf("Init error %T does not carry context", err)
	}
	if e.Op != "init" || errcode.Of(e.Err) != errcode.BadData {
		t.Fatalf("wrapped error = op %q cause %v, want init/bad_data", e.Op, e.Err)
	}
}

func TestSetSleep(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS762, 1_843_200)
	if err := dev.SetSleep(ChannelB, true); err != nil {
		t.Fatalf("SetSleep: %v", err)
	}
	if chip.general[1][regIER]&ierSleepMode == 0 {
		t.Error("sleep bit not set in IER")
	}
	// Enhanced functions were enabled around the IER write and the bank
	// returned to general.
	if chip.find("W1 E02=10") < 0 {
		t.Errorf("EFR enhanced enable missing, log: %v", chip.log)
	}
	if chip.general[1][regLCR]&lcrDivisorLatch != 0 {
		t.Error("left on a non-general register set")
	}
	sleeping, err := dev.IsSleeping(ChannelB)
	if err != nil || !sleeping {
		t.Fatalf("IsSleeping = %v, %v", sleeping, err)
	}
	if err := dev.SetSleep(ChannelB, false); err != nil {
		t.Fatalf("SetSleep(false): %v", err)
	}
	sleeping, _ = dev.IsSleeping(ChannelB)
	if sleeping {
		t.Error("still sleeping after wake")
	}
}

func TestIORegistersDeviceWide(t *testing.T) {
	dev, chip := newTestDevice(t, SC16IS752, 1_843_200)
	// IOControl is one register; addressing it through either channel's
	// command byte must hit the same bits.
	if err := dev.WriteRegister(ChannelB, regIOCtrl, ioctlIO30AsModem); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	got, err := dev.ReadRegister(ChannelA, regIOCtrl)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if got != ioctlIO30AsModem {
		t.Fatalf("IOControl via channel A = %#02x, want %#02x", got, ioctlIO30AsModem)
	}
	if chip.general[1][regIOCtrl] != 0 {
		t.Error("channel B copy of a device register must stay unused")
	}
}

func TestNewUARTChannelCheck(t *testing.T) {
	dev, _ := newTestDevice(t, SC16IS750, 1_843_200)
	if _, err := NewUART(dev, ChannelB, UARTOptions{}); errcode.Of(err) != errcode.UnknownChannel {
		t.Fatalf("channel B on a single UART part: %v", err)
	}
	dual, _ := newTestDevice(t, SC16IS752, 1_843_200)
	if _, err := NewUART(dual, ChannelB, UARTOptions{}); err != nil {
		t.Fatalf("channel B on a dual UART part: %v", err)
	}
}

func TestPartCapabilities(t *testing.T) {
	if SC16IS740.HasGPIO() || SC16IS741.HasGPIO() {
		t.Error("74X parts have no I/O pins")
	}
	if !SC16IS750.HasGPIO() || !SC16IS762.HasGPIO() {
		t.Error("75X/76X parts have I/O pins")
	}
	if SC16IS750.HasFastIrDA() || !SC16IS760.HasFastIrDA() {
		t.Error("fast IrDA is SC16IS76X only")
	}
	if SC16IS752.UARTCount() != 2 || SC16IS760.UARTCount() != 1 {
		t.Error("wrong UART count")
	}
	if SC16IS760.MaxSPIHz() != 15_000_000 || SC16IS750.MaxSPIHz() != 4_000_000 {
		t.Error("wrong SPI clock limit")
	}
}
