package sc16is7xx

import (
	"testing"

	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
)

func TestFlowLevel(t *testing.T) {
	for _, l := range []FlowLevel{0, 4, 32, 60} {
		if !l.valid() {
			t.Errorf("FlowLevel(%d).valid() = false", l)
		}
	}
	for _, l := range []FlowLevel{1, 3, 61, 64, 255} {
		if l.valid() {
			t.Errorf("FlowLevel(%d).valid() = true", l)
		}
	}
	if FlowLevel(48).nibble() != 12 {
		t.Error("nibble conversion wrong")
	}
}

func TestSoftFlowModeUsesXoff2(t *testing.T) {
	for _, m := range []SoftFlowMode{SoftFlowTxNoneRx2, SoftFlowTx2RxNone, SoftFlowTxBothRxBoth, SoftFlowTx1RxEither} {
		if !m.usesXoff2() {
			t.Errorf("%04b should use Xoff2", m)
		}
	}
	for _, m := range []SoftFlowMode{SoftFlowTxNoneRxNone, SoftFlowTx1Rx1} {
		if m.usesXoff2() {
			t.Errorf("%04b should not use Xoff2", m)
		}
	}
}

func TestValidateFlowControl(t *testing.T) {
	hard := &HardwareFlow{HoldAt: 48, ResumeAt: 24}
	soft := &SoftwareFlow{HoldAt: 48, ResumeAt: 24, Mode: SoftFlowTx1Rx1}
	special := true

	cases := []struct {
		name           string
		hard           *HardwareFlow
		soft           *SoftwareFlow
		useSpecial     bool
		useAddressChar bool
		want           errcode.Code
	}{
		{"none", nil, nil, false, false, errcode.OK},
		{"hard ok", hard, nil, false, false, errcode.OK},
		{"soft ok", nil, soft, false, false, errcode.OK},
		{"both kinds", hard, soft, false, false, errcode.Configuration},
		{"special and address", nil, nil, special, true, errcode.Configuration},
		{"soft xoff2 and special", nil, &SoftwareFlow{HoldAt: 48, ResumeAt: 24, Mode: SoftFlowTx2Rx2}, special, false, errcode.Configuration},
		{"bad hold level", &HardwareFlow{HoldAt: 47, ResumeAt: 24}, nil, false, false, errcode.InvalidParams},
		{"bad resume level", &HardwareFlow{HoldAt: 48, ResumeAt: 61}, nil, false, false, errcode.InvalidParams},
		{"hold not above resume", &HardwareFlow{HoldAt: 24, ResumeAt: 24}, nil, false, false, errcode.Configuration},
		{"hold below resume", nil, &SoftwareFlow{HoldAt: 8, ResumeAt: 16}, false, false, errcode.Configuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFlowControl(tc.hard, tc.soft, tc.useSpecial, tc.useAddressChar)
			if got := errcode.Of(err); got != tc.want {
				t.Fatalf("validateFlowControl = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConfigureFlowControlRejectsWithoutWrites(t *testing.T) {
	u, chip := newTestUART(t, SC16IS750, 1_843_200)
	bad := &HardwareFlow{HoldAt: 8, ResumeAt: 16}
	if got := errcode.Of(u.configureFlowControl(bad, nil, nil, false)); got != errcode.Configuration {
		t.Fatalf("configureFlowControl = %v, want configuration", got)
	}
	if len(chip.log) != 0 {
		t.Fatalf("registers touched by rejected configuration: %v", chip.log)
	}
}

func TestConfigureFlowControlHardware(t *testing.T) {
	u, chip := newTestUART(t, SC16IS750, 1_843_200)
	hard := &HardwareFlow{
		HoldAt:        48,
		ResumeAt:      24,
		RTSPinControl: AutomaticPinControl,
		CTSPinControl: AutomaticPinControl,
	}
	if err := u.configureFlowControl(hard, nil, nil, false); err != nil {
		t.Fatalf("configureFlowControl: %v", err)
	}
	// TCR holds the halt level in the low nibble, resume in the high one.
	if got := chip.general[0][regTCR]; got != 12|6<<4 {
		t.Fatalf("TCR = %#02x", got)
	}
	want := byte(efrEnhancedEnable | efrAutoRTS | efrAutoCTS)
	if got := chip.enhanced[0][regEFR]; got != want {
		t.Fatalf("EFR = %#02x, want %#02x", got, want)
	}
	if chip.general[0][regLCR]&lcrDivisorLatch != 0 {
		t.Error("left on the enhanced register set")
	}
}

func TestConfigureFlowControlSoftware(t *testing.T) {
	u, chip := newTestUART(t, SC16IS752, 1_843_200)
	soft := &SoftwareFlow{
		HoldAt:     32,
		ResumeAt:   16,
		Mode:       SoftFlowTx1Rx1,
		Xon1:       0x11,
		Xoff1:      0x13,
		XonAnyChar: true,
	}
	if err := u.configureFlowControl(nil, soft, nil, false); err != nil {
		t.Fatalf("configureFlowControl: %v", err)
	}
	if got := chip.enhanced[0][regXon1]; got != 0x11 {
		t.Fatalf("Xon1 = %#02x", got)
	}
	if got := chip.enhanced[0][regXoff1]; got != 0x13 {
		t.Fatalf("Xoff1 = %#02x", got)
	}
	want := byte(efrEnhancedEnable) | byte(SoftFlowTx1Rx1)
	if got := chip.enhanced[0][regEFR]; got != want {
		t.Fatalf("EFR = %#02x, want %#02x", got, want)
	}
	if chip.general[0][regMCR]&mcrXonAny == 0 {
		t.Error("Xon-Any bit not set")
	}
}

func TestConfigureFlowControlSpecialChar(t *testing.T) {
	u, chip := newTestUART(t, SC16IS750, 1_843_200)
	ch := byte(0x7E)
	soft := &SoftwareFlow{HoldAt: 32, ResumeAt: 16, Mode: SoftFlowTx1Rx1, Xoff2: 0x55}
	if err := u.configureFlowControl(nil, soft, &ch, false); err != nil {
		t.Fatalf("configureFlowControl: %v", err)
	}
	// The special character owns Xoff2; the flow value must not be there.
	if got := chip.enhanced[0][regXoff2]; got != 0x7E {
		t.Fatalf("Xoff2 = %#02x, want the special character", got)
	}
	if chip.enhanced[0][regEFR]&efrSpecialCharDetect == 0 {
		t.Error("special character detection not enabled")
	}
}

func TestConfigureFlowControlDisable(t *testing.T) {
	u, chip := newTestUART(t, SC16IS750, 1_843_200)
	chip.general[0][regMCR] = mcrXonAny
	if err := u.configureFlowControl(nil, nil, nil, false); err != nil {
		t.Fatalf("configureFlowControl: %v", err)
	}
	if got := chip.enhanced[0][regEFR]; got != efrEnhancedEnable {
		t.Fatalf("EFR = %#02x, want only the enhanced enable bit", got)
	}
	if chip.general[0][regMCR]&mcrXonAny != 0 {
		t.Error("Xon-Any bit not cleared")
	}
}
