package sc16is7xx

import (
	"github.com/jangala-dev/tinygo-sc16is7xx/errcode"
	"github.com/jangala-dev/tinygo-sc16is7xx/x/mathx"
)

// Transmit queues as much of p as currently fits and returns the number of
// bytes accepted. With a Tx ring buffer the bytes land in the ring and a
// FIFO-sized chunk is pushed to the device in one burst; without one, p
// goes straight to the FIFO. In SafeTx mode every byte is written through
// its own register access instead, bounded by the free space read first.
// Transmit never blocks waiting for FIFO space.
func (u *UART) Transmit(p []byte) (int, error) {
	sent := 0
	if u.txBuf != nil && !u.safeTx {
		sent = u.txBuf.Write(p)
	}

	space, err := u.TxFIFOSpace()
	if err != nil {
		return sent, err
	}

	if u.safeTx {
		n := mathx.Min(len(p), int(space))
		for i := 0; i < n; i++ {
			if err := u.dev.WriteRegister(u.ch, regTHR, p[i]); err != nil {
				return sent, err
			}
			sent++
		}
		return sent, nil
	}

	if u.txBuf != nil {
		chunk := u.txBuf.Pending()
		n := mathx.Min(len(chunk), int(space))
		if n > 0 {
			if err := u.dev.tr.Write(cmdByte(u.ch, regTHR), chunk[:n]); err != nil {
				return sent, err
			}
			u.txBuf.Release(n)
		}
		return sent, nil
	}

	n := mathx.Min(len(p), int(space))
	if n > 0 {
		if err := u.dev.tr.Write(cmdByte(u.ch, regTHR), p[:n]); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// TransmitByte sends one byte, retrying until it is accepted. It blocks
// while the FIFO (and ring buffer, when present) stay full.
func (u *UART) TransmitByte(b byte) error {
	buf := [1]byte{b}
	for {
		n, err := u.Transmit(buf[:])
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
}

// FlushTxBuffer pushes one chunk of ring-buffered Tx data towards the
// FIFO without accepting new data.
func (u *UART) FlushTxBuffer() error {
	_, err := u.Transmit(nil)
	return err
}

// WaitEndTx blocks until the Tx ring buffer, the Tx FIFO and the transmit
// shift register are all empty. Transient busy errors from the transport
// are tolerated while draining the ring.
func (u *UART) WaitEndTx() error {
	if u.txBuf != nil {
		for !u.txBuf.Empty() {
			if err := u.FlushTxBuffer(); err != nil && errcode.Of(err) != errcode.Busy {
				return err
			}
		}
	}
	for {
		st, err := u.Status()
		if err != nil {
			return err
		}
		if st.TxIdle() {
			return nil
		}
	}
}

// Receive drains ring-buffered and FIFO data into p and returns the number
// of bytes stored. With an Rx ring buffer the ring is drained first, then
// a burst read refills it from the FIFO and it is drained again. In SafeRx
// mode the line status is read before every character; on a reception
// error the count includes the bad character, the RxError describes it and
// the error is errcode.ReceiveError. Receive never blocks waiting for
// data.
func (u *UART) Receive(p []byte) (int, RxError, error) {
	got := 0
	if u.rxBuf != nil && !u.safeRx {
		got = u.rxBuf.Read(p)
		p = p[got:]
	}

	avail, err := u.RxFIFOCount()
	if err != nil {
		return got, 0, err
	}

	if u.safeRx {
		n := mathx.Min(len(p), int(avail))
		for i := 0; i < n; i++ {
			lsr, err := u.dev.ReadRegister(u.ch, regLSR)
			if err != nil {
				return got, 0, err
			}
			rxErr := RxError(lsr & lsrErrorMask)
			b, err := u.dev.ReadRegister(u.ch, regRHR)
			if err != nil {
				return got, rxErr, err
			}
			p[i] = b
			got++
			if rxErr != 0 {
				return got, rxErr, errcode.ReceiveError
			}
		}
		return got, 0, nil
	}

	if u.rxBuf != nil {
		chunk := u.rxBuf.Slots()
		n := mathx.Min(len(chunk), int(avail))
		if n > 0 {
			if err := u.dev.tr.Read(cmdByte(u.ch, regRHR), chunk[:n]); err != nil {
				return got, 0, err
			}
			u.rxBuf.Commit(n)
		}
		got += u.rxBuf.Read(p)
		return got, 0, nil
	}

	n := mathx.Min(len(p), int(avail))
	if n > 0 {
		if err := u.dev.tr.Read(cmdByte(u.ch, regRHR), p[:n]); err != nil {
			return got, 0, err
		}
	}
	return got + n, 0, nil
}

// ReceiveByte returns the next received byte, blocking until one arrives.
// A character received with a line error is still returned, with its
// RxError and errcode.ReceiveError.
func (u *UART) ReceiveByte() (byte, RxError, error) {
	var buf [1]byte
	for {
		n, rxErr, err := u.Receive(buf[:])
		if err != nil {
			return buf[0], rxErr, err
		}
		if n > 0 {
			return buf[0], rxErr, nil
		}
	}
}

// FillRxBuffer moves waiting FIFO data into the Rx ring buffer without
// handing any to the caller, so FIFO overruns can be avoided between
// Receive calls.
func (u *UART) FillRxBuffer() error {
	_, _, err := u.Receive(nil)
	return err
}
