package flow

import (
	"context"

	"github.com/banclabs/cajero/internal/gateway"
)

// PinChangeState names the PIN change steps.
type PinChangeState int

const (
	StateCurrentPin PinChangeState = iota
	StateNewPin
	StateConfirmPin
	StatePinChanged
)

type changePinService interface {
	ChangePin(ctx context.Context, currentPin, newPin string) (gateway.MessageResult, error)
}

// PinChangeFlow captures the current PIN, the new PIN and its
// confirmation on one shared pad. Nothing is checked against the server
// until the final submit. A confirmation mismatch drops only the new
// PIN; a server rejection drops everything and restarts at CurrentPin.
type PinChangeFlow struct {
	svc changePinService

	State   PinChangeState
	Pad     PinPad
	current string
	next    string
	ErrMsg  string
	Message string // server message once changed

	busy bool
}

func NewPinChange(svc changePinService) *PinChangeFlow {
	return &PinChangeFlow{svc: svc, State: StateCurrentPin}
}

func (f *PinChangeFlow) Busy() bool { return f.busy }

func (f *PinChangeFlow) PressDigit(r rune) {
	if f.State == StatePinChanged || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Pad.Press(r)
}

func (f *PinChangeFlow) EraseDigit() {
	if f.State == StatePinChanged || f.busy {
		return
	}
	f.Pad.Backspace()
}

// Submit advances whichever step the flow is on. The first two steps
// capture unconditionally; the third reconciles and performs the call.
func (f *PinChangeFlow) Submit(ctx context.Context) SubmitResult {
	if f.busy {
		return SubmitNoop
	}
	switch f.State {
	case StateCurrentPin:
		if !f.Pad.Full() {
			return SubmitIncomplete
		}
		f.current = f.Pad.take()
		f.ErrMsg = ""
		f.State = StateNewPin
		return SubmitOK

	case StateNewPin:
		if !f.Pad.Full() {
			return SubmitIncomplete
		}
		f.next = f.Pad.take()
		f.ErrMsg = ""
		f.State = StateConfirmPin
		return SubmitOK

	case StateConfirmPin:
		if !f.Pad.Full() {
			return SubmitIncomplete
		}
		confirmed := f.Pad.take()
		if confirmed != f.next {
			// The current PIN stays captured; only the new one is
			// distrusted after a mismatch.
			f.next = ""
			f.ErrMsg = "Los PINs no coinciden, intenta de nuevo"
			f.State = StateNewPin
			return SubmitRejected
		}

		f.busy = true
		res, err := f.svc.ChangePin(ctx, f.current, f.next)
		f.busy = false

		if err != nil {
			f.current = ""
			f.next = ""
			f.ErrMsg = err.Error()
			f.State = StateCurrentPin
			return SubmitRejected
		}
		f.current = ""
		f.next = ""
		f.ErrMsg = ""
		f.Message = res.Message
		f.State = StatePinChanged
		return SubmitOK

	default:
		return SubmitNoop
	}
}
