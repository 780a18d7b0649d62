package flow

import (
	"context"

	"github.com/banclabs/cajero/internal/gateway"
	"github.com/banclabs/cajero/internal/session"
)

// AuthState names the login steps.
type AuthState int

const (
	StateAccountEntry AuthState = iota
	StatePinEntry
	StateAuthenticated
)

const maxAccountDigits = 16

// loginService is the slice of the gateway the login flow needs.
type loginService interface {
	Login(ctx context.Context, accountID, pin string) (gateway.LoginResult, error)
}

// AuthFlow sequences account-number entry, PIN entry and the login call.
// On success it establishes the session identity; on failure it stays in
// PIN entry with the server message and the entered account id retained.
type AuthFlow struct {
	svc     loginService
	session *session.Store

	State   AuthState
	Account string // digit buffer, at most 16
	Pin     PinPad
	ErrMsg  string
	busy    bool
}

func NewAuth(svc loginService, sess *session.Store) *AuthFlow {
	return &AuthFlow{svc: svc, session: sess, State: StateAccountEntry}
}

func (f *AuthFlow) Busy() bool { return f.busy }

// PressAccountDigit appends to the account buffer.
func (f *AuthFlow) PressAccountDigit(r rune) {
	if f.State != StateAccountEntry || f.busy || !isDigit(r) {
		return
	}
	f.ErrMsg = ""
	if len(f.Account) < maxAccountDigits {
		f.Account += string(r)
	}
}

// EraseAccountDigit removes the last digit of the account buffer.
func (f *AuthFlow) EraseAccountDigit() {
	if f.State != StateAccountEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	if len(f.Account) > 0 {
		f.Account = f.Account[:len(f.Account)-1]
	}
}

// ConfirmAccount advances to PIN entry when the account id has at least
// 4 digits, otherwise stays with a validation error.
func (f *AuthFlow) ConfirmAccount() bool {
	if f.State != StateAccountEntry || f.busy {
		return false
	}
	if len(f.Account) < 4 {
		f.ErrMsg = "Ingresa un número de cuenta válido"
		return false
	}
	f.ErrMsg = ""
	f.State = StatePinEntry
	return true
}

// Back returns from PIN entry to account entry, discarding any partially
// entered PIN.
func (f *AuthFlow) Back() {
	if f.State != StatePinEntry || f.busy {
		return
	}
	f.Pin.Reset()
	f.ErrMsg = ""
	f.State = StateAccountEntry
}

func (f *AuthFlow) PressPinDigit(r rune) {
	if f.State != StatePinEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Pin.Press(r)
}

func (f *AuthFlow) ErasePinDigit() {
	if f.State != StatePinEntry || f.busy {
		return
	}
	f.Pin.Backspace()
}

// SubmitPin performs the login call once the pad holds 4 digits.
// Submitting earlier is the non-mutating incomplete signal.
func (f *AuthFlow) SubmitPin(ctx context.Context) SubmitResult {
	if f.State != StatePinEntry || f.busy {
		return SubmitNoop
	}
	if !f.Pin.Full() {
		return SubmitIncomplete
	}
	pin := f.Pin.take()

	f.busy = true
	res, err := f.svc.Login(ctx, f.Account, pin)
	f.busy = false

	if err != nil {
		// Stay in PIN entry; the account id is retained for retry.
		f.ErrMsg = err.Error()
		return SubmitRejected
	}

	f.session.Establish(session.Identity{
		AccountID:     res.AccountID,
		AccountNumber: res.AccountNumber,
		DisplayName:   res.HolderName,
		Token:         res.Token,
	})
	f.ErrMsg = ""
	f.State = StateAuthenticated
	return SubmitOK
}
