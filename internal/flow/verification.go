package flow

import (
	"context"
	"regexp"

	"github.com/banclabs/cajero/internal/gateway"
)

// CodeLength is the exact size of an email verification code.
const CodeLength = 6

// ResendCooldownSeconds is the wait imposed after a successful resend.
const ResendCooldownSeconds = 60

// accountNumberRe extracts the account number the backend embeds in its
// activation message. A missing match is still a valid success; the
// number is simply not displayable. TODO: drop this once the backend
// returns the account number as a structured field.
var accountNumberRe = regexp.MustCompile(`N°\s*(\d+)`)

type verifyService interface {
	VerifyEmail(ctx context.Context, email, code string) (gateway.MessageResult, error)
	ResendCode(ctx context.Context, email string) (gateway.MessageResult, error)
}

// VerificationFlow owns the six code slots, the focus index, and the
// resend cooldown. It is terminal once Activated.
type VerificationFlow struct {
	svc verifyService

	Email         string
	ServerMessage string // message carried over from registration
	Digits        [CodeLength]rune
	Focus         int
	Cooldown      int // seconds until resend is enabled again
	ErrMsg        string

	Activated     bool
	AccountNumber string // best-effort, may stay empty on success

	busy bool
}

// NewVerification starts the sub-flow for the given address. An empty
// email is tolerated; submits then degrade to an inline message instead
// of a hard failure.
func NewVerification(svc verifyService, email, serverMessage string) *VerificationFlow {
	return &VerificationFlow{svc: svc, Email: email, ServerMessage: serverMessage}
}

func (f *VerificationFlow) Busy() bool { return f.busy }

// Code joins the filled slots.
func (f *VerificationFlow) Code() string {
	out := make([]rune, 0, CodeLength)
	for _, r := range f.Digits {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

func (f *VerificationFlow) full() bool {
	for _, r := range f.Digits {
		if r == 0 {
			return false
		}
	}
	return true
}

// SetDigit fills slot i and advances focus. Filling the last slot with
// all six non-empty triggers the auto-submit.
func (f *VerificationFlow) SetDigit(ctx context.Context, i int, r rune) SubmitResult {
	if f.busy || f.Activated || i < 0 || i >= CodeLength || !isDigit(r) {
		return SubmitNoop
	}
	f.Digits[i] = r
	f.ErrMsg = ""
	if i < CodeLength-1 {
		f.Focus = i + 1
		return SubmitOK
	}
	if f.full() {
		return f.submit(ctx)
	}
	return SubmitOK
}

// ClearDigit empties slot i and moves focus there.
func (f *VerificationFlow) ClearDigit(i int) {
	if f.busy || f.Activated || i < 0 || i >= CodeLength {
		return
	}
	f.Digits[i] = 0
	f.Focus = i
}

// Paste fills the slots from a pasted string: non-digits stripped,
// truncated to six, filled from slot 0. Exactly six digits trigger a
// single auto-submit.
func (f *VerificationFlow) Paste(ctx context.Context, s string) SubmitResult {
	if f.busy || f.Activated {
		return SubmitNoop
	}
	digits := digitsOnly(s)
	if len(digits) > CodeLength {
		digits = digits[:CodeLength]
	}
	f.Digits = [CodeLength]rune{}
	for i, r := range digits {
		f.Digits[i] = r
	}
	f.ErrMsg = ""
	f.Focus = len(digits)
	if f.Focus > CodeLength-1 {
		f.Focus = CodeLength - 1
	}
	if len(digits) == CodeLength {
		return f.submit(ctx)
	}
	return SubmitOK
}

// Submit is the manual verify button.
func (f *VerificationFlow) Submit(ctx context.Context) SubmitResult {
	if f.busy || f.Activated {
		return SubmitNoop
	}
	return f.submit(ctx)
}

func (f *VerificationFlow) submit(ctx context.Context) SubmitResult {
	if !f.full() {
		f.ErrMsg = "Ingresa los 6 dígitos del código"
		return SubmitRejected
	}
	if f.Email == "" {
		// Upstream data went missing; degrade to an inline message.
		f.ErrMsg = "Correo no encontrado. Vuelve a registrarte."
		return SubmitRejected
	}

	code := f.Code()
	f.busy = true
	res, err := f.svc.VerifyEmail(ctx, f.Email, code)
	f.busy = false

	if err != nil {
		f.Digits = [CodeLength]rune{}
		f.Focus = 0
		f.ErrMsg = err.Error()
		return SubmitRejected
	}

	if m := accountNumberRe.FindStringSubmatch(res.Message); m != nil {
		f.AccountNumber = m[1]
	}
	f.ErrMsg = ""
	f.Activated = true
	return SubmitOK
}

// Resend asks for a fresh code. It is a no-op while the cooldown runs,
// while a call is in flight, or without an email. Success arms the
// 60-second cooldown and clears the slots for the new code.
func (f *VerificationFlow) Resend(ctx context.Context) SubmitResult {
	if f.busy || f.Activated || f.Cooldown > 0 || f.Email == "" {
		return SubmitNoop
	}
	f.busy = true
	_, err := f.svc.ResendCode(ctx, f.Email)
	f.busy = false

	if err != nil {
		f.ErrMsg = err.Error()
		return SubmitRejected
	}
	f.Cooldown = ResendCooldownSeconds
	f.Digits = [CodeLength]rune{}
	f.Focus = 0
	f.ErrMsg = ""
	return SubmitOK
}

// Tick decrements the resend cooldown by one second; the caller drives
// it from a 1 s ticker.
func (f *VerificationFlow) Tick() {
	if f.Cooldown > 0 {
		f.Cooldown--
	}
}
