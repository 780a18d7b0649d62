package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/banclabs/cajero/internal/gateway"
)

type fakeVerify struct {
	verifyCalls int
	resendCalls int
	lastCode    string
	verifyRes   gateway.MessageResult
	verifyErr   error
	resendErr   error
}

func (s *fakeVerify) VerifyEmail(ctx context.Context, email, code string) (gateway.MessageResult, error) {
	s.verifyCalls++
	s.lastCode = code
	return s.verifyRes, s.verifyErr
}

func (s *fakeVerify) ResendCode(ctx context.Context, email string) (gateway.MessageResult, error) {
	s.resendCalls++
	return gateway.MessageResult{Message: "Código reenviado. Revisa tu correo."}, s.resendErr
}

func TestVerificationAutoSubmitOnLastSlot(t *testing.T) {
	svc := &fakeVerify{verifyRes: gateway.MessageResult{Message: "¡Cuenta activada! Tu número de cuenta es N°1000000007"}}
	f := NewVerification(svc, "ana@example.com", "")

	ctx := context.Background()
	for i, r := range "12345" {
		if got := f.SetDigit(ctx, i, r); got != SubmitOK {
			t.Fatalf("SetDigit(%d) = %v", i, got)
		}
		if svc.verifyCalls != 0 {
			t.Fatal("submitted before the last slot")
		}
	}
	if f.Focus != 5 {
		t.Fatalf("focus = %d, want advanced to last slot", f.Focus)
	}

	if got := f.SetDigit(ctx, 5, '6'); got != SubmitOK {
		t.Fatalf("last SetDigit = %v", got)
	}
	if svc.verifyCalls != 1 {
		t.Fatalf("verify calls = %d, want exactly one auto-submit", svc.verifyCalls)
	}
	if svc.lastCode != "123456" {
		t.Fatalf("submitted code = %q", svc.lastCode)
	}
	if !f.Activated {
		t.Fatal("not activated after success")
	}
	if f.AccountNumber != "1000000007" {
		t.Fatalf("extracted account number = %q", f.AccountNumber)
	}
}

func TestVerificationLastSlotWithGapDoesNotSubmit(t *testing.T) {
	svc := &fakeVerify{}
	f := NewVerification(svc, "ana@example.com", "")
	ctx := context.Background()
	// slot 2 left empty
	f.SetDigit(ctx, 0, '1')
	f.SetDigit(ctx, 1, '2')
	f.SetDigit(ctx, 3, '4')
	f.SetDigit(ctx, 4, '5')
	if got := f.SetDigit(ctx, 5, '6'); got != SubmitOK {
		t.Fatalf("SetDigit = %v", got)
	}
	if svc.verifyCalls != 0 {
		t.Fatal("submitted with a gap in the code")
	}
}

func TestVerificationPaste(t *testing.T) {
	tests := []struct {
		name      string
		paste     string
		wantCalls int
		wantCode  string
		wantFocus int
	}{
		{name: "exact six digits", paste: "123456", wantCalls: 1, wantCode: "123456", wantFocus: 5},
		{name: "noise stripped", paste: " 12-34 56\n", wantCalls: 1, wantCode: "123456", wantFocus: 5},
		{name: "longer than six truncates", paste: "1234567890", wantCalls: 1, wantCode: "123456", wantFocus: 5},
		{name: "short paste no submit", paste: "123", wantCalls: 0, wantCode: "123", wantFocus: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeVerify{verifyRes: gateway.MessageResult{Message: "ok"}}
			f := NewVerification(svc, "ana@example.com", "")
			f.Paste(context.Background(), tt.paste)
			if svc.verifyCalls != tt.wantCalls {
				t.Fatalf("verify calls = %d, want %d", svc.verifyCalls, tt.wantCalls)
			}
			if tt.wantCalls == 1 && svc.lastCode != tt.wantCode {
				t.Fatalf("code = %q, want %q", svc.lastCode, tt.wantCode)
			}
			if tt.wantCalls == 0 && f.Code() != tt.wantCode {
				t.Fatalf("slots = %q, want %q", f.Code(), tt.wantCode)
			}
			if f.Focus != tt.wantFocus {
				t.Fatalf("focus = %d, want %d", f.Focus, tt.wantFocus)
			}
		})
	}
}

func TestVerificationIncompleteSubmit(t *testing.T) {
	svc := &fakeVerify{}
	f := NewVerification(svc, "ana@example.com", "")
	f.Paste(context.Background(), "123")

	if got := f.Submit(context.Background()); got != SubmitRejected {
		t.Fatalf("submit = %v", got)
	}
	if f.ErrMsg != "Ingresa los 6 dígitos del código" {
		t.Fatalf("ErrMsg = %q", f.ErrMsg)
	}
	if svc.verifyCalls != 0 {
		t.Fatal("called backend with incomplete code")
	}
}

func TestVerificationMissingEmailDegrades(t *testing.T) {
	svc := &fakeVerify{}
	f := NewVerification(svc, "", "")
	if got := f.Paste(context.Background(), "123456"); got != SubmitRejected {
		t.Fatalf("submit = %v", got)
	}
	if f.ErrMsg != "Correo no encontrado. Vuelve a registrarte." {
		t.Fatalf("ErrMsg = %q", f.ErrMsg)
	}
	if svc.verifyCalls != 0 {
		t.Fatal("called backend without an email")
	}
}

func TestVerificationFailureClearsSlots(t *testing.T) {
	svc := &fakeVerify{verifyErr: errors.New("Código inválido o vencido")}
	f := NewVerification(svc, "ana@example.com", "")

	if got := f.Paste(context.Background(), "123456"); got != SubmitRejected {
		t.Fatalf("submit = %v", got)
	}
	if f.Code() != "" {
		t.Fatalf("slots = %q, want cleared", f.Code())
	}
	if f.Focus != 0 {
		t.Fatalf("focus = %d, want 0", f.Focus)
	}
	if f.ErrMsg != "Código inválido o vencido" {
		t.Fatalf("ErrMsg = %q", f.ErrMsg)
	}
	if f.Activated {
		t.Fatal("activated on failure")
	}
}

func TestVerificationSuccessWithoutAccountNumber(t *testing.T) {
	svc := &fakeVerify{verifyRes: gateway.MessageResult{Message: "Cuenta activada"}}
	f := NewVerification(svc, "ana@example.com", "")
	if got := f.Paste(context.Background(), "123456"); got != SubmitOK {
		t.Fatalf("submit = %v", got)
	}
	if !f.Activated {
		t.Fatal("success without embedded number must still activate")
	}
	if f.AccountNumber != "" {
		t.Fatalf("account number = %q, want empty", f.AccountNumber)
	}
}

func TestVerificationResendCooldown(t *testing.T) {
	svc := &fakeVerify{}
	f := NewVerification(svc, "ana@example.com", "")
	f.Paste(context.Background(), "12")

	if got := f.Resend(context.Background()); got != SubmitOK {
		t.Fatalf("resend = %v", got)
	}
	if f.Cooldown != ResendCooldownSeconds {
		t.Fatalf("cooldown = %d, want %d", f.Cooldown, ResendCooldownSeconds)
	}
	if f.Code() != "" {
		t.Fatal("slots kept after resend")
	}

	if got := f.Resend(context.Background()); got != SubmitNoop {
		t.Fatalf("resend during cooldown = %v, want noop", got)
	}
	if svc.resendCalls != 1 {
		t.Fatalf("resend calls = %d, want 1", svc.resendCalls)
	}

	for i := 0; i < ResendCooldownSeconds; i++ {
		f.Tick()
	}
	if f.Cooldown != 0 {
		t.Fatalf("cooldown = %d after %d ticks", f.Cooldown, ResendCooldownSeconds)
	}
	f.Tick() // must not go negative
	if f.Cooldown != 0 {
		t.Fatalf("cooldown went negative: %d", f.Cooldown)
	}

	if got := f.Resend(context.Background()); got != SubmitOK {
		t.Fatalf("resend after cooldown = %v", got)
	}
	if svc.resendCalls != 2 {
		t.Fatalf("resend calls = %d, want 2", svc.resendCalls)
	}
}

func TestVerificationResendFailureNoCooldown(t *testing.T) {
	svc := &fakeVerify{resendErr: errors.New("No hay un registro pendiente para ese correo")}
	f := NewVerification(svc, "ana@example.com", "")
	if got := f.Resend(context.Background()); got != SubmitRejected {
		t.Fatalf("resend = %v", got)
	}
	if f.Cooldown != 0 {
		t.Fatalf("cooldown armed on failure: %d", f.Cooldown)
	}
	if f.ErrMsg == "" {
		t.Fatal("no error surfaced")
	}
}

func TestVerificationTerminalOnceActivated(t *testing.T) {
	svc := &fakeVerify{verifyRes: gateway.MessageResult{Message: "ok"}}
	f := NewVerification(svc, "ana@example.com", "")
	f.Paste(context.Background(), "123456")
	if !f.Activated {
		t.Fatal("setup failed")
	}

	if got := f.Paste(context.Background(), "654321"); got != SubmitNoop {
		t.Fatalf("paste after activation = %v", got)
	}
	if got := f.Resend(context.Background()); got != SubmitNoop {
		t.Fatalf("resend after activation = %v", got)
	}
	if svc.verifyCalls != 1 || svc.resendCalls != 0 {
		t.Fatalf("calls after activation: verify=%d resend=%d", svc.verifyCalls, svc.resendCalls)
	}
}
