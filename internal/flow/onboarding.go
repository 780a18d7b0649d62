package flow

import (
	"context"

	"github.com/banclabs/cajero/internal/gateway"
	"github.com/banclabs/cajero/pkg/validation"
)

// OnboardingState names the registration steps.
type OnboardingState int

const (
	StatePersonalData OnboardingState = iota
	StatePinCreate
	StatePinConfirm
	// StateAwaitingVerification is terminal for this flow; the email
	// verification sub-flow takes over from here.
	StateAwaitingVerification
)

// PersonalData is the registration form. Field keys in FieldErrs follow
// the json tags.
type PersonalData struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email_tld"`
}

type registerService interface {
	Register(ctx context.Context, firstName, lastName, email, pin string) (gateway.MessageResult, error)
}

// OnboardingFlow sequences the personal-data form, PIN creation, PIN
// confirmation and the register call. The pending registration is
// transient: discarded on success or abandonment, and both PIN entries
// are dropped on a confirmation mismatch since neither can be trusted.
type OnboardingFlow struct {
	svc registerService

	State     OnboardingState
	Form      PersonalData
	FieldErrs map[string]string
	Pad       PinPad
	pin       string // captured at PinCreate
	ErrMsg    string

	// Carried into email verification on success.
	Email         string
	ServerMessage string

	busy bool
}

func NewOnboarding(svc registerService) *OnboardingFlow {
	return &OnboardingFlow{svc: svc, State: StatePersonalData}
}

func (f *OnboardingFlow) Busy() bool { return f.busy }

func (f *OnboardingFlow) SetFirstName(v string) { f.setField("firstName", &f.Form.FirstName, v) }
func (f *OnboardingFlow) SetLastName(v string)  { f.setField("lastName", &f.Form.LastName, v) }
func (f *OnboardingFlow) SetEmail(v string)     { f.setField("email", &f.Form.Email, v) }

func (f *OnboardingFlow) setField(key string, dst *string, v string) {
	if f.State != StatePersonalData || f.busy {
		return
	}
	*dst = v
	delete(f.FieldErrs, key)
	f.ErrMsg = ""
}

// fieldMessage renders the Spanish inline message for a failing field.
func fieldMessage(field, tag string) string {
	switch field {
	case "firstName":
		return "El nombre es requerido"
	case "lastName":
		return "El apellido es requerido"
	case "email":
		if tag == "required" {
			return "El correo es requerido"
		}
		return "Correo inválido"
	}
	return "Campo inválido"
}

// SubmitPersonalData validates the whole form; every invalid field gets
// its own message and only a fully valid form advances.
func (f *OnboardingFlow) SubmitPersonalData() bool {
	if f.State != StatePersonalData || f.busy {
		return false
	}
	tags := validation.Tags(f.Form)
	if len(tags) > 0 {
		errs := make(map[string]string, len(tags))
		for field, tag := range tags {
			errs[field] = fieldMessage(field, tag)
		}
		f.FieldErrs = errs
		return false
	}
	f.FieldErrs = nil
	f.ErrMsg = ""
	f.State = StatePinCreate
	return true
}

func (f *OnboardingFlow) PressPinDigit(r rune) {
	if (f.State != StatePinCreate && f.State != StatePinConfirm) || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Pad.Press(r)
}

func (f *OnboardingFlow) ErasePinDigit() {
	if (f.State != StatePinCreate && f.State != StatePinConfirm) || f.busy {
		return
	}
	f.Pad.Backspace()
}

// BackToPersonalData abandons PIN creation and returns to the form.
func (f *OnboardingFlow) BackToPersonalData() {
	if f.State != StatePinCreate || f.busy {
		return
	}
	f.Pad.Reset()
	f.ErrMsg = ""
	f.State = StatePersonalData
}

// BackToPinCreate abandons confirmation; the first entry is dropped too.
func (f *OnboardingFlow) BackToPinCreate() {
	if f.State != StatePinConfirm || f.busy {
		return
	}
	f.Pad.Reset()
	f.pin = ""
	f.ErrMsg = ""
	f.State = StatePinCreate
}

// SubmitPin drives both PIN steps. At PinCreate a full pad is captured
// and the flow moves to confirmation. At PinConfirm a mismatch clears
// both entries and returns to PinCreate; a match performs the register
// call. Register failure returns to the form with the server error; the
// user remains unregistered and must retry.
func (f *OnboardingFlow) SubmitPin(ctx context.Context) SubmitResult {
	if f.busy {
		return SubmitNoop
	}
	switch f.State {
	case StatePinCreate:
		if !f.Pad.Full() {
			return SubmitIncomplete
		}
		f.pin = f.Pad.take()
		f.ErrMsg = ""
		f.State = StatePinConfirm
		return SubmitOK

	case StatePinConfirm:
		if !f.Pad.Full() {
			return SubmitIncomplete
		}
		confirmed := f.Pad.take()
		if confirmed != f.pin {
			f.pin = ""
			f.ErrMsg = "Los PINs no coinciden. Vuelve a intentarlo."
			f.State = StatePinCreate
			return SubmitRejected
		}

		f.busy = true
		res, err := f.svc.Register(ctx, f.Form.FirstName, f.Form.LastName, f.Form.Email, f.pin)
		f.busy = false

		if err != nil {
			f.pin = ""
			f.ErrMsg = err.Error()
			f.State = StatePersonalData
			return SubmitRejected
		}
		f.Email = f.Form.Email
		f.ServerMessage = res.Message
		f.pin = ""
		f.ErrMsg = ""
		f.State = StateAwaitingVerification
		return SubmitOK

	default:
		return SubmitNoop
	}
}
