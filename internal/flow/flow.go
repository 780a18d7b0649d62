// Package flow holds the ATM workflow state machines. Each flow is a
// plain struct advanced by event methods: user input mutates local
// state, local validation gates the single gateway call, and the call's
// outcome folds back into the state. Rendering is the caller's problem;
// flows expose state and never touch I/O beyond their gateway interface.
//
// Every flow enforces single-flight: while a submit is in progress the
// flow reports Busy and further submits are no-ops, so one instance can
// never have two calls racing.
package flow

// SubmitResult signals what a submit attempt did without overloading the
// error channel; validation failures live in each flow's ErrMsg.
type SubmitResult int

const (
	// SubmitNoop means the event was ignored (busy, or wrong state).
	SubmitNoop SubmitResult = iota
	// SubmitIncomplete is the non-mutating re-prompt signal for a
	// keypad that does not hold enough digits yet.
	SubmitIncomplete
	// SubmitRejected means local validation or the backend rejected the
	// attempt; the flow's ErrMsg carries the reason.
	SubmitRejected
	// SubmitOK means the step (and any backend call) succeeded.
	SubmitOK
)

// PinLength is the exact number of digits every PIN carries.
const PinLength = 4

// PinPad models the 4-digit keypad used by login, onboarding and PIN
// change. It accepts digits up to the fixed length; confirmation is the
// owning flow's job.
type PinPad struct {
	value string
}

// Press appends a digit when there is room. Non-digits are ignored.
func (p *PinPad) Press(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if len(p.value) < PinLength {
		p.value += string(r)
	}
}

// Backspace removes the last digit.
func (p *PinPad) Backspace() {
	if len(p.value) > 0 {
		p.value = p.value[:len(p.value)-1]
	}
}

// Len reports how many digits are entered, for masked rendering.
func (p *PinPad) Len() int { return len(p.value) }

// Full reports whether the pad holds exactly PinLength digits.
func (p *PinPad) Full() bool { return len(p.value) == PinLength }

// take returns the entered value and clears the pad, mirroring a
// physical pad that blanks after confirm.
func (p *PinPad) take() string {
	v := p.value
	p.value = ""
	return v
}

// Reset discards any partially entered digits.
func (p *PinPad) Reset() { p.value = "" }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func digitsOnly(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if isDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
