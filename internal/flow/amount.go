package flow

import "strconv"

// Presets are the fixed quick-amount buttons. Selecting one overwrites
// the buffer.
var Presets = []int64{20000, 50000, 100000, 200000, 500000}

const maxAmountDigits = 10

// AmountEntry is the bounded digit buffer behind the amount keypad:
// at most 10 digits, leading zero suppressed. The parsed value of a
// buffer with n digits and no leading zero is the decimal integer it
// spells; empty parses to zero and is rejected at submit.
type AmountEntry struct {
	buf string
}

// Press appends a digit. A leading zero is dropped so the buffer never
// spells "0…"; non-digits and overflow presses are ignored.
func (a *AmountEntry) Press(r rune) {
	if !isDigit(r) {
		return
	}
	if len(a.buf) >= maxAmountDigits {
		return
	}
	if a.buf == "" && r == '0' {
		return
	}
	a.buf += string(r)
}

// Backspace removes the last digit.
func (a *AmountEntry) Backspace() {
	if len(a.buf) > 0 {
		a.buf = a.buf[:len(a.buf)-1]
	}
}

// Clear empties the buffer.
func (a *AmountEntry) Clear() { a.buf = "" }

// SetPreset overwrites the buffer with a preset amount.
func (a *AmountEntry) SetPreset(v int64) {
	if v <= 0 {
		return
	}
	a.buf = strconv.FormatInt(v, 10)
}

// String returns the raw digit buffer for display.
func (a *AmountEntry) String() string { return a.buf }

// Value parses the buffer. Empty buffers yield zero, which submit
// rejects.
func (a *AmountEntry) Value() int64 {
	if a.buf == "" {
		return 0
	}
	v, err := strconv.ParseInt(a.buf, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
