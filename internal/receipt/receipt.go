// Package receipt maps a completed transaction to its display record.
// Formatting is pure: no I/O, no clocks, identical input always yields
// an identical receipt.
package receipt

import (
	"fmt"
	"time"

	"github.com/banclabs/cajero/internal/gateway"
)

// Receipt is the display record for a completed transaction.
type Receipt struct {
	Label         string // operation name, e.g. "RETIRO"
	Symbol        string // operation glyph, e.g. "↑"
	Number        string // receipt number
	Amount        string
	BalanceBefore string
	BalanceAfter  string
	Counterparty  string // only set for transfers
	Timestamp     string
}

type opStyle struct {
	label  string
	symbol string
}

var styles = map[gateway.TransactionType]opStyle{
	gateway.TypeWithdrawal: {label: "RETIRO", symbol: "↑"},
	gateway.TypeDeposit:    {label: "DEPÓSITO", symbol: "↓"},
	gateway.TypeTransfer:   {label: "TRANSFERENCIA", symbol: "⇆"},
}

// Format builds the receipt for a transaction result.
func Format(tr gateway.TransactionResult) Receipt {
	style, ok := styles[tr.Type]
	if !ok {
		style = styles[gateway.TypeWithdrawal]
	}
	r := Receipt{
		Label:         style.label,
		Symbol:        style.symbol,
		Number:        tr.ReceiptNumber,
		Amount:        FormatCOP(tr.Amount),
		BalanceBefore: FormatCOP(tr.BalanceBefore),
		BalanceAfter:  FormatCOP(tr.BalanceAfter),
		Timestamp:     FormatTimestamp(tr.Timestamp),
	}
	if tr.Type == gateway.TypeTransfer {
		r.Counterparty = tr.CounterpartyAccountID
	}
	return r
}

// FormatCOP renders an amount the way Colombian pesos are written:
// dollar sign, dot as thousands separator, no decimals.
func FormatCOP(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	out := make([]byte, 0, len(digits)+len(digits)/3+2)
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}

var monthsES = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// FormatTimestamp renders a timestamp as "02 ene 2026, 15:04" in the
// offset the backend reported it with.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return fmt.Sprintf("%02d %s %d, %02d:%02d",
		t.Day(), monthsES[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
