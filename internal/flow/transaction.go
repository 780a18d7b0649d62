package flow

import (
	"context"

	"github.com/banclabs/cajero/internal/gateway"
)

// TxState names the transaction steps. Withdrawal and deposit start at
// AmountEntry; transfer prepends DestinationEntry.
type TxState int

const (
	StateDestinationEntry TxState = iota
	StateAmountEntry
	StateReceipt
)

const (
	maxDestinationDigits = 20
	maxMemoLength        = 80
)

type withdrawService interface {
	Withdraw(ctx context.Context, amount int64) (gateway.TransactionResult, error)
}

type depositService interface {
	Deposit(ctx context.Context, amount int64) (gateway.TransactionResult, error)
}

type transferService interface {
	Transfer(ctx context.Context, destinationAccountID string, amount int64, memo string) (gateway.TransactionResult, error)
}

// TransactionFlow is one state machine generic over the three money
// movements; the variant is fixed at construction by binding the gateway
// call and the balance-bound rule. On success the TransactionResult is
// terminal; on failure the buffer stays intact for resubmission.
type TransactionFlow struct {
	op      gateway.TransactionType
	call    func(ctx context.Context, amount int64) (gateway.TransactionResult, error)
	bounded bool
	balance int64 // last known balance; client-side guard only

	State       TxState
	Destination string
	Memo        string
	Amount      AmountEntry
	ErrMsg      string
	Result      *gateway.TransactionResult

	busy bool
}

// NewWithdrawal builds the balance-bounded withdrawal flow.
// lastKnownBalance comes from the most recent balance inquiry.
func NewWithdrawal(svc withdrawService, lastKnownBalance int64) *TransactionFlow {
	return &TransactionFlow{
		op:      gateway.TypeWithdrawal,
		call:    svc.Withdraw,
		bounded: true,
		balance: lastKnownBalance,
		State:   StateAmountEntry,
	}
}

// NewDeposit builds the unbounded deposit flow.
func NewDeposit(svc depositService) *TransactionFlow {
	return &TransactionFlow{
		op:    gateway.TypeDeposit,
		call:  svc.Deposit,
		State: StateAmountEntry,
	}
}

// NewTransfer builds the transfer flow, which asks for a destination
// before the amount and is balance-bounded like a withdrawal.
func NewTransfer(svc transferService, lastKnownBalance int64) *TransactionFlow {
	f := &TransactionFlow{
		op:      gateway.TypeTransfer,
		bounded: true,
		balance: lastKnownBalance,
		State:   StateDestinationEntry,
	}
	f.call = func(ctx context.Context, amount int64) (gateway.TransactionResult, error) {
		return svc.Transfer(ctx, f.Destination, amount, f.Memo)
	}
	return f
}

func (f *TransactionFlow) Busy() bool { return f.busy }

// Operation reports which money movement this instance performs.
func (f *TransactionFlow) Operation() gateway.TransactionType { return f.op }

func (f *TransactionFlow) PressDestinationDigit(r rune) {
	if f.State != StateDestinationEntry || f.busy || !isDigit(r) {
		return
	}
	f.ErrMsg = ""
	if len(f.Destination) < maxDestinationDigits {
		f.Destination += string(r)
	}
}

func (f *TransactionFlow) EraseDestinationDigit() {
	if f.State != StateDestinationEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	if len(f.Destination) > 0 {
		f.Destination = f.Destination[:len(f.Destination)-1]
	}
}

// SetMemo stores the optional transfer memo, truncated to 80 characters.
func (f *TransactionFlow) SetMemo(s string) {
	if f.State != StateDestinationEntry || f.busy {
		return
	}
	if len(s) > maxMemoLength {
		s = s[:maxMemoLength]
	}
	f.Memo = s
}

// ConfirmDestination advances to amount entry once the destination id
// has at least 4 digits.
func (f *TransactionFlow) ConfirmDestination() bool {
	if f.State != StateDestinationEntry || f.busy {
		return false
	}
	if len(f.Destination) < 4 {
		f.ErrMsg = "Ingresa un número de cuenta válido"
		return false
	}
	f.ErrMsg = ""
	f.State = StateAmountEntry
	return true
}

// BackToDestination returns from amount entry to edit the destination.
func (f *TransactionFlow) BackToDestination() {
	if f.State != StateAmountEntry || f.busy || f.op != gateway.TypeTransfer {
		return
	}
	f.ErrMsg = ""
	f.State = StateDestinationEntry
}

func (f *TransactionFlow) PressAmountDigit(r rune) {
	if f.State != StateAmountEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Amount.Press(r)
}

func (f *TransactionFlow) EraseAmountDigit() {
	if f.State != StateAmountEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Amount.Backspace()
}

func (f *TransactionFlow) ClearAmount() {
	if f.State != StateAmountEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Amount.Clear()
}

// SelectPreset overwrites the buffer with a quick amount.
func (f *TransactionFlow) SelectPreset(v int64) {
	if f.State != StateAmountEntry || f.busy {
		return
	}
	f.ErrMsg = ""
	f.Amount.SetPreset(v)
}

// Submit runs the local checks and, if they pass, exactly one gateway
// call. The balance bound is a UX guard only; a server-side rejection is
// still surfaced like any other server message.
func (f *TransactionFlow) Submit(ctx context.Context) SubmitResult {
	if f.State != StateAmountEntry || f.busy {
		return SubmitNoop
	}
	amount := f.Amount.Value()
	if amount <= 0 {
		f.ErrMsg = "Ingresa un monto válido"
		return SubmitRejected
	}
	if f.bounded && amount > f.balance {
		f.ErrMsg = "Saldo insuficiente"
		return SubmitRejected
	}

	f.busy = true
	res, err := f.call(ctx, amount)
	f.busy = false

	if err != nil {
		f.ErrMsg = err.Error()
		return SubmitRejected
	}
	f.ErrMsg = ""
	f.Result = &res
	f.State = StateReceipt
	return SubmitOK
}
