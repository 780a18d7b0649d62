package gateway

import (
	"encoding/json"
	"time"
)

// TransactionType discriminates the three money-movement operations.
type TransactionType string

const (
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
	TypeTransfer   TransactionType = "transfer"
)

// MessageResult is the payload of calls whose only output is a
// human-readable message (register, verify, resend, change-pin).
type MessageResult struct {
	Message string `json:"message"`
}

// LoginResult is the login payload. Token is opaque to the client.
type LoginResult struct {
	Token         string `json:"token"`
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
}

type BalanceResult struct {
	Balance       int64  `json:"balance"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	Type          string `json:"type"`
}

type AccountInfo struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	Type          string `json:"type"`
	Balance       int64  `json:"balance"`
	OpenedDate    string `json:"openedDate"`
}

// TransactionResult is immutable once received. Type is stamped by the
// client method that performed the call, not trusted from the wire.
type TransactionResult struct {
	Type                  TransactionType `json:"type"`
	Amount                int64           `json:"amount"`
	BalanceBefore         int64           `json:"balanceBefore"`
	BalanceAfter          int64           `json:"balanceAfter"`
	Timestamp             time.Time       `json:"timestamp"`
	ReceiptNumber         string          `json:"receiptNumber"`
	CounterpartyAccountID string          `json:"counterpartyAccountId,omitempty"`
}

type HistoryItem struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// HistoryPage is the single decoded form of the two history response
// shapes the backend may produce. Items keep the order the backend
// returned them in (reverse-chronological).
type HistoryPage struct {
	Items      []HistoryItem
	PageIndex  int
	PageSize   int
	TotalCount int
}

// TotalPages derives the page count from the total and the page size.
func (p HistoryPage) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// historyEnvelope tolerates both the current field names and the ones the
// original Spring backend used.
type historyEnvelope struct {
	Items         []HistoryItem `json:"items"`
	Content       []HistoryItem `json:"content"`
	TotalCount    int           `json:"totalCount"`
	TotalElements int           `json:"totalElements"`
}

// decodeHistory turns either a bare JSON array or a paginated envelope
// into a HistoryPage. A bare array is treated as one implicit page with
// total equal to its length.
func decodeHistory(raw json.RawMessage, page, pageSize int) (HistoryPage, error) {
	trimmed := trimLeadingSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []HistoryItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return HistoryPage{}, err
		}
		return HistoryPage{Items: items, PageIndex: page, PageSize: pageSize, TotalCount: len(items)}, nil
	}

	var env historyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return HistoryPage{}, err
	}
	items := env.Items
	if items == nil {
		items = env.Content
	}
	total := env.TotalCount
	if total == 0 && env.TotalElements > 0 {
		total = env.TotalElements
	}
	return HistoryPage{Items: items, PageIndex: page, PageSize: pageSize, TotalCount: total}, nil
}

func trimLeadingSpace(b []byte) []byte {
	for len(b) > 0 {
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			b = b[1:]
		default:
			return b
		}
	}
	return b
}
