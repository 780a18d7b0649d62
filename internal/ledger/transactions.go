package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type amountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type transferRequest struct {
	DestinationAccountID string `json:"destinationAccountId" validate:"required,min=4,numeric"`
	Amount               int64  `json:"amount" validate:"required,gt=0"`
	Memo                 string `json:"memo" validate:"max=80"`
}

type txPayload struct {
	Amount                int64     `json:"amount"`
	BalanceBefore         int64     `json:"balanceBefore"`
	BalanceAfter          int64     `json:"balanceAfter"`
	Timestamp             time.Time `json:"timestamp"`
	ReceiptNumber         string    `json:"receiptNumber"`
	CounterpartyAccountID string    `json:"counterpartyAccountId,omitempty"`
}

func payloadFor(tx Transaction) txPayload {
	return txPayload{
		Amount:                tx.Amount,
		BalanceBefore:         tx.BalanceBefore,
		BalanceAfter:          tx.BalanceAfter,
		Timestamp:             tx.Timestamp,
		ReceiptNumber:         tx.ReceiptNumber,
		CounterpartyAccountID: tx.Counterparty,
	}
}

func (s *Server) handleBalance(c *gin.Context) {
	acc, err := s.store.Get(c.GetString(ctxAccountID))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":       acc.Balance,
		"accountNumber": acc.Number,
		"holderName":    acc.HolderName(),
		"type":          acc.Type,
	})
}

func (s *Server) handleAccountInfo(c *gin.Context) {
	acc, err := s.store.Get(c.GetString(ctxAccountID))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            acc.ID,
		"accountNumber": acc.Number,
		"holderName":    acc.HolderName(),
		"type":          acc.Type,
		"balance":       acc.Balance,
		"openedDate":    acc.OpenedAt.Format("2006-01-02"),
	})
}

func (s *Server) handleWithdraw(c *gin.Context) {
	var req amountRequest
	if !bind(c, &req) {
		return
	}
	tx, err := s.store.Withdraw(c.GetString(ctxAccountID), req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payloadFor(tx))
}

func (s *Server) handleDeposit(c *gin.Context) {
	var req amountRequest
	if !bind(c, &req) {
		return
	}
	tx, err := s.store.Deposit(c.GetString(ctxAccountID), req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payloadFor(tx))
}

func (s *Server) handleTransfer(c *gin.Context) {
	var req transferRequest
	if !bind(c, &req) {
		return
	}
	tx, err := s.store.Transfer(c.GetString(ctxAccountID), req.DestinationAccountID, req.Amount, req.Memo)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payloadFor(tx))
}

func (s *Server) handleHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	items, total := s.store.History(c.GetString(ctxAccountID), page, pageSize)
	totalPages := (total + pageSize - 1) / pageSize
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"totalCount": total,
		"totalPages": totalPages,
	})
}
