// Package gateway is the sole channel between the ATM client and the
// ledger backend. It attaches the bearer credential, unwraps successful
// responses to their payload, and normalizes every failure into one
// *Error with a user-displayable message. It never retries; retry is a
// caller decision and none of the workflows retry automatically.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the sole cancellation mechanism for in-flight calls.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential for authenticated calls.
// An empty token is not an error; some endpoints are public.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logrus.Logger
}

// New builds a client for the ledger at baseURL. tokens may be nil for a
// client that only ever performs public calls.
func New(baseURL string, timeout time.Duration, tokens TokenSource, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) Register(ctx context.Context, firstName, lastName, email, pin string) (MessageResult, error) {
	var out MessageResult
	body := map[string]string{"firstName": firstName, "lastName": lastName, "email": email, "pin": pin}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out)
	return out, err
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) (MessageResult, error) {
	var out MessageResult
	body := map[string]string{"email": email, "code": code}
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-email", nil, body, &out)
	return out, err
}

func (c *Client) ResendCode(ctx context.Context, email string) (MessageResult, error) {
	var out MessageResult
	body := map[string]string{"email": email}
	err := c.do(ctx, http.MethodPost, "/api/auth/resend-code", nil, body, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, accountID, pin string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"accountId": accountID, "pin": pin}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

func (c *Client) ChangePin(ctx context.Context, currentPin, newPin string) (MessageResult, error) {
	var out MessageResult
	body := map[string]string{"currentPin": currentPin, "newPin": newPin}
	err := c.do(ctx, http.MethodPut, "/api/auth/change-pin", nil, body, &out)
	return out, err
}

func (c *Client) Balance(ctx context.Context) (BalanceResult, error) {
	var out BalanceResult
	err := c.do(ctx, http.MethodGet, "/api/accounts/balance", nil, nil, &out)
	return out, err
}

func (c *Client) AccountInfo(ctx context.Context) (AccountInfo, error) {
	var out AccountInfo
	err := c.do(ctx, http.MethodGet, "/api/accounts/info", nil, nil, &out)
	return out, err
}

func (c *Client) Withdraw(ctx context.Context, amount int64) (TransactionResult, error) {
	var out TransactionResult
	body := map[string]int64{"amount": amount}
	err := c.do(ctx, http.MethodPost, "/api/transactions/withdraw", nil, body, &out)
	out.Type = TypeWithdrawal
	return out, err
}

func (c *Client) Deposit(ctx context.Context, amount int64) (TransactionResult, error) {
	var out TransactionResult
	body := map[string]int64{"amount": amount}
	err := c.do(ctx, http.MethodPost, "/api/transactions/deposit", nil, body, &out)
	out.Type = TypeDeposit
	return out, err
}

func (c *Client) Transfer(ctx context.Context, destinationAccountID string, amount int64, memo string) (TransactionResult, error) {
	var out TransactionResult
	body := map[string]any{"destinationAccountId": destinationAccountID, "amount": amount, "memo": memo}
	err := c.do(ctx, http.MethodPost, "/api/transactions/transfer", nil, body, &out)
	out.Type = TypeTransfer
	return out, err
}

// History fetches one page. The backend may answer with a bare array or
// a paginated envelope; both decode into the same HistoryPage here, so
// call sites never re-inspect the shape.
func (c *Client) History(ctx context.Context, page, pageSize int) (HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/transactions/history", q, nil, &raw); err != nil {
		return HistoryPage{}, err
	}
	pg, err := decodeHistory(raw, page, pageSize)
	if err != nil {
		return HistoryPage{}, &Error{Kind: KindUnknown, Message: msgUnknown, cause: err}
	}
	return pg, nil
}

// do performs a single request/response cycle. Every failure path exits
// through the classify helpers so callers only ever see *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindUnknown, Message: msgUnknown, cause: err}
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: msgUnknown, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ge := classifyTransport(err)
		c.logFailure(method, path, ge)
		return ge
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		ge := classifyTransport(err)
		c.logFailure(method, path, ge)
		return ge
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ge := classifyStatus(resp.StatusCode, data)
		c.logFailure(method, path, ge)
		return ge
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Kind:    KindUnknown,
			Message: msgUnknown,
			cause:   fmt.Errorf("decode %s %s: %w", method, path, err),
		}
	}
	return nil
}

func (c *Client) logFailure(method, path string, ge *Error) {
	if c.log == nil {
		return
	}
	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"kind":   ge.Kind,
		"status": ge.Status,
	}).Debug("gateway call failed")
}
