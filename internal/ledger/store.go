package ledger

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banclabs/cajero/pkg/helpers"
)

// Domain errors. Handlers translate these into {message} bodies; the
// message text is what the ATM shows verbatim.
var (
	ErrEmailTaken         = errors.New("Ya existe una cuenta con ese correo")
	ErrAccountNotFound    = errors.New("Cuenta no encontrada")
	ErrBadCredentials     = errors.New("Cuenta o PIN incorrectos")
	ErrNotVerified        = errors.New("Debes verificar tu correo antes de ingresar")
	ErrWrongPin           = errors.New("El PIN actual es incorrecto")
	ErrInsufficientFunds  = errors.New("Saldo insuficiente")
	ErrUnknownDestination = errors.New("La cuenta de destino no existe")
	ErrSelfTransfer       = errors.New("No puedes transferir a tu propia cuenta")
)

type Account struct {
	ID        string
	Number    string
	FirstName string
	LastName  string
	Email     string
	PinHash   string
	Type      string
	Balance   int64
	Verified  bool
	OpenedAt  time.Time
}

func (a *Account) HolderName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

type Transaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
	BalanceBefore int64     `json:"-"`
	BalanceAfter  int64     `json:"-"`
	ReceiptNumber string    `json:"-"`
	Counterparty  string    `json:"-"`
}

// Store is the in-memory account and transaction book of the dev
// ledger. One RWMutex guards everything; this is a development fake,
// not a core-banking system.
type Store struct {
	mu         sync.RWMutex
	byEmail    map[string]*Account
	byNumber   map[string]*Account
	byID       map[string]*Account
	history    map[string][]Transaction // accountID -> chronological
	nextNumber int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		byEmail:    make(map[string]*Account),
		byNumber:   make(map[string]*Account),
		byID:       make(map[string]*Account),
		history:    make(map[string][]Transaction),
		nextNumber: 1000000001,
		now:        time.Now,
	}
}

// Register creates an unverified account. Re-registering an address that
// never completed verification replaces the pending account.
func (s *Store) Register(firstName, lastName, email, pin string) (Account, error) {
	hash, err := helpers.HashPin(pin)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if existing, ok := s.byEmail[email]; ok {
		if existing.Verified {
			return Account{}, ErrEmailTaken
		}
		// The pending account is being replaced; retire its number and id
		// so abandoned registrations do not pile up in the namespace.
		delete(s.byNumber, existing.Number)
		delete(s.byID, existing.ID)
	}

	acc := &Account{
		ID:        uuid.NewString(),
		Number:    strconv.FormatInt(s.nextNumber, 10),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		PinHash:   hash,
		Type:      "AHORROS",
		OpenedAt:  s.now(),
	}
	s.nextNumber++
	s.byEmail[email] = acc
	s.byNumber[acc.Number] = acc
	s.byID[acc.ID] = acc
	return *acc, nil
}

// Verify marks the account for email as active and returns it.
func (s *Store) Verify(email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	acc.Verified = true
	return *acc, nil
}

// FindByEmail returns the account for an address, verified or not.
func (s *Store) FindByEmail(email string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Authenticate checks number+PIN and returns the account. Unverified
// accounts cannot log in. The account is copied under the read lock;
// the bcrypt compare runs on the copy so the lock is not held across it.
func (s *Store) Authenticate(number, pin string) (Account, error) {
	s.mu.RLock()
	ptr, ok := s.byNumber[number]
	var acc Account
	if ok {
		acc = *ptr
	}
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrBadCredentials
	}
	if !helpers.ComparePin(acc.PinHash, pin) {
		return Account{}, ErrBadCredentials
	}
	if !acc.Verified {
		return Account{}, ErrNotVerified
	}
	return acc, nil
}

func (s *Store) Get(accountID string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byID[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *acc, nil
}

// ChangePin verifies the current PIN and replaces it.
func (s *Store) ChangePin(accountID, currentPin, newPin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	if !helpers.ComparePin(acc.PinHash, currentPin) {
		return ErrWrongPin
	}
	hash, err := helpers.HashPin(newPin)
	if err != nil {
		return err
	}
	acc.PinHash = hash
	return nil
}

func receiptNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Withdraw debits the account, rejecting overdrafts.
func (s *Store) Withdraw(accountID string, amount int64) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[accountID]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}
	if amount > acc.Balance {
		return Transaction{}, ErrInsufficientFunds
	}
	before := acc.Balance
	acc.Balance -= amount
	tx := Transaction{
		ID:            uuid.NewString(),
		Type:          "withdrawal",
		Amount:        amount,
		Description:   "Retiro de efectivo",
		Timestamp:     s.now(),
		BalanceBefore: before,
		BalanceAfter:  acc.Balance,
		ReceiptNumber: receiptNumber(),
	}
	s.history[accountID] = append(s.history[accountID], tx)
	return tx, nil
}

// Deposit credits the account.
func (s *Store) Deposit(accountID string, amount int64) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[accountID]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}
	before := acc.Balance
	acc.Balance += amount
	tx := Transaction{
		ID:            uuid.NewString(),
		Type:          "deposit",
		Amount:        amount,
		Description:   "Depósito en efectivo",
		Timestamp:     s.now(),
		BalanceBefore: before,
		BalanceAfter:  acc.Balance,
		ReceiptNumber: receiptNumber(),
	}
	s.history[accountID] = append(s.history[accountID], tx)
	return tx, nil
}

// Transfer moves funds to the account with the given number. Both sides
// of the movement are recorded in their respective histories.
func (s *Store) Transfer(accountID, destNumber string, amount int64, memo string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.byID[accountID]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}
	dst, ok := s.byNumber[destNumber]
	if !ok || !dst.Verified {
		return Transaction{}, ErrUnknownDestination
	}
	if dst.ID == src.ID {
		return Transaction{}, ErrSelfTransfer
	}
	if amount > src.Balance {
		return Transaction{}, ErrInsufficientFunds
	}

	desc := memo
	if desc == "" {
		desc = "Transferencia a " + dst.Number
	}
	before := src.Balance
	src.Balance -= amount
	dst.Balance += amount
	now := s.now()

	tx := Transaction{
		ID:            uuid.NewString(),
		Type:          "transfer",
		Amount:        amount,
		Description:   desc,
		Timestamp:     now,
		BalanceBefore: before,
		BalanceAfter:  src.Balance,
		ReceiptNumber: receiptNumber(),
		Counterparty:  dst.Number,
	}
	s.history[src.ID] = append(s.history[src.ID], tx)
	s.history[dst.ID] = append(s.history[dst.ID], Transaction{
		ID:          uuid.NewString(),
		Type:        "deposit",
		Amount:      amount,
		Description: "Transferencia de " + src.Number,
		Timestamp:   now,
	})
	return tx, nil
}

// History returns one reverse-chronological page and the total count.
func (s *Store) History(accountID string, page, pageSize int) ([]Transaction, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.history[accountID]
	total := len(all)
	if pageSize <= 0 {
		pageSize = 10
	}
	if page < 0 {
		page = 0
	}

	// Newest first.
	reversed := make([]Transaction, total)
	for i, tx := range all {
		reversed[total-1-i] = tx
	}
	start := page * pageSize
	if start >= total {
		return []Transaction{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return reversed[start:end], total
}

// Seed inserts a verified demo account for development mode.
func (s *Store) Seed(firstName, lastName, email, pin string, balance int64) (Account, error) {
	acc, err := s.Register(firstName, lastName, email, pin)
	if err != nil {
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byID[acc.ID]
	a.Verified = true
	a.Balance = balance
	return *a, nil
}
