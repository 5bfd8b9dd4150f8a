package library

import (
	"fmt"
	"sync"
	"time"
)

// Ledger is the append-only log of lending transactions. Transactions are
// never deleted; returns and overdue checks are state transitions on existing
// entries. IDs are generated from a monotonic sequence.
type Ledger struct {
	mu      sync.RWMutex
	seq     int
	entries []*Transaction
	byID    map[string]*Transaction

	now func() time.Time // swapped out in tests
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		byID: make(map[string]*Transaction),
		now:  time.Now,
	}
}

// Record opens a new ACTIVE transaction for userID and isbn, dated now with
// the standard loan period, and appends it to the ledger.
func (l *Ledger) Record(userID, isbn string) *Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	now := l.now()
	t := &Transaction{
		ID:         fmt.Sprintf("TXN%06d", l.seq),
		UserID:     userID,
		ISBN:       isbn,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, LoanPeriodDays),
		Status:     StatusActive,
	}
	l.entries = append(l.entries, t)
	l.byID[t.ID] = t
	return copyTransaction(t)
}

// Find returns the transaction with the given ID.
func (l *Ledger) Find(id string) (*Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.byID[id]
	if !ok {
		return nil, newError(KindNotFound, "transaction %s not found", id)
	}
	return copyTransaction(t), nil
}

// ActiveCountFor counts the user's transactions in ACTIVE state. Deliberately
// excludes OVERDUE: an overdue loan does not block further borrowing under
// the current-count policy.
func (l *Ledger) ActiveCountFor(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, t := range l.entries {
		if t.UserID == userID && t.Status == StatusActive {
			count++
		}
	}
	return count
}

// ForUser returns all of the user's transactions in insertion order.
func (l *Ledger) ForUser(userID string) []*Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Transaction
	for _, t := range l.entries {
		if t.UserID == userID {
			out = append(out, copyTransaction(t))
		}
	}
	return out
}

// Active returns all loans currently out (ACTIVE or OVERDUE), sweeping each
// ACTIVE entry past its due date into OVERDUE first.
func (l *Ledger) Active() []*Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*Transaction
	for _, t := range l.entries {
		l.refreshOverdueLocked(t)
		if t.IsActive() {
			out = append(out, copyTransaction(t))
		}
	}
	return out
}

// RefreshOverdue transitions the transaction to OVERDUE if it is ACTIVE and
// past due. Idempotent; OVERDUE and RETURNED entries are left alone.
func (l *Ledger) RefreshOverdue(id string) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.byID[id]
	if !ok {
		return nil, newError(KindNotFound, "transaction %s not found", id)
	}
	l.refreshOverdueLocked(t)
	return copyTransaction(t), nil
}

func (l *Ledger) refreshOverdueLocked(t *Transaction) {
	if t.Status == StatusActive && l.now().After(t.DueDate) {
		t.Status = StatusOverdue
	}
}

// Settle transitions the transaction to RETURNED, stamping the return date
// and computing the fine. Settling an already-returned transaction fails and
// changes nothing.
func (l *Ledger) Settle(id string) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.byID[id]
	if !ok {
		return nil, newError(KindNotFound, "transaction %s not found", id)
	}
	if !t.IsActive() {
		return nil, newError(KindInvalidState, "transaction %s already returned", id)
	}
	t.ReturnDate = l.now()
	t.Status = StatusReturned
	t.Fine = fineFor(t.DueDate, t.ReturnDate)
	return copyTransaction(t), nil
}

// FinesCollected sums the fines of all RETURNED transactions.
func (l *Ledger) FinesCollected() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0.0
	for _, t := range l.entries {
		if t.Status == StatusReturned {
			total += t.Fine
		}
	}
	return total
}

// BorrowCountsByISBN counts transactions per ISBN across the whole ledger,
// returned or not.
func (l *Ledger) BorrowCountsByISBN() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int)
	for _, t := range l.entries {
		counts[t.ISBN]++
	}
	return counts
}

// copyTransaction hands callers a snapshot so ledger state only changes
// through ledger operations.
func copyTransaction(t *Transaction) *Transaction {
	c := *t
	return &c
}
