package library

import (
	"fmt"
	"time"
)

// TransactionStatus is the lifecycle state of a loan.
type TransactionStatus string

const (
	StatusActive   TransactionStatus = "ACTIVE"
	StatusOverdue  TransactionStatus = "OVERDUE"
	StatusReturned TransactionStatus = "RETURNED"
)

// Lending policy: every loan runs 14 days, lateness costs 5 per day.
const (
	LoanPeriodDays = 14
	FinePerDay     = 5.0
)

// Transaction records one borrow of one book copy by one user. UserID and ISBN
// are weak references resolved through the Directory and Catalog. ReturnDate
// stays zero and Fine stays 0 until the transaction is settled; once RETURNED
// both are final.
type Transaction struct {
	ID         string
	UserID     string
	ISBN       string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate time.Time
	Status     TransactionStatus
	Fine       float64
}

// IsActive reports whether the loan is still out, overdue or not.
func (t *Transaction) IsActive() bool {
	return t.Status == StatusActive || t.Status == StatusOverdue
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[ID=%s, User=%s, Book=%s, Status=%s, Due=%s]",
		t.ID, t.UserID, t.ISBN, t.Status, t.DueDate.Format("2006-01-02"))
}

// dateOnly maps t to midnight UTC on its calendar date, so day math is not
// skewed by zone offset changes between the two dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// fineFor computes the fine for a loan due at due and returned at returned.
func fineFor(due, returned time.Time) float64 {
	late := daysBetween(due, returned)
	if late <= 0 {
		return 0
	}
	return float64(late) * FinePerDay
}
