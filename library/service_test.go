package library

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*LendingService, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	ledger := NewLedger()
	ledger.now = clock.now
	return NewLendingService(NewCatalog(), NewDirectory(), ledger, nil), clock
}

func addBook(t *testing.T, s *LendingService, isbn string, copies int) {
	t.Helper()
	b, err := NewBook(isbn, "Title "+isbn, "Author", "Category", copies, 100)
	require.NoError(t, err)
	require.NoError(t, s.AddBook(b))
}

func addMember(t *testing.T, s *LendingService, id string) {
	t.Helper()
	u, err := NewMember(id, "User "+id, id+"@example.com", "1234567890", MembershipRegular)
	require.NoError(t, err)
	require.NoError(t, s.RegisterUser(u))
}

func TestBorrowHappyPath(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 2)
	addMember(t, s, "M1")

	tx, err := s.Borrow("M1", "i-1")
	require.NoError(t, err)
	assert.Equal(t, "TXN000001", tx.ID)
	assert.Equal(t, StatusActive, tx.Status)
	assert.Equal(t, "M1", tx.UserID)
	assert.Equal(t, "i-1", tx.ISBN)

	b, err := s.Book("i-1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestBorrowFailsFastWithoutMutation(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")

	_, err := s.Borrow("ghost", "i-1")
	assert.True(t, IsKind(err, KindNotFound))

	_, err = s.Borrow("M1", "ghost-isbn")
	assert.True(t, IsKind(err, KindNotFound))

	// Neither failed attempt may have touched the shelf or the ledger.
	b, _ := s.Book("i-1")
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Empty(t, s.ActiveTransactions())
}

func TestBorrowUnavailable(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")
	addMember(t, s, "M2")

	_, err := s.Borrow("M1", "i-1")
	require.NoError(t, err)

	_, err = s.Borrow("M2", "i-1")
	assert.True(t, IsKind(err, KindUnavailable))

	b, _ := s.Book("i-1")
	assert.Equal(t, 0, b.AvailableCopies)
	assert.Len(t, s.ActiveTransactions(), 1)
}

func TestBorrowLimitExceeded(t *testing.T) {
	s, _ := newTestService(t)
	addMember(t, s, "M1") // regular member, cap of 5
	for i := 1; i <= 6; i++ {
		addBook(t, s, fmt.Sprintf("i-%d", i), 1)
	}

	for i := 1; i <= 5; i++ {
		_, err := s.Borrow("M1", fmt.Sprintf("i-%d", i))
		require.NoError(t, err)
	}

	_, err := s.Borrow("M1", "i-6")
	assert.True(t, IsKind(err, KindLimitExceeded))

	// The sixth book is untouched.
	b, _ := s.Book("i-6")
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestOverdueLoanDoesNotBlockBorrowing(t *testing.T) {
	// Fixed policy: the limit counts ACTIVE loans only, so a loan that has
	// gone OVERDUE frees up a slot.
	s, clock := newTestService(t)
	addMember(t, s, "M1")
	for i := 1; i <= 6; i++ {
		addBook(t, s, fmt.Sprintf("i-%d", i), 1)
	}
	for i := 1; i <= 5; i++ {
		_, err := s.Borrow("M1", fmt.Sprintf("i-%d", i))
		require.NoError(t, err)
	}

	clock.advanceDays(LoanPeriodDays + 1)
	s.ActiveTransactions() // sweeps the five loans to OVERDUE

	_, err := s.Borrow("M1", "i-6")
	assert.NoError(t, err)
}

func TestReturnRoundTrip(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 3)
	addMember(t, s, "M1")

	before, _ := s.Book("i-1")
	tx, err := s.Borrow("M1", "i-1")
	require.NoError(t, err)

	settled, err := s.Return(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, settled.Status)
	assert.Zero(t, settled.Fine)

	after, _ := s.Book("i-1")
	assert.Equal(t, before.AvailableCopies, after.AvailableCopies)
}

func TestReturnTwiceFails(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")

	tx, _ := s.Borrow("M1", "i-1")
	first, err := s.Return(tx.ID)
	require.NoError(t, err)

	_, err = s.Return(tx.ID)
	assert.True(t, IsKind(err, KindInvalidState))

	// The shelf count must not be incremented twice.
	b, _ := s.Book("i-1")
	assert.Equal(t, 1, b.AvailableCopies)

	// Fine and return date survive the failed second return.
	again, err := s.UserTransactions("M1")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, first.Fine, again[0].Fine)
	assert.True(t, first.ReturnDate.Equal(again[0].ReturnDate))
}

func TestReturnTwiceFailsEvenWhenBookRemoved(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")

	tx, _ := s.Borrow("M1", "i-1")
	_, err := s.Return(tx.ID)
	require.NoError(t, err)
	require.NoError(t, s.RemoveBook("i-1"))

	// A settled transaction always reports invalid state, even when its book
	// has since left the catalog.
	_, err = s.Return(tx.ID)
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestReturnUnknownTransaction(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Return("TXN000042")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestReturnLateComputesFine(t *testing.T) {
	s, clock := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")

	tx, _ := s.Borrow("M1", "i-1")

	// Ten days past the due date.
	clock.advanceDays(LoanPeriodDays + 10)
	settled, err := s.Return(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, settled.Fine)
	assert.Equal(t, 50.0, s.TotalFinesCollected())
}

func TestSingleCopyLifecycle(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "B", 1)
	addMember(t, s, "U")
	addMember(t, s, "V")

	t1, err := s.Borrow("U", "B")
	require.NoError(t, err)
	b, _ := s.Book("B")
	require.Equal(t, 0, b.AvailableCopies)

	_, err = s.Borrow("V", "B")
	require.True(t, IsKind(err, KindUnavailable))

	settled, err := s.Return(t1.ID)
	require.NoError(t, err)
	assert.Zero(t, settled.Fine)
	b, _ = s.Book("B")
	assert.Equal(t, 1, b.AvailableCopies)
}

func TestRemoveBookOnLoanFails(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 1)
	addMember(t, s, "M1")

	tx, _ := s.Borrow("M1", "i-1")
	err := s.RemoveBook("i-1")
	assert.True(t, IsKind(err, KindInvalidState))

	_, err = s.Return(tx.ID)
	require.NoError(t, err)
	assert.NoError(t, s.RemoveBook("i-1"))
}

func TestUpdateBookPreservesLoans(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 5)
	addMember(t, s, "M1")
	addMember(t, s, "M2")

	s.Borrow("M1", "i-1")
	s.Borrow("M2", "i-1")

	updated, err := NewBook("i-1", "New Title", "Author", "Category", 10, 150)
	require.NoError(t, err)
	require.NoError(t, s.UpdateBook("i-1", updated))

	b, _ := s.Book("i-1")
	assert.Equal(t, "New Title", b.Title)
	assert.Equal(t, 10, b.TotalCopies)
	assert.Equal(t, 8, b.AvailableCopies)
	assert.Equal(t, 2, b.OnLoan())
}

func TestSetBookTotalCopies(t *testing.T) {
	s, _ := newTestService(t)
	addBook(t, s, "i-1", 5)
	addMember(t, s, "M1")
	addMember(t, s, "M2")

	s.Borrow("M1", "i-1")
	s.Borrow("M2", "i-1")

	require.NoError(t, s.SetBookTotalCopies("i-1", 10))
	b, _ := s.Book("i-1")
	assert.Equal(t, 10, b.TotalCopies)
	assert.Equal(t, 8, b.AvailableCopies)
	assert.Equal(t, 2, b.OnLoan())

	err := s.SetBookTotalCopies("i-1", 1)
	assert.True(t, IsKind(err, KindInvalidState))

	err = s.SetBookTotalCopies("ghost", 3)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestCountsByCategory(t *testing.T) {
	s, _ := newTestService(t)
	for i, cat := range []string{"SF", "SF", "History"} {
		b, err := NewBook(fmt.Sprintf("i-%d", i), "T", "A", cat, 1, 10)
		require.NoError(t, err)
		require.NoError(t, s.AddBook(b))
	}

	counts := s.CountsByCategory()
	assert.Equal(t, map[string]int{"SF": 2, "History": 1}, counts)
}

func TestMostBorrowed(t *testing.T) {
	s, _ := newTestService(t)
	addMember(t, s, "M1")
	addBook(t, s, "A", 5)
	addBook(t, s, "B", 5)
	addBook(t, s, "C", 5)

	// A borrowed three times (returns still count), B once, C never.
	for i := 0; i < 3; i++ {
		tx, err := s.Borrow("M1", "A")
		require.NoError(t, err)
		_, err = s.Return(tx.ID)
		require.NoError(t, err)
	}
	_, err := s.Borrow("M1", "B")
	require.NoError(t, err)

	top := s.MostBorrowed(1)
	require.Len(t, top, 1)
	assert.Equal(t, "A", top[0].ISBN)

	all := s.MostBorrowed(10)
	require.Len(t, all, 2) // C never borrowed
	assert.Equal(t, "A", all[0].ISBN)
	assert.Equal(t, "B", all[1].ISBN)
}

func TestMostBorrowedTieBreaksByISBN(t *testing.T) {
	s, _ := newTestService(t)
	addMember(t, s, "M1")
	addBook(t, s, "B", 1)
	addBook(t, s, "A", 1)

	_, err := s.Borrow("M1", "B")
	require.NoError(t, err)
	_, err = s.Borrow("M1", "A")
	require.NoError(t, err)

	top := s.MostBorrowed(2)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].ISBN)
	assert.Equal(t, "B", top[1].ISBN)
}

func TestMostBorrowedSkipsRemovedBooks(t *testing.T) {
	s, _ := newTestService(t)
	addMember(t, s, "M1")
	addBook(t, s, "A", 1)
	addBook(t, s, "B", 1)

	tx, err := s.Borrow("M1", "A")
	require.NoError(t, err)
	_, err = s.Return(tx.ID)
	require.NoError(t, err)
	require.NoError(t, s.RemoveBook("A"))

	_, err = s.Borrow("M1", "B")
	require.NoError(t, err)

	top := s.MostBorrowed(5)
	require.Len(t, top, 1)
	assert.Equal(t, "B", top[0].ISBN)
}

func TestUserTransactionsUnknownUser(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.UserTransactions("ghost")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSeedSampleData(t *testing.T) {
	s, _ := newTestService(t)
	require.NoError(t, s.SeedSampleData())

	assert.Len(t, s.Books(), 5)
	assert.Len(t, s.Users(), 3)

	// Seeding twice collides on every key.
	err := s.SeedSampleData()
	assert.True(t, IsKind(err, KindDuplicate))
}
