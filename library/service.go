package library

import (
	"fmt"
	"sort"
	"sync"
)

// LendingService orchestrates the catalog, directory, and ledger. It is the
// single mutual-exclusion domain for everything that mutates lending state:
// borrow and return for the same book or user never interleave, and the
// analytics always observe a consistent snapshot.
//
// Construct one instance per process and hand it to whatever drives it; the
// service holds no hidden globals.
type LendingService struct {
	mu        sync.RWMutex
	catalog   *Catalog
	directory *Directory
	ledger    *Ledger
	logger    Logger
}

// NewLendingService wires the three stores together. A nil logger disables
// activity logging.
func NewLendingService(catalog *Catalog, directory *Directory, ledger *Ledger, logger Logger) *LendingService {
	if logger == nil {
		logger = NopLogger{}
	}
	return &LendingService{
		catalog:   catalog,
		directory: directory,
		ledger:    ledger,
		logger:    logger,
	}
}

// ---------------------------------------------------------------------------
// Circulation
// ---------------------------------------------------------------------------

// Borrow lends one copy of isbn to userID and returns the opened transaction.
// All preconditions are checked before anything is mutated: missing user or
// book, no available copies, or a user at their borrowing cap all fail with
// no visible state change.
func (s *LendingService) Borrow(userID, isbn string) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.directory.Get(userID)
	if err != nil {
		return nil, err
	}
	book, err := s.catalog.Get(isbn)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, newError(KindUnavailable, "book %s is not available for borrowing", isbn)
	}
	if s.ledger.ActiveCountFor(userID) >= user.MaxBooksAllowed() {
		return nil, newError(KindLimitExceeded,
			"user %s has reached the maximum of %d borrowed books", userID, user.MaxBooksAllowed())
	}

	// Decrement first: it is the only step that can fail, so a transaction is
	// only recorded once the copy is off the shelf.
	if err := s.catalog.BorrowCopy(isbn); err != nil {
		return nil, err
	}
	t := s.ledger.Record(userID, isbn)

	s.logger.Log(fmt.Sprintf("Book borrowed: %s by %s (%s)", isbn, userID, t.ID))
	return t, nil
}

// Return settles the transaction and puts the copy back on the shelf. The
// settled transaction carries the fine, if any. Returning an already-returned
// transaction fails with no state change.
func (s *LendingService) Return(transactionID string) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.ledger.Find(transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, newError(KindInvalidState, "transaction %s already returned", transactionID)
	}
	// Resolve the book before settling so a lookup miss cannot leave a
	// settled transaction with no shelf increment.
	if _, err := s.catalog.Get(t.ISBN); err != nil {
		return nil, err
	}

	settled, err := s.ledger.Settle(transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.ReturnCopy(t.ISBN); err != nil {
		s.logger.LogError(fmt.Sprintf("return copy failed for %s", t.ISBN), err)
		return nil, err
	}

	s.logger.Log(fmt.Sprintf("Book returned: transaction %s, fine %.2f", transactionID, settled.Fine))
	return settled, nil
}

// UserTransactions returns all of the user's transactions in insertion order.
func (s *LendingService) UserTransactions(userID string) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.directory.Get(userID); err != nil {
		return nil, err
	}
	return s.ledger.ForUser(userID), nil
}

// ActiveTransactions returns every loan currently out, with overdue statuses
// refreshed against the current date.
func (s *LendingService) ActiveTransactions() []*Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Active()
}

// ---------------------------------------------------------------------------
// Book management
// ---------------------------------------------------------------------------

func (s *LendingService) AddBook(book *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.Add(book); err != nil {
		return err
	}
	s.logger.Log("Book added: " + book.Title)
	return nil
}

func (s *LendingService) Book(isbn string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Get(isbn)
}

func (s *LendingService) UpdateBook(isbn string, updated *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.Update(isbn, updated); err != nil {
		return err
	}
	s.logger.Log("Book updated: " + isbn)
	return nil
}

// SetBookTotalCopies changes a book's total copy count only, keeping the
// on-loan count and the rest of the record intact.
func (s *LendingService) SetBookTotalCopies(isbn string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.SetTotalCopies(isbn, total); err != nil {
		return err
	}
	s.logger.Log(fmt.Sprintf("Book copies updated: %s now %d", isbn, total))
	return nil
}

func (s *LendingService) RemoveBook(isbn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.Remove(isbn); err != nil {
		return err
	}
	s.logger.Log("Book removed: " + isbn)
	return nil
}

func (s *LendingService) Books() []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.All()
}

func (s *LendingService) SearchBooks(keyword string) []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Search(keyword)
}

// ---------------------------------------------------------------------------
// User management
// ---------------------------------------------------------------------------

func (s *LendingService) RegisterUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.directory.Register(user); err != nil {
		return err
	}
	s.logger.Log("User registered: " + user.Name)
	return nil
}

func (s *LendingService) User(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory.Get(id)
}

func (s *LendingService) Users() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory.All()
}

// ---------------------------------------------------------------------------
// Analytics
// ---------------------------------------------------------------------------

// CountsByCategory groups the catalog by category.
func (s *LendingService) CountsByCategory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, b := range s.catalog.All() {
		counts[b.Category]++
	}
	return counts
}

// MostBorrowed returns up to limit books ranked by how often they appear in
// the ledger, most borrowed first, ties broken by ascending ISBN. ISBNs no
// longer in the catalog are skipped.
func (s *LendingService) MostBorrowed(limit int) []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := s.ledger.BorrowCountsByISBN()
	isbns := make([]string, 0, len(counts))
	for isbn := range counts {
		isbns = append(isbns, isbn)
	}
	sort.Slice(isbns, func(i, j int) bool {
		if counts[isbns[i]] != counts[isbns[j]] {
			return counts[isbns[i]] > counts[isbns[j]]
		}
		return isbns[i] < isbns[j]
	})

	var out []*Book
	for _, isbn := range isbns {
		if len(out) == limit {
			break
		}
		b, err := s.catalog.Get(isbn)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// TotalFinesCollected sums the fines of every returned transaction.
func (s *LendingService) TotalFinesCollected() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.FinesCollected()
}

// ---------------------------------------------------------------------------
// Sample data
// ---------------------------------------------------------------------------

// SeedSampleData loads a small demonstration catalog and user set.
func (s *LendingService) SeedSampleData() error {
	books := []struct {
		isbn, title, author, category string
		copies                        int
		price                         float64
	}{
		{"978-0-596-52068-7", "Head First Java", "Kathy Sierra", "Programming", 5, 599.0},
		{"978-0-134-68599-1", "Effective Java", "Joshua Bloch", "Programming", 3, 799.0},
		{"978-0-201-63361-0", "Design Patterns", "Gang of Four", "Software Engineering", 4, 899.0},
		{"978-0-132-35088-4", "Clean Code", "Robert Martin", "Software Engineering", 6, 699.0},
		{"978-0-262-03384-8", "Introduction to Algorithms", "CLRS", "Algorithms", 2, 1299.0},
	}
	for _, b := range books {
		book, err := NewBook(b.isbn, b.title, b.author, b.category, b.copies, b.price)
		if err != nil {
			return err
		}
		if err := s.AddBook(book); err != nil {
			return err
		}
	}

	alice, err := NewMember("M001", "Alice Johnson", "alice@email.com", "9876543210", MembershipRegular)
	if err != nil {
		return err
	}
	bob, err := NewMember("M002", "Bob Smith", "bob@email.com", "9876543211", MembershipPremium)
	if err != nil {
		return err
	}
	carol, err := NewLibrarian("L001", "Carol Admin", "carol@library.com", "9876543212", "EMP001")
	if err != nil {
		return err
	}
	for _, u := range []*User{alice, bob, carol} {
		if err := s.RegisterUser(u); err != nil {
			return err
		}
	}

	s.logger.Log("Sample data initialized")
	return nil
}
