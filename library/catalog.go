package library

import (
	"sort"
	"strings"
	"sync"
)

// Catalog is the in-memory book store, keyed by ISBN. All reads hand out
// snapshots; copy counts only move through BorrowCopy, ReturnCopy,
// SetTotalCopies, and the reconciliation inside Update.
type Catalog struct {
	mu    sync.RWMutex
	books map[string]*Book
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{books: make(map[string]*Book)}
}

// Add inserts a new book. Fails if the ISBN is already present.
func (c *Catalog) Add(book *Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.books[book.ISBN]; ok {
		return newError(KindDuplicate, "book with ISBN %s already exists", book.ISBN)
	}
	c.books[book.ISBN] = copyBook(book)
	return nil
}

// Get returns a snapshot of the book with the given ISBN.
func (c *Catalog) Get(isbn string) (*Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.books[isbn]
	if !ok {
		return nil, newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	return copyBook(b), nil
}

// Update replaces the record for isbn with updated, reconciling the copy
// counts: the on-loan count of the old record is preserved, so
// AvailableCopies becomes newTotal minus the copies currently out. A new
// total below the on-loan count is rejected.
func (c *Catalog) Update(isbn string, updated *Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old, ok := c.books[isbn]
	if !ok {
		return newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	onLoan := old.OnLoan()
	if updated.TotalCopies < onLoan {
		return newError(KindInvalidState,
			"cannot set total copies of %s below the %d currently on loan", isbn, onLoan)
	}

	b := copyBook(updated)
	b.ISBN = isbn
	b.AvailableCopies = b.TotalCopies - onLoan
	if b.AvailableCopies < 0 {
		b.AvailableCopies = 0
	}
	c.books[isbn] = b
	return nil
}

// SetTotalCopies changes a book's total, keeping its on-loan count intact.
func (c *Catalog) SetTotalCopies(isbn string, total int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.books[isbn]
	if !ok {
		return newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	return b.setTotalCopies(total)
}

// Remove deletes a book. Books with copies on loan cannot be removed, so the
// ledger's active loans always resolve to a catalog entry.
func (c *Catalog) Remove(isbn string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.books[isbn]
	if !ok {
		return newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	if b.OnLoan() > 0 {
		return newError(KindInvalidState, "book %s has %d copies on loan", isbn, b.OnLoan())
	}
	delete(c.books, isbn)
	return nil
}

// BorrowCopy takes one copy of isbn off the shelf.
func (c *Catalog) BorrowCopy(isbn string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.books[isbn]
	if !ok {
		return newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	if !b.borrowCopy() {
		return newError(KindUnavailable, "book %s is not available for borrowing", isbn)
	}
	return nil
}

// ReturnCopy puts one copy of isbn back on the shelf, capped at the total.
func (c *Catalog) ReturnCopy(isbn string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.books[isbn]
	if !ok {
		return newError(KindNotFound, "book with ISBN %s not found", isbn)
	}
	b.returnCopy()
	return nil
}

// All returns a snapshot of every book, ordered by ISBN for stable listings.
func (c *Catalog) All() []*Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Book, 0, len(c.books))
	for _, b := range c.books {
		out = append(out, copyBook(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out
}

// Search returns books whose title, author, or category contains keyword,
// case-insensitively.
func (c *Catalog) Search(keyword string) []*Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kw := strings.ToLower(keyword)
	var out []*Book
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(b.Title), kw) ||
			strings.Contains(strings.ToLower(b.Author), kw) ||
			strings.Contains(strings.ToLower(b.Category), kw) {
			out = append(out, copyBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out
}

func copyBook(b *Book) *Book {
	c := *b
	return &c
}
