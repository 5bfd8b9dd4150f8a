package library

import (
	"fmt"
	"strings"
)

// Book represents a title in the catalog together with its copy counts.
// AvailableCopies only ever moves through borrowCopy/returnCopy (one step at a
// time) or SetTotalCopies (by the total delta), so 0 <= AvailableCopies <=
// TotalCopies holds at all times.
type Book struct {
	ISBN            string
	Title           string
	Author          string
	Category        string
	TotalCopies     int
	AvailableCopies int
	Price           float64
}

// NewBook creates a book with all copies on the shelf.
func NewBook(isbn, title, author, category string, totalCopies int, price float64) (*Book, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, fmt.Errorf("isbn cannot be empty")
	}
	if totalCopies < 0 {
		return nil, fmt.Errorf("total copies cannot be negative")
	}
	if price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Category:        category,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		Price:           price,
	}, nil
}

// OnLoan returns the number of copies currently out with borrowers.
func (b *Book) OnLoan() int { return b.TotalCopies - b.AvailableCopies }

// IsAvailable reports whether at least one copy is on the shelf.
func (b *Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// borrowCopy takes one copy off the shelf. It reports false when none are left.
func (b *Book) borrowCopy() bool {
	if b.AvailableCopies == 0 {
		return false
	}
	b.AvailableCopies--
	return true
}

// returnCopy puts one copy back, capped at TotalCopies.
func (b *Book) returnCopy() {
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
}

// setTotalCopies adjusts the total and shifts AvailableCopies by the same
// delta, preserving the on-loan count. Reducing the total below the on-loan
// count is rejected.
func (b *Book) setTotalCopies(total int) error {
	if total < b.OnLoan() {
		return newError(KindInvalidState,
			"cannot reduce total copies of %s below the %d currently on loan", b.ISBN, b.OnLoan())
	}
	b.AvailableCopies += total - b.TotalCopies
	b.TotalCopies = total
	return nil
}

func (b *Book) String() string {
	return fmt.Sprintf("Book[ISBN=%s, Title=%s, Author=%s, Available=%d/%d]",
		b.ISBN, b.Title, b.Author, b.AvailableCopies, b.TotalCopies)
}
