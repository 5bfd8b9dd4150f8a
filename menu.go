package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"library-lending/library"

	"golang.org/x/term"
)

// menu drives the interactive console. It only ever talks to the
// LendingService; all state lives behind it.
type menu struct {
	service *library.LendingService
	sc      *bufio.Scanner
	isTTY   bool
}

func newMenu(service *library.LendingService, in io.Reader) *menu {
	return &menu{
		service: service,
		sc:      bufio.NewScanner(in),
		isTTY:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (m *menu) run() {
	m.clearScreen()
	fmt.Println("========================================")
	fmt.Println("  LIBRARY MANAGEMENT SYSTEM")
	fmt.Println("========================================")

	for {
		fmt.Println("\n========== MAIN MENU ==========")
		fmt.Println("1. Book Management")
		fmt.Println("2. User Management")
		fmt.Println("3. Transaction Management")
		fmt.Println("4. View Analytics")
		fmt.Println("5. Exit")
		fmt.Println("================================")

		choice, ok := m.readInt("Enter your choice: ")
		if !ok {
			return
		}
		switch choice {
		case 1:
			m.bookMenu()
		case 2:
			m.userMenu()
		case 3:
			m.transactionMenu()
		case 4:
			m.showAnalytics()
		case 5:
			fmt.Println("Thank you for using the Library Management System!")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

// clearScreen wipes the terminal before the banner; skipped when stdout is a
// pipe so captured output stays readable.
func (m *menu) clearScreen() {
	if m.isTTY {
		fmt.Print("\033[2J\033[H")
	}
}

// ------------------ Book management ------------------

func (m *menu) bookMenu() {
	fmt.Println("\n----- Book Management -----")
	fmt.Println("1. Add Book")
	fmt.Println("2. View All Books")
	fmt.Println("3. Search Books")
	fmt.Println("4. Update Book")
	fmt.Println("5. Remove Book")
	fmt.Println("6. Back to Main Menu")

	choice, ok := m.readInt("Enter choice: ")
	if !ok {
		return
	}
	switch choice {
	case 1:
		m.addBook()
	case 2:
		m.viewAllBooks()
	case 3:
		m.searchBooks()
	case 4:
		m.updateBook()
	case 5:
		m.removeBook()
	case 6:
		return
	default:
		fmt.Println("Invalid choice")
	}
}

func (m *menu) addBook() {
	fmt.Println("\n--- Add New Book ---")
	isbn, ok := m.readString("Enter ISBN: ")
	if !ok {
		return
	}
	if !library.IsValidISBN(isbn) {
		fmt.Println("Error: invalid ISBN format")
		return
	}
	title, ok := m.readString("Enter Title: ")
	if !ok {
		return
	}
	if library.IsBlank(title) {
		fmt.Println("Error: title cannot be empty")
		return
	}
	author, ok := m.readString("Enter Author: ")
	if !ok {
		return
	}
	category, ok := m.readString("Enter Category: ")
	if !ok {
		return
	}
	copies, ok := m.readInt("Enter Total Copies: ")
	if !ok {
		return
	}
	price, ok := m.readFloat("Enter Price: ")
	if !ok {
		return
	}

	book, err := library.NewBook(isbn, title, author, category, copies, price)
	if err != nil {
		printErr(err)
		return
	}
	if err := m.service.AddBook(book); err != nil {
		printErr(err)
		return
	}
	fmt.Println("Book added successfully!")
}

func (m *menu) viewAllBooks() {
	fmt.Println("\n--- All Books ---")
	books := m.service.Books()
	if len(books) == 0 {
		fmt.Println("No books available.")
		return
	}

	fmt.Printf("%-20s %-30s %-25s %-20s %-10s %-10s\n",
		"ISBN", "Title", "Author", "Category", "Available", "Total")
	fmt.Println(strings.Repeat("-", 120))
	for _, b := range books {
		fmt.Printf("%-20s %-30s %-25s %-20s %-10d %-10d\n",
			b.ISBN, truncate(b.Title, 30), truncate(b.Author, 25), truncate(b.Category, 20),
			b.AvailableCopies, b.TotalCopies)
	}
}

func (m *menu) searchBooks() {
	keyword, ok := m.readString("Enter search keyword: ")
	if !ok {
		return
	}
	results := m.service.SearchBooks(keyword)

	fmt.Println("\n--- Search Results ---")
	if len(results) == 0 {
		fmt.Println("No books found matching: " + keyword)
		return
	}
	for _, b := range results {
		fmt.Println(b)
	}
}

func (m *menu) updateBook() {
	isbn, ok := m.readString("Enter ISBN of book to update: ")
	if !ok {
		return
	}
	book, err := m.service.Book(isbn)
	if err != nil {
		printErr(err)
		return
	}

	fmt.Println("Current details:", book)
	fmt.Println("Enter new details (press Enter to keep current value):")
	title := m.readStringOptional("New Title: ", book.Title)
	author := m.readStringOptional("New Author: ", book.Author)
	category := m.readStringOptional("New Category: ", book.Category)
	copies, ok := m.readIntOptional(fmt.Sprintf("New Total Copies (%d): ", book.TotalCopies), book.TotalCopies)
	if !ok {
		return
	}

	// Only the copy count changed: adjust it in place without replacing the
	// record.
	if title == book.Title && author == book.Author && category == book.Category {
		if err := m.service.SetBookTotalCopies(isbn, copies); err != nil {
			printErr(err)
			return
		}
		fmt.Println("Book updated successfully!")
		return
	}

	updated, err := library.NewBook(isbn, title, author, category, copies, book.Price)
	if err != nil {
		printErr(err)
		return
	}
	if err := m.service.UpdateBook(isbn, updated); err != nil {
		printErr(err)
		return
	}
	fmt.Println("Book updated successfully!")
}

func (m *menu) removeBook() {
	isbn, ok := m.readString("Enter ISBN of book to remove: ")
	if !ok {
		return
	}
	if err := m.service.RemoveBook(isbn); err != nil {
		printErr(err)
		return
	}
	fmt.Println("Book removed successfully!")
}

// ------------------ User management ------------------

func (m *menu) userMenu() {
	fmt.Println("\n----- User Management -----")
	fmt.Println("1. Register New User")
	fmt.Println("2. View All Users")
	fmt.Println("3. View User Transactions")
	fmt.Println("4. Back to Main Menu")

	choice, ok := m.readInt("Enter choice: ")
	if !ok {
		return
	}
	switch choice {
	case 1:
		m.registerUser()
	case 2:
		m.viewAllUsers()
	case 3:
		m.viewUserTransactions()
	case 4:
		return
	default:
		fmt.Println("Invalid choice")
	}
}

func (m *menu) registerUser() {
	fmt.Println("\n--- Register New User ---")
	userID, ok := m.readString("Enter User ID: ")
	if !ok {
		return
	}
	name, ok := m.readString("Enter Name: ")
	if !ok {
		return
	}
	if library.IsBlank(name) {
		fmt.Println("Error: name cannot be empty")
		return
	}
	email, ok := m.readString("Enter Email: ")
	if !ok {
		return
	}
	if !library.IsValidEmail(email) {
		fmt.Println("Error: invalid email address")
		return
	}
	phone, ok := m.readString("Enter Phone: ")
	if !ok {
		return
	}
	if !library.IsValidPhone(phone) {
		fmt.Println("Error: phone must be a 10-digit number")
		return
	}

	fmt.Println("Select User Type:")
	fmt.Println("1. Member")
	fmt.Println("2. Librarian")
	userType, ok := m.readInt("Enter choice: ")
	if !ok {
		return
	}

	var (
		user *library.User
		err  error
	)
	if userType == 1 {
		fmt.Println("Select Membership Type:")
		fmt.Println("1. REGULAR")
		fmt.Println("2. PREMIUM")
		tier, ok := m.readInt("Enter choice: ")
		if !ok {
			return
		}
		membership := library.MembershipRegular
		if tier == 2 {
			membership = library.MembershipPremium
		}
		user, err = library.NewMember(userID, name, email, phone, membership)
	} else {
		empID, ok := m.readString("Enter Employee ID: ")
		if !ok {
			return
		}
		user, err = library.NewLibrarian(userID, name, email, phone, empID)
	}
	if err != nil {
		printErr(err)
		return
	}

	if err := m.service.RegisterUser(user); err != nil {
		printErr(err)
		return
	}
	fmt.Println("User registered successfully!")
}

func (m *menu) viewAllUsers() {
	fmt.Println("\n--- All Users ---")
	users := m.service.Users()
	if len(users) == 0 {
		fmt.Println("No users registered.")
		return
	}
	for _, u := range users {
		fmt.Println(u)
	}
}

func (m *menu) viewUserTransactions() {
	userID, ok := m.readString("Enter User ID: ")
	if !ok {
		return
	}
	transactions, err := m.service.UserTransactions(userID)
	if err != nil {
		printErr(err)
		return
	}

	fmt.Println("\n--- User Transactions ---")
	if len(transactions) == 0 {
		fmt.Println("No transactions found for user: " + userID)
		return
	}
	for _, t := range transactions {
		fmt.Println(t)
		if t.Fine > 0 {
			fmt.Printf("  Fine: Rs. %.2f\n", t.Fine)
		}
	}
}

// ------------------ Transaction management ------------------

func (m *menu) transactionMenu() {
	fmt.Println("\n----- Transaction Management -----")
	fmt.Println("1. Borrow Book")
	fmt.Println("2. Return Book")
	fmt.Println("3. View Active Transactions")
	fmt.Println("4. Back to Main Menu")

	choice, ok := m.readInt("Enter choice: ")
	if !ok {
		return
	}
	switch choice {
	case 1:
		m.borrowBook()
	case 2:
		m.returnBook()
	case 3:
		m.viewActiveTransactions()
	case 4:
		return
	default:
		fmt.Println("Invalid choice")
	}
}

func (m *menu) borrowBook() {
	userID, ok := m.readString("Enter User ID: ")
	if !ok {
		return
	}
	isbn, ok := m.readString("Enter Book ISBN: ")
	if !ok {
		return
	}

	t, err := m.service.Borrow(userID, isbn)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Println("Book borrowed successfully!")
	fmt.Println("Transaction ID:", t.ID)
	fmt.Println("Due Date:", t.DueDate.Format("2006-01-02"))
}

func (m *menu) returnBook() {
	transactionID, ok := m.readString("Enter Transaction ID: ")
	if !ok {
		return
	}

	t, err := m.service.Return(transactionID)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Println("Book returned successfully!")
	if t.Fine > 0 {
		fmt.Printf("Fine Amount: Rs. %.2f\n", t.Fine)
	} else {
		fmt.Println("No fine applicable.")
	}
}

func (m *menu) viewActiveTransactions() {
	fmt.Println("\n--- Active Transactions ---")
	transactions := m.service.ActiveTransactions()
	if len(transactions) == 0 {
		fmt.Println("No active transactions.")
		return
	}
	for _, t := range transactions {
		fmt.Println(t)
	}
}

// ------------------ Analytics ------------------

func (m *menu) showAnalytics() {
	fmt.Println("\n========== ANALYTICS ==========")

	fmt.Println("\n1. Books by Category:")
	for category, count := range m.service.CountsByCategory() {
		fmt.Printf("   %s: %d books\n", category, count)
	}

	fmt.Println("\n2. Top 5 Most Borrowed Books:")
	for i, b := range m.service.MostBorrowed(5) {
		fmt.Printf("   %d. %s by %s\n", i+1, b.Title, b.Author)
	}

	fmt.Println("\n3. Total Fines Collected:")
	fmt.Printf("   Rs. %.2f\n", m.service.TotalFinesCollected())

	fmt.Println("\n================================")
}

// ------------------ Input helpers ------------------

func (m *menu) readString(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

func (m *menu) readStringOptional(prompt, defaultValue string) string {
	input, ok := m.readString(prompt)
	if !ok || input == "" {
		return defaultValue
	}
	return input
}

func (m *menu) readInt(prompt string) (int, bool) {
	for {
		input, ok := m.readString(prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			fmt.Println("Invalid number. Please try again.")
			continue
		}
		return n, true
	}
}

func (m *menu) readIntOptional(prompt string, defaultValue int) (int, bool) {
	input, ok := m.readString(prompt)
	if !ok {
		return 0, false
	}
	if input == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		fmt.Println("Invalid number, keeping current value.")
		return defaultValue, true
	}
	return n, true
}

func (m *menu) readFloat(prompt string) (float64, bool) {
	for {
		input, ok := m.readString(prompt)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(input, 64)
		if err != nil {
			fmt.Println("Invalid number. Please try again.")
			continue
		}
		return f, true
	}
}

func printErr(err error) {
	var le *library.Error
	if errors.As(err, &le) {
		fmt.Println("Error:", le.Message)
		return
	}
	fmt.Println("Unexpected error:", err)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
