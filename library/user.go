package library

import "fmt"

// UserKind is the closed set of user variants. Adding a kind means extending
// the switch in MaxBooksAllowed.
type UserKind int

const (
	UserMember UserKind = iota
	UserLibrarian
)

func (k UserKind) String() string {
	switch k {
	case UserMember:
		return "Member"
	case UserLibrarian:
		return "Librarian"
	}
	return "Unknown"
}

// MembershipType distinguishes member tiers.
type MembershipType string

const (
	MembershipRegular MembershipType = "REGULAR"
	MembershipPremium MembershipType = "PREMIUM"
)

// Per-variant caps on simultaneous active loans.
const (
	regularMaxBooks   = 5
	premiumMaxBooks   = 10
	librarianMaxBooks = 20
)

// User is a registered borrower. Kind selects the variant; Membership is only
// meaningful for members, EmployeeID only for librarians.
type User struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Kind       UserKind
	Membership MembershipType
	EmployeeID string
}

// NewMember creates a member with the given tier.
func NewMember(id, name, email, phone string, membership MembershipType) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	if membership != MembershipRegular && membership != MembershipPremium {
		return nil, fmt.Errorf("unknown membership type %q", membership)
	}
	return &User{ID: id, Name: name, Email: email, Phone: phone, Kind: UserMember, Membership: membership}, nil
}

// NewLibrarian creates a librarian identified by an employee ID.
func NewLibrarian(id, name, email, phone, employeeID string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	return &User{ID: id, Name: name, Email: email, Phone: phone, Kind: UserLibrarian, EmployeeID: employeeID}, nil
}

// MaxBooksAllowed returns the borrowing cap for the user's variant.
func (u *User) MaxBooksAllowed() int {
	switch u.Kind {
	case UserMember:
		if u.Membership == MembershipPremium {
			return premiumMaxBooks
		}
		return regularMaxBooks
	case UserLibrarian:
		return librarianMaxBooks
	}
	return 0
}

func (u *User) String() string {
	return fmt.Sprintf("%s[ID=%s, Name=%s, Email=%s]", u.Kind, u.ID, u.Name, u.Email)
}
