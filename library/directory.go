package library

import (
	"sort"
	"sync"
)

// Directory is the in-memory user store, keyed by user ID.
type Directory struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{users: make(map[string]*User)}
}

// Register adds a user. Fails if the ID is already taken.
func (d *Directory) Register(user *User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[user.ID]; ok {
		return newError(KindDuplicate, "user with ID %s already exists", user.ID)
	}
	d.users[user.ID] = copyUser(user)
	return nil
}

// Get returns a snapshot of the user with the given ID.
func (d *Directory) Get(id string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, newError(KindNotFound, "user with ID %s not found", id)
	}
	return copyUser(u), nil
}

// All returns a snapshot of every user, ordered by ID.
func (d *Directory) All() []*User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyUser(u *User) *User {
	c := *u
	return &c
}
