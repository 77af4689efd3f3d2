package client

import (
	"context"
	"net/http"
	"net/url"

	"library-circulation/pkg/api"
)

// Availability is the client's view of a book's free copies. Optimistic
// entries were guessed locally after a self-borrow and are replaced by the
// next catalogue fetch; they never feed the state machine.
type Availability struct {
	BookID          string
	AvailableCopies int
	Optimistic      bool
}

func (a Availability) Available() bool { return a.AvailableCopies > 0 }

type CreateBookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn,omitempty"`
	LoanDays int    `json:"loan_days,omitempty"`
	Copies   int    `json:"copies"`
}

// Books fetches the catalogue and replaces the whole availability cache.
func (c *Client) Books(ctx context.Context) ([]api.Book, error) {
	var out []api.Book
	if err := c.call(ctx, "list books", http.MethodGet, "/books", nil, &out); err != nil {
		return nil, err
	}
	fresh := make(map[string]Availability, len(out))
	for _, b := range out {
		fresh[b.BookID] = Availability{BookID: b.BookID, AvailableCopies: b.AvailableCopies}
	}
	c.mu.Lock()
	c.avail = fresh
	c.mu.Unlock()
	return out, nil
}

func (c *Client) Book(ctx context.Context, bookID string) (*api.Book, error) {
	var out api.Book
	if err := c.call(ctx, "get book", http.MethodGet, "/books/"+url.PathEscape(bookID), nil, &out); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.avail[out.BookID] = Availability{BookID: out.BookID, AvailableCopies: out.AvailableCopies}
	c.mu.Unlock()
	return &out, nil
}

func (c *Client) CreateBook(ctx context.Context, in CreateBookRequest) (*api.Book, error) {
	var out api.Book
	if err := c.call(ctx, "create book", http.MethodPost, "/books", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Availability reports the cached availability of a book.
func (c *Client) Availability(bookID string) (Availability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.avail[bookID]
	return a, ok
}

// markBorrowed takes one copy off the cached count and flags the entry as a
// guess. It returns a func that puts the previous entry back.
func (c *Client) markBorrowed(bookID string) (restore func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.avail[bookID]
	next := Availability{BookID: bookID, Optimistic: true}
	if had && prev.AvailableCopies > 0 {
		next.AvailableCopies = prev.AvailableCopies - 1
	}
	c.avail[bookID] = next
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if had {
			c.avail[bookID] = prev
		} else {
			delete(c.avail, bookID)
		}
	}
}
