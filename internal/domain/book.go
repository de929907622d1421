package domain

import "time"

// Book is a single library entry owned by one account.
//
// The three reading flags are deliberately independent booleans rather than
// one lifecycle state: a book can be simultaneously exciting, in progress,
// and finished, and the UI treats each as its own marker.
type Book struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	URL       string    `json:"url,omitempty"`
	Excited   bool      `json:"excited"`  // wants to read it soon
	Reading   bool      `json:"reading"`  // currently reading
	Finished  bool      `json:"finished"` // done with it
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// SetIDs lists the sets this book belongs to, when loaded.
	SetIDs []string `json:"set_ids,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}
