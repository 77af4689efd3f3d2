// Package api holds the JSON bodies the circulation service sends back.
// Dates are YYYY-MM-DD strings and money is a fixed two-decimal string.
package api

import "time"

type User struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	Created  time.Time `json:"created_at"`
}

// Session is handed out on login; it is the whole session.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Book struct {
	BookID          string    `json:"book_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	LoanDays        int       `json:"loan_days"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
}

// Record is a borrow record.
type Record struct {
	RecordID   string  `json:"record_id"`
	UserID     string  `json:"user_id"`
	BookID     string  `json:"book_id"`
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date"`
	Status     string  `json:"status"`
	Fine       string  `json:"fine"`
	FineID     *string `json:"fine_id,omitempty"`

	ExtensionCount      int        `json:"extension_count"`
	ExtensionTotalDays  int        `json:"extension_total_days"`
	LastExtensionDays   int        `json:"last_extension_days"`
	LastExtendedAt      *time.Time `json:"last_extended_at"`
	LastExtensionReason string     `json:"last_extension_reason"`

	ExtensionRequestStatus   string     `json:"extension_request_status"`
	ExtensionRequestedDays   int        `json:"extension_requested_days"`
	ExtensionRequestedAt     *time.Time `json:"extension_requested_at"`
	ExtensionRequestedReason string     `json:"extension_requested_reason"`
	ExtensionDecidedAt       *time.Time `json:"extension_decided_at"`
	ExtensionDecidedBy       string     `json:"extension_decided_by"`
	ExtensionDecisionNote    string     `json:"extension_decision_note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExtensionResult struct {
	// Policy is "immediate" or "requires_approval".
	Policy string `json:"policy"`
	Record Record `json:"record"`
}

type Fine struct {
	FineID     string     `json:"fine_id"`
	UserID     string     `json:"user_id"`
	RecordID   *string    `json:"record_id"`
	Amount     string     `json:"amount"`
	Reason     string     `json:"reason"`
	Note       string     `json:"note"`
	Status     string     `json:"status"`
	ResolvedAt *time.Time `json:"resolved_at"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Proof struct {
	ProofID     string    `json:"proof_id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type SubmitProofResult struct {
	Proof Proof `json:"proof"`
	Fine  Fine  `json:"fine"`
}
