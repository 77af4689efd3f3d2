package borrow

import (
	"database/sql/driver"
	"fmt"
)

type Status string

const (
	StatusPendingPickup Status = "pending_pickup"
	StatusBorrowed      Status = "borrowed"
	StatusPendingReturn Status = "pending_return"
	StatusReturned      Status = "returned"

	// legacyPending is still found in old rows and means pending_return.
	// It is accepted on read and never written.
	legacyPending = "pending"
)

// ParseStatus normalises a stored or wire value, mapping the legacy alias.
func ParseStatus(s string) (Status, error) {
	switch s {
	case legacyPending:
		return StatusPendingReturn, nil
	case string(StatusPendingPickup), string(StatusBorrowed), string(StatusPendingReturn), string(StatusReturned):
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown borrow status %q", s)
}

// Active is true for every status except returned.
func (s Status) Active() bool { return s != StatusReturned }

// Accruing is true while the borrower holds the copy, which is when overdue
// fines build up.
func (s Status) Accruing() bool { return s == StatusBorrowed || s == StatusPendingReturn }

func (s *Status) Scan(v any) error {
	var raw string
	switch x := v.(type) {
	case string:
		raw = x
	case []byte:
		raw = string(x)
	case nil:
		return fmt.Errorf("borrow status is NULL")
	default:
		return fmt.Errorf("cannot scan %T into borrow status", v)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if s == legacyPending {
		return string(StatusPendingReturn), nil
	}
	return string(s), nil
}

type ExtensionRequestStatus string

const (
	ExtensionNone        ExtensionRequestStatus = "none"
	ExtensionPending     ExtensionRequestStatus = "pending"
	ExtensionApproved    ExtensionRequestStatus = "approved"
	ExtensionDisapproved ExtensionRequestStatus = "disapproved"
)
