package borrow

import (
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/apperr"
)

var (
	ErrNotFound          = apperr.NotFound("borrow record not found")
	ErrStaleTransition   = apperr.Conflict("borrow record was modified concurrently, reload and try again")
	ErrAlreadyReturned   = apperr.Conflict("borrow record is already returned")
	ErrAlreadyHolding    = apperr.Conflict("user already has an active loan for this book")
	ErrExtensionPending  = apperr.Conflict("an extension request is already pending for this loan")
	ErrNoPendingRequest  = apperr.Conflict("there is no pending extension request to decide")
	ErrInvalidExtension  = apperr.Validation("extension days must be a whole number from 1 to 365")
	ErrDueTooLate        = apperr.Validation("due date cannot be after 9999-12-31")
	ErrDueBeforeBorrow   = apperr.Validation("due date cannot be before the borrow date")
	ErrReturnBeforeStart = apperr.Validation("return date cannot be before the borrow date")
	ErrNegativeFine      = apperr.Validation("fine cannot be negative")
	ErrStaffOnly         = apperr.Unauthorized("only librarians and admins can perform this action")
	ErrNotOwner          = apperr.Unauthorized("only the borrower or library staff can perform this action")
	ErrStaffSelfService  = apperr.Unauthorized("staff accounts lend books through the staff desk, not self-service")
)

// Table: borrow_records
type BorrowRecord struct {
	ID         uint64          `gorm:"primaryKey;column:id" json:"-"`
	RecordID   string          `gorm:"column:record_id;size:32;uniqueIndex:ux_borrow_records_record_id" json:"record_id"`
	UserID     string          `gorm:"column:user_id;size:32;not null;index:idx_borrow_records_user" json:"user_id"`
	BookID     string          `gorm:"column:book_id;size:32;not null;index:idx_borrow_records_book" json:"book_id"`
	BorrowDate time.Time       `gorm:"column:borrow_date;type:date;not null" json:"borrow_date"`
	DueDate    time.Time       `gorm:"column:due_date;type:date;not null" json:"due_date"`
	ReturnDate *time.Time      `gorm:"column:return_date;type:date" json:"return_date,omitempty"`
	Status     Status          `gorm:"column:status;type:varchar(20);not null;index:idx_borrow_records_status" json:"status"`
	Fine       decimal.Decimal `gorm:"column:fine;type:decimal(10,2);not null" json:"fine"`
	FineID     *string         `gorm:"column:fine_id;size:32" json:"fine_id,omitempty"`

	ExtensionCount      int        `gorm:"column:extension_count;not null" json:"extension_count"`
	ExtensionTotalDays  int        `gorm:"column:extension_total_days;not null" json:"extension_total_days"`
	LastExtensionDays   int        `gorm:"column:last_extension_days;not null" json:"last_extension_days"`
	LastExtendedAt      *time.Time `gorm:"column:last_extended_at" json:"last_extended_at,omitempty"`
	LastExtensionReason string     `gorm:"column:last_extension_reason;type:text" json:"last_extension_reason"`

	ExtensionRequestStatus   ExtensionRequestStatus `gorm:"column:extension_request_status;size:16;not null" json:"extension_request_status"`
	ExtensionRequestedDays   int                    `gorm:"column:extension_requested_days;not null" json:"extension_requested_days"`
	ExtensionRequestedAt     *time.Time             `gorm:"column:extension_requested_at" json:"extension_requested_at,omitempty"`
	ExtensionRequestedReason string                 `gorm:"column:extension_requested_reason;type:text" json:"extension_requested_reason"`
	ExtensionDecidedAt       *time.Time             `gorm:"column:extension_decided_at" json:"extension_decided_at,omitempty"`
	ExtensionDecidedBy       string                 `gorm:"column:extension_decided_by;size:32" json:"extension_decided_by"`
	ExtensionDecisionNote    string                 `gorm:"column:extension_decision_note;type:text" json:"extension_decision_note"`

	StatusUpdatedAt time.Time `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BorrowRecord) TableName() string { return "borrow_records" }

// Snapshot is the part of a record a concurrent writer could have changed
// under us; saves compare-and-swap on it.
type Snapshot struct {
	Status                 Status
	ExtensionRequestStatus ExtensionRequestStatus
}

func (r *BorrowRecord) Snapshot() Snapshot {
	return Snapshot{Status: r.Status, ExtensionRequestStatus: r.ExtensionRequestStatus}
}
