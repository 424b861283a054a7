package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleReader    Role = "reader"
)

type CopyStatus string

const (
	CopyAvailable CopyStatus = "available"
	CopyRequested CopyStatus = "requested"
	CopyBorrowed  CopyStatus = "borrowed"
	CopyLost      CopyStatus = "lost"
	CopyWithdrawn CopyStatus = "withdrawn"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

type RecordStatus string

const (
	RecordBorrowed RecordStatus = "borrowed"
	RecordReturned RecordStatus = "returned"
	RecordOverdue  RecordStatus = "overdue"
	RecordLost     RecordStatus = "lost"
)

// Timestamps is composed into every persisted entity.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           Role      `json:"role" db:"role"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	Timestamps
}

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Timestamps
}

type BookTitle struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	ISBN        string    `json:"isbn" db:"isbn"`
	Description string    `json:"description" db:"description"`
	Publisher   string    `json:"publisher" db:"publisher"`
	CategoryID  uuid.UUID `json:"categoryId" db:"category_id"`
	Timestamps
}

// BookCopy is one physical lendable unit of a title. Its status is the
// authoritative availability flag and is mutated only by the borrow service.
type BookCopy struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TitleID       uuid.UUID  `json:"titleId" db:"title_id"`
	Edition       string     `json:"edition" db:"edition"`
	PublishedYear int        `json:"publishedYear" db:"published_year"`
	Barcode       string     `json:"barcode" db:"barcode"`
	Status        CopyStatus `json:"status" db:"status"`
	Timestamps
}

type BorrowRequest struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      uuid.UUID     `json:"userId" db:"user_id"`
	BookID      uuid.UUID     `json:"bookId" db:"book_id"`
	Status      RequestStatus `json:"status" db:"status"`
	RequestedAt time.Time     `json:"requestedAt" db:"requested_at"`
	Timestamps
}

type BorrowRecord struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       uuid.UUID    `json:"userId" db:"user_id"`
	BookID       uuid.UUID    `json:"bookId" db:"book_id"`
	Status       RecordStatus `json:"status" db:"status"`
	BorrowedDate time.Time    `json:"borrowedDate" db:"borrowed_date"`
	DueDate      time.Time    `json:"dueDate" db:"due_date"`
	ReturnDate   *time.Time   `json:"returnDate" db:"return_date"`
	Timestamps
}

// Active reports whether the record still holds the copy.
func (r BorrowRecord) Active() bool {
	return r.Status == RecordBorrowed || r.Status == RecordOverdue
}

type Notification struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	UserID  uuid.UUID  `json:"userId" db:"user_id"`
	Message string     `json:"message" db:"message"`
	SentAt  time.Time  `json:"sentAt" db:"sent_at"`
	ReadAt  *time.Time `json:"readAt" db:"read_at"`
	Timestamps
}

// Actor identifies the authenticated caller of a borrow operation.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type TitleSearchFilter struct {
	Title      string
	Author     string
	CategoryID uuid.UUID
	Available  *bool
	Page       int
	Size       int
}

// TitleSummary is the inventory projection over BookTitle x BookCopy.
type TitleSummary struct {
	BookTitle
	TotalCopies     int `json:"totalCopies" db:"total_copies"`
	AvailableCopies int `json:"availableCopies" db:"available_copies"`
}

type ListTitles struct {
	Paging `json:",inline"`
	Items  []TitleSummary `json:"items"`
}

type ListRecords struct {
	Paging `json:",inline"`
	Items  []BorrowRecord `json:"items"`
}
