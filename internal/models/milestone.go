package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gig is a client engagement owned by one freelancer.
type Gig struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	Title      string    `json:"title"`
	ClientName string    `json:"clientName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MilestoneStatus is the project-management column a milestone sits in.
type MilestoneStatus string

const (
	MilestoneToDo       MilestoneStatus = "To Do"
	MilestoneInProgress MilestoneStatus = "In Progress"
	MilestoneBlocked    MilestoneStatus = "Blocked"
	MilestoneDone       MilestoneStatus = "Done"
)

// Milestone is a deliverable within a gig carrying a payment amount.
// PaymentLogged flips once the payment has been recorded as a credit
// transaction in the ledger.
type Milestone struct {
	ID            string          `json:"id"`
	GigID         string          `json:"gig"`
	UserID        string          `json:"user"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Status        MilestoneStatus `json:"status"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	PaymentLogged bool            `json:"paymentLogged"`
	StartDate     *time.Time      `json:"startDate,omitempty"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
