package domain

import (
	"regexp"
	"strings"
	"time"
)

// SubscriberStatus enumerates the states a subscriber can be in.
type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "ACTIVE"
	SubscriberPending      SubscriberStatus = "PENDING"
	SubscriberUnsubscribed SubscriberStatus = "UNSUBSCRIBED"
)

// Valid reports whether s is one of the known subscriber statuses.
func (s SubscriberStatus) Valid() bool {
	switch s {
	case SubscriberActive, SubscriberPending, SubscriberUnsubscribed:
		return true
	}
	return false
}

// Subscriber represents a single newsletter recipient.
//
// Email is unique and stored lowercase. Soft deletion is a flag flip: the
// row stays in place but is excluded from default listings. Hard deletion
// removes the row entirely.
type Subscriber struct {
	ID            string           `json:"id" db:"id"`
	Email         string           `json:"email" db:"email"`
	Name          string           `json:"name,omitempty" db:"name"`
	Status        SubscriberStatus `json:"status" db:"status"`
	Source        string           `json:"source,omitempty" db:"source"`
	Tags          []string         `json:"tags" db:"tags"`
	Notes         string           `json:"notes,omitempty" db:"notes"`
	CategoryID    *string          `json:"categoryId" db:"category_id"`
	EmailCount    int              `json:"emailCount" db:"email_count"`
	LastEmailSent *time.Time       `json:"lastEmailSent" db:"last_email_sent"`
	SoftDeleted   bool             `json:"softDeleted" db:"soft_deleted"`
	SubscribedAt  time.Time        `json:"subscribedAt" db:"subscribed_at"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

// SubscriberStats holds the aggregate counters shown on the admin dashboard.
type SubscriberStats struct {
	TotalSubscribers   int `json:"totalSubscribers"`
	ActiveSubscribers  int `json:"activeSubscribers"`
	PendingSubscribers int `json:"pendingSubscribers"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email address. All storage and
// comparison goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
