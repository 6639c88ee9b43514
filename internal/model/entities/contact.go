package entities

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type QueryType string

const (
	QuerySoilHealth QueryType = "Soil Health"
	QueryCropIssue  QueryType = "Crop Issue"
	QueryPestAlert  QueryType = "Pest Alert"
	QueryOther      QueryType = "Other"
)

// ContactQuery is a row of contact_queries.
type ContactQuery struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	QueryType QueryType `json:"query_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (q ContactQuery) Validate() error {
	phone := strings.TrimSpace(q.Phone)
	if len(phone) < 10 {
		return fmt.Errorf("%w: contact number must be at least 10 digits", ErrInvalidRecord)
	}
	if len(phone) > 15 {
		return fmt.Errorf("%w: contact number must not exceed 15 digits", ErrInvalidRecord)
	}
	if q.Email != "" {
		if _, err := mail.ParseAddress(q.Email); err != nil {
			return fmt.Errorf("%w: invalid email format", ErrInvalidRecord)
		}
	}
	switch q.QueryType {
	case QuerySoilHealth, QueryCropIssue, QueryPestAlert, QueryOther:
	default:
		return fmt.Errorf("%w: unknown query type %q", ErrInvalidRecord, q.QueryType)
	}
	if len([]rune(strings.TrimSpace(q.Message))) < 5 {
		return fmt.Errorf("%w: message must be at least 5 characters", ErrInvalidRecord)
	}
	return nil
}
