package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
)

// ParseQuoteStatus parses a status name
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch st := QuoteStatus(s); st {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusConverted:
		return st, nil
	}
	return "", fmt.Errorf("unknown quote status %q", s)
}

func (s QuoteStatus) String() string {
	return string(s)
}

func (s *QuoteStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseQuoteStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s QuoteStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *QuoteStatus) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	if str == "" {
		*s = QuoteStatusDraft
		return nil
	}
	*s = QuoteStatus(str)
	return nil
}
