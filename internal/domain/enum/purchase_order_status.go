package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PurchaseOrderStatus represents the lifecycle status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft    PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSent     PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusAccepted PurchaseOrderStatus = "ACCEPTED"
	PurchaseOrderStatusRejected PurchaseOrderStatus = "REJECTED"
)

// ParsePurchaseOrderStatus parses a status name
func ParsePurchaseOrderStatus(s string) (PurchaseOrderStatus, error) {
	switch st := PurchaseOrderStatus(s); st {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusAccepted, PurchaseOrderStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown purchase order status %q", s)
}

func (s PurchaseOrderStatus) String() string {
	return string(s)
}

func (s *PurchaseOrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePurchaseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PurchaseOrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PurchaseOrderStatus) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	if str == "" {
		*s = PurchaseOrderStatusDraft
		return nil
	}
	*s = PurchaseOrderStatus(str)
	return nil
}
