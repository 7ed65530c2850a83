package enum

import (
	"database/sql/driver"
	"fmt"
)

// DocumentType identifies one of the numbered document kinds
type DocumentType string

const (
	DocumentTypeQuote         DocumentType = "QUOTE"
	DocumentTypePurchaseOrder DocumentType = "PURCHASE_ORDER"
	DocumentTypeInvoice       DocumentType = "INVOICE"
)

func (t DocumentType) String() string {
	return string(t)
}

func (t DocumentType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *DocumentType) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	*t = DocumentType(str)
	return nil
}

func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported status value of type %T", value)
}
