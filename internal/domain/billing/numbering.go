package billing

import (
	"fmt"

	"github.com/sangkips/billing-api/internal/domain/enum"
)

// Prefix returns the number prefix of a document type
func Prefix(docType enum.DocumentType) string {
	switch docType {
	case enum.DocumentTypeQuote:
		return "DEV"
	case enum.DocumentTypePurchaseOrder:
		return "BC"
	case enum.DocumentTypeInvoice:
		return "FAC"
	}
	return "DOC"
}

// FormatNumber renders a sequence ordinal as {PREFIX}-{year}-{0000}
func FormatNumber(docType enum.DocumentType, year int, ordinal int64) string {
	return fmt.Sprintf("%s-%d-%04d", Prefix(docType), year, ordinal)
}
