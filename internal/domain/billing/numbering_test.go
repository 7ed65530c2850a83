package billing

import (
	"testing"

	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "DEV-2025-0001", FormatNumber(enum.DocumentTypeQuote, 2025, 1))
	assert.Equal(t, "BC-2024-0042", FormatNumber(enum.DocumentTypePurchaseOrder, 2024, 42))
	assert.Equal(t, "FAC-2025-12345", FormatNumber(enum.DocumentTypeInvoice, 2025, 12345))
}
