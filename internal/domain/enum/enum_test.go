package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStatusJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Status QuoteStatus `json:"status"`
	}{QuoteStatusAccepted})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ACCEPTED"}`, string(raw))

	var decoded struct {
		Status QuoteStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"SENT"}`), &decoded))
	assert.Equal(t, QuoteStatusSent, decoded.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"PAID"}`), &decoded))
}

func TestInvoiceStatusParse(t *testing.T) {
	st, err := ParseInvoiceStatus("OVERDUE")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverdue, st)

	_, err = ParseInvoiceStatus("sent")
	assert.Error(t, err)
}

func TestStatusScan(t *testing.T) {
	var q QuoteStatus
	require.NoError(t, q.Scan([]byte("CONVERTED")))
	assert.Equal(t, QuoteStatusConverted, q)

	var p PurchaseOrderStatus
	require.NoError(t, p.Scan(nil))
	assert.Equal(t, PurchaseOrderStatusDraft, p)

	var i InvoiceStatus
	assert.Error(t, i.Scan(42))
}
