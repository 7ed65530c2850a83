package service

import (
	"context"
	"testing"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreatePurchaseOrder(ctx, &PurchaseOrderInput{
		DocumentInput: f.sampleInput(),
		ValidUntil:    fixedNow.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "BC-2025-0001", order.Number)
	requireDecimal(t, 108, order.Total)

	sent, err := f.orders.SendPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PurchaseOrderStatusSent, sent.Status)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Votre Bon de Commande BC-2025-0001", msgs[0].Subject)
	assert.Equal(t, "BCAliceMartin-2025-03-10.pdf", msgs[0].Attachments[0].Filename)

	_, err = f.orders.UpdatePurchaseOrder(ctx, order.ID, &PurchaseOrderInput{DocumentInput: f.sampleInput(), ValidUntil: fixedNow})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	accepted, err := f.orders.ChangePurchaseOrderStatus(ctx, order.ID, enum.PurchaseOrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, enum.PurchaseOrderStatusAccepted, accepted.Status)

	_, err = f.orders.ChangePurchaseOrderStatus(ctx, order.ID, enum.PurchaseOrderStatusRejected)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))

	require.NoError(t, f.orders.DeletePurchaseOrder(ctx, order.ID))
	_, err = f.orders.GetPurchaseOrder(ctx, order.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestPurchaseOrderSentOnlyThroughSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreatePurchaseOrder(ctx, &PurchaseOrderInput{
		DocumentInput: f.sampleInput(),
		ValidUntil:    fixedNow.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	_, err = f.orders.ChangePurchaseOrderStatus(ctx, order.ID, enum.PurchaseOrderStatusSent)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	assert.Empty(t, f.sender.messages())

	f.sender.onSend = func() {
		f.db.Model(&entity.PurchaseOrder{}).Where("id = ?", order.ID).Update("status", enum.PurchaseOrderStatusRejected)
	}
	_, err = f.orders.SendPurchaseOrder(ctx, order.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.Len(t, f.sender.messages(), 1)

	reloaded, err := f.orders.GetPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PurchaseOrderStatusRejected, reloaded.Status)
}
