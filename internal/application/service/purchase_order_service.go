package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billing-api/internal/domain/billing"
	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/internal/domain/repository"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/sangkips/billing-api/pkg/email"
	"github.com/sangkips/billing-api/pkg/pagination"
)

// PurchaseOrderService handles purchase order operations
type PurchaseOrderService struct {
	tx        repository.Transactor
	orderRepo repository.PurchaseOrderRepository
	numbers   documentNumbers
	notifier  *Notifier
	now       Clock
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(
	tx repository.Transactor,
	orderRepo repository.PurchaseOrderRepository,
	clientRepo repository.ClientRepository,
	sequenceRepo repository.SequenceRepository,
	notifier *Notifier,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		tx:        tx,
		orderRepo: orderRepo,
		numbers:   documentNumbers{clientRepo: clientRepo, sequenceRepo: sequenceRepo, docType: enum.DocumentTypePurchaseOrder},
		notifier:  notifier,
		now:       utcNow,
	}
}

// PurchaseOrderInput represents the create and update purchase order input
type PurchaseOrderInput struct {
	DocumentInput
	ValidUntil time.Time
}

func purchaseOrderItems(lines []entity.LineItem) []entity.PurchaseOrderItem {
	items := make([]entity.PurchaseOrderItem, len(lines))
	for i, line := range lines {
		items[i] = entity.PurchaseOrderItem{LineItem: line}
	}
	return items
}

// CreatePurchaseOrder creates a DRAFT purchase order with the next BC number
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, input *PurchaseOrderInput) (*entity.PurchaseOrder, error) {
	if err := input.validate(requireDate("valid_until", input.ValidUntil)...); err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.PurchaseOrder{
		ClientID:   input.ClientID,
		ValidUntil: input.ValidUntil,
		Status:     enum.PurchaseOrderStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	order.Items = purchaseOrderItems(billing.Price(&order.PricedDocument, input.Items, input.Discount, input.TaxRate))

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}
		number, err := s.numbers.next(ctx, now)
		if err != nil {
			return err
		}
		order.Number = number
		return apperror.FromStoreError(s.orderRepo.Create(ctx, order), "Purchase order number already taken")
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("purchase_orders").Info().Str("number", order.Number).Msg("Purchase order created")
	return s.GetPurchaseOrder(ctx, order.ID)
}

// GetPurchaseOrder retrieves a purchase order with its client and items
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Purchase order")
	}
	return order, nil
}

// ListPurchaseOrders lists purchase orders, newest first
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, params *repository.PurchaseOrderFilterParams) (*pagination.PaginatedResult[entity.PurchaseOrder], error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(orders, params.Pagination, total), nil
}

// UpdatePurchaseOrder reprices a DRAFT purchase order and replaces its items
func (s *PurchaseOrderService) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, input *PurchaseOrderInput) (*entity.PurchaseOrder, error) {
	if err := input.validate(requireDate("valid_until", input.ValidUntil)...); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Purchase order")
		}
		if err := billing.PurchaseOrderLifecycle.CheckEditable(order.Status); err != nil {
			return err
		}
		if _, err := s.numbers.requireClient(ctx, input.ClientID); err != nil {
			return err
		}

		order.ClientID = input.ClientID
		order.ValidUntil = input.ValidUntil
		order.UpdatedAt = s.now()
		order.Items = purchaseOrderItems(billing.Price(&order.PricedDocument, input.Items, input.Discount, input.TaxRate))
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchaseOrder(ctx, id)
}

// ChangePurchaseOrderStatus applies a manual status transition
func (s *PurchaseOrderService) ChangePurchaseOrderStatus(ctx context.Context, id uuid.UUID, target enum.PurchaseOrderStatus) (*entity.PurchaseOrder, error) {
	order, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == enum.PurchaseOrderStatusSent {
		return nil, apperror.NewInvalidTransitionError("purchase orders are sent through the send action only")
	}
	if err := billing.PurchaseOrderLifecycle.Check(order.Status, target); err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewConflictError("Purchase order status changed concurrently")
	}
	return s.GetPurchaseOrder(ctx, id)
}

// SendPurchaseOrder emails the purchase order. A DRAFT order becomes SENT
// once the email is delivered.
func (s *PurchaseOrderService) SendPurchaseOrder(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error) {
	order, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendPurchaseOrder(ctx, order); err != nil {
		logger.WithComponent("purchase_orders").Error().Err(err).Str("number", order.Number).Msg("Failed to send purchase order")
		return nil, err
	}

	if order.Status == enum.PurchaseOrderStatusDraft {
		ok, err := s.orderRepo.UpdateStatus(ctx, id, enum.PurchaseOrderStatusDraft, enum.PurchaseOrderStatusSent)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.WithComponent("purchase_orders").Warn().Str("number", order.Number).Msg("Purchase order status changed while sending")
			return nil, apperror.NewConflictError("Purchase order status changed while it was being sent")
		}
	}
	return s.GetPurchaseOrder(ctx, id)
}

// DeletePurchaseOrder deletes a purchase order and its items
func (s *PurchaseOrderService) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPurchaseOrder(ctx, id); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, id)
}

// PurchaseOrderPDF renders the purchase order
func (s *PurchaseOrderService) PurchaseOrderPDF(ctx context.Context, id uuid.UUID) (*email.Attachment, error) {
	order, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.notifier.PurchaseOrderPDF(order)
}
