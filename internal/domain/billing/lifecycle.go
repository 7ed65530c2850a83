package billing

import (
	"fmt"
	"time"

	"github.com/sangkips/billing-api/internal/domain/enum"
	"github.com/sangkips/billing-api/pkg/apperror"
)

// Machine is a transition table keyed by target state
type Machine[S ~string] struct {
	kind  string
	draft S
	from  map[S][]S
}

// CanTransition reports whether from -> to is a listed transition
func (m Machine[S]) CanTransition(from, to S) bool {
	for _, s := range m.from[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Check returns an InvalidTransition error unless from -> to is listed
func (m Machine[S]) Check(from, to S) error {
	if m.CanTransition(from, to) {
		return nil
	}
	return apperror.NewInvalidTransitionError(
		fmt.Sprintf("cannot change %s status from %s to %s", m.kind, from, to))
}

// CheckEditable rejects edits of items, discount, tax or dates outside DRAFT
func (m Machine[S]) CheckEditable(current S) error {
	if current == m.draft {
		return nil
	}
	return apperror.NewInvalidTransitionError(
		fmt.Sprintf("%s can only be edited while %s, current status is %s", m.kind, m.draft, current))
}

// Terminal reports whether no transition leaves s
func (m Machine[S]) Terminal(s S) bool {
	for _, sources := range m.from {
		for _, src := range sources {
			if src == s {
				return false
			}
		}
	}
	return true
}

var QuoteLifecycle = Machine[enum.QuoteStatus]{
	kind:  "quote",
	draft: enum.QuoteStatusDraft,
	from: map[enum.QuoteStatus][]enum.QuoteStatus{
		enum.QuoteStatusSent:      {enum.QuoteStatusDraft},
		enum.QuoteStatusAccepted:  {enum.QuoteStatusDraft, enum.QuoteStatusSent},
		enum.QuoteStatusRejected:  {enum.QuoteStatusDraft, enum.QuoteStatusSent},
		enum.QuoteStatusConverted: {enum.QuoteStatusAccepted},
	},
}

var PurchaseOrderLifecycle = Machine[enum.PurchaseOrderStatus]{
	kind:  "purchase order",
	draft: enum.PurchaseOrderStatusDraft,
	from: map[enum.PurchaseOrderStatus][]enum.PurchaseOrderStatus{
		enum.PurchaseOrderStatusSent:     {enum.PurchaseOrderStatusDraft},
		enum.PurchaseOrderStatusAccepted: {enum.PurchaseOrderStatusDraft, enum.PurchaseOrderStatusSent},
		enum.PurchaseOrderStatusRejected: {enum.PurchaseOrderStatusDraft, enum.PurchaseOrderStatusSent},
	},
}

// InvoiceLifecycle has no OVERDUE target: it is a read-time projection
var InvoiceLifecycle = Machine[enum.InvoiceStatus]{
	kind:  "invoice",
	draft: enum.InvoiceStatusDraft,
	from: map[enum.InvoiceStatus][]enum.InvoiceStatus{
		enum.InvoiceStatusSent:      {enum.InvoiceStatusDraft},
		enum.InvoiceStatusPaid:      {enum.InvoiceStatusDraft, enum.InvoiceStatusSent},
		enum.InvoiceStatusCancelled: {enum.InvoiceStatusDraft, enum.InvoiceStatusSent},
	},
}

// EffectiveInvoiceStatus projects OVERDUE for sent invoices past their due date
func EffectiveInvoiceStatus(status enum.InvoiceStatus, dueDate, now time.Time) enum.InvoiceStatus {
	if status == enum.InvoiceStatusSent && dueDate.Before(now) {
		return enum.InvoiceStatusOverdue
	}
	return status
}
