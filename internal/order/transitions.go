package order

import (
	"fmt"

	"irokart-be/internal/apperr"
)

var transitions = map[Status][]Status{
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing:      {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery:  {StatusDelivered, StatusShipped},
	StatusDelivered:       {StatusReturnRequested},
	StatusReturnRequested: {StatusReturned, StatusDelivered},
	StatusReturned:        {StatusRefunded},
	StatusCancelled:       {StatusRefunded},
	StatusRefunded:        nil,
}

// CanTransition reports whether an order in from may move to to. Staying in
// the same status is always allowed.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned when a status change is not in the table.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return apperr.Wrap(apperr.Conflict, e.Error(), ErrInvalidTransition)
}

// effects lists what a real (non-repeat) transition does to stock and items.
type effects struct {
	fulfillment    FulfillmentStatus
	commitStock    bool
	releaseStock   bool
	restock        bool
	refundPayments bool
}

func effectsOf(from, to Status) effects {
	if from == to {
		return effects{}
	}
	switch to {
	case StatusProcessing:
		return effects{fulfillment: FulfillmentProcessing}
	case StatusShipped:
		return effects{commitStock: from == StatusConfirmed || from == StatusProcessing}
	case StatusDelivered:
		return effects{fulfillment: FulfillmentFulfilled}
	case StatusCancelled:
		return effects{fulfillment: FulfillmentCancelled, releaseStock: true}
	case StatusReturned:
		return effects{fulfillment: FulfillmentReturned, restock: true}
	case StatusRefunded:
		return effects{refundPayments: true}
	}
	return effects{}
}

func (e effects) touchesStock() bool {
	return e.commitStock || e.releaseStock || e.restock
}
