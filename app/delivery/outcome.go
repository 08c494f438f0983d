package delivery

import (
	"errors"

	"github.com/lysyi3m/wire-comb/app/ans"
	"github.com/lysyi3m/wire-comb/app/wire"
)

var (
	ErrIncompleteItem   = errors.New("item is incomplete")
	ErrAlreadyDelivered = errors.New("item was already delivered")
	ErrDeliveryFailed   = errors.New("delivery failed")
	ErrUnsupportedKind  = errors.New("item kind is not supported")
)

type Status string

const (
	StatusDelivered        Status = "delivered"
	StatusAlreadyDelivered Status = "already_delivered"
	StatusIncompleteItem   Status = "incomplete_item"
	StatusMismatchedKind   Status = "mismatched_kind"
	StatusDeliveryError    Status = "delivery_error"
	StatusUnsupported      Status = "unsupported"
)

// Outcome is the result of one item's delivery attempt.
type Outcome struct {
	SourceID  string
	ContentID string
	Kind      wire.Kind
	Status    Status
	// Updated is set when an existing remote document was revised instead of created.
	Updated bool
	Err     error
}

func newOutcome(item wire.Item, contentID string, updated bool, err error) Outcome {
	return Outcome{
		SourceID:  item.SourceID,
		ContentID: contentID,
		Kind:      item.Kind,
		Status:    statusFor(err),
		Updated:   updated,
		Err:       err,
	}
}

func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusDelivered
	case errors.Is(err, ErrAlreadyDelivered):
		return StatusAlreadyDelivered
	case errors.Is(err, ErrUnsupportedKind):
		return StatusUnsupported
	case errors.Is(err, ans.ErrMismatchedKind):
		return StatusMismatchedKind
	case errors.Is(err, ErrIncompleteItem), errors.Is(err, ans.ErrIncomplete):
		return StatusIncompleteItem
	default:
		return StatusDeliveryError
	}
}

func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
