package event

import (
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
	"github.com/nova-metrics/eventpipe/pkg/validator"
)

// Validator enforces the constraints of spec §4.H: batch size 1-1000,
// required fields, id/length bounds, and a non-future occurrence
// timestamp compared in its own timezone.
type Validator struct {
	v *validator.Validator
}

// NewValidator builds a Validator with the event package's custom tags
// registered.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// ValidateBatch fails the whole batch on any violation, per the
// all-or-nothing validation contract.
func (vd *Validator) ValidateBatch(b *Batch) error {
	if err := vd.v.ValidateStruct(b); err != nil {
		return apperrors.InvalidArgument("batch failed validation", err)
	}
	return nil
}
