package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Leg is a single execution event belonging to exactly one trade. Legs are
// append-only once created; a trade's leg list is ordered by execution time
// ascending.
type Leg struct {
	ID         string    // Unique identifier for the leg
	TradeID    string    // Identifier of the owning trade
	Action     LegAction // What the execution did (buy, sell, ...)
	Quantity   float64   // Positive number of units executed
	Price      float64   // Currency units per unit quantity
	Fee        float64   // Commission and fees for this execution
	ExecutedAt time.Time // When the execution happened
}

// LegInput is the unvalidated boundary form of a leg. Validation happens
// here, once, at construction; the aggregator assumes already-validated legs.
type LegInput struct {
	Action     string    `validate:"required"`
	Quantity   float64   `validate:"gt=0"`
	Price      float64   `validate:"gte=0"`
	Fee        float64   `validate:"gte=0"`
	ExecutedAt time.Time `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Regex-style checks are registered as custom validations, the validator
	// package has no built-in pattern matcher.
	_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return symbolPattern.MatchString(fl.Field().String())
	})
	return v
}

// NewLeg validates the input against the asset type's action set and returns
// a Leg with a fresh ID.
func NewLeg(assetType AssetType, in LegInput) (Leg, error) {
	if err := validate.Struct(in); err != nil {
		return Leg{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	action := LegAction(in.Action)
	if !action.ValidForAssetType(assetType) {
		return Leg{}, fmt.Errorf("%w: action %q is not valid for asset type %q",
			ErrValidation, in.Action, assetType)
	}
	return Leg{
		ID:         uuid.NewString(),
		Action:     action,
		Quantity:   in.Quantity,
		Price:      in.Price,
		Fee:        in.Fee,
		ExecutedAt: in.ExecutedAt,
	}, nil
}
