package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var validate = validator.New()

// GenerationConfig sizes a seeding run. Weight tables and template pools live
// in the generation profile (see ProfilePath).
type GenerationConfig struct {
	Orders    int `envconfig:"SEEDER_ORDERS" default:"50000" validate:"gte=0"`
	Reviews   int `envconfig:"SEEDER_REVIEWS" default:"10000" validate:"gte=0"`
	BatchSize int `envconfig:"SEEDER_BATCH_SIZE" default:"5000" validate:"gte=1"`

	WindowStart time.Time `envconfig:"SEEDER_WINDOW_START" default:"2025-02-01T00:00:00Z" validate:"required"`
	WindowEnd   time.Time `envconfig:"SEEDER_WINDOW_END" default:"2026-03-31T00:00:00Z" validate:"required,gtfield=WindowStart"`

	// RandomSeed is nil unless SEEDER_RANDOM_SEED is set.
	RandomSeed *int64 `envconfig:"SEEDER_RANDOM_SEED"`

	TopCustomers       int `envconfig:"SEEDER_TOP_CUSTOMERS" default:"3" validate:"gte=0"`
	CustomerMultiplier int `envconfig:"SEEDER_CUSTOMER_MULTIPLIER" default:"4" validate:"gte=1"`
	TopVendors         int `envconfig:"SEEDER_TOP_VENDORS" default:"3" validate:"gte=0"`
	VendorMultiplier   int `envconfig:"SEEDER_VENDOR_MULTIPLIER" default:"3" validate:"gte=1"`
	TopProducts        int `envconfig:"SEEDER_TOP_PRODUCTS" default:"3" validate:"gte=0"`
	ProductMultiplier  int `envconfig:"SEEDER_PRODUCT_MULTIPLIER" default:"5" validate:"gte=1"`

	PopularProductChance float64 `envconfig:"SEEDER_POPULAR_PRODUCT_CHANCE" default:"0.4" validate:"gte=0,lte=1"`
	MinItems             int     `envconfig:"SEEDER_MIN_ITEMS" default:"1" validate:"gte=1"`
	MaxItems             int     `envconfig:"SEEDER_MAX_ITEMS" default:"5" validate:"gtefield=MinItems,lte=5"`
	MaxQty               int     `envconfig:"SEEDER_MAX_QTY" default:"4" validate:"gte=1,lte=4"`

	MinReviewDelayDays int `envconfig:"SEEDER_MIN_REVIEW_DELAY_DAYS" default:"1" validate:"gte=0"`
	MaxReviewDelayDays int `envconfig:"SEEDER_MAX_REVIEW_DELAY_DAYS" default:"30" validate:"gtefield=MinReviewDelayDays"`

	ProfilePath string `envconfig:"SEEDER_PROFILE_PATH"`
}

// Validate reports every rule the generation parameters break.
func (g GenerationConfig) Validate() error {
	err := validate.Struct(g)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var errs error
	for _, fe := range fieldErrs {
		errs = multierr.Append(errs, fmt.Errorf("generation.%s %s", fe.Field(), validationMessage(fe)))
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
