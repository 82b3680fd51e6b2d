package catalog

import (
	"fmt"

	"github.com/go-faker/faker/v4"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// Sizes controls a synthetic catalog. Prices are drawn in cents.
type Sizes struct {
	Customers     int `validate:"gte=1"`
	Admins        int `validate:"gte=0"`
	Vendors       int `validate:"gte=1"`
	Products      int `validate:"gte=1"`
	MinPriceCents int `validate:"gte=0"`
	MaxPriceCents int `validate:"gtefield=MinPriceCents"`
}

// DefaultSizes mirrors the size of the hand-curated demo catalog.
func DefaultSizes() Sizes {
	return Sizes{
		Customers:     40,
		Admins:        2,
		Vendors:       12,
		Products:      60,
		MinPriceCents: 2500,
		MaxPriceCents: 32000,
	}
}

var schedules = []types.OpeningHours{
	{Weekdays: "08:00-18:00", Weekends: "09:00-15:00", Holidays: "closed"},
	{Weekdays: "07:00-22:00", Weekends: "08:00-22:00", Holidays: "10:00-18:00"},
	{Weekdays: "12:00-23:00", Weekends: "12:00-01:00", Holidays: "12:00-20:00"},
}

// Synthetic builds a catalog of fake users, vendors and products. Text comes
// from faker; counts, prices and choices come from r.
func Synthetic(r sampling.Rand, sizes Sizes) (*Catalog, error) {
	if err := validator.New().Struct(sizes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "invalid synthetic catalog sizes")
	}

	c := &Catalog{
		Users:    make([]models.User, 0, sizes.Customers+sizes.Admins),
		Vendors:  make([]models.Vendor, 0, sizes.Vendors),
		Products: make([]models.Product, 0, sizes.Products),
	}

	for i := 0; i < sizes.Customers+sizes.Admins; i++ {
		role := enums.UserRoleCustomer
		if i >= sizes.Customers {
			role = enums.UserRoleAdmin
		}
		addr := faker.GetRealAddress()
		c.Users = append(c.Users, models.User{
			Username: fmt.Sprintf("%s%d", faker.Username(), i),
			Password: faker.Password(),
			Role:     role,
			Address:  fmt.Sprintf("%s, %s", addr.Address, addr.City),
		})
	}

	for i := 0; i < sizes.Vendors; i++ {
		addr := faker.GetRealAddress()
		phones := make([]string, sampling.IntBetween(r, 1, 2))
		for j := range phones {
			phones[j] = faker.Phonenumber()
		}
		c.Vendors = append(c.Vendors, models.Vendor{
			Name: fmt.Sprintf("%s %s", faker.LastName(), faker.Word()),
			Location: types.Location{
				PostalCode: addr.PostalCode,
				Street:     addr.Address,
				Zone:       addr.City,
				Avenue:     addr.State,
			},
			Phones: phones,
			Hours:  schedules[r.IntN(len(schedules))],
		})
	}

	for i := 0; i < sizes.Products; i++ {
		ingredients := make([]string, sampling.IntBetween(r, 2, 5))
		for j := range ingredients {
			ingredients[j] = faker.Word()
		}
		cents := sampling.IntBetween(r, sizes.MinPriceCents, sizes.MaxPriceCents)
		c.Products = append(c.Products, models.Product{
			Name:        fmt.Sprintf("%s %s", faker.Word(), faker.Word()),
			Description: faker.Sentence(),
			PrepMinutes: sampling.IntBetween(r, 5, 45),
			Ingredients: ingredients,
			Active:      true,
			Price:       types.NewMoney(decimal.New(int64(cents), -2)),
		})
	}
	return c, nil
}
