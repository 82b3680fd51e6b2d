// Package orders synthesizes purchase orders over a seed catalog.
package orders

import (
	"fmt"

	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// MaxItems bounds a generated order: the base draw plus one popular bonus.
const MaxItems = 6

// Catalog is the read-only seed data orders are drawn from. Users that are
// not customers are ignored.
type Catalog struct {
	Users    []models.User
	Vendors  []models.Vendor
	Products []models.Product
}

// Params tune the shape of generated orders.
type Params struct {
	Window               sampling.Window
	StatusWeights        []sampling.Weighted[enums.OrderStatus]
	MinItems             int
	MaxItems             int
	MaxQty               int
	PopularProductChance float64
	CustomerBias         sampling.Bias
	VendorBias           sampling.Bias
	ProductBias          sampling.Bias
}

// Generator produces orders one at a time. It holds no identifiers: ids are
// assigned when the order is persisted.
type Generator struct {
	rnd      sampling.Rand
	params   Params
	status   *sampling.Categorical[enums.OrderStatus]
	customer *sampling.Pool[string]
	vendor   *sampling.Pool[string]
	popular  []models.Product
	products []models.Product
}

// NewGenerator builds the selection pools. It fails before anything is
// generated when the catalog cannot yield a valid order.
func NewGenerator(catalog Catalog, params Params, rnd sampling.Rand) (*Generator, error) {
	if rnd == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "random source required")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	customers := make([]string, 0, len(catalog.Users))
	for _, u := range catalog.Users {
		if u.IsCustomer() {
			customers = append(customers, u.ID)
		}
	}
	vendors := make([]string, 0, len(catalog.Vendors))
	for _, v := range catalog.Vendors {
		vendors = append(vendors, v.ID)
	}

	counts := []struct {
		name string
		n    int
	}{
		{"customers", len(customers)},
		{"vendors", len(vendors)},
		{"products", len(catalog.Products)},
	}
	for _, c := range counts {
		if c.n == 0 {
			return nil, pkgerrors.New(pkgerrors.CodePrecondition, fmt.Sprintf("catalog has no %s", c.name)).
				WithDetails(map[string]int{
					"customers": len(customers),
					"vendors":   len(vendors),
					"products":  len(catalog.Products),
				})
		}
	}

	customerPool, err := sampling.BuildPool(customers, params.CustomerBias)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePrecondition, err, "customer pool")
	}
	vendorPool, err := sampling.BuildPool(vendors, params.VendorBias)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePrecondition, err, "vendor pool")
	}
	productPool, err := sampling.BuildPool(catalog.Products, params.ProductBias)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePrecondition, err, "product pool")
	}
	status, err := sampling.NewCategorical(params.StatusWeights)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "order status weights")
	}

	products := make([]models.Product, len(catalog.Products))
	copy(products, catalog.Products)

	return &Generator{
		rnd:      rnd,
		params:   params,
		status:   status,
		customer: customerPool,
		vendor:   vendorPool,
		popular:  productPool.Top(),
		products: products,
	}, nil
}

func (p Params) validate() error {
	switch {
	case p.MinItems < 1:
		return pkgerrors.New(pkgerrors.CodeConfig, "min items must be at least 1")
	case p.MaxItems < p.MinItems:
		return pkgerrors.New(pkgerrors.CodeConfig, "max items is below min items")
	case p.MaxItems >= MaxItems:
		return pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("max items must leave room for the popular bonus (< %d)", MaxItems))
	case p.MaxQty < 1:
		return pkgerrors.New(pkgerrors.CodeConfig, "max qty must be at least 1")
	case p.PopularProductChance < 0 || p.PopularProductChance > 1:
		return pkgerrors.New(pkgerrors.CodeConfig, "popular product chance must be within [0,1]")
	case p.Window.Start.IsZero() || p.Window.End.Before(p.Window.Start):
		return pkgerrors.New(pkgerrors.CodeConfig, "order window is not set")
	}
	return nil
}

// Next synthesizes one order.
func (g *Generator) Next() models.Order {
	order := models.Order{
		CustomerID: types.Ref(g.customer.Pick(g.rnd)),
		VendorID:   types.Ref(g.vendor.Pick(g.rnd)),
		OrderDate:  g.params.Window.Draw(g.rnd),
		Status:     g.status.Draw(g.rnd),
	}

	count := sampling.IntBetween(g.rnd, g.params.MinItems, g.params.MaxItems)
	picked := sampling.SampleDistinct(g.rnd, g.products, count)
	if len(g.popular) > 0 && sampling.Bernoulli(g.rnd, g.params.PopularProductChance) {
		bonus := g.popular[g.rnd.IntN(len(g.popular))]
		if !containsProduct(picked, bonus.ID) {
			picked = append(picked, bonus)
		}
	}

	order.Items = make([]models.LineItem, 0, len(picked))
	for _, p := range picked {
		order.Items = append(order.Items, models.LineItem{
			ProductID: types.Ref(p.ID),
			Qty:       sampling.IntBetween(g.rnd, 1, g.params.MaxQty),
			UnitPrice: p.Price,
		})
	}
	order.Total = models.ComputeTotal(order.Items)
	return order
}

// Generate returns n orders.
func (g *Generator) Generate(n int) []models.Order {
	out := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Next())
	}
	return out
}

func containsProduct(items []models.Product, id string) bool {
	for _, p := range items {
		if p.ID == id {
			return true
		}
	}
	return false
}
