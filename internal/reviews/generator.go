// Package reviews synthesizes customer reviews for orders that were
// delivered and already persisted.
package reviews

import (
	"fmt"

	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// MinTemplates is the smallest pool allowed per sentiment bucket.
const MinTemplates = 5

// Templates are the title and body pools of one sentiment bucket.
type Templates struct {
	Titles []string `yaml:"titles"`
	Bodies []string `yaml:"bodies"`
}

// Params tune review synthesis.
type Params struct {
	Window        sampling.Window
	RatingWeights []sampling.Weighted[int]
	Templates     map[enums.Sentiment]Templates
	MinDelayDays  int
	MaxDelayDays  int
}

// Plan is the set of orders selected for review.
type Plan struct {
	Orders    []models.Order
	Requested int
	Available int
}

// Shortfall is how many requested reviews cannot be produced.
func (p Plan) Shortfall() int {
	if p.Requested > p.Available {
		return p.Requested - p.Available
	}
	return 0
}

// Generator turns received orders into reviews.
type Generator struct {
	rnd     sampling.Rand
	params  Params
	ratings *sampling.Categorical[int]
}

// NewGenerator validates the weight table and template pools.
func NewGenerator(params Params, rnd sampling.Rand) (*Generator, error) {
	if rnd == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "random source required")
	}
	for _, entry := range params.RatingWeights {
		if entry.Value < 1 || entry.Value > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("rating %d is outside 1..5", entry.Value))
		}
	}
	ratings, err := sampling.NewCategorical(params.RatingWeights)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "rating weights")
	}
	for _, s := range enums.Sentiments {
		tpl := params.Templates[s]
		if len(tpl.Titles) < MinTemplates || len(tpl.Bodies) < MinTemplates {
			return nil, pkgerrors.New(pkgerrors.CodeConfig,
				fmt.Sprintf("%s templates need at least %d titles and bodies", s, MinTemplates)).
				WithDetails(map[string]int{"titles": len(tpl.Titles), "bodies": len(tpl.Bodies)})
		}
	}
	if params.MinDelayDays < 0 || params.MaxDelayDays < params.MinDelayDays {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "review delay range is invalid")
	}
	if params.Window.Start.IsZero() || params.Window.End.Before(params.Window.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "review window is not set")
	}
	return &Generator{rnd: rnd, params: params, ratings: ratings}, nil
}

// Plan picks min(requested, len(received)) distinct orders. Orders that are
// not in the Received state are skipped.
func (g *Generator) Plan(received []models.Order, requested int) Plan {
	eligible := make([]models.Order, 0, len(received))
	for _, o := range received {
		if o.Status.IsTerminal() {
			eligible = append(eligible, o)
		}
	}
	if requested < 0 {
		requested = 0
	}
	return Plan{
		Orders:    sampling.SampleDistinct(g.rnd, eligible, requested),
		Requested: requested,
		Available: len(eligible),
	}
}

// Review writes one review for order.
func (g *Generator) Review(order models.Order) models.Review {
	rating := g.ratings.Draw(g.rnd)
	tpl := g.params.Templates[enums.SentimentForRating(rating)]
	delay := sampling.IntBetween(g.rnd, g.params.MinDelayDays, g.params.MaxDelayDays)

	return models.Review{
		OrderID:    types.Ref(order.ID),
		CustomerID: order.CustomerID,
		VendorID:   order.VendorID,
		Rating:     rating,
		Title:      tpl.Titles[g.rnd.IntN(len(tpl.Titles))],
		Body:       tpl.Bodies[g.rnd.IntN(len(tpl.Bodies))],
		ReviewDate: g.params.Window.Offset(order.OrderDate, delay),
	}
}
