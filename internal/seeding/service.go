// Package seeding runs the two generation passes against a document store:
// orders first, then reviews for the orders that were persisted as received.
package seeding

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/activity-seeder/internal/batch"
	"github.com/angelmondragon/activity-seeder/internal/orders"
	"github.com/angelmondragon/activity-seeder/internal/reviews"
	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
	"github.com/angelmondragon/activity-seeder/pkg/metrics"
)

const (
	stepCatalog = "load-catalog"
	stepOrders  = "orders"
	stepReviews = "reviews"
)

// receivedProjection is what review synthesis reads back from each order.
var receivedProjection = []string{
	models.FieldID,
	models.FieldCustomerID,
	models.FieldVendorID,
	models.FieldOrderDate,
	models.FieldStatus,
}

// Stores are the collections a run reads from and writes to.
type Stores struct {
	Users    docstore.Collection[models.User]
	Vendors  docstore.Collection[models.Vendor]
	Products docstore.Collection[models.Product]
	Orders   docstore.Collection[models.Order]
	Reviews  docstore.Collection[models.Review]
}

func (s Stores) validate() error {
	if s.Users == nil || s.Vendors == nil || s.Products == nil || s.Orders == nil || s.Reviews == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "all five collections are required")
	}
	return nil
}

// ServiceParams configure the seeding service.
type ServiceParams struct {
	Logger     *logger.Logger
	Stores     Stores
	Lock       Lock
	Metrics    *metrics.RunMetrics
	Generation config.GenerationConfig
	Profile    Profile
	Rand       sampling.Rand
}

// Service executes a single seeding run.
type Service struct {
	logg    *logger.Logger
	stores  Stores
	lock    Lock
	metrics *metrics.RunMetrics
	gen     config.GenerationConfig
	profile Profile
	rnd     sampling.Rand
	window  sampling.Window
}

// NewService validates the parameters of a run.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := params.Stores.validate(); err != nil {
		return nil, err
	}
	lock := params.Lock
	if lock == nil {
		lock = NoopLock{}
	}
	rnd := params.Rand
	if rnd == nil {
		rnd = sampling.NewRand(params.Generation.RandomSeed)
	}
	if err := params.Generation.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "generation parameters")
	}
	if err := params.Profile.Validate(); err != nil {
		return nil, err
	}
	window, err := sampling.NewWindow(params.Generation.WindowStart, params.Generation.WindowEnd)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "generation window")
	}
	return &Service{
		logg:    params.Logger,
		stores:  params.Stores,
		lock:    lock,
		metrics: params.Metrics,
		gen:     params.Generation,
		profile: params.Profile,
		rnd:     rnd,
		window:  window,
	}, nil
}

// Run generates and persists orders, then reviews. The report is returned
// even when the run fails, reflecting what was written before the failure.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:            uuid.NewString(),
		OrdersRequested:  s.gen.Orders,
		ReviewsRequested: s.gen.Reviews,
	}
	ctx = s.logg.WithRunID(ctx, report.RunID)

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire run lock")
	}
	if !locked {
		return report, pkgerrors.New(pkgerrors.CodePrecondition, "another seeding run holds the lock")
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "failed to release run lock", relErr)
		}
	}()

	var (
		orderGen  *orders.Generator
		reviewGen *reviews.Generator
	)
	p := &pipeline{logg: s.logg, metrics: s.metrics}
	p.add(stepCatalog, func(ctx context.Context) error {
		var err error
		orderGen, reviewGen, err = s.prepare(ctx)
		return err
	})
	p.add(stepOrders, func(ctx context.Context) error {
		return s.persistOrders(ctx, orderGen, report)
	})
	p.add(stepReviews, func(ctx context.Context) error {
		return s.persistReviews(ctx, reviewGen, report)
	})

	s.logg.InfoFields(ctx, "seeding run starting", map[string]any{
		"orders":     s.gen.Orders,
		"reviews":    s.gen.Reviews,
		"batch_size": s.gen.BatchSize,
		"seeded":     s.gen.RandomSeed != nil,
	})
	if err := p.run(ctx); err != nil {
		return report, err
	}
	s.logg.InfoFields(ctx, "seeding run complete", report.Fields())
	return report, nil
}

// prepare reads the catalog and builds both generators, so every
// precondition fails before the first write.
func (s *Service) prepare(ctx context.Context) (*orders.Generator, *reviews.Generator, error) {
	users, err := s.stores.Users.Find(ctx, docstore.Filter{models.FieldRole: enums.UserRoleCustomer})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read users")
	}
	vendors, err := s.stores.Vendors.Find(ctx, nil)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read vendors")
	}
	products, err := s.stores.Products.Find(ctx, nil)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read products")
	}
	sortByID(users)
	sortByID(vendors)
	sortByID(products)
	s.logg.InfoFields(ctx, "catalog loaded", map[string]any{
		"customers": len(users),
		"vendors":   len(vendors),
		"products":  len(products),
	})

	orderGen, err := orders.NewGenerator(
		orders.Catalog{Users: users, Vendors: vendors, Products: products},
		s.orderParams(),
		s.rnd,
	)
	if err != nil {
		return nil, nil, err
	}
	reviewGen, err := reviews.NewGenerator(s.reviewParams(), s.rnd)
	if err != nil {
		return nil, nil, err
	}
	return orderGen, reviewGen, nil
}

func (s *Service) orderParams() orders.Params {
	return orders.Params{
		Window:               s.window,
		StatusWeights:        s.profile.StatusWeights,
		MinItems:             s.gen.MinItems,
		MaxItems:             s.gen.MaxItems,
		MaxQty:               s.gen.MaxQty,
		PopularProductChance: s.gen.PopularProductChance,
		CustomerBias:         sampling.Bias{Top: s.gen.TopCustomers, Multiplier: s.gen.CustomerMultiplier},
		VendorBias:           sampling.Bias{Top: s.gen.TopVendors, Multiplier: s.gen.VendorMultiplier},
		ProductBias:          sampling.Bias{Top: s.gen.TopProducts, Multiplier: s.gen.ProductMultiplier},
	}
}

func (s *Service) reviewParams() reviews.Params {
	return reviews.Params{
		Window:        s.window,
		RatingWeights: s.profile.RatingWeights,
		Templates:     s.profile.Templates,
		MinDelayDays:  s.gen.MinReviewDelayDays,
		MaxDelayDays:  s.gen.MaxReviewDelayDays,
	}
}

func (s *Service) persistOrders(ctx context.Context, gen *orders.Generator, report *Report) error {
	ctx = s.logg.WithCollection(ctx, s.stores.Orders.Name())
	persister, err := batch.NewPersister[models.Order](s.stores.Orders, s.gen.BatchSize)
	if err != nil {
		return err
	}
	persister.OnFlush = s.observeFlush
	err = batch.PersistAll(ctx, persister, s.gen.Orders, gen.Next)
	report.OrdersPersisted = persister.Persisted()
	report.OrderIDs = persister.IDs()
	return err
}

func (s *Service) persistReviews(ctx context.Context, gen *reviews.Generator, report *Report) error {
	received, err := s.stores.Orders.Find(ctx,
		docstore.Filter{models.FieldStatus: enums.OrderStatusReceived},
		receivedProjection...,
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query received orders")
	}
	reviewed, err := s.reviewedOrders(ctx)
	if err != nil {
		return err
	}
	pending := received[:0]
	for _, order := range received {
		if _, ok := reviewed[order.ID]; !ok {
			pending = append(pending, order)
		}
	}
	if skipped := len(received) - len(pending); skipped > 0 {
		s.logg.InfoFields(ctx, "skipping orders that already have a review", map[string]any{"orders": skipped})
	}
	received = pending
	sortSnapshot(received)

	plan := gen.Plan(received, s.gen.Reviews)
	report.ReceivedAvailable = plan.Available
	report.Shortfall = plan.Shortfall()
	s.metrics.SetShortfall(plan.Shortfall())
	if plan.Shortfall() > 0 {
		warn := pkgerrors.New(pkgerrors.CodeInsufficientData, "fewer received orders than requested reviews")
		s.logg.WarnFields(ctx, warn.Error(), map[string]any{
			"requested": plan.Requested,
			"available": plan.Available,
			"shortfall": plan.Shortfall(),
		})
	}

	ctx = s.logg.WithCollection(ctx, s.stores.Reviews.Name())
	persister, err := batch.NewPersister[models.Review](s.stores.Reviews, s.gen.BatchSize)
	if err != nil {
		return err
	}
	persister.OnFlush = s.observeFlush
	next := 0
	err = batch.PersistAll(ctx, persister, len(plan.Orders), func() models.Review {
		review := gen.Review(plan.Orders[next])
		next++
		return review
	})
	report.ReviewsPersisted = persister.Persisted()
	report.ReviewIDs = persister.IDs()
	return err
}

// reviewedOrders returns the ids of orders an earlier run already reviewed.
func (s *Service) reviewedOrders(ctx context.Context) (map[string]struct{}, error) {
	existing, err := s.stores.Reviews.Find(ctx, nil, models.FieldOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query reviewed orders")
	}
	out := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		out[r.OrderID.String()] = struct{}{}
	}
	return out, nil
}

func (s *Service) observeFlush(ctx context.Context, f batch.Flushed) {
	s.metrics.ObserveBatch(f.Collection, f.Size, f.Duration)
	s.logg.InfoFields(ctx, "batch persisted", map[string]any{
		"batch":       f.Batch,
		"size":        f.Size,
		"persisted":   f.Persisted,
		"duration_ms": f.Duration.Milliseconds(),
	})
}

// sortByID puts catalog documents in id order; popularity ranks by position,
// and stores do not agree on the order they return rows in.
func sortByID[T docstore.Document](docs []T) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].DocumentID() < docs[j].DocumentID()
	})
}

// sortSnapshot fixes the order of the received set so a seeded run does not
// depend on the order the store returns documents in.
func sortSnapshot(received []models.Order) {
	sort.SliceStable(received, func(i, j int) bool {
		a, b := received[i], received[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.Before(b.OrderDate)
		}
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		if a.VendorID != b.VendorID {
			return a.VendorID < b.VendorID
		}
		return a.ID < b.ID
	})
}
