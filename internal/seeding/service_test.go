package seeding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

var (
	windowStart = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

type memoryStores struct {
	users    *docstore.MemoryCollection[models.User]
	vendors  *docstore.MemoryCollection[models.Vendor]
	products *docstore.MemoryCollection[models.Product]
	orders   *docstore.MemoryCollection[models.Order]
	reviews  *docstore.MemoryCollection[models.Review]
}

func (m memoryStores) stores() Stores {
	return Stores{Users: m.users, Vendors: m.vendors, Products: m.products, Orders: m.orders, Reviews: m.reviews}
}

func newMemoryStores(t *testing.T, customers, vendors, products int) memoryStores {
	t.Helper()
	m := memoryStores{
		users:    docstore.NewMemoryCollection[models.User]("users"),
		vendors:  docstore.NewMemoryCollection[models.Vendor]("vendors"),
		products: docstore.NewMemoryCollection[models.Product]("products"),
		orders:   docstore.NewMemoryCollection[models.Order]("orders"),
		reviews:  docstore.NewMemoryCollection[models.Review]("reviews"),
	}
	ctx := context.Background()

	users := []models.User{{ID: "admin", Username: "root", Role: enums.UserRoleAdmin}}
	for i := 0; i < customers; i++ {
		users = append(users, models.User{ID: fmt.Sprintf("u%02d", i), Username: fmt.Sprintf("user%d", i), Role: enums.UserRoleCustomer})
	}
	_, err := m.users.InsertMany(ctx, users)
	require.NoError(t, err)

	vs := make([]models.Vendor, 0, vendors)
	for i := 0; i < vendors; i++ {
		vs = append(vs, models.Vendor{ID: fmt.Sprintf("v%02d", i), Name: fmt.Sprintf("Vendor %d", i)})
	}
	if len(vs) > 0 {
		_, err = m.vendors.InsertMany(ctx, vs)
		require.NoError(t, err)
	}

	ps := make([]models.Product, 0, products)
	for i := 0; i < products; i++ {
		ps = append(ps, models.Product{
			ID:     fmt.Sprintf("p%02d", i),
			Name:   fmt.Sprintf("Cake %d", i),
			Active: true,
			Price:  types.NewMoney(decimal.New(int64(1000+i*137), -2)),
		})
	}
	if len(ps) > 0 {
		_, err = m.products.InsertMany(ctx, ps)
		require.NoError(t, err)
	}
	return m
}

func testGeneration(orders, reviews, batchSize int) config.GenerationConfig {
	seed := int64(1234)
	return config.GenerationConfig{
		Orders:               orders,
		Reviews:              reviews,
		BatchSize:            batchSize,
		WindowStart:          windowStart,
		WindowEnd:            windowEnd,
		RandomSeed:           &seed,
		TopCustomers:         3,
		CustomerMultiplier:   4,
		TopVendors:           3,
		VendorMultiplier:     3,
		TopProducts:          3,
		ProductMultiplier:    5,
		PopularProductChance: 0.4,
		MinItems:             1,
		MaxItems:             5,
		MaxQty:               4,
		MinReviewDelayDays:   1,
		MaxReviewDelayDays:   30,
	}
}

func newTestService(t *testing.T, stores Stores, gen config.GenerationConfig, lock Lock) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "seeding-test", Output: &bytes.Buffer{}}),
		Stores:     stores,
		Lock:       lock,
		Generation: gen,
		Profile:    DefaultProfile(),
	})
	require.NoError(t, err)
	return svc
}

func TestRunPersistsOrdersThenReviews(t *testing.T) {
	m := newMemoryStores(t, 10, 5, 12)
	svc := newTestService(t, m.stores(), testGeneration(1200, 300, 250), nil)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200, report.OrdersPersisted)
	assert.Len(t, report.OrderIDs, 1200)
	assert.Equal(t, 300, report.ReviewsPersisted)
	assert.Zero(t, report.Shortfall)
	assert.Equal(t, 1200, m.orders.Len())
	assert.Equal(t, 300, m.reviews.Len())

	ctx := context.Background()
	orders, err := m.orders.Find(ctx, nil)
	require.NoError(t, err)
	byID := map[string]models.Order{}
	for _, o := range orders {
		byID[o.ID] = o
		assert.True(t, models.ComputeTotal(o.Items).Equal(o.Total.Decimal))
		assert.NotEqual(t, types.Ref("admin"), o.CustomerID)
	}

	reviews, err := m.reviews.Find(ctx, nil)
	require.NoError(t, err)
	seen := map[types.Ref]bool{}
	for _, r := range reviews {
		order, ok := byID[r.OrderID.String()]
		require.True(t, ok, "review references unknown order %s", r.OrderID)
		assert.Equal(t, enums.OrderStatusReceived, order.Status)
		assert.Equal(t, order.CustomerID, r.CustomerID)
		assert.Equal(t, order.VendorID, r.VendorID)
		assert.False(t, r.ReviewDate.Before(order.OrderDate))
		assert.False(t, r.ReviewDate.After(windowEnd))
		assert.False(t, seen[r.OrderID], "order %s reviewed twice", r.OrderID)
		seen[r.OrderID] = true
	}
}

func TestRunReportsReviewShortfall(t *testing.T) {
	m := newMemoryStores(t, 4, 2, 5)
	svc := newTestService(t, m.stores(), testGeneration(40, 500, 7), nil)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	received, err := m.orders.Find(context.Background(), docstore.Filter{models.FieldStatus: enums.OrderStatusReceived})
	require.NoError(t, err)
	assert.Equal(t, len(received), report.ReceivedAvailable)
	assert.Equal(t, len(received), report.ReviewsPersisted)
	assert.Equal(t, 500-len(received), report.Shortfall)
}

func TestRunFailsBeforeWritesOnEmptyCatalog(t *testing.T) {
	m := newMemoryStores(t, 5, 3, 0)
	svc := newTestService(t, m.stores(), testGeneration(10, 5, 5), nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePrecondition))
	assert.Zero(t, m.orders.Len())
	assert.Zero(t, m.reviews.Len())
}

func TestRunStopsAtFirstRejectedBatch(t *testing.T) {
	m := newMemoryStores(t, 5, 3, 6)
	m.orders.BeforeInsert = func(batch int, _ []models.Order) error {
		if batch == 3 {
			return errors.New("E11000 duplicate key")
		}
		return nil
	}
	svc := newTestService(t, m.stores(), testGeneration(100, 10, 20), nil)

	report, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
	assert.Equal(t, 40, report.OrdersPersisted)
	assert.Equal(t, 40, m.orders.Len())
	assert.Zero(t, m.reviews.Len(), "reviews must not start after a failed order pass")
}

func TestRunHonoursCancellation(t *testing.T) {
	m := newMemoryStores(t, 5, 3, 6)
	ctx, cancel := context.WithCancel(context.Background())
	m.orders.BeforeInsert = func(batch int, _ []models.Order) error {
		if batch == 2 {
			cancel()
		}
		return nil
	}
	svc := newTestService(t, m.stores(), testGeneration(100, 10, 10), nil)

	report, err := svc.Run(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCanceled))
	assert.Equal(t, 20, report.OrdersPersisted)
	assert.Equal(t, 20, m.orders.Len())
}

func TestRunSkipsWhenLockIsHeld(t *testing.T) {
	m := newMemoryStores(t, 5, 3, 6)
	lock := &fakeLock{held: true}
	svc := newTestService(t, m.stores(), testGeneration(10, 5, 5), lock)

	_, err := svc.Run(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePrecondition))
	assert.Zero(t, m.orders.Len())
}

func TestRunReleasesLock(t *testing.T) {
	m := newMemoryStores(t, 5, 3, 6)
	lock := &fakeLock{}
	svc := newTestService(t, m.stores(), testGeneration(10, 5, 5), lock)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, lock.held)
	assert.Equal(t, 1, lock.releases)
}

type reviewShape struct {
	CustomerID types.Ref
	VendorID   types.Ref
	Rating     int
	Title      string
	Body       string
	ReviewDate time.Time
}

// seededRun seeds a fresh catalog and returns what was written, minus the
// ids the store assigned. wrap, when set, decorates the stores the service sees.
func seededRun(t *testing.T, wrap func(Stores) Stores) ([]models.Order, []reviewShape) {
	t.Helper()
	m := newMemoryStores(t, 8, 4, 10)
	stores := m.stores()
	if wrap != nil {
		stores = wrap(stores)
	}
	svc := newTestService(t, stores, testGeneration(300, 80, 64), nil)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	orders, err := m.orders.Find(context.Background(), nil)
	require.NoError(t, err)
	for i := range orders {
		orders[i].ID = ""
	}
	reviews, err := m.reviews.Find(context.Background(), nil)
	require.NoError(t, err)
	shapes := make([]reviewShape, 0, len(reviews))
	for _, r := range reviews {
		shapes = append(shapes, reviewShape{r.CustomerID, r.VendorID, r.Rating, r.Title, r.Body, r.ReviewDate})
	}
	return orders, shapes
}

func TestSeededRunsProduceTheSameData(t *testing.T) {
	ordersA, reviewsA := seededRun(t, nil)
	ordersB, reviewsB := seededRun(t, nil)
	assert.Equal(t, ordersA, ordersB)
	assert.Equal(t, reviewsA, reviewsB)
}

// shuffledCollection returns Find results in a different order on every
// call, like a SQL table read without ORDER BY.
type shuffledCollection[T any] struct {
	docstore.Collection[T]
	rnd *rand.Rand
}

func (c shuffledCollection[T]) Find(ctx context.Context, filter docstore.Filter, projection ...string) ([]T, error) {
	out, err := c.Collection.Find(ctx, filter, projection...)
	if err != nil {
		return nil, err
	}
	c.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func shuffled(seed uint64) func(Stores) Stores {
	return func(s Stores) Stores {
		rnd := rand.New(rand.NewPCG(seed, seed+1))
		return Stores{
			Users:    shuffledCollection[models.User]{s.Users, rnd},
			Vendors:  shuffledCollection[models.Vendor]{s.Vendors, rnd},
			Products: shuffledCollection[models.Product]{s.Products, rnd},
			Orders:   shuffledCollection[models.Order]{s.Orders, rnd},
			Reviews:  shuffledCollection[models.Review]{s.Reviews, rnd},
		}
	}
}

func TestSeededRunIgnoresStoreReturnOrder(t *testing.T) {
	ordersA, reviewsA := seededRun(t, nil)
	for _, seed := range []uint64{1, 2, 3} {
		ordersB, reviewsB := seededRun(t, shuffled(seed))
		assert.Equal(t, ordersA, ordersB, "shuffle seed %d", seed)
		assert.Equal(t, reviewsA, reviewsB, "shuffle seed %d", seed)
	}
}

func TestSecondRunOnlyReviewsOrdersWithoutReviews(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStores(t, 6, 3, 8)

	first := newTestService(t, m.stores(), testGeneration(200, 60, 50), nil)
	_, err := first.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 60, m.reviews.Len())

	second := newTestService(t, m.stores(), testGeneration(200, 60, 50), nil)
	report, err := second.Run(ctx)
	require.NoError(t, err)

	received, err := m.orders.Find(ctx, docstore.Filter{models.FieldStatus: enums.OrderStatusReceived})
	require.NoError(t, err)
	assert.Equal(t, len(received)-60, report.ReceivedAvailable)
	assert.Equal(t, 60, report.ReviewsPersisted)
	assert.Equal(t, 120, m.reviews.Len())

	reviews, err := m.reviews.Find(ctx, nil)
	require.NoError(t, err)
	seen := map[types.Ref]bool{}
	for _, r := range reviews {
		require.False(t, seen[r.OrderID], "order %s reviewed twice", r.OrderID)
		seen[r.OrderID] = true
	}
}

func TestSecondRunWithEveryOrderReviewedReportsShortfall(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStores(t, 4, 2, 5)

	first := newTestService(t, m.stores(), testGeneration(30, 500, 10), nil)
	_, err := first.Run(ctx)
	require.NoError(t, err)
	reviewedFirst := m.reviews.Len()

	gen := testGeneration(0, 5, 10)
	second := newTestService(t, m.stores(), gen, nil)
	report, err := second.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.ReceivedAvailable)
	assert.Zero(t, report.ReviewsPersisted)
	assert.Equal(t, 5, report.Shortfall)
	assert.Equal(t, reviewedFirst, m.reviews.Len())
}

func TestNewServiceRejectsMissingStores(t *testing.T) {
	_, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "seeding-test", Output: &bytes.Buffer{}}),
		Generation: testGeneration(1, 1, 1),
		Profile:    DefaultProfile(),
	})
	assert.Error(t, err)
}

func TestNewServiceRejectsInvalidGeneration(t *testing.T) {
	m := newMemoryStores(t, 1, 1, 1)
	gen := testGeneration(1, 1, 0)
	_, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "seeding-test", Output: &bytes.Buffer{}}),
		Stores:     m.stores(),
		Generation: gen,
		Profile:    DefaultProfile(),
		Rand:       sampling.Seeded(1),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))
}

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}
