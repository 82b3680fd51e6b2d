package reviews

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

var (
	testStart = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

func pool(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return out
}

func testParams() Params {
	templates := map[enums.Sentiment]Templates{}
	for _, s := range enums.Sentiments {
		templates[s] = Templates{Titles: pool(string(s)+"-title", 5), Bodies: pool(string(s)+"-body", 6)}
	}
	return Params{
		Window: sampling.Window{Start: testStart, End: testEnd},
		RatingWeights: []sampling.Weighted[int]{
			{Value: 5, Weight: 50},
			{Value: 4, Weight: 25},
			{Value: 3, Weight: 10},
			{Value: 2, Weight: 10},
			{Value: 1, Weight: 5},
		},
		Templates:    templates,
		MinDelayDays: 1,
		MaxDelayDays: 30,
	}
}

func receivedOrders(n int, at time.Time) []models.Order {
	out := make([]models.Order, n)
	for i := range out {
		out[i] = models.Order{
			ID:         fmt.Sprintf("o%d", i),
			CustomerID: types.Ref(fmt.Sprintf("c%d", i%7)),
			VendorID:   types.Ref(fmt.Sprintf("v%d", i%3)),
			Status:     enums.OrderStatusReceived,
			OrderDate:  at.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestPlanSamplesWithoutReplacement(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(1))
	require.NoError(t, err)

	plan := gen.Plan(receivedOrders(100, testStart), 40)
	assert.Len(t, plan.Orders, 40)
	assert.Zero(t, plan.Shortfall())

	seen := map[string]bool{}
	for _, o := range plan.Orders {
		require.False(t, seen[o.ID])
		seen[o.ID] = true
	}
}

func TestPlanReportsShortfall(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(1))
	require.NoError(t, err)

	plan := gen.Plan(receivedOrders(12, testStart), 50)
	assert.Len(t, plan.Orders, 12)
	assert.Equal(t, 12, plan.Available)
	assert.Equal(t, 38, plan.Shortfall())

	ids := map[string]bool{}
	for _, o := range plan.Orders {
		ids[o.ID] = true
	}
	assert.Len(t, ids, 12)
}

func TestPlanSkipsOrdersThatWereNotReceived(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(1))
	require.NoError(t, err)

	orders := receivedOrders(6, testStart)
	orders[0].Status = enums.OrderStatusInKitchen
	orders[1].Status = enums.OrderStatusOnTheWay

	plan := gen.Plan(orders, 10)
	assert.Equal(t, 4, plan.Available)
	for _, o := range plan.Orders {
		assert.Equal(t, enums.OrderStatusReceived, o.Status)
	}
}

func TestReviewCopiesOrderReferences(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(2))
	require.NoError(t, err)
	order := receivedOrders(1, testStart)[0]
	review := gen.Review(order)
	assert.Equal(t, types.Ref(order.ID), review.OrderID)
	assert.Equal(t, order.CustomerID, review.CustomerID)
	assert.Equal(t, order.VendorID, review.VendorID)
	assert.Empty(t, review.ID)
}

func TestReviewDatesFollowOrderAndStayInWindow(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(3))
	require.NoError(t, err)

	early := receivedOrders(200, testStart)
	late := receivedOrders(200, testEnd.Add(-10*24*time.Hour))
	clamped := 0
	for _, order := range append(early, late...) {
		review := gen.Review(order)
		require.False(t, review.ReviewDate.Before(order.OrderDate.Add(24*time.Hour)) && review.ReviewDate.Before(testEnd))
		require.False(t, review.ReviewDate.Before(order.OrderDate))
		require.False(t, review.ReviewDate.After(testEnd))
		if review.ReviewDate.Equal(testEnd) {
			clamped++
		}
	}
	assert.Positive(t, clamped)
}

func TestReviewNeverPrecedesOrderPlacedAfterWindow(t *testing.T) {
	gen, err := NewGenerator(testParams(), sampling.Seeded(5))
	require.NoError(t, err)

	// Orders left by an earlier run with a later window.
	for _, order := range receivedOrders(50, testEnd.Add(10*24*time.Hour)) {
		review := gen.Review(order)
		require.Equal(t, order.OrderDate, review.ReviewDate)
	}
}

func TestRatingsDriveTemplateBuckets(t *testing.T) {
	params := testParams()
	gen, err := NewGenerator(params, sampling.Seeded(4))
	require.NoError(t, err)

	const n = 50000
	counts := map[int]int{}
	order := receivedOrders(1, testStart)[0]
	for i := 0; i < n; i++ {
		review := gen.Review(order)
		counts[review.Rating]++
		tpl := params.Templates[enums.SentimentForRating(review.Rating)]
		require.Contains(t, tpl.Titles, review.Title)
		require.Contains(t, tpl.Bodies, review.Body)
	}
	want := map[int]float64{5: 0.50, 4: 0.25, 3: 0.10, 2: 0.10, 1: 0.05}
	for rating, share := range want {
		assert.InDelta(t, share, float64(counts[rating])/n, 0.01, "rating %d", rating)
	}
}

func TestSeededReviewsAreDeterministic(t *testing.T) {
	run := func() []models.Review {
		gen, err := NewGenerator(testParams(), sampling.Seeded(77))
		require.NoError(t, err)
		plan := gen.Plan(receivedOrders(50, testStart), 20)
		out := make([]models.Review, 0, len(plan.Orders))
		for _, o := range plan.Orders {
			out = append(out, gen.Review(o))
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestNewGeneratorValidatesTemplatesAndWeights(t *testing.T) {
	params := testParams()
	tpl := params.Templates[enums.SentimentNeutral]
	tpl.Titles = tpl.Titles[:4]
	params.Templates[enums.SentimentNeutral] = tpl
	_, err := NewGenerator(params, sampling.Seeded(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))

	params = testParams()
	params.RatingWeights = append(params.RatingWeights, sampling.Weighted[int]{Value: 6, Weight: 1})
	_, err = NewGenerator(params, sampling.Seeded(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))

	params = testParams()
	params.MaxDelayDays = 0
	_, err = NewGenerator(params, sampling.Seeded(1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))
}
