package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

func sampleOrders() []models.Order {
	at := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	return []models.Order{
		{
			CustomerID: "c1",
			VendorID:   "v1",
			Items:      []models.LineItem{{ProductID: "p1", Qty: 2, UnitPrice: types.MustMoney("12.50")}},
			Status:     enums.OrderStatusReceived,
			Total:      types.MustMoney("25.00"),
			OrderDate:  at,
		},
		{
			CustomerID: "c2",
			VendorID:   "v1",
			Items:      []models.LineItem{{ProductID: "p2", Qty: 1, UnitPrice: types.MustMoney("3.10")}},
			Status:     enums.OrderStatusInKitchen,
			Total:      types.MustMoney("3.10"),
			OrderDate:  at.Add(time.Hour),
		},
	}
}

func TestMemoryInsertManyAssignsIDsInOrder(t *testing.T) {
	coll := NewMemoryCollection[models.Order]("orders")
	ids, err := coll.InsertMany(context.Background(), sampleOrders())
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	all, err := coll.Find(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ids[0], all[0].ID)
	assert.Equal(t, ids[1], all[1].ID)
	assert.True(t, all[0].Total.Equal(types.MustMoney("25").Decimal))
	assert.True(t, all[0].Items[0].UnitPrice.Equal(types.MustMoney("12.5").Decimal))
	assert.True(t, all[0].OrderDate.Equal(sampleOrders()[0].OrderDate))
}

func TestMemoryReferencesShareTheTypeOfReferencedIDs(t *testing.T) {
	ctx := context.Background()
	orders := NewMemoryCollection[models.Order]("orders")
	reviews := NewMemoryCollection[models.Review]("reviews")

	ids, err := orders.InsertMany(ctx, sampleOrders()[:1])
	require.NoError(t, err)
	_, err = reviews.InsertMany(ctx, []models.Review{{OrderID: types.Ref(ids[0]), CustomerID: "c1", VendorID: "v1", Rating: 5}})
	require.NoError(t, err)

	orderID := orders.docs[0].Lookup(models.FieldID)
	reviewRef := reviews.docs[0].Lookup(models.FieldOrderID)
	assert.Equal(t, bson.TypeObjectID, orderID.Type)
	assert.Equal(t, orderID.Type, reviewRef.Type)
	assert.True(t, orderID.Equal(reviewRef), "order_id must equal the order _id")

	joined, err := reviews.Find(ctx, Filter{models.FieldOrderID: types.Ref(ids[0])})
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, types.Ref(ids[0]), joined[0].OrderID)
}

func TestMemoryFindFiltersAndProjects(t *testing.T) {
	coll := NewMemoryCollection[models.Order]("orders")
	_, err := coll.InsertMany(context.Background(), sampleOrders())
	require.NoError(t, err)

	got, err := coll.Find(context.Background(),
		Filter{models.FieldStatus: enums.OrderStatusReceived},
		models.FieldID, models.FieldCustomerID, models.FieldOrderDate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.Ref("c1"), got[0].CustomerID)
	assert.NotEmpty(t, got[0].ID)
	assert.Empty(t, got[0].VendorID, "vendor_id was not projected")
	assert.Empty(t, got[0].Items)
}

func TestMemoryInsertKeepsCallerCopiesIndependent(t *testing.T) {
	coll := NewMemoryCollection[models.Order]("orders")
	orders := sampleOrders()
	_, err := coll.InsertMany(context.Background(), orders)
	require.NoError(t, err)

	orders[0].Items[0].UnitPrice = types.MustMoney("99.99")

	stored, err := coll.Find(context.Background(), Filter{models.FieldCustomerID: "c1"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "12.5", stored[0].Items[0].UnitPrice.String())
}

func TestMemoryBeforeInsertRejectsWholeBatch(t *testing.T) {
	coll := NewMemoryCollection[models.Order]("orders")
	coll.BeforeInsert = func(batch int, _ []models.Order) error {
		if batch == 2 {
			return errors.New("disk full")
		}
		return nil
	}
	_, err := coll.InsertMany(context.Background(), sampleOrders())
	require.NoError(t, err)
	_, err = coll.InsertMany(context.Background(), sampleOrders())
	require.Error(t, err)
	assert.Equal(t, 2, coll.Len())
}

func TestMemoryRejectsDuplicateIDs(t *testing.T) {
	coll := NewMemoryCollection[models.User]("users")
	_, err := coll.InsertMany(context.Background(), []models.User{{ID: "u1", Username: "ana"}})
	require.NoError(t, err)
	_, err = coll.InsertMany(context.Background(), []models.User{{ID: "u2"}, {ID: "u1"}})
	require.Error(t, err)
	assert.Equal(t, 1, coll.Len())
}

func TestMemoryUpdateOne(t *testing.T) {
	coll := NewMemoryCollection[models.User]("users")
	ids, err := coll.InsertMany(context.Background(), []models.User{{Username: "ana", Password: "plain", Role: enums.UserRoleCustomer}})
	require.NoError(t, err)

	require.NoError(t, coll.UpdateOne(context.Background(), ids[0], map[string]any{models.FieldPassword: "hashed"}))
	users, err := coll.Find(context.Background(), Filter{models.FieldRole: enums.UserRoleCustomer})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "hashed", users[0].Password)
	assert.Equal(t, "ana", users[0].Username)

	assert.ErrorIs(t, coll.UpdateOne(context.Background(), "missing", map[string]any{"password": "x"}), ErrNotFound)
	assert.Error(t, coll.UpdateOne(context.Background(), ids[0], map[string]any{"_id": "other"}))
}

func TestMemoryHonoursCanceledContext(t *testing.T) {
	coll := NewMemoryCollection[models.Order]("orders")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := coll.InsertMany(ctx, sampleOrders())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, coll.Len())
}

func TestMemoryReadsLegacyDoublePrices(t *testing.T) {
	coll := NewMemoryCollection[models.Product]("products")
	legacy := map[string]any{"_id": "p1", "name": "Tiramisu", "price": 35.5, "active": true}
	raw := NewMemoryCollection[map[string]any]("products")
	_, err := raw.InsertMany(context.Background(), []map[string]any{legacy})
	require.NoError(t, err)
	coll.docs = raw.docs
	coll.index = raw.index

	products, err := coll.Find(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "35.5", products[0].Price.String())
}
