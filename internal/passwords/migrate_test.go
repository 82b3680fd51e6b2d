package passwords

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
)

func seedUsers(t *testing.T, users ...models.User) *docstore.MemoryCollection[models.User] {
	t.Helper()
	coll := docstore.NewMemoryCollection[models.User]("users")
	_, err := coll.InsertMany(context.Background(), users)
	require.NoError(t, err)
	return coll
}

func TestMigratorHashesPlaintextOnly(t *testing.T) {
	existing, err := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.MinCost)
	require.NoError(t, err)

	coll := seedUsers(t,
		models.User{Username: "ana", Password: "secreto", Role: enums.UserRoleCustomer},
		models.User{Username: "luis", Password: string(existing), Role: enums.UserRoleCustomer},
		models.User{Username: "root", Password: "admin123", Role: enums.UserRoleAdmin},
	)

	m, err := NewMigrator(coll, bcrypt.MinCost, nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 3, Hashed: 2, Skipped: 1}, res)

	users, err := coll.Find(context.Background(), docstore.Filter{})
	require.NoError(t, err)
	plain := map[string]string{"ana": "secreto", "luis": "old", "root": "admin123"}
	for _, u := range users {
		require.True(t, IsHashed(u.Password), u.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain[u.Username])))
		assert.NotEmpty(t, u.Role, "update must not drop other fields")
	}

	again, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 3, Skipped: 3}, again)
}

func TestIsHashed(t *testing.T) {
	assert.True(t, IsHashed("$2b$10$abcdefghijklmnopqrstuv"))
	assert.True(t, IsHashed("$2y$12$abcdefghijklmnopqrstuv"))
	assert.False(t, IsHashed("plaintext"))
	assert.False(t, IsHashed(""))
}

func TestNewMigratorRejectsCost(t *testing.T) {
	_, err := NewMigrator(docstore.NewMemoryCollection[models.User]("users"), 2, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))
}

func TestMigratorCanceled(t *testing.T) {
	coll := seedUsers(t, models.User{Username: "ana", Password: "x", Role: enums.UserRoleCustomer})
	m, err := NewMigrator(coll, bcrypt.MinCost, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Run(ctx)
	require.Error(t, err)
}
