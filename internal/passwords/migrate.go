// Package passwords rewrites plaintext user passwords as bcrypt hashes.
package passwords

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Result counts what a migration touched.
type Result struct {
	Scanned int `json:"scanned"`
	Hashed  int `json:"hashed"`
	Skipped int `json:"skipped"`
}

// Migrator hashes every user password that is not already a bcrypt hash.
type Migrator struct {
	users docstore.Collection[models.User]
	cost  int
	logg  *logger.Logger
}

func NewMigrator(users docstore.Collection[models.User], cost int, logg *logger.Logger) (*Migrator, error) {
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users collection required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost))
	}
	return &Migrator{users: users, cost: cost, logg: logg}, nil
}

// IsHashed reports whether value already looks like a bcrypt hash.
func IsHashed(value string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// Run updates users one at a time. Users updated before a failure keep
// their hash, so a rerun picks up where the previous one stopped.
func (m *Migrator) Run(ctx context.Context) (Result, error) {
	var res Result
	users, err := m.users.Find(ctx, docstore.Filter{}, models.FieldID, models.FieldUsername, models.FieldPassword)
	if err != nil {
		return res, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read users")
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, pkgerrors.Wrap(pkgerrors.CodeCanceled, err, "password migration canceled").
				WithDetails(res)
		}
		res.Scanned++
		if IsHashed(u.Password) {
			res.Skipped++
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), m.cost)
		if err != nil {
			return res, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password").
				WithDetails(map[string]any{"username": u.Username})
		}
		if err := m.users.UpdateOne(ctx, u.ID, map[string]any{models.FieldPassword: string(hash)}); err != nil {
			return res, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update password").
				WithDetails(map[string]any{"username": u.Username, "hashed": res.Hashed})
		}
		res.Hashed++
		if m.logg != nil {
			m.logg.Info(m.logg.WithField(ctx, "username", u.Username), "password hashed")
		}
	}
	return res, nil
}
