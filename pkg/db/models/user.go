package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/activity-seeder/pkg/enums"
)

// User is a seed account; only customers place generated orders.
type User struct {
	ID       string         `bson:"_id,omitempty" json:"id" gorm:"column:id;type:text;primaryKey"`
	Username string         `bson:"username" json:"username" gorm:"column:username;not null;index"`
	Password string         `bson:"password" json:"-" gorm:"column:password;not null"`
	Role     enums.UserRole `bson:"role" json:"role" gorm:"column:role;type:text;not null;index"`
	Address  string         `bson:"address,omitempty" json:"address,omitempty" gorm:"column:address"`
}

func (u User) DocumentID() string { return u.ID }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsCustomer reports whether the account can place orders.
func (u User) IsCustomer() bool {
	return u.Role == enums.UserRoleCustomer
}
