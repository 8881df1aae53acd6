package models

import (
	"strings"
	"time"
)

// Account is the persisted user record. It is consulted at token issuance
// time to map a username or email to an account id and role.
type Account struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:20;default:'user'"`
	RegisterTime time.Time `json:"register_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Authorities returns the role expanded to the authority strings embedded in
// issued tokens
func (a *Account) Authorities() []string {
	return []string{"ROLE_" + strings.ToUpper(a.Role)}
}
