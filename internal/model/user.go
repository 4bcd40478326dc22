// Package model defines the records the backend stores and returns.
package model

import "time"

// User is a profile keyed by the identity provider's user id (Clerk).
//
// ID is our own store-generated xid; ClerkID is the external handle clients
// use and is UNIQUE in the users table. The three pointer fields are only set
// through an explicit profile update, so nil means "never provided".
type User struct {
	ID             string    `json:"id"`
	ClerkID        string    `json:"clerk_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ProfileImage   string    `json:"profile_image"`
	AuthProvider   string    `json:"auth_provider"`
	CustomUsername *string   `json:"custom_username"`
	FirstName      *string   `json:"first_name,omitempty"`
	LastName       *string   `json:"last_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileUpdate carries the optional fields of a partial profile update.
// A nil field is left untouched by the store.
type ProfileUpdate struct {
	CustomUsername *string
	FirstName      *string
	LastName       *string
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return p.CustomUsername == nil && p.FirstName == nil && p.LastName == nil
}
