package models

import "time"

type UserType string

const (
	UserTypeStartup         UserType = "startup"
	UserTypeServiceProvider UserType = "Service Provider"
)

func (t UserType) Valid() bool {
	return t == UserTypeStartup || t == UserTypeServiceProvider
}

type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "local"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderFacebook AuthProvider = "facebook"
	AuthProviderApple    AuthProvider = "apple"
)

func (p AuthProvider) Valid() bool {
	switch p {
	case AuthProviderLocal, AuthProviderGoogle, AuthProviderFacebook, AuthProviderApple:
		return true
	}
	return false
}

// User is the login identity shared by both roles. The role-specific
// profile lives in Startup or ServiceProvider and references User.ID.
type User struct {
	ID              string       `json:"id" bson:"_id"`
	Email           string       `json:"email" bson:"email"`
	PasswordHash    string       `json:"-" bson:"password"`
	UserType        UserType     `json:"userType" bson:"userType"`
	AuthProvider    AuthProvider `json:"authProvider" bson:"authProvider"`
	AuthProviderID  string       `json:"authProviderId" bson:"authProviderId"`
	IsEmailVerified bool         `json:"isEmailVerified" bson:"isEmailVerified"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Session is the server-side record of an issued session token, keyed by
// the token id.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserType  UserType  `json:"user_type"`
	ProfileID string    `json:"profile_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
