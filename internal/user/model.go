package user

import (
	"time"
)

type UserType string

const (
	TypeIndividual   UserType = "individual"
	TypeCompanyBuyer UserType = "company_buyer"
	TypeWholesaler   UserType = "wholesaler"
	TypeRetailer     UserType = "retailer"
	TypeAdmin        UserType = "admin"
)

func (t UserType) Valid() bool {
	switch t {
	case TypeIndividual, TypeCompanyBuyer, TypeWholesaler, TypeRetailer, TypeAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	StatusActive              AccountStatus = "active"
	StatusSuspended           AccountStatus = "suspended"
	StatusPendingVerification AccountStatus = "pending_verification"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPendingVerification:
		return true
	}
	return false
}

// Credential is the sign-in record; the password hash never leaves this package.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Profile struct {
	ID              string        `json:"id"`
	FullName        *string       `json:"full_name"`
	DisplayName     *string       `json:"display_name"`
	Email           *string       `json:"email"`
	Phone           *string       `json:"phone"`
	AvatarURL       *string       `json:"avatar_url"`
	UserType        UserType      `json:"user_type"`
	AccountStatus   AccountStatus `json:"account_status"`
	IsSeller        bool          `json:"is_seller"`
	IsEmailVerified bool          `json:"is_email_verified"`
	IsPhoneVerified bool          `json:"is_phone_verified"`
	LastLoginAt     *time.Time    `json:"last_login_at"`
	LoginCount      int           `json:"login_count"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// DefaultProfile is what /me returns for an identity that has no profile row yet.
type DefaultProfile struct {
	ID            string        `json:"id"`
	UserType      UserType      `json:"user_type"`
	AccountStatus AccountStatus `json:"account_status"`
	FullName      *string       `json:"full_name"`
	Phone         *string       `json:"phone"`
	Email         *string       `json:"email"`
}

// AuthUser is the identity object returned by sign up and sign in.
type AuthUser struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	CreatedAt    time.Time         `json:"created_at"`
	LastSignInAt *time.Time        `json:"last_sign_in_at,omitempty"`
	UserMetadata map[string]string `json:"user_metadata"`
}

type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ListFilter struct {
	Search string
	Type   string
	Limit  int
	Offset int
}
