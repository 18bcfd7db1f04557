package session

import "github.com/google/uuid"

// RiskAppetite is the user's self-declared investment risk profile.
type RiskAppetite string

const (
	RiskConservative RiskAppetite = "conservative"
	RiskBalanced     RiskAppetite = "balanced"
	RiskAggressive   RiskAppetite = "aggressive"
)

// User is the authenticated identity and its profile attributes, as the
// ArborVest API returns them.
type User struct {
	ID           uuid.UUID    `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	RiskAppetite RiskAppetite `json:"riskAppetite"`
	Bio          string       `json:"bio"`
	AvatarURL    string       `json:"avatarUrl"`
	DateOfBirth  string       `json:"dateOfBirth"`
}

// ProfileUpdate is a partial user mutation: only non-nil fields change.
// The JSON encoding omits absent fields, so the server receives exactly
// the fields the caller set.
type ProfileUpdate struct {
	FirstName    *string       `json:"firstName,omitempty"`
	LastName     *string       `json:"lastName,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	RiskAppetite *RiskAppetite `json:"riskAppetite,omitempty"`
	Bio          *string       `json:"bio,omitempty"`
	AvatarURL    *string       `json:"avatarUrl,omitempty"`
	DateOfBirth  *string       `json:"dateOfBirth,omitempty"`
}

// Merge returns a copy of u with the update's present fields applied.
// Absent fields keep their current values.
func (u User) Merge(update ProfileUpdate) User {
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.RiskAppetite != nil {
		u.RiskAppetite = *update.RiskAppetite
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	if update.DateOfBirth != nil {
		u.DateOfBirth = *update.DateOfBirth
	}
	return u
}

// SignupParams carries the registration fields for Signup. Registration
// does not authenticate: the server leaves the account pending verification
// and the caller routes the user to login.
type SignupParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}
