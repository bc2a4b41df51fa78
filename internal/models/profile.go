package models

// Roles a profile can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile represents an authenticated customer or operator. The profile id is
// the user id carried in session tokens.
type Profile struct {
	BaseModel
	DisplayName  string `json:"display_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"size:16;not null;default:user" json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
