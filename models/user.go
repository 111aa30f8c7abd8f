package models

const (
	RoleTourist = "tourist"
	RoleGuide   = "guide"
)

// UserIdentity is the signed-in user as asserted by the identity provider.
type UserIdentity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
}

// IsGuide reports whether the identity carries the guide role.
func (u *UserIdentity) IsGuide() bool {
	return u != nil && u.Role == RoleGuide
}
