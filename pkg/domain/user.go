package domain

// User is the authenticated account as returned by GET /auth/user.
// Fields are decoded verbatim; the client never fills them in itself.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// DisplayName returns the username, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
}
