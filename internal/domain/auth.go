package domain

// ============================================================
// Auth: request / response types
// ============================================================

// Credentials is the body for POST /auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
	User      User   `json:"user"`
}

// Registration is the body for POST /auth/register.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// PasswordChange is the body for POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest is the body for POST /auth/forgot-password.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ============================================================
// Users
// ============================================================

// User is the logged-in user's profile.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// ProfileUpdate is the body for PUT /users/profile.
type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
