package users

// RegisterRequest is the inbound registration payload.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// RegisterResponse reports the user identity that now owns the email.
// Registration is idempotent on email, so the id may belong to a previously
// registered user.
type RegisterResponse struct {
	UserID  int64  `json:"userId"`
	Message string `json:"message"`
}
