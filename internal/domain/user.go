package domain

// User is an account on the platform. Token is only populated by
// authentication responses.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Status   string `json:"status,omitempty"`
	Token    string `json:"token,omitempty"`
}

// SignupOpts holds the parameters for creating a new account.
type SignupOpts struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
