package auth

// User is the identity record backing registration and login. Token holds
// the most recently issued session token; it is written on every issuance
// and never read back for authorization decisions — the bearer token on the
// request is the only credential that counts.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Token        *string `json:"-"`
}
