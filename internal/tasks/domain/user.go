package domain

// User is a registered account. Rows are created on registration and never
// modified afterwards.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt encoded
}
