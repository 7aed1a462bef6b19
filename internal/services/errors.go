package services

// Rejection is a user-facing validation failure. Its message is safe to show
// to the client as is.
type Rejection struct {
	reason string
	msg    string
}

func reject(reason, msg string) *Rejection { return &Rejection{reason: reason, msg: msg} }

func (e *Rejection) Error() string { return e.msg }

// Reason is a stable, low-cardinality label used for metrics.
func (e *Rejection) Reason() string { return e.reason }

var (
	ErrEmptyFields       = reject("empty_fields", "No empty fields allowed")
	ErrInvalidShares     = reject("invalid_shares", "Invalid number of shares")
	ErrNonPositiveShares = reject("invalid_shares", "Shares must be a positive whole number")
	ErrEmptySymbol       = reject("empty_symbol", "Must enter a valid symbol")
	ErrInvalidSymbol     = reject("invalid_symbol", "Invalid symbol")
	ErrInsufficientFunds = reject("insufficient_funds", "Not enough funds")
	ErrNotOwned          = reject("not_owned", "Not a valid stock")
	ErrOversell          = reject("oversell", "You cannot sell more shares than you own")

	ErrPasswordMismatch = reject("password_mismatch", "Passwords do not match")
	ErrWeakPassword     = reject("weak_password",
		"Password must contain at least 8 characters with at least one letter, one number, and one special character")
	ErrUsernameTooLong    = reject("invalid_username", "Username must be at most 50 characters")
	ErrUsernameTaken      = reject("username_taken", "Username already taken")
	ErrMissingUsername    = reject("missing_username", "must provide username")
	ErrMissingPassword    = reject("missing_password", "must provide password")
	ErrInvalidCredentials = reject("invalid_credentials", "invalid username and/or password")
)
