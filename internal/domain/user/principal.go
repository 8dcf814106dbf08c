package user

// Principal is the authenticated caller resolved by the identity provider.
type Principal struct {
	UserID string
	Email  string
}
