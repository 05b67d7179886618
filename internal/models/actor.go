package models

// Actor is the resolved (user id, role) pair every service operation
// receives instead of raw session data. It is built once per request by the
// auth middleware; downstream code never re-resolves identity.
type Actor struct {
	UserID string
	Role   UserRole
}

// CanEvaluate reports whether the actor may score bids and decide outcomes.
func (a Actor) CanEvaluate() bool {
	return a.Role.Evaluator()
}
