package contacts

// Contact is a user-owned address-book entry. Name and PhoneNumber are
// required; Email and Address are nullable. The owning user id is never
// serialized — ownership is enforced by query predicates, not exposed data.
type Contact struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}
