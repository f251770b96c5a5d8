// Package contacts request/response payloads.
package contacts

// ContactRequest is the body of both POST /contacts and PATCH
// /contacts/{id}. Updates are a full replace of these four fields.
type ContactRequest struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}

// SearchRequest is the body of POST /contacts/search. Each supplied field is
// a case-sensitive substring filter; omitted fields impose no constraint.
type SearchRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}

// AddContactResponse returns the id assigned to a newly created contact.
type AddContactResponse struct {
	ID int64 `json:"id"`
}

// ContactResponse wraps a single contact.
type ContactResponse struct {
	Contact Contact `json:"contact"`
}

// ContactListResponse wraps a list of contacts.
type ContactListResponse struct {
	Contacts []Contact `json:"contacts"`
}
