package models

// User is the identity carried by the bearer token. Registration, login and
// password reset live with the external identity provider; the backend only
// ever sees a verified id + email.
type User struct {
	ID    string `json:"id"` // uuid, token subject
	Email string `json:"email"`
}
