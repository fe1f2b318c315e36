package model

// Lead is a prospective customer captured by the public landing flow.
// Leads are created elsewhere and are read-only here.
type Lead struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}
