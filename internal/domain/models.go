package domain

// Domain contains the core PetFriends models shared by the client, the
// verification suite and the reporters.

// Credentials is an email/password pair exchanged for an AuthKey.
type Credentials struct {
	Email    string `json:"email" mapstructure:"email"`
	Password string `json:"-" mapstructure:"password"`
}

// AuthKey is the opaque session token returned by the auth endpoint.
type AuthKey string

// Scope selects which pets a listing returns.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

// Filter returns the wire value of the listing filter parameter.
// Unknown scopes are forwarded verbatim.
func (s Scope) Filter() string {
	switch s {
	case ScopeAll:
		return ""
	case ScopeMine:
		return "my_pets"
	default:
		return string(s)
	}
}

// PetRecord is the typed view of a single pet as returned by the service.
// Age is kept as the literal text the service sent.
type PetRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AnimalType string `json:"animal_type"`
	Age        string `json:"age"`
	PetPhoto   string `json:"pet_photo"`
	UserID     string `json:"user_id"`
	CreatedAt  string `json:"created_at"`
}

// HasPhoto reports whether the record carries a photo reference.
func (p PetRecord) HasPhoto() bool {
	return p.PetPhoto != ""
}
