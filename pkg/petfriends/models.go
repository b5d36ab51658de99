package petfriends

import "github.com/samvad-hq/petfriends-verifier/internal/domain"

type (
	Credentials = domain.Credentials
	AuthKey     = domain.AuthKey
	Scope       = domain.Scope
	PetRecord   = domain.PetRecord
)

const (
	ScopeAll  = domain.ScopeAll
	ScopeMine = domain.ScopeMine
)
