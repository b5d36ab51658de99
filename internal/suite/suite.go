// Package suite holds the PetFriends verification scenarios. Each scenario
// talks to the live service through the petfriends client and records a
// verifier outcome; known service defects are reported, not failed.
package suite

import (
	"context"
	"net/http"

	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
	"github.com/samvad-hq/petfriends-verifier/pkg/fixtures"
	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends"
	"github.com/stretchr/testify/require"
)

// API is the part of the petfriends client the scenarios use.
type API interface {
	BaseURL() string
	GetAPIKey(ctx context.Context, email, password string) (int, petfriends.Body, error)
	ListPets(ctx context.Context, key petfriends.AuthKey, scope petfriends.Scope) (int, petfriends.Body, error)
	CreatePet(ctx context.Context, key petfriends.AuthKey, name, animalType, age, photoPath string) (int, petfriends.Body, error)
	CreatePetSimple(ctx context.Context, key petfriends.AuthKey, name, animalType, age string) (int, petfriends.Body, error)
	UpdatePet(ctx context.Context, key petfriends.AuthKey, petID, name, animalType, age string) (int, petfriends.Body, error)
	DeletePet(ctx context.Context, key petfriends.AuthKey, petID string) (int, petfriends.Body, error)
	SetPhoto(ctx context.Context, key petfriends.AuthKey, petID, photoPath string) (int, petfriends.Body, error)
}

// Env is everything a run needs.
type Env struct {
	API       API
	Valid     petfriends.Credentials
	Invalid   petfriends.Credentials
	Fixtures  *fixtures.Registry
	PhotosDir string
}

// Groups lists the top-level scenario groups in execution order.
var Groups = []string{"auth", "list", "create", "update", "photo", "delete", "defects"}

// Run executes every scenario accepted by filter.
func Run(ctx context.Context, env Env, filter verifier.Filter, log verifier.TestLogger) verifier.Results {
	if env.Fixtures == nil {
		env.Fixtures = fixtures.Defaults()
	}
	return verifier.Run(ctx, filter, log, func(t *verifier.T) {
		t.Run("auth", env.auth)
		t.Run("list", env.list)
		t.Run("create", env.create)
		t.Run("update", env.update)
		t.Run("photo", env.photo)
		t.Run("delete", env.delete)
		t.Run("defects", env.defects)
	})
}

// login fetches a key for the valid credentials or aborts the scenario.
func (e Env) login(t *verifier.T) petfriends.AuthKey {
	status, body, err := e.API.GetAPIKey(t.Context(), e.Valid.Email, e.Valid.Password)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status, "auth with valid credentials")
	key, ok := body.Key()
	require.True(t, ok, "auth response has no key")
	return key
}

func (e Env) fixture(t *verifier.T, id string) fixtures.Fixture {
	f, ok := e.Fixtures.Get(id)
	require.True(t, ok, "fixture %q is not defined", id)
	return f
}

// myPets lists the caller's pets, failing the scenario on anything but 200.
func (e Env) myPets(t *verifier.T, key petfriends.AuthKey) []petfriends.PetRecord {
	status, body, err := e.API.ListPets(t.Context(), key, petfriends.ScopeMine)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status, "list my pets")
	pets, ok := body.Pets()
	require.True(t, ok, "list response has no pets collection")
	return pets
}

// ownPet returns the first of the caller's pets, creating one from the seed
// fixture when the caller has none.
func (e Env) ownPet(t *verifier.T, key petfriends.AuthKey) petfriends.PetRecord {
	pets := e.myPets(t, key)
	if len(pets) == 0 {
		seed := e.fixture(t, fixtures.OwnPetSeed)
		t.Debug("no own pets, creating %q", seed.Name)
		status, _, err := e.addPet(t, key, seed)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status, "create seed pet")
		pets = e.myPets(t, key)
	}
	require.NotEmpty(t, pets, "there are no own pets")
	return pets[0]
}

// addPet adds f, with a photo when the fixture names one.
func (e Env) addPet(t *verifier.T, key petfriends.AuthKey, f fixtures.Fixture) (int, petfriends.Body, error) {
	if path := f.PhotoPath(e.PhotosDir); path != "" {
		return e.API.CreatePet(t.Context(), key, f.Name, f.AnimalType, f.Age, path)
	}
	return e.API.CreatePetSimple(t.Context(), key, f.Name, f.AnimalType, f.Age)
}
