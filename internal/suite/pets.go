package suite

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
	"github.com/samvad-hq/petfriends-verifier/pkg/fixtures"
	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e Env) list(t *verifier.T) {
	t.Run("all pets", func(t *verifier.T) {
		key := e.login(t)
		status, body, err := e.API.ListPets(t.Context(), key, petfriends.ScopeAll)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		pets, ok := body.Pets()
		require.True(t, ok, "response has no pets collection")
		assert.NotEmpty(t, pets)
	})

	t.Run("my pets", func(t *verifier.T) {
		key := e.login(t)
		e.ownPet(t, key)
		assert.NotEmpty(t, e.myPets(t, key))
	})
}

func (e Env) create(t *verifier.T) {
	t.Run("with photo", func(t *verifier.T) {
		key := e.login(t)
		f := e.fixture(t, fixtures.ValidCat)
		status, body, err := e.API.CreatePet(t.Context(), key, f.Name, f.AnimalType, f.Age, f.PhotoPath(e.PhotosDir))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, f.Name, body.Pet().Name)
		assert.True(t, body.Pet().HasPhoto(), "created pet has no photo")
	})

	t.Run("without photo", func(t *verifier.T) {
		key := e.login(t)
		f := e.fixture(t, fixtures.Simple)
		status, body, err := e.API.CreatePetSimple(t.Context(), key, f.Name, f.AnimalType, f.Age)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, f.Name, body.Pet().Name)
	})

	t.Run("appears in my pets", func(t *verifier.T) {
		key := e.login(t)
		f := e.fixture(t, fixtures.Simple)
		status, body, err := e.API.CreatePetSimple(t.Context(), key, f.Name, f.AnimalType, f.Age)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		id := body.Pet().ID
		require.NotEmpty(t, id, "created pet has no id")

		_, mine, err := e.API.ListPets(t.Context(), key, petfriends.ScopeMine)
		require.NoError(t, err)
		assert.True(t, mine.ContainsPet(id), "pet %s missing from my pets", id)
	})
}

func (e Env) update(t *verifier.T) {
	t.Run("self pet", func(t *verifier.T) {
		key := e.login(t)
		pet := e.ownPet(t, key)
		f := e.fixture(t, fixtures.Update)
		status, body, err := e.API.UpdatePet(t.Context(), key, pet.ID, f.Name, f.AnimalType, f.Age)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, f.Name, body.Pet().Name)
	})

	t.Run("idempotent", func(t *verifier.T) {
		key := e.login(t)
		pet := e.ownPet(t, key)
		f := e.fixture(t, fixtures.Update)

		var records []petfriends.PetRecord
		for i := 0; i < 2; i++ {
			status, body, err := e.API.UpdatePet(t.Context(), key, pet.ID, f.Name, f.AnimalType, f.Age)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, status, "update #%d", i+1)
			records = append(records, body.Pet())
		}
		first, second := records[0], records[1]
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Name, second.Name)
		assert.Equal(t, first.AnimalType, second.AnimalType)
		assert.Equal(t, first.Age, second.Age)
	})

	t.Run("foreign or missing id", func(t *verifier.T) {
		key := e.login(t)
		f := e.fixture(t, fixtures.Update)
		missing := uuid.NewString()
		status, _, err := e.API.UpdatePet(t.Context(), key, missing, f.Name, f.AnimalType, f.Age)
		require.NoError(t, err)
		t.Debug("update of %s answered %d", missing, status)
		assert.NotEqual(t, http.StatusOK, status, "update of unknown pet was accepted")
	})
}

func (e Env) photo(t *verifier.T) {
	t.Run("set on pet", func(t *verifier.T) {
		key := e.login(t)
		pet := e.ownPet(t, key)
		f := e.fixture(t, fixtures.PhotoReplacement)
		status, body, err := e.API.SetPhoto(t.Context(), key, pet.ID, f.PhotoPath(e.PhotosDir))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var listed *petfriends.PetRecord
		for _, p := range e.myPets(t, key) {
			if p.ID == pet.ID {
				listed = &p
				break
			}
		}
		require.NotNil(t, listed, "pet %s missing from my pets", pet.ID)
		assert.Equal(t, body.Pet().PetPhoto, listed.PetPhoto)
		assert.True(t, listed.HasPhoto(), "listed pet has no photo")
	})
}

func (e Env) delete(t *verifier.T) {
	t.Run("self pet", func(t *verifier.T) {
		key := e.login(t)
		pet := e.ownPet(t, key)
		status, _, err := e.API.DeletePet(t.Context(), key, pet.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		_, mine, err := e.API.ListPets(t.Context(), key, petfriends.ScopeMine)
		require.NoError(t, err)
		assert.False(t, mine.ContainsPet(pet.ID), "deleted pet %s is still listed", pet.ID)
	})
}
