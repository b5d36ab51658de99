package petfriends

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends/petfriendstest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "qa@example.com"
	testPassword = "s3cret"
	catPhoto     = "images/cat.jpg"
	dogPhoto     = "images/dog.png"
)

func newTestClient(t *testing.T) (*Client, *petfriendstest.Server) {
	t.Helper()
	srv := petfriendstest.NewServer(testEmail, testPassword)
	t.Cleanup(srv.Close)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, catPhoto, []byte("cat-jpeg"), 0o644))
	require.NoError(t, afero.WriteFile(fs, dogPhoto, []byte("dog-png"), 0o644))

	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, Photos: fs})
	require.NoError(t, err)
	return c, srv
}

func login(t *testing.T, c *Client) AuthKey {
	t.Helper()
	status, body, err := c.GetAPIKey(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	key, ok := body.Key()
	require.True(t, ok, "auth body has no key: %v", body)
	return key
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "petfriends.local"})
	assert.Error(t, err)
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestGetAPIKeyValidCredentials(t *testing.T) {
	c, srv := newTestClient(t)

	status, body, err := c.GetAPIKey(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Has("key"))

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/api/key", req.Path)
	assert.Equal(t, testEmail, req.Header.Get("email"))
	assert.Equal(t, testPassword, req.Header.Get("password"))
}

func TestGetAPIKeyInvalidCredentials(t *testing.T) {
	c, _ := newTestClient(t)

	cases := []Credentials{
		{Email: "wrong@example.com", Password: testPassword},
		{Email: testEmail, Password: "wrong"},
		{Email: "wrong@example.com", Password: "wrong"},
	}
	for _, creds := range cases {
		status, body, err := c.Login(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, status, "creds %s", creds.Email)
		assert.False(t, body.Has("key"))
		assert.NotNil(t, body, "non-JSON reply must still yield a body")
	}
}

func TestTransportErrorIsPropagated(t *testing.T) {
	srv := petfriendstest.NewServer(testEmail, testPassword)
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	status, body, err := c.GetAPIKey(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "get api key:"), err.Error())
	assert.Zero(t, status)
	assert.Empty(t, body)
}

func TestListPetsScopes(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddUser("other@example.com", "pw")
	srv.Seed("other@example.com", "Rex", "dog", "3")
	mine := srv.Seed(testEmail, "Tom", "cat", "2")
	key := login(t, c)

	status, body, err := c.ListPets(context.Background(), key, ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	all, ok := body.Pets()
	require.True(t, ok)
	assert.Len(t, all, 2)

	req, _ := srv.LastRequest()
	assert.Equal(t, "filter=", req.Query)
	assert.Equal(t, string(key), req.Header.Get("auth_key"))

	status, body, err = c.ListPets(context.Background(), key, ScopeMine)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{mine}, body.PetIDs())

	req, _ = srv.LastRequest()
	assert.Equal(t, "filter=my_pets", req.Query)
}

func TestListPetsForwardsUnknownScope(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)

	status, body, err := c.ListPets(context.Background(), key, Scope("everything"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, body)

	req, _ := srv.LastRequest()
	assert.Equal(t, "filter=everything", req.Query)
}

func TestListPetsWithBadKeyIsForbidden(t *testing.T) {
	c, _ := newTestClient(t)

	status, body, err := c.ListPets(context.Background(), AuthKey("forged"), ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	_, ok := body.Pets()
	assert.False(t, ok)
}

func TestCreatePetWithPhotoRoundTrip(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)

	status, body, err := c.CreatePet(context.Background(), key, "Murzik", "cat", "4", catPhoto)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	pet := body.Pet()
	assert.Equal(t, "Murzik", pet.Name)
	assert.Equal(t, "cat", pet.AnimalType)
	assert.Equal(t, "4", pet.Age)
	assert.True(t, pet.HasPhoto())

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/pets", req.Path)
	file := req.Files["pet_photo"]
	assert.Equal(t, "cat.jpg", file.Name)
	assert.Equal(t, "image/jpeg", file.ContentType)
	assert.Equal(t, []byte("cat-jpeg"), file.Data)

	_, mine, err := c.ListPets(context.Background(), key, ScopeMine)
	require.NoError(t, err)
	assert.True(t, mine.ContainsPet(pet.ID))
}

func TestCreatePetForwardsInvalidValuesVerbatim(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)

	cases := []struct{ name, animalType, age string }{
		{"Вася", "кот", "-5"},
		{"Буся", "хомяк", "356"},
		{"", "кот", "2"},
		{"Жужа", "34562", "5"},
		{"Локи", "собака", "шесть"},
		{"  padded  ", " type ", " 7 "},
	}
	for _, tc := range cases {
		status, body, err := c.CreatePet(context.Background(), key, tc.name, tc.animalType, tc.age, catPhoto)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		req, _ := srv.LastRequest()
		assert.Equal(t, []string{tc.name}, req.Form["name"])
		assert.Equal(t, []string{tc.animalType}, req.Form["animal_type"])
		assert.Equal(t, []string{tc.age}, req.Form["age"])

		pet := body.Pet()
		assert.Equal(t, tc.name, pet.Name)
		assert.Equal(t, tc.age, pet.Age)
	}
}

func TestCreatePetMissingPhotoSendsNothing(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)
	before := len(srv.Requests())

	status, body, err := c.CreatePet(context.Background(), key, "Murzik", "cat", "4", "images/missing.jpg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPhotoUnreadable))
	assert.Zero(t, status)
	assert.Empty(t, body)
	assert.Len(t, srv.Requests(), before)
}

func TestCreatePetSimple(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)

	status, body, err := c.CreatePetSimple(context.Background(), key, "Борис", "Собака", "3")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Борис", body.Pet().Name)
	assert.False(t, body.Pet().HasPhoto())

	req, _ := srv.LastRequest()
	assert.Equal(t, "/api/create_pet_simple", req.Path)
	assert.Empty(t, req.Files)
	assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
}

func TestUpdatePetIsIdempotent(t *testing.T) {
	c, srv := newTestClient(t)
	id := srv.Seed(testEmail, "Tom", "cat", "2")
	key := login(t, c)

	status, first, err := c.UpdatePet(context.Background(), key, id, "Маркиз", "кот", "5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	status, second, err := c.UpdatePet(context.Background(), key, id, "Маркиз", "кот", "5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, first.Pet(), second.Pet())
	assert.Equal(t, "Маркиз", second.Pet().Name)

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/pets/"+id, req.Path)
}

func TestUpdatePetForeignOrMissingIsRejectedByService(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddUser("other@example.com", "pw")
	foreign := srv.Seed("other@example.com", "Rex", "dog", "3")
	key := login(t, c)

	for _, id := range []string{foreign, "does-not-exist"} {
		status, _, err := c.UpdatePet(context.Background(), key, id, "x", "y", "1")
		require.NoError(t, err)
		assert.NotEqual(t, http.StatusOK, status, "id %s", id)
	}
}

func TestDeletePetRemovesFromMine(t *testing.T) {
	c, srv := newTestClient(t)
	id := srv.Seed(testEmail, "Tom", "cat", "2")
	key := login(t, c)

	status, body, err := c.DeletePet(context.Background(), key, id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body, "empty reply decodes to empty body")

	_, mine, err := c.ListPets(context.Background(), key, ScopeMine)
	require.NoError(t, err)
	assert.False(t, mine.ContainsPet(id))

	// A second delete is forwarded unchanged.
	status, _, err = c.DeletePet(context.Background(), key, id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, srv.Requests(), 4)
}

func TestSetPhotoSetsAndReplaces(t *testing.T) {
	c, srv := newTestClient(t)
	id := srv.Seed(testEmail, "Tom", "cat", "2")
	key := login(t, c)

	status, body, err := c.SetPhoto(context.Background(), key, id, catPhoto)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	firstPhoto := body.Pet().PetPhoto
	assert.NotEmpty(t, firstPhoto)

	status, body, err = c.SetPhoto(context.Background(), key, id, dogPhoto)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, firstPhoto, body.Pet().PetPhoto)

	req, _ := srv.LastRequest()
	assert.Equal(t, "/api/pets/set_photo/"+id, req.Path)
	assert.Equal(t, "image/png", req.Files["pet_photo"].ContentType)

	_, mine, err := c.ListPets(context.Background(), key, ScopeMine)
	require.NoError(t, err)
	pets, _ := mine.Pets()
	require.Len(t, pets, 1)
	assert.Equal(t, body.Pet().PetPhoto, pets[0].PetPhoto)
}

func TestPetIDIsPathEscaped(t *testing.T) {
	c, srv := newTestClient(t)
	key := login(t, c)

	_, _, err := c.DeletePet(context.Background(), key, "a/b")
	require.NoError(t, err)
	req, _ := srv.LastRequest()
	assert.Equal(t, "/api/pets/a%2Fb", req.Path)
}
