package petfriends

import (
	"context"
	"net/http"

	"github.com/samvad-hq/petfriends-verifier/pkg/httpclient"
)

// ListPets returns every pet visible to key (ScopeAll) or only the caller's
// own pets (ScopeMine). The collection is returned as the service ordered it.
func (c *Client) ListPets(ctx context.Context, key AuthKey, scope Scope) (int, Body, error) {
	return c.do(ctx, "list pets", httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.endpoint("pets"),
		Headers: authHeaders(key),
		Query:   map[string]string{"filter": scope.Filter()},
	})
}

// CreatePet adds a pet with a photo attached, sent as multipart/form-data.
func (c *Client) CreatePet(ctx context.Context, key AuthKey, name, animalType, age, photoPath string) (int, Body, error) {
	part, err := c.photoPart(photoPath)
	if err != nil {
		return 0, Body{}, err
	}
	return c.do(ctx, "create pet", httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint("pets"),
		Headers: authHeaders(key),
		Form:    petFields(name, animalType, age),
		Files:   []httpclient.FilePart{part},
	})
}

// CreatePetSimple adds a pet without a photo using plain form fields.
func (c *Client) CreatePetSimple(ctx context.Context, key AuthKey, name, animalType, age string) (int, Body, error) {
	return c.do(ctx, "create pet simple", httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.endpoint("create_pet_simple"),
		Headers: authHeaders(key),
		Form:    petFields(name, animalType, age),
	})
}

// UpdatePet overwrites name, animal type and age of petID. Ownership and
// existence are checked by the service only.
func (c *Client) UpdatePet(ctx context.Context, key AuthKey, petID, name, animalType, age string) (int, Body, error) {
	return c.do(ctx, "update pet", httpclient.Request{
		Method:  http.MethodPut,
		URL:     c.endpoint("pets", petID),
		Headers: authHeaders(key),
		Form:    petFields(name, animalType, age),
	})
}

// DeletePet removes petID. Repeated deletes are forwarded as-is.
func (c *Client) DeletePet(ctx context.Context, key AuthKey, petID string) (int, Body, error) {
	return c.do(ctx, "delete pet", httpclient.Request{
		Method:  http.MethodDelete,
		URL:     c.endpoint("pets", petID),
		Headers: authHeaders(key),
	})
}
