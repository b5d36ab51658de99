package petfriends

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends/petfriendstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	body   []byte
	status int
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return http.Header{} }

func TestDecodeObject(t *testing.T) {
	status, body := Decode(stubResponse{status: 200, body: []byte(`{"key":"abc","n":12}`)})
	assert.Equal(t, 200, status)
	key, ok := body.Key()
	assert.True(t, ok)
	assert.Equal(t, AuthKey("abc"), key)
	n, ok := body.String("n")
	assert.True(t, ok)
	assert.Equal(t, "12", n)
}

func TestDecodeFallsBackToEmptyBody(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"html":          "<html><title>500</title></html>",
		"array":         `[{"id":"1"}]`,
		"null":          "null",
		"truncated":     `{"key":`,
		"trailing junk": `{"key":"a"} extra`,
		"extra brace":   `{"key":"a"}}`,
		"extra bracket": `{"key":"a"}]`,
		"two objects":   `{"key":"a"}{"key":"b"}`,
		"scalar":        `"just a string"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := Decode(stubResponse{status: 502, body: []byte(raw)})
			assert.Equal(t, 502, status)
			require.NotNil(t, body)
			assert.Empty(t, body)
		})
	}
}

func TestDecodeAllowsTrailingWhitespace(t *testing.T) {
	_, body := Decode(stubResponse{status: 200, body: []byte("{\"key\":\"a\"}\n  \r\n")})
	key, ok := body.Key()
	assert.True(t, ok)
	assert.Equal(t, AuthKey("a"), key)
}

func TestDecodeNilResponse(t *testing.T) {
	status, body := Decode(nil)
	assert.Zero(t, status)
	assert.NotNil(t, body)
}

func TestBodyKeepsNumericAgeLiteral(t *testing.T) {
	_, body := Decode(stubResponse{status: 200, body: []byte(`{"id":"p1","age":356,"name":""}`)})
	pet := body.Pet()
	assert.Equal(t, "356", pet.Age)
	assert.Equal(t, "", pet.Name)
	assert.True(t, body.Has("name"))
	assert.False(t, body.Has("pet_photo"))
}

func TestBodyPetsMissingField(t *testing.T) {
	_, body := Decode(stubResponse{status: 200, body: []byte(`{"pets":"nope"}`)})
	_, ok := body.Pets()
	assert.False(t, ok)
	assert.Empty(t, body.PetIDs())
}

func TestNumericAgeFromServiceIsRenderedVerbatim(t *testing.T) {
	c, srv := newTestClient(t)
	srv.SetNumericAge(true)
	key := login(t, c)

	_, body, err := c.CreatePetSimple(context.Background(), key, "Буся", "хомяк", "356")
	require.NoError(t, err)
	assert.Equal(t, "356", body.Pet().Age)
	_, isNumber := body["age"].(interface{ String() string })
	assert.True(t, isNumber, "age should decode as json.Number, got %T", body["age"])
}

func TestDescribeHTMLErrorPage(t *testing.T) {
	page := `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<title>403 Forbidden</title>
<h1>Forbidden</h1>
<p>This user wasn't
   found in database</p>`
	assert.Equal(t, "403 Forbidden: This user wasn't found in database", Describe([]byte(page)))
}

func TestDescribePlainAndEmpty(t *testing.T) {
	assert.Equal(t, "<empty>", Describe(nil))
	assert.Equal(t, "Filter value is incorrect", Describe([]byte(" Filter value is incorrect \n")))

	long := strings.Repeat("x", maxSnippetLen+10)
	assert.Equal(t, maxSnippetLen+3, len(Describe([]byte(long))))
}

func TestPhotoContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", PhotoContentType("images/cat.JPG"))
	assert.Equal(t, "image/png", PhotoContentType("dog.png"))
	assert.Equal(t, "application/octet-stream", PhotoContentType("photo"))
	assert.Equal(t, "application/octet-stream", PhotoContentType("photo.zzunknown"))
}

func TestForbiddenPageFromFakeDecodesEmpty(t *testing.T) {
	srv := petfriendstest.NewServer(testEmail, testPassword)
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	status, body, err := c.GetAPIKey(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Empty(t, body)
}
