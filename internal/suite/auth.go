package suite

import (
	"net/http"

	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e Env) auth(t *verifier.T) {
	t.Run("valid credentials", func(t *verifier.T) {
		status, body, err := e.API.GetAPIKey(t.Context(), e.Valid.Email, e.Valid.Password)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, body.Has("key"), "response has no key")
	})

	t.Run("wrong email", func(t *verifier.T) {
		e.rejectsLogin(t, e.Invalid.Email, e.Valid.Password)
	})

	t.Run("wrong password", func(t *verifier.T) {
		e.rejectsLogin(t, e.Valid.Email, e.Invalid.Password)
	})
}

func (e Env) rejectsLogin(t *verifier.T, email, password string) {
	status, body, err := e.API.GetAPIKey(t.Context(), email, password)
	require.NoError(t, err)
	t.Debug("auth rejected with status %d", status)
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, body.Has("key"), "rejected auth must not return a key")
}
