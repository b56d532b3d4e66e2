package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"dealflow_backend/internal/auth"
	"dealflow_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T, body string) *oauth2.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := NewOAuthConfig("client", "secret", "http://localhost/callback", nil)
	cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	return cfg
}

func TestAuthCodeURLCarriesSignedState(t *testing.T) {
	auth.InitJWT("oauth-test")
	flow := NewOAuthFlow(NewOAuthConfig("client", "secret", "http://localhost/callback", nil), newMemCreds())

	raw, err := flow.AuthCodeURL("u1")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "offline", u.Query().Get("access_type"))

	userID, err := auth.ParseStateToken(u.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestHandleCallbackStoresCredential(t *testing.T) {
	auth.InitJWT("oauth-test")
	cfg := newTokenServer(t, `{"access_token":"acc","refresh_token":"ref","token_type":"Bearer","expires_in":3600,"scope":"calendar"}`)
	creds := newMemCreds()
	flow := NewOAuthFlow(cfg, creds)

	state, err := auth.GenerateStateToken("u1")
	require.NoError(t, err)

	userID, err := flow.HandleCallback(context.Background(), state, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	cred, _ := creds.Get(context.Background(), "u1", models.CalendarProviderGoogle)
	require.NotNil(t, cred)
	assert.Equal(t, "acc", cred.AccessToken)
	assert.Equal(t, "ref", cred.RefreshToken)
	assert.Equal(t, "calendar", cred.Scope)
	assert.False(t, cred.ExpiresAt.IsZero())
}

func TestHandleCallbackKeepsExistingRefreshToken(t *testing.T) {
	auth.InitJWT("oauth-test")
	cfg := newTokenServer(t, `{"access_token":"acc2","token_type":"Bearer","expires_in":3600}`)
	creds := newMemCreds(models.OAuthCredential{UserID: "u1", AccessToken: "acc1", RefreshToken: "ref1"})
	flow := NewOAuthFlow(cfg, creds)

	state, _ := auth.GenerateStateToken("u1")
	_, err := flow.HandleCallback(context.Background(), state, "the-code")
	require.NoError(t, err)

	cred, _ := creds.Get(context.Background(), "u1", models.CalendarProviderGoogle)
	assert.Equal(t, "acc2", cred.AccessToken)
	assert.Equal(t, "ref1", cred.RefreshToken)
}

func TestHandleCallbackRejectsBadState(t *testing.T) {
	auth.InitJWT("oauth-test")
	flow := NewOAuthFlow(NewOAuthConfig("c", "s", "r", nil), newMemCreds())

	_, err := flow.HandleCallback(context.Background(), "forged", "the-code")
	assert.ErrorIs(t, err, ErrInvalidState)

	access, _ := auth.GenerateToken("u1", models.UserRoleInvestor)
	_, err = flow.HandleCallback(context.Background(), access, "the-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}
