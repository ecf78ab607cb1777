package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/gatehouse/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestSignInFlow covers sign up, verification, sign in and the account view.
func TestSignInFlow(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	registerAccount(t, client, "alice")

	session := performLogin(t, client, "alice", testPassword)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)
	require.Equal(t, "Test User", me.FullName)
	require.Equal(t, "ACTIVE", me.Status)
	require.Equal(t, 1, me.ClearanceLevel)
	require.NotEmpty(t, me.LastLogin)
}

// TestSignUpConflicts verifies duplicate usernames and emails are refused.
func TestSignUpConflicts(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	registerAccount(t, client, "bob")

	_, err := client.SignUp(t.Context(), signUpRequest("bob"))
	require.True(t, authsdk.IsConflict(err), "duplicate sign up should conflict, got %v", err)
}

// TestUnverifiedAccountCannotSignIn verifies that sign in needs an activated account.
func TestUnverifiedAccountCannotSignIn(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	_, err := client.SignUp(t.Context(), signUpRequest("carol"))
	require.NoError(t, err)

	_, err = client.SignIn(t.Context(), "carol", testPassword)
	require.True(t, authsdk.IsForbidden(err), "inactive account should be refused, got %v", err)
}

// TestSuspensionAfterFailedSignIns walks an account into the first tier and
// past it.
func TestSuspensionAfterFailedSignIns(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	ctx := t.Context()
	registerAccount(t, client, "dave")

	for i := range 2 {
		_, err := client.SignIn(ctx, "dave", "wrong-password")
		require.True(t, authsdk.IsUnauthorized(err), "attempt %d should be rejected, got %v", i+1, err)
	}

	_, err := client.SignIn(ctx, "dave", "wrong-password")
	require.True(t, authsdk.IsSuspended(err), "third failure should suspend, got %v", err)
	require.Contains(t, err.Error(), "blocked until")

	// The right password does not lift an active suspension.
	_, err = client.SignIn(ctx, "dave", testPassword)
	require.True(t, authsdk.IsSuspended(err))

	_, err = client.SignIn(ctx, "dave", "wrong-password")
	require.True(t, authsdk.IsSuspended(err))
	require.Contains(t, err.Error(), "forgot password")
}

// TestUnknownAccount verifies the not found response.
func TestUnknownAccount(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	_, err := client.SignIn(t.Context(), "nobody", testPassword)
	require.True(t, authsdk.IsNotFound(err), "got %v", err)
}

// TestWrongPasscode verifies a wrong passcode is refused and the right one
// still works afterwards.
func TestWrongPasscode(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	ctx := t.Context()
	registerAccount(t, client, "erin")

	code, err := client.SignIn(ctx, "erin", testPassword)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = client.VerifySignIn(ctx, "erin@example.com", wrong)
	require.True(t, authsdk.IsUnauthorized(err), "got %v", err)

	session, err := client.VerifySignIn(ctx, "erin@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken())

	// Passcodes are single use.
	_, err = client.VerifySignIn(ctx, "erin@example.com", code)
	require.True(t, authsdk.IsNotFound(err), "got %v", err)
}
