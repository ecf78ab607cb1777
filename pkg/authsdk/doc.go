/*
Package authsdk is a Go client for the Gatehouse authentication service.

# Overview

The service signs accounts in with two steps: a credential check that emails a
one-time passcode, then a passcode check that returns an access/refresh token
pair. The SDK mirrors that with two types:

  - Client: unauthenticated operations (sign-up, sign-in, health)

  - Session: authenticated operations with automatic access token refresh

    client := authsdk.NewClient("https://auth.example.com")

    // Register, then verify with the emailed code
    _, err := client.SignUp(ctx, authsdk.SignUpRequest{...})
    err = client.VerifyAccount(ctx, "ada@example.com", code)

    // Sign in: credentials first, then the Login passcode
    _, err = client.SignIn(ctx, "ada", "password")
    session, err := client.VerifySignIn(ctx, "ada@example.com", code)

    account, err := session.Me(ctx)

# Automatic Token Refresh

Session methods call validToken first. When the access token is within 30
seconds of its exp claim the session exchanges its refresh token for a new
access token. The refresh token itself does not change.

# Error Handling

Every failed call returns *APIError carrying the HTTP status and the errors
list from the response envelope:

	_, err := client.SignIn(ctx, "ada", "wrong")
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusLocked {
		fmt.Println(apiErr.Messages[0]) // "your account has been blocked until ..."
	}

Helpers such as IsSuspended and IsNotFound cover the common cases.

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
