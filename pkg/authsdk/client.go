package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the unauthenticated endpoints and starts Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignUp registers an account. The returned passcode is only non-empty when
// the service echoes passcodes.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	var env PasscodeEnvelope
	if err := c.postJSON(ctx, "/v1/auth/signup", req, &env, http.StatusCreated); err != nil {
		return "", err
	}
	return otpOf(env.Data), nil
}

// VerifyAccount activates an account with its Signup passcode.
func (c *Client) VerifyAccount(ctx context.Context, email, otp string) error {
	var env MessageEnvelope
	return c.postJSON(ctx, "/v1/auth/signup/verify", VerifyOTPRequest{Email: email, OTP: otp}, &env, http.StatusOK)
}

// SignIn checks credentials; the service then emails a Login passcode.
func (c *Client) SignIn(ctx context.Context, username, password string) (string, error) {
	var env PasscodeEnvelope
	if err := c.postJSON(ctx, "/v1/auth/login", SignInRequest{Username: username, Password: password}, &env, http.StatusOK); err != nil {
		return "", err
	}
	return otpOf(env.Data), nil
}

// VerifySignIn completes sign-in and returns a Session.
func (c *Client) VerifySignIn(ctx context.Context, email, otp string) (*Session, error) {
	var env LoginEnvelope
	if err := c.postJSON(ctx, "/v1/auth/login/verify", VerifyOTPRequest{Email: email, OTP: otp}, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(env.Data.AccessToken, env.Data.RefreshToken), nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var env TokenEnvelope
	if err := c.postJSON(ctx, "/v1/auth/tokens/refresh", RefreshRequest{RefreshToken: refreshToken}, &env, http.StatusOK); err != nil {
		return TokenPair{}, err
	}
	return env.Data, nil
}

func otpOf(d *PasscodeData) string {
	if d == nil {
		return ""
	}
	return d.OTP
}
