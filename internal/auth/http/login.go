package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/pkg/authsdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	errs        *errorWriter
	echoOTP     bool
}

// HandleLogin godoc
//
//	@Summary		Sign in
//	@Description	Checks the credentials and emails a Login passcode. Repeated failures suspend the account: 3 failures block it for 5 minutes, more require a password reset.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.PasscodeEnvelope
//	@Failure		400		{object}	authsdk.ErrorEnvelope
//	@Failure		401		{object}	authsdk.ErrorEnvelope	"Invalid username or password"
//	@Failure		403		{object}	authsdk.ErrorEnvelope	"Account disabled"
//	@Failure		404		{object}	authsdk.ErrorEnvelope	"Account not found"
//	@Failure		423		{object}	authsdk.ErrorEnvelope	"Account suspended"
//	@Failure		429		{object}	authsdk.ErrorEnvelope
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.SignIn(r.Context(), service.AttemptInput{
		Username: req.Username,
		Password: req.Password,
		IP:       clientIP(r),
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "sign-in code sent to your email", passcodeData(h.echoOTP, res.OTP))
}

// HandleVerify godoc
//
//	@Summary		Complete sign in
//	@Description	Consumes the Login passcode and returns the account with a fresh access/refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.VerifyOTPRequest	true	"Email and passcode"
//	@Success		200		{object}	authsdk.LoginEnvelope
//	@Failure		400		{object}	authsdk.ErrorEnvelope
//	@Failure		401		{object}	authsdk.ErrorEnvelope	"Wrong passcode"
//	@Failure		403		{object}	authsdk.ErrorEnvelope	"Passcode belongs to another account"
//	@Failure		404		{object}	authsdk.ErrorEnvelope	"No passcode issued"
//	@Failure		410		{object}	authsdk.ErrorEnvelope	"Passcode expired"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/login/verify [post].
func (h *LoginHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.VerifySignIn(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("tokens issued", "account_id", res.Account.ID)
	httpx.WriteSuccess(w, http.StatusOK, "signed in", authsdk.LoginData{
		Account: toAccount(service.Transform(res.Account)),
		TokenPair: authsdk.TokenPair{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
		},
	})
}

// clientIP is the address recorded with failed attempts.
func clientIP(r *http.Request) string {
	return httpx.IPKeyExtractor(r)
}

func toAccount(v service.AccountView) authsdk.Account {
	return authsdk.Account{
		ID:                  v.ID,
		FirstName:           v.FirstName,
		LastName:            v.LastName,
		FullName:            v.FullName,
		Initials:            v.Initials,
		Username:            v.Username,
		PhoneNumber:         v.PhoneNumber,
		ProfileImage:        v.ProfileImage,
		Role:                string(v.Role),
		ClearanceLevel:      v.ClearanceLevel,
		Status:              string(v.Status),
		IsActive:            v.IsActive,
		LastLogin:           v.LastLogin,
		LastLoginExpressive: v.LastLoginExpressive,
	}
}
