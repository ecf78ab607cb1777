package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/pkg/authsdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

type SignUpHandler struct {
	AuthService *service.AuthService
	errs        *errorWriter
	echoOTP     bool
}

// HandleSignUp godoc
//
//	@Summary		Register an account
//	@Description	Creates an inactive account and emails a Signup passcode. The account can sign in once the passcode is verified.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignUpRequest	true	"Registration details"
//	@Success		201		{object}	authsdk.PasscodeEnvelope
//	@Failure		400		{object}	authsdk.ErrorEnvelope	"Validation failed or passwords differ"
//	@Failure		409		{object}	authsdk.ErrorEnvelope	"Email or username already taken"
//	@Failure		429		{object}	authsdk.ErrorEnvelope
//	@Router			/v1/auth/signup [post].
func (h *SignUpHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.SignUp(r.Context(), service.SignUpInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated,
		"account created, check your email for the verification code",
		passcodeData(h.echoOTP, res.OTP),
	)
}

// HandleVerify godoc
//
//	@Summary		Verify an account
//	@Description	Consumes the Signup passcode and activates the account.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.VerifyOTPRequest	true	"Email and passcode"
//	@Success		200		{object}	authsdk.MessageEnvelope
//	@Failure		400		{object}	authsdk.ErrorEnvelope
//	@Failure		401		{object}	authsdk.ErrorEnvelope	"Wrong passcode"
//	@Failure		404		{object}	authsdk.ErrorEnvelope	"No passcode issued"
//	@Failure		410		{object}	authsdk.ErrorEnvelope	"Passcode expired"
//	@Router			/v1/auth/signup/verify [post].
func (h *SignUpHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.AuthService.VerifyAccount(r.Context(), req.Email, req.OTP); err != nil {
		h.errs.write(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "account verified", nil)
}

func passcodeData(echo bool, code string) any {
	if !echo {
		return nil
	}
	return authsdk.PasscodeData{OTP: code}
}
