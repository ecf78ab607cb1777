package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/pkg/authsdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

type RefreshHandler struct {
	AuthService *service.AuthService
	errs        *errorWriter
}

// refreshBody keeps the token untyped so a non-string is reported as a
// validation error rather than a decode error.
type refreshBody struct {
	RefreshToken any `json:"refreshToken"`
}

// ServeHTTP godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges a refresh token for a new access token. The refresh token is returned unchanged.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenEnvelope
//	@Failure		400		{object}	authsdk.ErrorEnvelope
//	@Failure		404		{object}	authsdk.ErrorEnvelope	"Token or account not found"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/tokens/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshBody
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "token refreshed", authsdk.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
