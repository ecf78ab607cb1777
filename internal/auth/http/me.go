package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

type MeHandler struct {
	AccountService *service.AccountService
	errs           *errorWriter
}

// ServeHTTP godoc
//
//	@Summary		Current account
//	@Description	Returns the authenticated account. Requires clearance level 1 (a verified account).
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.AccountEnvelope
//	@Failure		401	{object}	authsdk.ErrorEnvelope	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorEnvelope	"Insufficient clearance level"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := httpx.AccountIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	acc, err := h.AccountService.GetAccount(ctx, accountID)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "account details", toAccount(service.Transform(acc)))
}
