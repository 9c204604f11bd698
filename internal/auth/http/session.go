package http

import (
	"net/http"

	"github.com/misenoti/misenoti/pkg/authsdk"
	"github.com/misenoti/misenoti/pkg/httpx"
)

// SessionHandler describes the session token verified by AuthnMiddleware.
//
//	@Summary		Verify session token
//	@Description	Verifies the bearer session token and returns the user it was issued to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.SessionResponse	"user_id, email, expires_at"
//	@Failure		401	{object}	authsdk.Response		"Missing, invalid or expired token"
//	@Router			/v1/session [get].
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			authsdk.NewAPIError(http.StatusUnauthorized, "invalid session token").WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{
			Success:   true,
			UserID:    claims.UserID,
			Email:     claims.Email,
			ExpiresAt: claims.ExpiresAtTime(),
		})
	}
}
