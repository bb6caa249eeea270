package gateway

import (
	"bidding-room/internal/auth"
	"bidding-room/utils"
	"errors"
	"net/http"

	"github.com/gobwas/ws"
)

// Handler upgrades HTTP requests to room connections. Requests without
// credentials join as anonymous watchers; bad credentials are refused.
type Handler struct {
	router *Router
	auth   *auth.Authenticator
}

func NewHandler(router *Router, authenticator *auth.Authenticator) *Handler {
	return &Handler{router: router, auth: authenticator}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.FromRequest(r)
	if err != nil && !errors.Is(err, auth.ErrNoCredentials) {
		utils.Warn("websocket authentication failed", map[string]any{"remote": r.RemoteAddr, "error": err.Error()})
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		utils.Warn("websocket upgrade failed", map[string]any{"remote": r.RemoteAddr, "error": err.Error()})
		return
	}

	client := NewClient(conn, h.router, userID)
	utils.Debug("websocket connected", map[string]any{"connection_id": client.ID(), "user_id": userID})
	client.Start()
}
