package handler

import (
	"net/http"
	"strconv"

	"github.com/newstech/newstech/internal/ctxkeys"
	"github.com/newstech/newstech/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerID(w, r)
	if !ok {
		return
	}

	account, err := h.userService.ByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req service.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// ownerID returns the {id} path value when it names the session's own account.
// Anything else, including a malformed id, is answered with 403.
func ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	session := ctxkeys.Session(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if session == nil || err != nil || id != session.UserID {
		writeMessage(w, http.StatusForbidden, "access denied")
		return 0, false
	}
	return id, true
}
