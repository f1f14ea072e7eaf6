package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/avdeev/script-access/internal/capability"
    "github.com/avdeev/script-access/internal/repository"
    "github.com/avdeev/script-access/internal/service"
    "github.com/avdeev/script-access/internal/session"
)

// UserHandler exposes the user-facing surface the conversational UI calls:
// capability queries, application filing, additional requests, ban appeals,
// suggestions and the dialog scratch store.
type UserHandler struct {
    Access      *service.AccessService
    Approval    *service.ApprovalService
    Bans        *service.BanService
    Suggestions *service.SuggestionService
    Dialogs     *session.DialogStore
}

// pathUserID parses the :id path parameter.
func pathUserID(c echo.Context) (int64, error) {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || id <= 0 {
        return 0, errors.New("invalid user id")
    }
    return id, nil
}

// writeServiceError translates workflow sentinels into HTTP responses.  The
// hard rule: store failure after retries is 503, a stale reviewer action is
// a 200 soft outcome, everything validation-shaped is 400.
func writeServiceError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrUnavailable):
        return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
    case errors.Is(err, service.ErrAlreadyHandled):
        return c.JSON(http.StatusOK, map[string]string{"status": "already_handled"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
    case errors.Is(err, service.ErrBanned):
        return c.JSON(http.StatusForbidden, map[string]string{"error": "banned"})
    case errors.Is(err, service.ErrNoAccess):
        return c.JSON(http.StatusForbidden, map[string]string{"error": "no active access"})
    case errors.Is(err, service.ErrInvalidNickname),
        errors.Is(err, service.ErrShortDescription),
        errors.Is(err, service.ErrEmptySelection),
        errors.Is(err, service.ErrUnknownCapability),
        errors.Is(err, service.ErrNothingMissing),
        errors.Is(err, service.ErrNotGranted),
        errors.Is(err, service.ErrAlreadyApproved),
        errors.Is(err, service.ErrAlreadyPending),
        errors.Is(err, service.ErrAlreadyBanned),
        errors.Is(err, service.ErrNotBanned),
        errors.Is(err, service.ErrStaleList),
        errors.Is(err, service.ErrNoSession):
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// Capabilities handles GET /v1/users/:id/capabilities.
func (h *UserHandler) Capabilities(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    set, err := h.Access.Capabilities(c.Request().Context(), id)
    if err != nil {
        return writeServiceError(c, err)
    }
    nickname, err := h.Access.ApprovedNickname(c.Request().Context(), id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{
        "user_id":      id,
        "nickname":     nickname,
        "capabilities": set.Granted(),
        "has_access":   set.Any(),
    })
}

// HasCapability handles GET /v1/users/:id/capabilities/:name.
func (h *UserHandler) HasCapability(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    name := c.Param("name")
    if !capability.IsKnown(name) {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown capability"})
    }
    ok, err := h.Access.HasCapability(c.Request().Context(), id, name)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"user_id": id, "capability": name, "granted": ok})
}

// Missing handles GET /v1/users/:id/missing.
func (h *UserHandler) Missing(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    missing, current, err := h.Access.Missing(c.Request().Context(), id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{
        "user_id": id,
        "current": current.Granted(),
        "missing": missing,
    })
}

// FileApplication handles POST /v1/applications.
func (h *UserHandler) FileApplication(c echo.Context) error {
    var body struct {
        UserID       int64    `json:"user_id"`
        Nickname     string   `json:"nickname"`
        Description  string   `json:"description"`
        Capabilities []string `json:"capabilities"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if body.UserID <= 0 {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
    }
    err := h.Approval.FileApplication(c.Request().Context(), body.UserID, body.Nickname, body.Description, body.Capabilities)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, map[string]string{"status": "pending"})
}

// FileAdditionalRequest handles POST /v1/users/:id/additional-request.
func (h *UserHandler) FileAdditionalRequest(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    var body struct {
        Capabilities []string `json:"capabilities"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Approval.FileAdditionalRequest(c.Request().Context(), id, body.Capabilities); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, map[string]string{"status": "pending"})
}

// RevokeOwnNickname handles DELETE /v1/users/:id/nickname.
func (h *UserHandler) RevokeOwnNickname(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    if err := h.Approval.RevokeOwnNickname(c.Request().Context(), id); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// Appeal handles POST /v1/users/:id/appeal.  The one flow open to banned
// users.
func (h *UserHandler) Appeal(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    var body struct {
        Text string `json:"text"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Bans.Appeal(c.Request().Context(), id, body.Text); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "submitted"})
}

// SubmitSuggestion handles POST /v1/suggestions.
func (h *UserHandler) SubmitSuggestion(c echo.Context) error {
    var body struct {
        UserID int64  `json:"user_id"`
        Script string `json:"script"`
        Text   string `json:"text"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if body.UserID <= 0 {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
    }
    if err := h.Suggestions.Submit(c.Request().Context(), body.UserID, body.Script, body.Text); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, map[string]string{"status": "submitted"})
}

// GetDialog handles GET /v1/users/:id/dialog.
func (h *UserHandler) GetDialog(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    data, err := h.Dialogs.Get(c.Request().Context(), id)
    if errors.Is(err, session.ErrNoDialog) {
        return c.JSON(http.StatusNotFound, map[string]string{"error": "no dialog state"})
    }
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
    }
    return c.JSONBlob(http.StatusOK, data)
}

// PutDialog handles PUT /v1/users/:id/dialog.  The body is stored verbatim;
// the UI layer owns its shape.
func (h *UserHandler) PutDialog(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    var raw map[string]any
    if err := c.Bind(&raw); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    body, err := json.Marshal(raw)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Dialogs.Set(c.Request().Context(), id, body); err != nil {
        return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "stored"})
}

// DeleteDialog handles DELETE /v1/users/:id/dialog.
func (h *UserHandler) DeleteDialog(c echo.Context) error {
    id, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    if err := h.Dialogs.Clear(c.Request().Context(), id); err != nil {
        return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
