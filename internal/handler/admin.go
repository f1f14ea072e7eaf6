package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/avdeev/script-access/internal/capability"
    "github.com/avdeev/script-access/internal/service"
    "github.com/avdeev/script-access/internal/session"
)

// AdminHandler exposes the reviewer surface: pending snapshots, decisions,
// review sessions, the deny list, manual record management, suggestions and
// broadcast.
type AdminHandler struct {
    Access      *service.AccessService
    Approval    *service.ApprovalService
    Bans        *service.BanService
    Suggestions *service.SuggestionService
    Broadcast   *service.BroadcastService
}

// adminID extracts the reviewer's id from the JWT subject claim stored by
// the auth middleware.  jwt.MapClaims decodes numbers as float64.
func adminID(c echo.Context) int64 {
    switch v := c.Get("user_id").(type) {
    case float64:
        return int64(v)
    case int64:
        return v
    case string:
        if n, err := strconv.ParseInt(v, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// ListPending handles GET /v1/admin/pending.  The returned ordering is
// pinned per reviewer so numeric picks stay stable.
func (h *AdminHandler) ListPending(c echo.Context) error {
    items, err := h.Approval.PendingSnapshot(c.Request().Context(), adminID(c))
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// PickPending handles GET /v1/admin/pending/:n, resolving a 1-based pick
// against the reviewer's last snapshot.
func (h *AdminHandler) PickPending(c echo.Context) error {
    n, err := strconv.Atoi(c.Param("n"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid position"})
    }
    item, err := h.Approval.PendingPick(adminID(c), n)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, item)
}

// Decide handles POST /v1/admin/applications/:id/decision.
func (h *AdminHandler) Decide(c echo.Context) error {
    userID, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    var body struct {
        Verdict      string   `json:"verdict"`
        Capabilities []string `json:"capabilities"`
        Reason       string   `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    var verdict service.Decision
    switch body.Verdict {
    case "grant_all":
        verdict = service.GrantAll
    case "grant_subset":
        verdict = service.GrantSubset
    case "reject":
        verdict = service.Reject
    case "ban":
        verdict = service.BanApplicant
    default:
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown verdict"})
    }
    selected := capability.FromNames(body.Capabilities)
    if err := h.Approval.Decide(c.Request().Context(), userID, verdict, selected, body.Reason); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "applied"})
}

// StartReview handles POST /v1/admin/review/:id, opening a toggle session
// over the user's pending application.
func (h *AdminHandler) StartReview(c echo.Context) error {
    userID, err := pathUserID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
    }
    sess, err := h.Approval.StartReview(c.Request().Context(), adminID(c), userID)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, reviewView(sess))
}

// ToggleReview handles POST /v1/admin/review/toggle.
func (h *AdminHandler) ToggleReview(c echo.Context) error {
    var body struct {
        Capability string `json:"capability"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    sess, err := h.Approval.Toggle(adminID(c), body.Capability)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, reviewView(sess))
}

// ConfirmReview handles POST /v1/admin/review/confirm, applying the toggled
// selection as a subset grant.
func (h *AdminHandler) ConfirmReview(c echo.Context) error {
    if err := h.Approval.ConfirmReview(c.Request().Context(), adminID(c)); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "applied"})
}

// CancelReview handles DELETE /v1/admin/review.
func (h *AdminHandler) CancelReview(c echo.Context) error {
    h.Approval.CancelReview(adminID(c))
    return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// reviewView flattens a review session for the UI.
func reviewView(sess session.ReviewSession) map[string]any {
    return map[string]any{
        "user_id":    sess.UserID,
        "nickname":   sess.Nickname,
        "requested":  sess.Requested.Granted(),
        "selected":   sess.Selected.Granted(),
        "additional": sess.Additional,
    }
}

// ListApproved handles GET /v1/admin/approved with an optional
// ?capability= filter.
func (h *AdminHandler) ListApproved(c echo.Context) error {
    filter := c.QueryParam("capability")
    if filter != "" && !capability.IsKnown(filter) {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown capability"})
    }
    users, err := h.Access.ListApproved(c.Request().Context(), filter)
    if err != nil {
        return writeServiceError(c, err)
    }
    items := make([]map[string]any, 0, len(users))
    for _, u := range users {
        items = append(items, map[string]any{
            "nickname":     u.Nickname,
            "user_id":      u.UserID,
            "capabilities": u.Access.Granted(),
        })
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// ListBanned handles GET /v1/admin/banned.
func (h *AdminHandler) ListBanned(c echo.Context) error {
    entries, err := h.Bans.List(c.Request().Context())
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
}

// Ban handles POST /v1/admin/ban.
func (h *AdminHandler) Ban(c echo.Context) error {
    var body struct {
        UserID int64  `json:"user_id"`
        Reason string `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if body.UserID <= 0 {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
    }
    if err := h.Bans.Ban(c.Request().Context(), body.UserID, body.Reason); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "banned"})
}

// Unban handles POST /v1/admin/unban.
func (h *AdminHandler) Unban(c echo.Context) error {
    var body struct {
        UserID int64 `json:"user_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Bans.Unban(c.Request().Context(), body.UserID); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "unbanned"})
}

// Revoke handles POST /v1/admin/revoke, removing one capability from a
// nickname's grant.
func (h *AdminHandler) Revoke(c echo.Context) error {
    var body struct {
        Nickname   string `json:"nickname"`
        Capability string `json:"capability"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Approval.RevokeCapability(c.Request().Context(), body.Nickname, body.Capability); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "revoked"})
}

// ManualAdd handles POST /v1/admin/nicknames, inserting a nickname with the
// full legacy grant.
func (h *AdminHandler) ManualAdd(c echo.Context) error {
    var body struct {
        Nickname string `json:"nickname"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    if err := h.Approval.ManualAdd(c.Request().Context(), body.Nickname); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, map[string]string{"status": "added"})
}

// ManualDelete handles DELETE /v1/admin/nicknames/:nick.
func (h *AdminHandler) ManualDelete(c echo.Context) error {
    nick := c.Param("nick")
    if nick == "" {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "nickname is required"})
    }
    if err := h.Approval.ManualDelete(c.Request().Context(), nick); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// ListSuggestions handles GET /v1/admin/suggestions.
func (h *AdminHandler) ListSuggestions(c echo.Context) error {
    items, err := h.Suggestions.List(c.Request().Context())
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// GetSuggestion handles GET /v1/admin/suggestions/:id.
func (h *AdminHandler) GetSuggestion(c echo.Context) error {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
    }
    item, err := h.Suggestions.Get(c.Request().Context(), id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, item)
}

// DeleteSuggestion handles DELETE /v1/admin/suggestions/:id.
func (h *AdminHandler) DeleteSuggestion(c echo.Context) error {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
    }
    if err := h.Suggestions.Delete(c.Request().Context(), id); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// SendBroadcast handles POST /v1/admin/broadcast.  Empty targets means
// every known user.
func (h *AdminHandler) SendBroadcast(c echo.Context) error {
    var body struct {
        Content string  `json:"content"`
        Targets []int64 `json:"targets"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
    }
    sent, failed, err := h.Broadcast.Send(c.Request().Context(), body.Content, body.Targets)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, map[string]any{"sent": sent, "failed": failed})
}
