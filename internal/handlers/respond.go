package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"quantumeyes/internal/database"
	"quantumeyes/internal/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// storeError: ErrNotFound превращается в 404, ErrConflict в 409, всё остальное в 500.
func storeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
		return
	case errors.Is(err, database.ErrConflict):
		respondError(c, http.StatusConflict, "already exists")
		return
	}
	slog.Error(msg, "error", err, "path", c.Request.URL.Path)
	respondError(c, http.StatusInternalServerError, msg)
}

// orgID: организация из ?organizationId=, иначе организация по умолчанию.
func (h *Handler) orgID(c *gin.Context) (uint, bool) {
	raw := c.Query("organizationId")
	if raw == "" {
		return h.defaultOrg, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid organizationId")
		return 0, false
	}
	return uint(id), true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(c, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// bindOptionalJSON допускает пустое тело.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// audit пишет запись журнала от имени пользователя сессии. Ошибка записи не ломает запрос.
func (h *Handler) audit(c *gin.Context, entity string, entityID uint, action, details string, args ...any) {
	uid, ok := middleware.SessionUserIDFrom(c)
	if !ok {
		return
	}
	if len(args) > 0 {
		details = fmt.Sprintf(details, args...)
	}
	if err := h.store.CreateAuditLog(c.Request.Context(), uid, entity, entityID, action, details); err != nil {
		slog.Warn("audit log write failed", "entity", entity, "entity_id", entityID, "error", err)
	}
}
