package handlers

import (
	"errors"
	"net/http"
	"strings"

	"quantumeyes/internal/database"
	"quantumeyes/internal/middleware"
	"quantumeyes/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		storeError(c, err, "error fetching user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(user.Role))
	if err := sess.Save(); err != nil {
		storeError(c, err, "error saving session")
		return
	}

	h.audit(c, "user", user.ID, "login", "")
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// AuthUser: текущий пользователь сессии и его организации.
func (h *Handler) AuthUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	orgs, err := h.store.GetUserOrganizations(c.Request.Context(), user.ID)
	if err != nil {
		storeError(c, err, "error fetching organizations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "organizations": orgs})
}

type userBadge struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Initials string `json:"initials"`
}

var roleLabels = map[models.UserRole]string{
	models.RoleAdmin:   "Admin",
	models.RoleAnalyst: "Analyste",
	models.RoleViewer:  "Lecteur",
}

// UserBadge: данные для меню в шапке. Без сессии отдаётся демо-пользователь.
func (h *Handler) UserBadge(c *gin.Context) {
	badge := userBadge{Name: "Entreprise Client", Role: "Admin", Initials: "EC"}
	if u, ok := middleware.CurrentUser(c); ok {
		badge = userBadge{Name: u.DisplayName(), Role: roleLabels[u.Role], Initials: u.Initials()}
	}
	c.JSON(http.StatusOK, gin.H{"user": badge})
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit, ok := queryLimit(c, 200, 1000)
	if !ok {
		return
	}
	logs, err := h.store.ListAuditLogs(c.Request.Context(), limit)
	if err != nil {
		storeError(c, err, "error fetching audit logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
