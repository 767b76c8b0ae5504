package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"quantumeyes/internal/database"
	"quantumeyes/internal/middleware"
	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (h *Handler) ListOrganizations(c *gin.Context) {
	uid, _ := middleware.SessionUserIDFrom(c)
	orgs, err := h.store.GetUserOrganizations(c.Request.Context(), uid)
	if err != nil {
		storeError(c, err, "error fetching organizations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (h *Handler) GetOrganization(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	org, err := h.store.GetOrganization(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching organization")
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (h *Handler) GetOrganizationBySlug(c *gin.Context) {
	org, err := h.store.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		storeError(c, err, "error fetching organization")
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

type organizationRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Industry string `json:"industry"`
	Size     string `json:"size"`
}

// CreateOrganization создаёт тенанта и делает автора его администратором.
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req organizationRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))

	if len(req.Name) < 2 {
		respondError(c, http.StatusBadRequest, "name must be at least 2 characters")
		return
	}
	if !slugRe.MatchString(req.Slug) {
		respondError(c, http.StatusBadRequest, "slug must contain lowercase letters, digits and dashes")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetOrganizationBySlug(ctx, req.Slug); err == nil {
		respondError(c, http.StatusConflict, "organization slug already exists")
		return
	}

	org := models.Organization{
		Name:     req.Name,
		Slug:     req.Slug,
		Industry: strings.TrimSpace(req.Industry),
		Size:     strings.TrimSpace(req.Size),
	}
	uid, _ := middleware.SessionUserIDFrom(c)
	if err := h.store.CreateOrganizationWithOwner(ctx, &org, uid); err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondError(c, http.StatusConflict, "organization slug already exists")
			return
		}
		storeError(c, err, "error saving organization")
		return
	}

	h.audit(c, "organization", org.ID, "create", "Organization created: %s", org.Name)
	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

type memberRequest struct {
	UserID uint            `json:"userId"`
	Role   models.UserRole `json:"role"`
}

func (h *Handler) AddOrganizationMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID == 0 {
		respondError(c, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleViewer
	}
	if !req.Role.Valid() {
		respondError(c, http.StatusBadRequest, "invalid role")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetOrganization(ctx, id); err != nil {
		storeError(c, err, "error fetching organization")
		return
	}
	if _, err := h.store.GetUser(ctx, req.UserID); err != nil {
		storeError(c, err, "error fetching user")
		return
	}

	member, err := h.store.AddUserToOrganization(ctx, &models.OrganizationUser{
		OrganizationID: id,
		UserID:         req.UserID,
		Role:           req.Role,
	})
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondError(c, http.StatusConflict, "user is already a member of this organization")
			return
		}
		storeError(c, err, "error adding organization member")
		return
	}

	h.audit(c, "organization", id, "add_member", "user %d as %s", req.UserID, req.Role)
	c.JSON(http.StatusCreated, gin.H{"member": member})
}
