package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/dto"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/utils"
	"go.uber.org/zap"
)

// AdminHandler exposes user management to administrators. Every route is
// mounted behind RequireAdmin.
type AdminHandler struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

func NewAdminHandler(adminService *services.AdminService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.adminService.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, h.logger, "admin.list_users", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "admin.get_user", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.AdminUserPatchRequest
	if _, err := decodePatch(c, &req); err != nil {
		respondError(c, h.logger, "admin.update_user", err)
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), c.Param("id"), services.AdminUserPatch{
		Name:          req.Name,
		Username:      req.Username,
		Email:         req.Email,
		Timezone:      req.Timezone,
		Language:      req.Language,
		ProfileImage:  req.ProfileImage,
		Bio:           req.Bio,
		EmailVerified: req.EmailVerified,
	})
	if err != nil {
		respondError(c, h.logger, "admin.update_user", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "admin.delete_user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// UpdateRole sets a user's role from {"role": "USER"|"ADMIN"}
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "admin.update_role", err)
		return
	}

	user, err := h.adminService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, h.logger, "admin.update_role", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
