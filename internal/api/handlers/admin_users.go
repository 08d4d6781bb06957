package handlers

import (
	"net/http"
	"strconv"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/services"
	"github.com/crestline-ir/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminUserHandler exposes user administration, the bulk operations, and the
// activity log review. Bulk endpoints pre-filter ineligible targets before
// handing the list to the executor.
type AdminUserHandler struct {
	users  *services.UserService
	admin  *services.AdminService
	audit  *services.AuditService
	logger *zap.Logger
}

func NewAdminUserHandler(
	users *services.UserService,
	admin *services.AdminService,
	audit *services.AuditService,
	logger *zap.Logger,
) *AdminUserHandler {
	return &AdminUserHandler{
		users:  users,
		admin:  admin,
		audit:  audit,
		logger: logger.With(zap.String("handler", "admin_user")),
	}
}

type userSummary struct {
	ID          uint            `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
	NdaSigned   bool            `json:"nda_signed"`
}

func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]userSummary, len(users))
	for i, u := range users {
		summaries[i] = userSummary{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        u.Role,
		}
		status, err := h.users.GetNdaStatus(c.Request.Context(), u.ID)
		if err == nil {
			summaries[i].NdaSigned = status.Signed
		} else if !store.IsNotFound(err) {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

type createUserRequest struct {
	Email       string          `json:"email" binding:"required"`
	DisplayName string          `json:"display_name"`
	Password    string          `json:"password" binding:"required"`
	Role        models.UserRole `json:"role"`
}

func (h *AdminUserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleInvestor
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Email, req.DisplayName, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userSummary{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
}

func (h *AdminUserHandler) targetUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return uint(id), true
}

func (h *AdminUserHandler) ResetNda(c *gin.Context) {
	actorID := c.GetUint("userID")
	userID, ok := h.targetUserID(c)
	if !ok {
		return
	}

	if err := h.users.ResetNda(c.Request.Context(), userID, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

type changeRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h *AdminUserHandler) ChangeRole(c *gin.Context) {
	actorID := c.GetUint("userID")
	userID, ok := h.targetUserID(c)
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	if err := h.users.ChangeRole(c.Request.Context(), userID, req.Role, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type bulkUsersRequest struct {
	UserIDs []uint          `json:"user_ids" binding:"required"`
	Role    models.UserRole `json:"role"`
}

// BulkResetNdas clears NDA state across many users. Users who never signed
// are filtered out here; resetting them would be a pointless write.
func (h *AdminUserHandler) BulkResetNdas(c *gin.Context) {
	actorID := c.GetUint("userID")

	var req bulkUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids is required"})
		return
	}

	eligible := make([]uint, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		status, err := h.users.GetNdaStatus(c.Request.Context(), userID)
		if err != nil || !status.Signed {
			continue
		}
		eligible = append(eligible, userID)
	}

	result := h.admin.BulkResetNdas(c.Request.Context(), actorID, eligible)
	c.JSON(http.StatusOK, gin.H{"summary": result.Summary(), "result": result})
}

func (h *AdminUserHandler) BulkAssignAllDocuments(c *gin.Context) {
	actorID := c.GetUint("userID")

	var req bulkUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids is required"})
		return
	}

	result := h.admin.BulkAssignAllDocuments(c.Request.Context(), actorID, req.UserIDs)
	c.JSON(http.StatusOK, gin.H{"summary": result.Summary(), "result": result})
}

func (h *AdminUserHandler) BulkChangeRole(c *gin.Context) {
	actorID := c.GetUint("userID")

	var req bulkUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids and role are required"})
		return
	}

	result := h.admin.BulkChangeRole(c.Request.Context(), actorID, req.UserIDs, req.Role)
	c.JSON(http.StatusOK, gin.H{"summary": result.Summary(), "result": result})
}

// BulkDeleteUsers removes many accounts. The acting administrator is always
// excluded from the target list.
func (h *AdminUserHandler) BulkDeleteUsers(c *gin.Context) {
	actorID := c.GetUint("userID")

	var req bulkUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids is required"})
		return
	}

	eligible := make([]uint, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		if userID == actorID {
			continue
		}
		eligible = append(eligible, userID)
	}

	result := h.admin.BulkDeleteUsers(c.Request.Context(), actorID, eligible)
	c.JSON(http.StatusOK, gin.H{"summary": result.Summary(), "result": result})
}

func (h *AdminUserHandler) ListActivity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	activity, err := h.audit.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":  activity.Entries,
		"total":    activity.Total,
		"page":     activity.Page,
		"per_page": activity.PerPage,
	})
}
