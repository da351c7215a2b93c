package api

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin-only routes. RoleMiddleware guards the group.
type AdminHandler struct {
	userService     service.UserService
	planService     service.PlanService
	progressService service.ProgressService
	exportService   service.ExportService
}

func NewAdminHandler(
	userService service.UserService,
	planService service.PlanService,
	progressService service.ProgressService,
	exportService service.ExportService,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		planService:     planService,
		progressService: progressService,
		exportService:   exportService,
	}
}

type EditWorkoutRequest struct {
	Description       *string  `json:"description"`
	PlannedDistanceKm *float64 `json:"plannedDistanceKm"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, MapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteUser removes a runner together with all their progress.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("userId")); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) GetUserWorkouts(c *gin.Context) {
	respondWithWorkouts(c, h.planService, h.progressService, c.Param("planId"), c.Param("userId"))
}

func (h *AdminHandler) EditWorkout(c *gin.Context) {
	var req EditWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	def, err := h.progressService.AdminEditDefinition(c.Request.Context(), c.Param("workoutId"), domain.DefinitionPatch{
		Description:       req.Description,
		PlannedDistanceKm: req.PlannedDistanceKm,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// ResetProgress returns a user's workout to pending, clearing a skip.
func (h *AdminHandler) ResetProgress(c *gin.Context) {
	err := h.progressService.AdminResetProgress(c.Request.Context(), c.Param("userId"), c.Param("workoutId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ExportProgress(c *gin.Context) {
	res, err := h.exportService.ExportProgress(c.Request.Context(), c.Param("userId"), c.Param("planId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
