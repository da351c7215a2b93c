package api

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/service"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves plans and the caller's own workout progress.
type WorkoutHandler struct {
	planService     service.PlanService
	progressService service.ProgressService
}

func NewWorkoutHandler(planService service.PlanService, progressService service.ProgressService) *WorkoutHandler {
	return &WorkoutHandler{planService: planService, progressService: progressService}
}

// --- Request/Response Structs ---

// distanceInput accepts a JSON number or a numeric string ("12.5", "12,5").
// Values that do not parse are read as 0.
type distanceInput struct {
	value float64
}

func (d *distanceInput) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		v = 0
	}
	d.value = v
	return nil
}

type CompleteWorkoutRequest struct {
	ActualDistanceKm *distanceInput `json:"actualDistanceKm"`
	Duration         string         `json:"duration"`
	Feelings         string         `json:"feelings"`
	HasInjury        bool           `json:"hasInjury"`
	InjuryNote       string         `json:"injuryNote"`
}

func (r CompleteWorkoutRequest) report() domain.CompletionReport {
	report := domain.CompletionReport{
		Duration:   r.Duration,
		Feelings:   r.Feelings,
		HasInjury:  r.HasInjury,
		InjuryNote: r.InjuryNote,
	}
	if r.ActualDistanceKm != nil {
		v := r.ActualDistanceKm.value
		report.ActualDistanceKm = &v
	}
	return report
}

type ToggleResponse struct {
	Result string `json:"result"`
}

type WorkoutsResponse struct {
	Plan     domain.TrainingPlan `json:"plan"`
	Workouts []domain.Workout    `json:"workouts"`
}

// --- Handler Methods ---

// ListPlans returns the plan catalog.
func (h *WorkoutHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.planService.List())
}

// GetPlanWorkouts returns the caller's view of a plan.
func (h *WorkoutHandler) GetPlanWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	respondWithWorkouts(c, h.planService, h.progressService, c.Param("planId"), userID)
}

// GetPlanWeeks returns the weekly summaries of the caller's plan, or the
// stats of a single week when ?week=N is given.
func (h *WorkoutHandler) GetPlanWeeks(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.progressService.View(c.Request.Context(), c.Param("planId"), userID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	if weekParam := c.Query("week"); weekParam != "" {
		week, err := strconv.Atoi(weekParam)
		if err != nil || week < 1 {
			abortWithError(c, http.StatusBadRequest, "week must be a positive integer")
			return
		}
		c.JSON(http.StatusOK, service.WeeklyStats(workouts, week))
		return
	}
	c.JSON(http.StatusOK, service.WeeklySummaries(workouts))
}

// ToggleComplete either reverts a completed workout or tells the client to
// collect a completion report.
func (h *WorkoutHandler) ToggleComplete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	result, err := h.progressService.ToggleComplete(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Result: result.String()})
}

func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.progressService.RecordCompletion(c.Request.Context(), userID, c.Param("workoutId"), req.report())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) SkipWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workout, err := h.progressService.Skip(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func respondWithWorkouts(c *gin.Context, plans service.PlanService, progress service.ProgressService, planID, userID string) {
	plan, err := plans.Get(planID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	workouts, err := progress.View(c.Request.Context(), planID, userID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, WorkoutsResponse{Plan: plan, Workouts: workouts})
}
