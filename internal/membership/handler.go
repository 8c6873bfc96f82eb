package membership

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"matbook/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo *Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreatePlan godoc
// @Summary      Create membership plan
// @Description  Creates a plan for a gym. Admin only.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int                true  "Gym ID"
// @Param        request  body      CreatePlanRequest  true  "Plan data"
// @Success      201      {object}  Plan
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/gyms/{gymID}/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.repo.CreatePlan(c.Request.Context(), gymID, req.Name, req.WeeklyLimit, req.Public, req.PriceCents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary      List public plans for a gym
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        gymID  path      int  true  "Gym ID"
// @Success      200    {array}   Plan
// @Failure      400    {object}  gin.H
// @Router       /gyms/{gymID}/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	plans, err := h.repo.ListPublicPlans(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

type AssignMembershipRequest struct {
	UserID int    `json:"user_id" binding:"required"`
	PlanID int    `json:"plan_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// AssignMembership godoc
// @Summary      Assign a plan to a member
// @Description  Links a member to a plan with a billing status. Staff only.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      AssignMembershipRequest  true  "Assignment"
// @Success      201      {object}  UserMembership
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/memberships [post]
func (h *Handler) AssignMembership(c *gin.Context) {
	var req AssignMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.repo.GetPlan(c.Request.Context(), req.PlanID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plan"})
		return
	}

	m, err := h.repo.AssignMembership(c.Request.Context(), req.UserID, plan.GymID, plan.ID, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign membership"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// MyMemberships godoc
// @Summary      List my memberships
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   UserMembership
// @Router       /me/memberships [get]
func (h *Handler) MyMemberships(c *gin.Context) {
	memberships, err := h.repo.ListUserMemberships(c.Request.Context(), auth.UserID(c), auth.GymID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	c.JSON(http.StatusOK, memberships)
}
