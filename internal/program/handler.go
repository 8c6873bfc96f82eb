package program

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

type CreateProgramRequest struct {
	Name  string   `json:"name" binding:"required"`
	Ranks []string `json:"ranks" binding:"required,min=1"`
}

// CreateProgram godoc
// @Summary      Create a rank program
// @Description  Creates a program with its ordered rank ladder. Admin only.
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int                   true  "Gym ID"
// @Param        request  body      CreateProgramRequest  true  "Program data"
// @Success      201      {object}  Program
// @Failure      400      {object}  gin.H
// @Router       /admin/gyms/{gymID}/programs [post]
func (h *Handler) CreateProgram(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.repo.CreateProgram(c.Request.Context(), gymID, req.Name, req.Ranks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create program"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetProgram godoc
// @Summary      Get a program and its ranks
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        programID  path      int  true  "Program ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /programs/{programID} [get]
func (h *Handler) GetProgram(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program ID"})
		return
	}

	p, err := h.repo.GetProgram(c.Request.Context(), programID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch program"})
		return
	}

	ranks, err := h.repo.ListRanks(c.Request.Context(), programID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ranks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"program": p, "ranks": ranks})
}

// MyRank godoc
// @Summary      Get my rank in a program
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        programID  path      int  true  "Program ID"
// @Success      200        {object}  UserRank
// @Failure      404        {object}  gin.H
// @Router       /me/programs/{programID}/rank [get]
func (h *Handler) MyRank(c *gin.Context) {
	programID, err := strconv.Atoi(c.Param("programID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program ID"})
		return
	}

	ur, err := h.repo.GetUserRank(c.Request.Context(), auth.UserID(c), programID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No rank recorded for this program yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rank"})
		return
	}

	c.JSON(http.StatusOK, ur)
}
