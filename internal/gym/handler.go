package gym

import (
	"net/http"
	"strconv"
	"time"

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

// CreateGym godoc
// @Summary      Create gym
// @Description  Creates a new gym. Admin only.
// @Tags         gyms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateGymRequest  true  "Gym data"
// @Success      201      {object}  Gym
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.repo.CreateGym(c.Request.Context(), req.Name, req.Location, req.Timezone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, g)
}

// ListGyms godoc
// @Summary      List gyms
// @Tags         gyms
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Gym
// @Failure      500  {object}  gin.H
// @Router       /gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	gyms, err := h.repo.GetAllGyms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// CreateClass godoc
// @Summary      Create class template
// @Description  Creates a recurring or single-event class. Staff only.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int                 true  "Gym ID"
// @Param        request  body      CreateClassRequest  true  "Class data"
// @Success      201      {object}  Class
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/gyms/{gymID}/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.repo.CreateClass(c.Request.Context(), gymID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}

	c.JSON(http.StatusCreated, class)
}

// ListClasses godoc
// @Summary      List classes for a gym
// @Description  Without a date, returns the raw class templates. With a date, returns only the classes occurring that day, each with its booked count and remaining availability.
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        gymID  path      int     true   "Gym ID"
// @Param        date   query     string  false  "Occurrence date (YYYY-MM-DD)"
// @Success      200    {array}   ClassWithAvailability
// @Failure      400    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /gyms/{gymID}/classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	classes, err := h.repo.ListClassesByGym(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classes"})
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusOK, classes)
		return
	}

	g, err := h.repo.GetGymByID(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
		return
	}

	loc := g.Location()
	if _, err := ParseDate(dateStr, loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	occurring := make([]ClassWithAvailability, 0, len(classes))
	for _, class := range classes {
		ok, err := class.OccursOn(dateStr, loc)
		if err != nil || !ok {
			continue
		}

		booked, err := h.repo.CountBookedOn(c.Request.Context(), class.ID, dateStr)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
			return
		}

		entry := ClassWithAvailability{Class: class, Date: dateStr, BookedCount: booked}
		if class.MaxCapacity != nil {
			available := *class.MaxCapacity - booked
			if available < 0 {
				available = 0
			}
			entry.Available = &available
			entry.IsFull = available == 0
		}
		occurring = append(occurring, entry)
	}

	c.JSON(http.StatusOK, occurring)
}

// CancelClassDate godoc
// @Summary      Cancel a single class occurrence
// @Description  Strikes one date from the class recurrence. Staff only.
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int     true  "Class ID"
// @Param        date     query     string  true  "Date to cancel (YYYY-MM-DD)"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/classes/{classID}/cancel-date [post]
func (h *Handler) CancelClassDate(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	dateStr := c.Query("date")
	if _, err := time.Parse(DateLayout, dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	if !auth.IsStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff role required"})
		return
	}

	if err := h.repo.CancelDate(c.Request.Context(), classID, dateStr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel class date"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Class date cancelled"})
}
