package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"matbook/internal/api"
	"matbook/internal/auth"
	"matbook/internal/gym"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type BookRequest struct {
	Date        string `json:"date" binding:"required"`
	BookingType string `json:"booking_type"`
	Force       bool   `json:"force"`
	WaiveCost   bool   `json:"waive_cost"`
	UserID      *int   `json:"user_id,omitempty"`
}

type CancelRequest struct {
	Refund    *bool `json:"refund,omitempty"`
	ChargeFee bool  `json:"charge_fee"`
}

type CheckInRequest struct {
	ProgramID *int `json:"program_id,omitempty"`
}

// respondError maps engine errors onto HTTP statuses. Policy denials
// are expected outcomes and carry their tag for the client.
func respondError(c *gin.Context, err error) {
	var policy *PolicyError
	if errors.As(err, &policy) {
		c.JSON(http.StatusUnprocessableEntity, api.DenialResponse{Error: policy.Reason, Tag: policy.Tag})
		return
	}

	switch {
	case errors.Is(err, ErrClassNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyBooked), errors.Is(err, ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, api.DenialResponse{Error: err.Error(), Tag: TagInsufficientFunds})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Something went wrong"})
	}
}

// Book godoc
// @Summary      Book a class
// @Description  Books (or waitlists) a member into a class instance. Staff may book on behalf of a member with user_id, and may set force or waive_cost.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        classID  path      int          true  "Class ID"
// @Param        request  body      BookRequest  true  "Booking request"
// @Success      201      {object}  BookResult
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Failure      422      {object}  gin.H
// @Router       /classes/{classID}/book [post]
func (h *Handler) Book(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse(gym.DateLayout, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	isStaff := auth.IsStaff(c)
	userID := auth.UserID(c)
	if req.UserID != nil {
		if !isStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff role required to book for another member"})
			return
		}
		userID = *req.UserID
	}

	opts := BookOptions{
		BookingType: BookingType(req.BookingType),
		IsStaff:     isStaff,
	}
	if isStaff {
		opts.Force = req.Force
		opts.WaiveCost = req.WaiveCost
	} else if req.BookingType != "" && opts.BookingType != TypeCredit {
		// Members may opt into spending credits; anything else is staff-only.
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff role required for this booking type"})
		return
	}

	result, err := h.service.BookMember(c.Request.Context(), classID, req.Date, userID, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Cancels a booking, refunding when inside the cancellation window. Staff may override the refund decision and charge the late fee.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        attendanceID  path      int            true   "Attendance ID"
// @Param        request       body      CancelRequest  false  "Cancellation options"
// @Success      200           {object}  CancelResult
// @Failure      404           {object}  gin.H
// @Failure      409           {object}  gin.H
// @Router       /bookings/{attendanceID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	attendanceID, err := strconv.Atoi(c.Param("attendanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	isStaff := auth.IsStaff(c)
	opts := CancelOptions{IsStaff: isStaff}
	cancelledBy := "user:" + strconv.Itoa(auth.UserID(c))
	if isStaff {
		opts.RefundOverride = req.Refund
		opts.ChargeFee = req.ChargeFee
	} else {
		// Members may only cancel their own bookings.
		opts.RequestedBy = auth.UserID(c)
	}

	result, err := h.service.CancelBooking(c.Request.Context(), attendanceID, cancelledBy, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckIn godoc
// @Summary      Check a member in
// @Description  Marks the booking attended and records rank progression. Staff only.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        attendanceID  path      int             true   "Attendance ID"
// @Param        request       body      CheckInRequest  false  "Check-in options"
// @Success      200           {object}  Attendance
// @Failure      404           {object}  gin.H
// @Failure      409           {object}  gin.H
// @Router       /admin/bookings/{attendanceID}/checkin [post]
func (h *Handler) CheckIn(c *gin.Context) {
	attendanceID, err := strconv.Atoi(c.Param("attendanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rec, err := h.service.CheckInMember(c.Request.Context(), attendanceID, req.ProgramID, time.Time{})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ProcessWaitlist godoc
// @Summary      Process a class waitlist
// @Description  Promotes waitlisted members into open seats, e.g. after a capacity increase. Staff only.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int     true  "Class ID"
// @Param        date     query     string  true  "Class date (YYYY-MM-DD)"
// @Success      200      {object}  WaitlistResult
// @Failure      400      {object}  gin.H
// @Router       /admin/classes/{classID}/waitlist/process [post]
func (h *Handler) ProcessWaitlist(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}
	dateStr := c.Query("date")
	if _, err := time.Parse(gym.DateLayout, dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	result, err := h.service.ProcessWaitlist(c.Request.Context(), classID, dateStr)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Roster godoc
// @Summary      Get class roster
// @Description  Lists non-cancelled bookings for a class instance. Staff only.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int     true  "Class ID"
// @Param        date     query     string  true  "Class date (YYYY-MM-DD)"
// @Success      200      {array}   RosterEntry
// @Failure      400      {object}  gin.H
// @Router       /admin/classes/{classID}/roster [get]
func (h *Handler) Roster(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}
	dateStr := c.Query("date")
	if _, err := time.Parse(gym.DateLayout, dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	roster, err := h.service.GetClassRoster(c.Request.Context(), classID, dateStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roster"})
		return
	}

	c.JSON(http.StatusOK, roster)
}

// MyAttendance godoc
// @Summary      Get my attendance history
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50)"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   Attendance
// @Router       /me/attendance [get]
func (h *Handler) MyAttendance(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.service.GetMemberAttendanceHistory(c.Request.Context(), auth.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

// MyWeeklyCount godoc
// @Summary      Get my weekly class count
// @Description  Counts bookings in the Monday-Sunday week containing the given date.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        date  query     string  true  "Any date inside the week (YYYY-MM-DD)"
// @Success      200   {object}  gin.H
// @Failure      400   {object}  gin.H
// @Router       /me/weekly-count [get]
func (h *Handler) MyWeeklyCount(c *gin.Context) {
	dateStr := c.Query("date")
	if _, err := time.Parse(gym.DateLayout, dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	count, err := h.service.GetWeeklyClassCount(c.Request.Context(), auth.UserID(c), dateStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count classes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": dateStr, "count": count})
}

// MyEligibility godoc
// @Summary      Check booking eligibility
// @Description  Previews whether the member can book a class instance, including weekly plan limits and suggested plans.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        class_id  query     int     true  "Class ID"
// @Param        date      query     string  true  "Class date (YYYY-MM-DD)"
// @Success      200       {object}  EligibilityResult
// @Failure      400       {object}  gin.H
// @Router       /me/eligibility [get]
func (h *Handler) MyEligibility(c *gin.Context) {
	classID, err := strconv.Atoi(c.Query("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class ID"})
		return
	}
	dateStr := c.Query("date")
	if _, err := time.Parse(gym.DateLayout, dateStr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	result, err := h.service.CheckBookingEligibility(c.Request.Context(), classID, dateStr, auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AttendanceAnalytics godoc
// @Summary      Attendance counts by day
// @Description  Aggregates booked/attended/cancelled counts per day for the gym. Staff only.
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  true  "Range start (YYYY-MM-DD)"
// @Param        to    query     string  true  "Range end (YYYY-MM-DD)"
// @Success      200   {array}   DayCount
// @Failure      400   {object}  gin.H
// @Router       /admin/analytics/attendance [get]
func (h *Handler) AttendanceAnalytics(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if _, err := time.Parse(gym.DateLayout, from); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, use YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse(gym.DateLayout, to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, use YYYY-MM-DD"})
		return
	}

	counts, err := h.service.GetWeeklyAttendanceCounts(c.Request.Context(), auth.GymID(c), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	c.JSON(http.StatusOK, counts)
}
