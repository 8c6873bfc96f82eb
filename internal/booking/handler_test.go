package booking

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"matbook/internal/credit"
)

func TestRespondErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		status   int
		wantBody string
	}{
		{"policy denial", policyDenied(TagWeeklyLimit, "weekly limit reached"), http.StatusUnprocessableEntity, `"tag":"weekly_limit"`},
		{"class not found", ErrClassNotFound, http.StatusNotFound, `"error":"class not found"`},
		{"booking not found", ErrBookingNotFound, http.StatusNotFound, ""},
		{"double booking", ErrAlreadyBooked, http.StatusConflict, ""},
		{"already cancelled", ErrAlreadyCancelled, http.StatusConflict, ""},
		{"short balance", ErrInsufficientCredits, http.StatusPaymentRequired, `"tag":"insufficient_credits"`},
		{"short balance from ledger", credit.ErrInsufficientCredits, http.StatusPaymentRequired, `"tag":"insufficient_credits"`},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, `"error":"Something went wrong"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
