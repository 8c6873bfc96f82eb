package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/classes/:classID/book", "201", 0.05)
	RecordHTTPRequest("POST", "/classes/:classID/book", "201", 0.07)
	RecordHTTPRequest("POST", "/classes/:classID/book", "422", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/book", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/book", "422")))
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("booked", "membership")
	RecordBooking("booked", "membership")
	RecordBooking("waitlisted", "credit")

	assert.Equal(t, float64(2), testutil.ToFloat64(BookingsTotal.WithLabelValues("booked", "membership")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsTotal.WithLabelValues("waitlisted", "credit")))
}

func TestRecordCancellation(t *testing.T) {
	BookingCancellationsTotal.Reset()

	RecordCancellation(true)
	RecordCancellation(false)
	RecordCancellation(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("true")))
	assert.Equal(t, float64(2), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("false")))
}

func TestRecordLedgerEntry(t *testing.T) {
	CreditLedgerEntriesTotal.Reset()

	RecordLedgerEntry("booking")
	RecordLedgerEntry("refund")
	RecordLedgerEntry("booking")

	assert.Equal(t, float64(2), testutil.ToFloat64(CreditLedgerEntriesTotal.WithLabelValues("booking")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CreditLedgerEntriesTotal.WithLabelValues("refund")))
}
