package email

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"matbook/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestSendQueuesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*booking_confirmation.*`).SetVal(1)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	err := svc.Send(context.Background(), "ana@example.com", "Ana", "Hello", "Body", "booking_confirmation")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendBookingConfirmation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*Fundamentals.*`).SetVal(1)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	start := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)
	err := svc.SendBookingConfirmation(context.Background(), "ana@example.com", "Ana", "Fundamentals", "2026-09-07", start)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendWaitlisted(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*waitlist.*`).SetVal(1)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	err := svc.SendWaitlisted(context.Background(), "ana@example.com", "Ana", "Fundamentals", "2026-09-07")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendWaitlistPromotion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*spot opened.*`).SetVal(1)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	err := svc.SendWaitlistPromotion(context.Background(), "ana@example.com", "Ana", "Fundamentals", "2026-09-07")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendCancellationMentionsRefund(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*returned to your account.*`).SetVal(1)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	err := svc.SendCancellation(context.Background(), "ana@example.com", "Ana", "Fundamentals", "2026-09-07", true, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen("emails").SetVal(3)

	svc := NewWithClient(db, "noreply@matbook.io", "MatBook Team")

	assert.Equal(t, int64(3), svc.QueueLength(context.Background()))
}
