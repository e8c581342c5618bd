package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intconfig "hajjumrahflow/internal/config"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/notifier"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const reminderBatch = 100

// ReminderJob sends booking.payment_reminder events for pending_payment
// bookings that were never reminded or were last reminded before Cooldown.
type ReminderJob struct {
	DB       *sql.DB
	Notifier notifier.Notifier
	Cooldown time.Duration
	Now      func() time.Time
}

func (j ReminderJob) db() *sql.DB {
	if j.DB != nil {
		return j.DB
	}
	return intconfig.DB
}

// RunOnce processes one batch and returns how many reminders were sent.
func (j ReminderJob) RunOnce(ctx context.Context) (int, error) {
	requestID := "reminder-" + uuid.NewString()
	now := nowOr(j.Now)
	repo := repositories.BookingRepository{DB: j.db()}

	due, err := repo.DueForReminder(ctx, now.Add(-j.Cooldown), reminderBatch)
	if err != nil {
		utils.LogFailure(requestID, "reminder", "due", err)
		return 0, err
	}

	sent := 0
	for _, b := range due {
		if j.Notifier != nil {
			j.Notifier.Notify(ctx, requestID, []domain.Event{domain.NewPaymentReminder(b.ID, b.CustomerID, b.TripID, now)})
		}
		if err := repo.MarkReminderSent(ctx, b.ID, now); err != nil {
			utils.LogFailure(requestID, "reminder", "mark_sent", err)
			return sent, err
		}
		sent++
	}
	utils.LogEvent(requestID, "reminder", "run", fmt.Sprintf("due=%d sent=%d", len(due), sent))
	return sent, nil
}

// Schedule registers RunOnce on a new scheduler every interval and starts it.
// The caller owns Shutdown.
func (j ReminderJob) Schedule(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			_, _ = j.RunOnce(ctx)
		}),
		gocron.WithName("payment-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}
