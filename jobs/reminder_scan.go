package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/fleetdesk/fleetdesk/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// BookingReminderScanJob finds upcoming bookings whose pickup time
// falls inside the reminder window and emits a reminder for each.
type BookingReminderScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Window  time.Duration
	clock   func() time.Time
}

// NewBookingReminderScanJob initialises the reminder scan handler.
func NewBookingReminderScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, window time.Duration) *BookingReminderScanJob {
	return &BookingReminderScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		Window:  window,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the reminder scan logic.
func (j *BookingReminderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload BookingReminderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	window := j.Window
	if payload.WindowMinutes > 0 {
		window = time.Duration(payload.WindowMinutes) * time.Minute
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	tracker := j.metrics().Track(TaskBookingReminderScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	logger := j.logger().With(slog.Duration("window", window))
	logger.Info("starting reminder scan")

	reminders, err := j.scan(ctx, start, window)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, rem := range reminders {
		logger.Info("booking reminder",
			slog.Int64("booking_id", rem.BookingID),
			slog.Int64("driver_id", rem.DriverID),
			slog.String("driver", rem.DriverName),
			slog.String("origin", rem.Origin),
			slog.Time("pickup_time", rem.PickupTime),
		)
	}
	j.metrics().AddReminders(len(reminders))

	logger.Info("completed reminder scan",
		slog.Int("reminders", len(reminders)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *BookingReminderScanJob) scan(ctx context.Context, now time.Time, window time.Duration) ([]bookingReminder, error) {
	if j.Pool == nil {
		return nil, errors.New("reminder scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT b.id, b.driver_id, d.username, b.origin, b.pickup_time
		FROM bookings b
		JOIN users d ON b.driver_id = d.id
		WHERE b.status = 'upcoming' AND b.pickup_time >= $1 AND b.pickup_time < $2
		ORDER BY b.pickup_time`, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]bookingReminder, 0)
	for rows.Next() {
		var rem bookingReminder
		if err := rows.Scan(&rem.BookingID, &rem.DriverID, &rem.DriverName, &rem.Origin, &rem.PickupTime); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (j *BookingReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBookingReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskBookingReminderScan))
}

func (j *BookingReminderScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *BookingReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

type bookingReminder struct {
	BookingID  int64
	DriverID   int64
	DriverName string
	Origin     string
	PickupTime time.Time
}
