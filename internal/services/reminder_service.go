package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/nyinsen/internal/metrics"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/notify"
)

const (
	ReminderKindPeriod  = "period"
	ReminderKindFertile = "fertile_window"

	DefaultPeriodReminderDays = 2
)

type ReminderUserRepository interface {
	ListWithCycleReference(ctx context.Context) ([]models.User, error)
}

type ReminderSettings struct {
	PeriodReminderDays int
	NotifyFertility    bool
	Location           *time.Location
}

type ReminderRun struct {
	Checked int
	Sent    int
	Skipped int
	Failed  int
}

// ReminderService sends cycle reminders for the current day. Each
// (kind, user, day) is delivered at most once per process.
type ReminderService struct {
	users    ReminderUserRepository
	notifier notify.Notifier
	clock    clockwork.Clock
	settings ReminderSettings
	log      logrus.FieldLogger

	mu   sync.Mutex
	sent map[string]string
}

func NewReminderService(users ReminderUserRepository, notifier notify.Notifier, clock clockwork.Clock, settings ReminderSettings, log logrus.FieldLogger) *ReminderService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.PeriodReminderDays <= 0 {
		settings.PeriodReminderDays = DefaultPeriodReminderDays
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReminderService{
		users:    users,
		notifier: notifier,
		clock:    clock,
		settings: settings,
		log:      log,
		sent:     make(map[string]string),
	}
}

func (service *ReminderService) Run(ctx context.Context) (ReminderRun, error) {
	users, err := service.users.ListWithCycleReference(ctx)
	if err != nil {
		metrics.ReminderRunsTotal.WithLabelValues("error").Inc()
		return ReminderRun{}, fmt.Errorf("list users for reminders: %w", err)
	}

	today := calendarDayUTC(service.clock.Now().In(service.settings.Location))
	service.forgetBefore(FormatDay(today))

	run := ReminderRun{}
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			metrics.ReminderRunsTotal.WithLabelValues("cancelled").Inc()
			return run, err
		}
		if user.LastPeriodStart == nil {
			continue
		}
		run.Checked++

		snapshot, err := ComputeCycleSnapshot(today, calendarDayUTC(*user.LastPeriodStart), user.CycleLength)
		if err != nil {
			service.log.WithError(err).WithField("user_id", user.ID).Warn("skipping reminders for invalid cycle settings")
			run.Skipped++
			continue
		}
		for _, message := range service.remindersFor(user, today, snapshot) {
			service.deliver(ctx, message, &run)
		}
	}

	result := "ok"
	if run.Failed > 0 {
		result = "partial"
	}
	metrics.ReminderRunsTotal.WithLabelValues(result).Inc()
	service.log.WithFields(logrus.Fields{
		"checked": run.Checked,
		"sent":    run.Sent,
		"skipped": run.Skipped,
		"failed":  run.Failed,
	}).Info("cycle reminder run finished")
	return run, nil
}

type pendingReminder struct {
	key     string
	day     string
	message notify.Message
}

func (service *ReminderService) remindersFor(user models.User, today time.Time, snapshot CycleSnapshot) []pendingReminder {
	recipient := fmt.Sprintf("user:%d", user.ID)
	day := FormatDay(today)
	reminders := make([]pendingReminder, 0, 2)

	if calendarDaysBetween(today, snapshot.PredictedNextCycleStart, time.UTC) == service.settings.PeriodReminderDays {
		reminders = append(reminders, pendingReminder{
			key: reminderKey(ReminderKindPeriod, user.ID, day),
			day: day,
			message: notify.Message{
				Kind:      notify.KindReminder,
				Recipient: recipient,
				Subject:   "Period reminder",
				Body: fmt.Sprintf("Your next period is expected in %d days, on %s.",
					service.settings.PeriodReminderDays, FormatDay(snapshot.PredictedNextCycleStart)),
			},
		})
	}

	if service.settings.NotifyFertility && snapshot.FertileWindow.Start.Equal(today) {
		reminders = append(reminders, pendingReminder{
			key: reminderKey(ReminderKindFertile, user.ID, day),
			day: day,
			message: notify.Message{
				Kind:      notify.KindReminder,
				Recipient: recipient,
				Subject:   "Fertile window",
				Body: fmt.Sprintf("Your fertile window starts today and runs until %s. Ovulation is expected on %s.",
					FormatDay(snapshot.FertileWindow.End), FormatDay(snapshot.OvulationDate)),
			},
		})
	}
	return reminders
}

func (service *ReminderService) deliver(ctx context.Context, reminder pendingReminder, run *ReminderRun) {
	service.mu.Lock()
	_, done := service.sent[reminder.key]
	service.mu.Unlock()
	if done {
		run.Skipped++
		return
	}

	if err := service.notifier.Notify(ctx, reminder.message); err != nil {
		service.log.WithError(err).WithField("reminder", reminder.key).Warn("cycle reminder delivery failed")
		run.Failed++
		return
	}

	service.mu.Lock()
	service.sent[reminder.key] = reminder.day
	service.mu.Unlock()
	run.Sent++
}

// forgetBefore drops delivery marks for days before today.
func (service *ReminderService) forgetBefore(today string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	for key, day := range service.sent {
		if day < today {
			delete(service.sent, key)
		}
	}
}

func reminderKey(kind string, userID uint, day string) string {
	return fmt.Sprintf("%s:%d:%s", kind, userID, day)
}
