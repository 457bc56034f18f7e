package cron

import (
	"context"

	"github.com/Dias221467/EventEase/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartNotificationCronJobs schedules the service reminder scan and starts
// the scheduler. The caller stops it on shutdown.
func StartNotificationCronJobs(reminders *jobs.ReminderNotifier, schedule string) (*cron.Cron, error) {
	c := cron.New()

	// Upcoming booking reminders
	_, err := c.AddFunc(schedule, func() {
		if _, err := reminders.RunScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Service reminder scan failed")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
