package discord

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedule is a task run on a cron expression (with seconds) while the bot
// is connected.
type Schedule interface {
	// GetName returns the name of the schedule
	GetName() string
	// GetCronExpression returns the cron expression for when this schedule should run
	GetCronExpression() string
	// Execute runs the task and returns a message to publish, or "" for none.
	Execute() (string, error)
}

// GenericSchedule is a generic implementation of Schedule
type GenericSchedule struct {
	// Name is the schedule's identifier
	Name string
	// CronExpression determines when the schedule will execute
	CronExpression string
	// Handler is the function to execute on schedule
	Handler func() (string, error)
}

func (s *GenericSchedule) GetName() string           { return s.Name }
func (s *GenericSchedule) GetCronExpression() string { return s.CronExpression }
func (s *GenericSchedule) Execute() (string, error)  { return s.Handler() }

// NewSchedule creates a new scheduled task with the given name, cron expression, and handler
func NewSchedule(name, cronExpr string, handler func() (string, error)) Schedule {
	return &GenericSchedule{
		Name:           name,
		CronExpression: cronExpr,
		Handler:        handler,
	}
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// AddSchedule registers s. The cron expression is validated immediately so
// a bad expression fails the extension that registers it.
func (b *Bot) AddSchedule(s Schedule) error {
	if _, err := cronParser.Parse(s.GetCronExpression()); err != nil {
		return fmt.Errorf("invalid cron expression for schedule %s: %w", s.GetName(), err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedules = append(b.schedules, ownedSchedule{Schedule: s, extension: b.loading})
	return nil
}

// Schedules returns the registered schedules.
func (b *Bot) Schedules() []Schedule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Schedule, 0, len(b.schedules))
	for _, s := range b.schedules {
		out = append(out, s.Schedule)
	}
	return out
}

// scheduleManager handles scheduling and executing tasks
type scheduleManager struct {
	bot       *Bot
	cron      *cron.Cron
	schedules []Schedule
}

func newScheduleManager(bot *Bot, schedules []Schedule) *scheduleManager {
	return &scheduleManager{
		bot:       bot,
		cron:      cron.New(cron.WithParser(cronParser)),
		schedules: schedules,
	}
}

// start initializes and starts all scheduled tasks
func (sm *scheduleManager) start() error {
	for _, schedule := range sm.schedules {
		sched := schedule
		_, err := sm.cron.AddFunc(sched.GetCronExpression(), func() {
			sm.executeSchedule(sched)
		})
		if err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", sched.GetName(), err)
		}
		slog.Info("registered schedule", "name", sched.GetName(), "cron", sched.GetCronExpression())
	}

	sm.cron.Start()
	slog.Info("schedule manager started", "schedules", len(sm.schedules))
	return nil
}

// executeSchedule runs a task and publishes its output to the notify
// channel, or to the log when none is configured.
func (sm *scheduleManager) executeSchedule(schedule Schedule) {
	slog.Debug("executing schedule", "name", schedule.GetName(), "cron", schedule.GetCronExpression())

	content, err := schedule.Execute()
	if err != nil {
		sm.bot.log.Error(fmt.Sprintf("Schedule %s failed: %v", schedule.GetName(), err))
		return
	}
	if content == "" {
		return
	}

	channelID := sm.bot.config.NotifyChannelID
	session := sm.bot.Session()
	if channelID == "" || session == nil {
		sm.bot.log.Info(fmt.Sprintf("%s: %s", schedule.GetName(), content))
		return
	}

	if _, err := session.ChannelMessageSend(channelID, content); err != nil {
		slog.Error("failed to send schedule notification",
			"channel", channelID,
			"schedule", schedule.GetName(),
			"error", err)
	}
}

// stop cleanly shuts down the scheduler
func (sm *scheduleManager) stop() {
	<-sm.cron.Stop().Done()
}
