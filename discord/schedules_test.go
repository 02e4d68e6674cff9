package discord

import (
	"errors"
	"strings"
	"testing"
)

func TestAddScheduleValidatesCron(t *testing.T) {
	b := newTestBot(t)
	err := b.LoadExtension("meta", func(b *Bot) error {
		return b.AddSchedule(NewSchedule("heartbeat", "every hour", func() (string, error) { return "", nil }))
	})
	if err == nil {
		t.Fatal("expected invalid cron expression to fail the load")
	}
	if len(b.Schedules()) != 0 {
		t.Error("invalid schedule registered")
	}
}

func TestExecuteScheduleLogsWithoutChannel(t *testing.T) {
	b := newTestBot(t)
	sm := newScheduleManager(b.Bot, nil)

	sm.executeSchedule(NewSchedule("heartbeat", "@hourly", func() (string, error) { return "up 1 hour", nil }))
	sm.executeSchedule(NewSchedule("quiet", "@hourly", func() (string, error) { return "", nil }))
	sm.executeSchedule(NewSchedule("broken", "@hourly", func() (string, error) { return "", errors.New("no data") }))

	logs := b.logs.String()
	if !strings.Contains(logs, "[INFO] schedules - heartbeat: up 1 hour") {
		t.Errorf("schedule output not logged: %q", logs)
	}
	if strings.Contains(logs, "quiet") {
		t.Errorf("empty output should not be logged: %q", logs)
	}
	if !strings.Contains(logs, "[ERROR] schedules - Schedule broken failed: no data") {
		t.Errorf("schedule error not logged: %q", logs)
	}
	if len(b.session.SentMessages()) != 0 {
		t.Errorf("nothing should be sent without a notify channel")
	}
}

func TestExecuteScheduleSendsToNotifyChannel(t *testing.T) {
	b := newTestBot(t)
	b.config.NotifyChannelID = "general"
	sm := newScheduleManager(b.Bot, nil)

	sm.executeSchedule(NewSchedule("heartbeat", "@hourly", func() (string, error) { return "up 1 hour", nil }))

	sent := b.session.SentMessages()
	if len(sent) != 1 || sent[0].ChannelID != "general" || sent[0].Content != "up 1 hour" {
		t.Errorf("unexpected sent messages %+v", sent)
	}
}

func TestScheduleManagerStartStop(t *testing.T) {
	b := newTestBot(t)
	sm := newScheduleManager(b.Bot, []Schedule{
		NewSchedule("heartbeat", "0 0 * * * *", func() (string, error) { return "", nil }),
	})
	if err := sm.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := len(sm.cron.Entries()); got != 1 {
		t.Errorf("expected 1 cron entry, got %d", got)
	}
	sm.stop()
}
