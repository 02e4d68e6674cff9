// Package meta provides commands about the bot itself.
package meta

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/brensch/selfbot/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// New returns the setup of the meta extension. heartbeat is the cron
// expression of the uptime heartbeat; empty disables it.
func New(heartbeat string) discord.Setup {
	return func(b *discord.Bot) error {
		m := &meta{bot: b, now: time.Now}

		commands := []discord.Command{
			discord.NewCommand("uptime", "Tells you how long the bot has been up for", m.uptime).WithAliases("up"),
			discord.NewCommand("ping", "Measures the round trip time of edits", m.ping),
			discord.NewCommand("stats", "Shows memory and command statistics", m.stats),
			discord.NewCommand("about", "Tells you information about the bot itself", m.about).WithAliases("info"),
		}
		for _, cmd := range commands {
			if err := b.AddCommand(cmd); err != nil {
				return err
			}
		}

		if heartbeat == "" {
			return nil
		}
		return b.AddSchedule(discord.NewSchedule("heartbeat", heartbeat, m.heartbeat))
	}
}

type meta struct {
	bot *discord.Bot
	now func() time.Time
}

func (m *meta) uptimeText() string {
	up, ok := m.bot.Uptime()
	if !ok {
		return "Not connected yet."
	}
	return fmt.Sprintf("Uptime: **%s** (online since %s)", FormatDuration(m.now().Sub(up)), humanize.Time(up))
}

func (m *meta) uptime(ctx *discord.Context, _ discord.NoArgs) error {
	_, err := ctx.Reply(m.uptimeText())
	return err
}

// maxPings bounds the round trips of one ping command.
const maxPings = 5

type pingRequest struct {
	Count int `discord:"optional,default:1,description:round trips to average"`
}

func (m *meta) ping(ctx *discord.Context, req pingRequest) error {
	count := min(max(req.Count, 1), maxPings)

	var total time.Duration
	for i := 0; i < count; i++ {
		start := time.Now()
		if _, err := ctx.Reply("Pong!"); err != nil {
			return err
		}
		total += time.Since(start)
	}

	reply := fmt.Sprintf("Pong! `%dms`", (total / time.Duration(count)).Milliseconds())
	if count > 1 {
		reply += fmt.Sprintf(" (average of %d)", count)
	}
	_, err := ctx.Reply(reply)
	return err
}

func (m *meta) stats(ctx *discord.Context, _ discord.NoArgs) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Memory:** %s / %s\n", humanize.Bytes(mem.Alloc), humanize.Bytes(mem.Sys))
	fmt.Fprintf(&sb, "**Total allocated:** %s\n", humanize.Bytes(mem.TotalAlloc))
	fmt.Fprintf(&sb, "**Goroutines:** %s\n", humanize.Comma(int64(runtime.NumGoroutine())))
	fmt.Fprintf(&sb, "**Commands:** %s\n", humanize.Comma(int64(len(m.bot.Commands()))))
	sb.WriteString(m.uptimeText())

	_, err := ctx.Reply(sb.String())
	return err
}

func (m *meta) about(ctx *discord.Context, _ discord.NoArgs) error {
	cfg := m.bot.Config()
	embed := &discordgo.MessageEmbed{
		Title:       "selfbot",
		Description: "A personal Discord self-bot.",
		Color:       0x4CAF50,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prefixes", Value: "`" + strings.Join(cfg.Prefixes, "` `") + "`", Inline: true},
			{Name: "Extensions", Value: strings.Join(m.bot.Extensions(), ", "), Inline: true},
			{Name: "Library", Value: "discordgo " + discordgo.VERSION, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: m.uptimeText()},
	}
	_, err := ctx.SendEmbed(embed)
	return err
}

func (m *meta) heartbeat() (string, error) {
	if _, ok := m.bot.Uptime(); !ok {
		return "", nil
	}
	return m.uptimeText(), nil
}

// FormatDuration renders d as "1 day, 2 hours, 3 minutes, 4 seconds",
// leaving out zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	units := []struct {
		name string
		size int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var parts []string
	for _, u := range units {
		n := total / u.size
		total %= u.size
		if n == 0 {
			continue
		}
		name := u.name
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}
