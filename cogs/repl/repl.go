// Package repl evaluates SQL against the bot's DuckDB database.
package repl

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/brensch/selfbot/db"
	"github.com/brensch/selfbot/discord"
)

// messageLimit is Discord's maximum message length.
const messageLimit = 2000

const queryTimeout = 30 * time.Second

type request struct {
	Query string `discord:"rest,description:SQL to run"`
}

type parquetRequest struct {
	File  string `discord:"description:file name inside the database directory"`
	Query string `discord:"rest,description:SQL whose result is exported"`
}

// rowKeywords start statements that produce a result set.
var rowKeywords = []string{
	"SELECT", "WITH", "FROM", "VALUES", "TABLE", "SHOW", "DESCRIBE",
	"SUMMARIZE", "EXPLAIN", "PRAGMA", "CALL",
}

// New returns the setup of the repl extension.
func New(client *db.Client) discord.Setup {
	return func(b *discord.Bot) error {
		if client == nil {
			return fmt.Errorf("repl needs a database client")
		}
		if err := b.AddCommand(discord.NewCommand("sql", "Evaluates SQL on the DuckDB database", func(ctx *discord.Context, req request) error {
			_, err := ctx.Reply(Evaluate(client, req.Query))
			return err
		}).WithAliases("eval")); err != nil {
			return err
		}
		return b.AddCommand(discord.NewCommand("parquet", "Exports the result of a query to a Parquet file", func(ctx *discord.Context, req parquetRequest) error {
			_, err := ctx.Reply(Export(client, req.File, req.Query))
			return err
		}))
	}
}

// Export writes the result of query to file and renders the outcome.
func Export(client *db.Client, file, query string) string {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	path, err := client.WriteParquet(ctx, CleanupCode(query), file)
	if err != nil {
		return codeBlock(err.Error())
	}
	return fmt.Sprintf("Wrote `%s`", path)
}

// Evaluate runs query and renders the outcome as a code block that fits in
// one message. Query errors are rendered, not returned.
func Evaluate(client *db.Client, query string) string {
	query = CleanupCode(query)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	run := client.Exec
	if ReturnsRows(query) {
		run = client.Query
	}
	res, err := run(ctx, query)
	if err != nil {
		return codeBlock(err.Error())
	}
	return codeBlock(FormatTable(res))
}

// ReturnsRows reports whether query starts with a keyword that produces a
// result set. Other statements report the number of rows they affected.
func ReturnsRows(query string) bool {
	query = strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(query)
	}
	keyword := strings.ToUpper(query[:end])
	for _, k := range rowKeywords {
		if keyword == k {
			return true
		}
	}
	return false
}

// CleanupCode removes ```sql fences or `inline` backticks around s.
func CleanupCode(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = s[3 : len(s)-3]
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
			// Drop the language tag of the fence.
			s = s[i+1:]
		}
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Trim(s, "`"))
}

// FormatTable renders res as an aligned text table.
func FormatTable(res *db.Result) string {
	if len(res.Columns) == 0 {
		return fmt.Sprintf("OK, %d rows affected", res.RowsAffected)
	}

	widths := make([]int, len(res.Columns))
	for i, c := range res.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range res.Rows {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(values []string) string {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = v + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v))
		}
		return strings.TrimRight(strings.Join(cells, " | "), " ")
	}

	var sb strings.Builder
	sb.WriteString(line(res.Columns))
	sb.WriteByte('\n')
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	sb.WriteString(strings.Join(seps, "-+-"))
	sb.WriteByte('\n')
	for _, row := range res.Rows {
		sb.WriteString(line(row))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "(%d rows)", len(res.Rows))
	return sb.String()
}

// codeBlock wraps s in a code block, truncating it to the message limit.
func codeBlock(s string) string {
	const opening, closing, more = "```\n", "\n```", "\n..."
	room := messageLimit - len(opening) - len(closing)
	if len(s) > room {
		cut := room - len(more)
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + more
	}
	return opening + s + closing
}
