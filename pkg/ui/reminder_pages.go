package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
)

const RemindersPerPage = 5

// RenderReminderPages turns reminders, already sorted by due time, into
// pages of RemindersPerPage entries numbered across the whole list.
func RenderReminderPages(list []db.Reminder, now time.Time) []paginate.Page {
	var pages []paginate.Page
	for start := 0; start < len(list); start += RemindersPerPage {
		end := min(start+RemindersPerPage, len(list))

		var b strings.Builder
		b.WriteString("Reminders\n")
		for i, reminder := range list[start:end] {
			due := reminder.DueAt.UTC()
			fmt.Fprintf(&b, "\n%d: %s\n> %s (%s)\n> ID: %s\n",
				start+i+1,
				reminder.Message,
				humanize.RelTime(due, now, "ago", "from now"),
				due.Format("Mon, 02 Jan 2006 15:04 MST"),
				reminder.ID,
			)
		}
		pages = append(pages, paginate.Page{Text: strings.TrimRight(b.String(), "\n")})
	}
	return pages
}
