package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// parseDate accepts "today", "tomorrow", "yesterday", a signed day offset
// such as "+2" or "-1", or a YYYY-MM-DD date.
func parseDate(arg string, now time.Time) (time.Time, error) {
	today := domain.StartOfDay(now)
	switch s := strings.ToLower(strings.TrimSpace(arg)); s {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	default:
		if s[0] == '+' || s[0] == '-' {
			if n, err := strconv.Atoi(s); err == nil {
				return today.AddDate(0, 0, n), nil
			}
		}
		return domain.ParseDate(s)
	}
}

// dateArg parses the optional trailing DATE argument at index i.
func dateArg(app *App, args []string, i int) (time.Time, error) {
	if len(args) > i {
		return parseDate(args[i], app.now())
	}
	return domain.StartOfDay(app.now()), nil
}

// addDateFlag registers --date on cmd, bound to target.
func addDateFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "date", "d", "today", "day to act on (today, tomorrow, yesterday, +N, -N or YYYY-MM-DD)")
}
