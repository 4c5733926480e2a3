package repository

import (
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// Storage keys. Per-date keys end in a YYYY-MM-DD local date.
const (
	KeyGoals         = "lifeos-goals"
	KeyEnergyProfile = "lifeos-energy-profile"
	KeyAPIKey        = "lifeos-api-key"
	KeyLastCheckin   = "lifeos-last-checkin"

	PrefixTasks  = "lifeos-tasks-day-"
	PrefixStatus = "lifeos-daily-status-"
)

// TasksKey is the key of the day plan for date.
func TasksKey(date time.Time) string { return PrefixTasks + domain.DateKey(date) }

// StatusKey is the key of the mode override for date.
func StatusKey(date time.Time) string { return PrefixStatus + domain.DateKey(date) }

// DateFromKey extracts the date suffix of a per-date key.
func DateFromKey(key string) (string, bool) {
	for _, prefix := range []string{PrefixTasks, PrefixStatus} {
		if date, ok := strings.CutPrefix(key, prefix); ok {
			if _, err := time.Parse(domain.DateLayout, date); err == nil {
				return date, true
			}
		}
	}
	return "", false
}
