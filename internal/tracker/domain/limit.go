package domain

import "time"

const DateLayout = "2006-01-02"

type ID string

type AccountID string

// WebsiteLimit is one tracked website for one account: the daily minute
// budget and the minutes spent so far today. LastReset holds the calendar
// day the counter belongs to; a date in the past means the counter is stale.
type WebsiteLimit struct {
	ID         ID
	AccountID  AccountID
	WebsiteURL string
	TimeLimit  int
	TimeUsed   int
	LastReset  time.Time
}

// Today truncates now to the calendar date in the reset timezone.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// StatusReport mirrors the admin db-status view: row counts plus per-account
// tracked website counts.
type StatusReport struct {
	Accounts     int            `json:"accounts"`
	Websites     int            `json:"websites"`
	AccountStats []AccountStats `json:"account_stats"`
}

type AccountStats struct {
	AccountID    AccountID `json:"account_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	WebsiteCount int       `json:"website_count"`
}

// ExportRecord is the reporting feed shape consumed by the heatmap tool.
type ExportRecord struct {
	URL       string `json:"url"`
	TimeUsed  int    `json:"timeUsed"`
	TimeLimit int    `json:"timeLimit"`
}
