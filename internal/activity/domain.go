package activity

import "time"

// Actions recorded by the dashboard itself.
const (
	ActionLogin       = "login"
	ActionLoginFailed = "login_failed"
	ActionLogout      = "logout"
	ActionDenied      = "denied"
)

// Entry is one row in the local activity log.
type Entry struct {
	ID         int64
	Actor      string
	Action     string
	Module     string
	Detail     string
	IP         string
	OccurredAt time.Time
}

// Filters narrows a timeline query.
type Filters struct {
	Actor    string
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// PagingInfo carries pagination state for the timeline view.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []Entry
	Paging PagingInfo
}
