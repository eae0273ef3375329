package hbclient

import "time"

// Fault is a distinct error group tracked by Honeybadger.
type Fault struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id,omitempty"`
	Klass         string     `json:"klass,omitempty"`
	Component     string     `json:"component,omitempty"`
	Action        string     `json:"action,omitempty"`
	Message       string     `json:"message,omitempty"`
	Environment   string     `json:"environment,omitempty"`
	Resolved      bool       `json:"resolved"`
	Ignored       bool       `json:"ignored"`
	NoticesCount  int        `json:"notices_count"`
	CommentsCount int        `json:"comments_count,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	URL           string     `json:"url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastNoticeAt  *time.Time `json:"last_notice_at,omitempty"`
}

// Notice is one occurrence of a fault, with contextual detail.
type Notice struct {
	ID          string           `json:"id"`
	FaultID     int64            `json:"fault_id"`
	Message     string           `json:"message,omitempty"`
	EnvName     string           `json:"environment_name,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Request     *NoticeRequest   `json:"request,omitempty"`
	Backtrace   []BacktraceFrame `json:"backtrace,omitempty"`
	Environment map[string]any   `json:"environment,omitempty"`
	URL         string           `json:"url,omitempty"`
}

// NoticeRequest describes the request context captured with a notice.
type NoticeRequest struct {
	URL       string         `json:"url,omitempty"`
	Component string         `json:"component,omitempty"`
	Action    string         `json:"action,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// BacktraceFrame is a single backtrace entry of a notice.
type BacktraceFrame struct {
	Number string `json:"number,omitempty"`
	File   string `json:"file,omitempty"`
	Method string `json:"method,omitempty"`
}

// PageLinks carries the pagination cursors returned by the API.
type PageLinks struct {
	Self string `json:"self,omitempty"`
	Next string `json:"next,omitempty"`
}

// FaultsPage is the paged envelope of the faults listing endpoint.
type FaultsPage struct {
	Results []Fault    `json:"results"`
	Links   *PageLinks `json:"links,omitempty"`
}

// NoticesPage is the paged envelope of the notices listing endpoint.
type NoticesPage struct {
	Results []Notice   `json:"results"`
	Links   *PageLinks `json:"links,omitempty"`
}

// FaultDetails merges a fault record with a bounded page of its notices.
type FaultDetails struct {
	Fault   *Fault   `json:"fault"`
	Notices []Notice `json:"notices"`
}
