// Package types defines the public domain types for the regpulse regulatory-alerts service.
package types

import (
	"encoding/json"
	"time"
)

// SyncStatus represents the lifecycle state of a sync or backfill job.
type SyncStatus string

// SyncStatus values mirror the status column of the hosted sync_logs table.
const (
	SyncRunning   SyncStatus = "RUNNING"
	SyncCompleted SyncStatus = "COMPLETED"
	SyncFailed    SyncStatus = "FAILED"
)

// TriggerType identifies how a sync job was started.
type TriggerType string

// TriggerType values enumerate the supported job trigger origins. TriggerAny
// is a query wildcard, never stored.
const (
	TriggerAny       TriggerType = ""
	TriggerManual    TriggerType = "manual"
	TriggerBackfill  TriggerType = "backfill"
	TriggerScheduled TriggerType = "scheduled"
)

// HealthLevel classifies the health of a data source or of the platform
// as a whole.
type HealthLevel string

const (
	HealthHealthy   HealthLevel = "healthy"
	HealthDegraded  HealthLevel = "degraded"
	HealthUnhealthy HealthLevel = "unhealthy"
)

// NoticeLevel classifies operator notifications.
type NoticeLevel string

const (
	NoticeLevelError   NoticeLevel = "error"
	NoticeLevelWarning NoticeLevel = "warning"
	NoticeLevelInfo    NoticeLevel = "info"
)

// SyncLog is one invocation of a sync or backfill job. Rows are owned by the
// external sync worker; this service only reads them.
type SyncLog struct {
	ID          string                 `json:"id"`
	Status      SyncStatus             `json:"status"`
	TriggerType TriggerType            `json:"trigger_type"`
	Details     map[string]interface{} `json:"details,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// AdminProfile is the authenticated identity of an operator. Created by the
// external auth system; read-only here.
type AdminProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// AdminOperation is an audit log entry written after a mutating admin action.
type AdminOperation struct {
	ID            string                 `json:"id,omitempty"`
	OperationType string                 `json:"operation_type"`
	PerformedBy   string                 `json:"performed_by"`
	Details       map[string]interface{} `json:"details,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Agency is a regulatory agency with aggregate alert statistics, as returned
// by the get_agencies_with_stats procedure.
type Agency struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Source       string `json:"source"`
	Jurisdiction string `json:"jurisdiction"`
	Status       string `json:"status"`
	TotalAlerts  int    `json:"total_alerts"`
	RecentAlerts int    `json:"recent_alerts"`
}

// DuplicateGroup is a backend-identified cluster of alert records considered
// duplicates of one another, addressed by an opaque group identifier.
type DuplicateGroup struct {
	GroupID    string `json:"group_id"`
	AlertCount int    `json:"alert_count"`
	Title      string `json:"title,omitempty"`
	Source     string `json:"source,omitempty"`
}

// SourceHealth is the health of a single government data source.
type SourceHealth struct {
	Source     string      `json:"source"`
	Status     HealthLevel `json:"status"`
	LastSync   *time.Time  `json:"last_sync,omitempty"`
	AlertCount int         `json:"alert_count"`
	Message    string      `json:"message,omitempty"`
}

// CacheEntry is one row of the search_cache table.
type CacheEntry struct {
	CacheKey   string          `json:"cache_key"`
	Query      string          `json:"query"`
	ResultData json.RawMessage `json:"result_data"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// Notice is an operator notification dispatched to configured sinks.
type Notice struct {
	Level     NoticeLevel            `json:"level"`
	Operation string                 `json:"operation"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NoticeType defines the notice sink type.
type NoticeType string

// NoticeType values enumerate the supported notice sink backends.
const (
	NoticeConsole NoticeType = "console"
	NoticeFile    NoticeType = "file"
	NoticeWebhook NoticeType = "webhook"
	NoticeSNS     NoticeType = "sns"
)

// NoticeConfig configures a single notice sink.
type NoticeConfig struct {
	Type     NoticeType `yaml:"type" json:"type"`
	URL      string     `yaml:"url,omitempty" json:"url,omitempty"`
	Path     string     `yaml:"path,omitempty" json:"path,omitempty"`
	TopicARN string     `yaml:"topicArn,omitempty" json:"topicArn,omitempty"`
}

// OverallHealth derives the platform-wide health level from per-source
// statuses: healthy when every source is healthy, degraded when at least
// half are, unhealthy otherwise. No sources means nothing is known to work.
func OverallHealth(sources []SourceHealth) HealthLevel {
	if len(sources) == 0 {
		return HealthUnhealthy
	}
	healthy := 0
	for _, s := range sources {
		if s.Status == HealthHealthy {
			healthy++
		}
	}
	switch {
	case healthy == len(sources):
		return HealthHealthy
	case healthy*2 >= len(sources):
		return HealthDegraded
	default:
		return HealthUnhealthy
	}
}
