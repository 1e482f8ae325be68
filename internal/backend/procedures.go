package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// AgencyQuery filters the agency listing.
type AgencyQuery struct {
	Search       string `json:"search,omitempty"`
	Source       string `json:"source,omitempty"`
	Status       string `json:"status,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

// AgencyPage is the result of the get_agencies_with_stats procedure.
type AgencyPage struct {
	Agencies      []types.Agency `json:"agencies"`
	Total         int            `json:"total"`
	Sources       []string       `json:"sources"`
	Jurisdictions []string       `json:"jurisdictions"`
}

// GetAgenciesWithStats lists agencies with aggregate alert statistics.
func (c *Client) GetAgenciesWithStats(ctx context.Context, q AgencyQuery) (*AgencyPage, error) {
	var page AgencyPage
	if err := c.rpc(ctx, "get_agencies_with_stats", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DedupeResult is the outcome of the deduplicate_alerts procedure.
type DedupeResult struct {
	RemovedCount int                    `json:"removed_count"`
	Details      map[string]interface{} `json:"details"`
}

// DeduplicateAlerts runs platform-wide alert deduplication.
func (c *Client) DeduplicateAlerts(ctx context.Context, performedBy string) (*DedupeResult, error) {
	params := map[string]string{"performed_by": performedBy}
	var res DedupeResult
	if err := c.rpc(ctx, "deduplicate_alerts", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetDuplicateGroups lists the duplicate groups currently identified by the
// backend.
func (c *Client) GetDuplicateGroups(ctx context.Context) ([]types.DuplicateGroup, error) {
	var groups []types.DuplicateGroup
	if err := c.rpc(ctx, "get_duplicate_groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetDuplicateGroupAlerts returns the alert records in one duplicate group.
// Alert rows are opaque to this service and passed through unmodified.
func (c *Client) GetDuplicateGroupAlerts(ctx context.Context, groupID string) ([]map[string]interface{}, error) {
	params := map[string]string{"group_id": groupID}
	var alerts []map[string]interface{}
	if err := c.rpc(ctx, "get_duplicate_group_alerts", params, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// RemovalResult is the outcome of the remove_duplicate_group procedure.
type RemovalResult struct {
	RemovedCount int `json:"removed_count"`
}

// RemoveDuplicateGroup deletes the duplicate alerts in a group, keeping the
// canonical record.
func (c *Client) RemoveDuplicateGroup(ctx context.Context, groupID, performedBy string) (*RemovalResult, error) {
	params := map[string]string{"group_id": groupID, "performed_by": performedBy}
	var res RemovalResult
	if err := c.rpc(ctx, "remove_duplicate_group", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// HealthReport is the result of the get_health_status procedure.
type HealthReport struct {
	Sources   []types.SourceHealth `json:"sources"`
	CheckedAt time.Time            `json:"checked_at"`
}

// GetHealthStatus reads the latest per-source health snapshot.
func (c *Client) GetHealthStatus(ctx context.Context) (*HealthReport, error) {
	var report HealthReport
	if err := c.rpc(ctx, "get_health_status", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RunHealthCheck asks the platform to probe every source now.
func (c *Client) RunHealthCheck(ctx context.Context) (map[string]interface{}, error) {
	var results map[string]interface{}
	if err := c.rpc(ctx, "run_health_check", nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ReindexResult is the outcome of the reindex_alerts procedure.
type ReindexResult struct {
	IndexesCreated int                    `json:"indexes_created"`
	DurationMS     int64                  `json:"duration_ms"`
	Details        map[string]interface{} `json:"details"`
}

// ReindexAlerts rebuilds the alert search indexes.
func (c *Client) ReindexAlerts(ctx context.Context) (*ReindexResult, error) {
	var res ReindexResult
	if err := c.rpc(ctx, "reindex_alerts", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SyncRequest parameterizes a manual sync or backfill trigger.
type SyncRequest struct {
	Days        int      `json:"days"`
	Sources     []string `json:"sources,omitempty"`
	TriggeredBy string   `json:"triggered_by"`
}

// SyncResult is the outcome of the trigger_manual_sync procedure.
type SyncResult struct {
	SyncID  string                 `json:"sync_id"`
	Results map[string]interface{} `json:"results"`
}

// TriggerManualSync starts an immediate sync of recent data.
func (c *Client) TriggerManualSync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	var res SyncResult
	if err := c.rpc(ctx, "trigger_manual_sync", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BackfillResult is the outcome of the trigger_backfill procedure.
type BackfillResult struct {
	BackfillID string                 `json:"backfill_id"`
	Results    map[string]interface{} `json:"results"`
}

// TriggerBackfill starts a historical backfill covering the requested window.
func (c *Client) TriggerBackfill(ctx context.Context, req SyncRequest) (*BackfillResult, error) {
	var res BackfillResult
	if err := c.rpc(ctx, "trigger_backfill", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchAlerts runs a full-text alert search. The result payload is opaque
// and suitable for caching as-is.
func (c *Client) SearchAlerts(ctx context.Context, query string, filters map[string]interface{}) (json.RawMessage, error) {
	params := map[string]interface{}{"query": query}
	if len(filters) > 0 {
		params["filters"] = filters
	}
	var raw json.RawMessage
	if err := c.rpc(ctx, "search_alerts", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// authUser is the subset of the auth endpoint's user record this service reads.
type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetProfile resolves a session token to an admin profile. The auth endpoint
// validates the token; the profiles table supplies the admin flag.
func (c *Client) GetProfile(ctx context.Context, token string) (*types.AdminProfile, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var user authUser
	if err := c.get(ctx, "/auth/v1/user", token, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("auth user: %w", ErrUnauthorized)
	}

	var rows []struct {
		IsAdmin bool `json:"is_admin"`
	}
	path := "/rest/v1/profiles?select=is_admin&id=eq." + url.QueryEscape(user.ID)
	if err := c.get(ctx, path, "", &rows); err != nil {
		return nil, err
	}

	profile := &types.AdminProfile{ID: user.ID, Email: user.Email}
	if len(rows) > 0 {
		profile.IsAdmin = rows[0].IsAdmin
	}
	return profile, nil
}
