package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Audit actions recorded by the HRIS core. Values are stable identifiers
// persisted in the audit log, not display strings.
const (
	AuditActionLogin             = "login"
	AuditActionLogout            = "logout"
	AuditActionResetPassword     = "reset_password"
	AuditActionSelfResetPassword = "self_reset_password"
	AuditActionChangePassword    = "change_password"
)

// Sort columns accepted by the audit trail listing. Anything outside this
// whitelist is rejected before a query is built.
const (
	AuditSortCreatedAt       = "created_at"
	AuditSortPerformedByName = "performed_by_name"
	AuditSortAction          = "action"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Pagination defaults for the audit trail listing.
const (
	DefaultAuditPageSize = 10
	DefaultAuditPage     = 1
)

// AuditEntry is one immutable row of the append-only audit log.
type AuditEntry struct {
	ID              int64
	CreatedAt       time.Time
	PerformedByID   *int64
	PerformedByName *string
	Action          string
	Description     string
}

// AuditFilter captures the optional listing constraints. A nil field means
// "no constraint" for filters and "use default" for sort and pagination;
// absence is deliberately distinct from an empty value.
type AuditFilter struct {
	Action        *string
	PerformedByID *int64
	StartDate     *time.Time
	EndDate       *time.Time
	Search        *string
	SortColumn    *string
	SortOrder     *string
	Limit         *int
	Page          *int
}

// ValidationError reports rejected filter fields keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error for ValidationError.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var auditSortColumns = map[string]struct{}{
	AuditSortCreatedAt:       {},
	AuditSortPerformedByName: {},
	AuditSortAction:          {},
}

// Validate enforces the closed sort enumerations and pagination bounds. Sort
// values are interpolated into an ORDER BY clause downstream, so the
// whitelist check here is a security requirement, not a convenience.
func (f AuditFilter) Validate() error {
	fields := make(map[string]string)

	if f.SortColumn != nil {
		if _, ok := auditSortColumns[*f.SortColumn]; !ok {
			fields["sort_column"] = fmt.Sprintf("must be one of %s, %s, %s", AuditSortCreatedAt, AuditSortPerformedByName, AuditSortAction)
		}
	}

	if f.SortOrder != nil && *f.SortOrder != SortOrderAsc && *f.SortOrder != SortOrderDesc {
		fields["sort_order"] = "must be asc or desc"
	}

	if f.Limit != nil && *f.Limit <= 0 {
		fields["limit"] = "must be a positive integer"
	}

	if f.Page != nil && *f.Page < 1 {
		fields["page"] = "must be at least 1"
	}

	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		fields["end_date"] = "must not precede start_date"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// EffectiveSort resolves the sort column and order, defaulting to newest
// first.
func (f AuditFilter) EffectiveSort() (column, order string) {
	column = AuditSortCreatedAt
	order = SortOrderDesc
	if f.SortColumn != nil {
		column = *f.SortColumn
	}
	if f.SortOrder != nil {
		order = *f.SortOrder
	}
	return column, order
}

// EffectiveRange resolves the inclusive created_at range. A missing start
// bound falls back to the epoch; a missing end bound extends through the end
// of the current day so a single-sided range stays well-defined.
func (f AuditFilter) EffectiveRange(now time.Time) (start, end time.Time) {
	start = time.Unix(0, 0).UTC()
	if f.StartDate != nil {
		start = *f.StartDate
	}

	if f.EndDate != nil {
		end = *f.EndDate
	} else {
		y, m, d := now.Date()
		end = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
	}
	return start, end
}

// EffectiveLimit resolves the page size, defaulting to DefaultAuditPageSize.
func (f AuditFilter) EffectiveLimit() int {
	if f.Limit != nil && *f.Limit > 0 {
		return *f.Limit
	}
	return DefaultAuditPageSize
}

// EffectivePage resolves the 1-based page number.
func (f AuditFilter) EffectivePage() int {
	if f.Page != nil && *f.Page >= 1 {
		return *f.Page
	}
	return DefaultAuditPage
}

var userPlaceholderPattern = regexp.MustCompile(`\[user:(\d+)\]`)

// AdminResetDescription builds the raw audit description for a reset
// performed by an administrator. User references are stored as placeholders
// and substituted at read time so renames reflect in historical entries.
func AdminResetDescription(performerID, targetID int64) string {
	return fmt.Sprintf("[user:%d] reset the password for [user:%d]", performerID, targetID)
}

// SelfResetDescription builds the raw audit description for a self-service or
// system initiated reset. Only the raw email is recorded because the
// requester's identity is not resolved on this path.
func SelfResetDescription(email string) string {
	return fmt.Sprintf("password reset requested for %s", email)
}

// PasswordChangedDescription builds the raw audit description for a completed
// password change.
func PasswordChangedDescription(userID int64) string {
	return fmt.Sprintf("[user:%d] changed their password", userID)
}

// FormatDescription substitutes [user:<id>] placeholders in a raw description
// with current display names supplied by resolve. Unresolvable ids keep a
// generic label so the output never leaks raw placeholder syntax.
func FormatDescription(raw string, resolve func(int64) (string, bool)) string {
	if resolve == nil {
		resolve = func(int64) (string, bool) { return "", false }
	}

	return userPlaceholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		groups := userPlaceholderPattern.FindStringSubmatch(match)
		if len(groups) != 2 {
			return match
		}
		id, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			return match
		}
		if name, ok := resolve(id); ok && name != "" {
			return name
		}
		return fmt.Sprintf("user #%d", id)
	})
}

// ReferencedUserIDs extracts the distinct user ids referenced by description
// placeholders, preserving first-seen order.
func ReferencedUserIDs(raw string) []int64 {
	matches := userPlaceholderPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(matches))
	ids := make([]int64, 0, len(matches))
	for _, groups := range matches {
		if len(groups) != 2 {
			continue
		}
		id, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
