package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

type auditFixture struct {
	service *AuditService
	audits  *mockAuditRepo
	users   *mockUserRepo
	events  *mockEventPublisher
	now     time.Time
}

func newAuditFixture(t *testing.T, users ...*domain.User) *auditFixture {
	t.Helper()

	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	audits := &mockAuditRepo{createdAt: now}
	userRepo := newMockUserRepo(users...)
	events := &mockEventPublisher{}

	svc := NewAuditService(
		audits, userRepo, events,
		telemetry.NewProvider("test_"+sanitize(t.Name())),
		zaptest.NewLogger(t),
		time.UTC,
	).WithClock(func() time.Time { return now })

	return &auditFixture{service: svc, audits: audits, users: userRepo, events: events, now: now}
}

func strPtr(s string) *string { return &s }

func TestAuditListRejectsInvalidSortColumn(t *testing.T) {
	fx := newAuditFixture(t)

	filter := domain.AuditFilter{SortColumn: strPtr("password_hash")}
	_, _, err := fx.service.List(context.Background(), filter)

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["sort_column"]; !ok {
		t.Fatalf("expected sort_column in fields, got %+v", validationErr.Fields)
	}
}

func TestAuditListRejectsInvalidSortOrder(t *testing.T) {
	fx := newAuditFixture(t)

	filter := domain.AuditFilter{SortOrder: strPtr("sideways")}
	_, _, err := fx.service.List(context.Background(), filter)

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["sort_order"]; !ok {
		t.Fatalf("expected sort_order in fields, got %+v", validationErr.Fields)
	}
}

func TestAuditListResolvesPlaceholdersWithCurrentNames(t *testing.T) {
	fx := newAuditFixture(t,
		testUser(7, "Jane Renamed", "jane@example.com"),
		testUser(42, "John Staff", "john@example.com"),
	)

	performer := int64(7)
	fx.audits.listEntries = []domain.AuditEntry{
		{
			ID:              1,
			CreatedAt:       fx.now,
			PerformedByID:   &performer,
			PerformedByName: strPtr("Jane Old Name"),
			Action:          domain.AuditActionResetPassword,
			Description:     "[user:7] reset the password for [user:42]",
		},
		{
			ID:          2,
			CreatedAt:   fx.now,
			Action:      domain.AuditActionResetPassword,
			Description: "[user:7] reset the password for [user:999]",
		},
	}
	fx.audits.listTotal = 2

	items, meta, err := fx.service.List(context.Background(), domain.AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if items[0].FormattedDescription != "Jane Renamed reset the password for John Staff" {
		t.Fatalf("unexpected description %q", items[0].FormattedDescription)
	}
	// The stored raw text is untouched.
	if items[0].Description != "[user:7] reset the password for [user:42]" {
		t.Fatalf("unexpected raw description %q", items[0].Description)
	}
	if items[0].FormattedCreatedAt != "15 Mar 2026 10:00:00" {
		t.Fatalf("unexpected formatted timestamp %q", items[0].FormattedCreatedAt)
	}
	// Deleted users keep a stable generic label.
	if items[1].FormattedDescription != "Jane Renamed reset the password for user #999" {
		t.Fatalf("unexpected description %q", items[1].FormattedDescription)
	}

	if meta.CurrentPage != 1 || meta.PerPage != 10 || meta.Total != 2 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestAuditListHonorsExplicitPagination(t *testing.T) {
	fx := newAuditFixture(t)
	fx.audits.listTotal = 77

	limit := 25
	page := 3
	_, meta, err := fx.service.List(context.Background(), domain.AuditFilter{Limit: &limit, Page: &page})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.CurrentPage != 3 || meta.PerPage != 25 || meta.Total != 77 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestAuditRecordPublishesEvent(t *testing.T) {
	fx := newAuditFixture(t)

	performer := int64(7)
	entry := &domain.AuditEntry{
		PerformedByID: &performer,
		Action:        domain.AuditActionLogin,
		Description:   "[user:7] logged in",
	}

	if err := fx.service.Record(context.Background(), entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	if entry.ID == 0 {
		t.Fatal("expected generated id on entry")
	}
	if len(fx.events.recorded) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(fx.events.recorded))
	}
	if fx.events.recorded[0].EntryID != entry.ID {
		t.Fatalf("event entry id mismatch: %d vs %d", fx.events.recorded[0].EntryID, entry.ID)
	}
	if fx.events.recorded[0].EventID == "" {
		t.Fatal("expected event id on recorded event")
	}
}

func TestAuditRecordRejectsEmptyAction(t *testing.T) {
	fx := newAuditFixture(t)

	err := fx.service.Record(context.Background(), &domain.AuditEntry{Description: "something"})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuditExportBuildsWorkbook(t *testing.T) {
	fx := newAuditFixture(t, testUser(7, "Jane Admin", "jane@example.com"))

	performer := int64(7)
	fx.audits.listEntries = []domain.AuditEntry{
		{
			ID:              1,
			CreatedAt:       time.Date(2026, time.March, 14, 9, 30, 15, 0, time.UTC),
			PerformedByID:   &performer,
			PerformedByName: strPtr("Jane Admin"),
			Action:          domain.AuditActionLogin,
			Description:     "[user:7] logged in",
		},
		{
			ID:          2,
			CreatedAt:   time.Date(2026, time.March, 14, 11, 0, 0, 0, time.UTC),
			Action:      domain.AuditActionLogout,
			Description: "session expired",
		},
	}

	result, err := fx.service.Export(context.Background(), domain.AuditFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if result.FileName != "auditTrails_15_March_2026.xlsx" {
		t.Fatalf("unexpected filename %q", result.FileName)
	}
	if !strings.Contains(result.ContentType, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", result.ContentType)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(result.Content))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows("Audit Trails")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date/Time" || rows[0][1] != "User Name" || rows[0][2] != "Action" || rows[0][3] != "Description" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "14 Mar 2026 09:30:15" {
		t.Fatalf("unexpected timestamp %q", rows[1][0])
	}
	if rows[1][1] != "Jane Admin" || rows[1][3] != "Jane Admin logged in" {
		t.Fatalf("unexpected data row %v", rows[1])
	}
	// Entries without a performer are attributed to the system.
	if rows[2][1] != "System" {
		t.Fatalf("unexpected performer %q", rows[2][1])
	}
}

func TestAuditExportValidatesFilter(t *testing.T) {
	fx := newAuditFixture(t)

	_, err := fx.service.Export(context.Background(), domain.AuditFilter{SortColumn: strPtr("drop table")})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuditFilterEndDateBeforeStartRejected(t *testing.T) {
	fx := newAuditFixture(t)

	start := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := fx.service.List(context.Background(), domain.AuditFilter{StartDate: &start, EndDate: &end})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["end_date"]; !ok {
		t.Fatalf("expected end_date in fields, got %+v", validationErr.Fields)
	}
}
