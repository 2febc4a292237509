//go:build integration

package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

var (
	testPool *pgxpool.Pool
	tc       testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := migrate(ctx, testPool); err != nil {
		fmt.Println("migrate:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}
	if err := SeedLocalities(ctx, testPool); err != nil {
		fmt.Println("SeedLocalities:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE votes, alerts, device_validations`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func newAlert(deviceID string) *domain.Alert {
	return &domain.Alert{
		Type:               domain.AlertFlood,
		LocalityID:         "yerba-buena",
		Lat:                -26.8167,
		Lng:                -65.3167,
		Description:        "Agua sobre la calzada en avenida principal",
		Severity:           2,
		DeviceFingerprints: []string{},
		ReportedBy:         deviceID,
	}
}

func TestAlertRepo_Create_SetsDefaultsAndStampsDevice(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())
	devices := NewDeviceRepo(testPool, testLogger())

	deviceID := uuid.NewString()
	alert := newAlert(deviceID)

	if err := repo.Create(context.Background(), alert); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if alert.ID == uuid.Nil {
		t.Fatalf("expected ID set")
	}
	if alert.CreatedAt.IsZero() || !alert.UpdatedAt.Equal(alert.CreatedAt) {
		t.Fatalf("expected timestamps set, created=%v updated=%v", alert.CreatedAt, alert.UpdatedAt)
	}

	got, err := repo.Get(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Confirmations != 0 || got.Rejections != 0 || got.ValidationScore != 0 {
		t.Fatalf("expected zeroed counters, got %+v", got)
	}
	if got.IsVerified || got.AutoHidden {
		t.Fatalf("expected flags false, got %+v", got)
	}
	if len(got.DeviceFingerprints) != 0 {
		t.Fatalf("expected empty fingerprint set, got %v", got.DeviceFingerprints)
	}
	if got.Locality == nil || got.Locality.Name != "Yerba Buena" {
		t.Fatalf("expected locality joined, got %+v", got.Locality)
	}

	rec, err := devices.Get(context.Background(), deviceID)
	if err != nil {
		t.Fatalf("devices.Get: %v", err)
	}
	if rec == nil || rec.LastReportAt == nil {
		t.Fatalf("expected last_report_at stamped in the create transaction, got %+v", rec)
	}
}

func TestAlertRepo_Get_NotFound(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())

	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertRepo_SaveVote_PersistsLedgerAndDeviceStamp(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())
	devices := NewDeviceRepo(testPool, testLogger())

	alert := newAlert(uuid.NewString())
	if err := repo.Create(context.Background(), alert); err != nil {
		t.Fatalf("Create: %v", err)
	}

	voter := uuid.NewString()
	if err := alert.ApplyVote(voter, domain.VoteConfirm); err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}
	vote := &domain.Vote{AlertID: alert.ID, DeviceID: voter, Type: domain.VoteConfirm}

	if err := repo.SaveVote(context.Background(), alert, vote); err != nil {
		t.Fatalf("SaveVote: %v", err)
	}

	got, err := repo.Get(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Confirmations != 1 || got.ValidationScore != 1 {
		t.Fatalf("vote not persisted: %+v", got)
	}
	if !got.HasVoted(voter) {
		t.Fatalf("fingerprint not persisted: %v", got.DeviceFingerprints)
	}

	var count int
	if err := testPool.QueryRow(context.Background(),
		`SELECT count(*) FROM votes WHERE alert_id = $1 AND device_id = $2`, alert.ID, voter,
	).Scan(&count); err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ledger row, got %d", count)
	}

	rec, err := devices.Get(context.Background(), voter)
	if err != nil {
		t.Fatalf("devices.Get: %v", err)
	}
	if rec == nil || rec.LastVoteAt == nil {
		t.Fatalf("expected last_vote_at stamped, got %+v", rec)
	}
}

func TestAlertRepo_SaveVote_StaleWriteConflicts(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())

	alert := newAlert(uuid.NewString())
	if err := repo.Create(context.Background(), alert); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// two voters read the same state
	first, err := repo.Get(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := repo.Get(context.Background(), alert.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	voterA := uuid.NewString()
	voterB := uuid.NewString()

	if err := first.ApplyVote(voterA, domain.VoteConfirm); err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}
	if err := repo.SaveVote(context.Background(), first, &domain.Vote{AlertID: alert.ID, DeviceID: voterA, Type: domain.VoteConfirm}); err != nil {
		t.Fatalf("SaveVote first: %v", err)
	}

	// the second write is based on counters that no longer match
	if err := second.ApplyVote(voterB, domain.VoteReject); err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}
	err = repo.SaveVote(context.Background(), second, &domain.Vote{AlertID: alert.ID, DeviceID: voterB, Type: domain.VoteReject})
	if !errors.Is(err, e.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale write, got %v", err)
	}
}

func TestAlertRepo_SaveVote_DuplicateDeviceConflicts(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())

	alert := newAlert(uuid.NewString())
	if err := repo.Create(context.Background(), alert); err != nil {
		t.Fatalf("Create: %v", err)
	}

	voter := uuid.NewString()
	if err := alert.ApplyVote(voter, domain.VoteConfirm); err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}
	if err := repo.SaveVote(context.Background(), alert, &domain.Vote{AlertID: alert.ID, DeviceID: voter, Type: domain.VoteConfirm}); err != nil {
		t.Fatalf("SaveVote: %v", err)
	}

	// a write for an already-recorded device never matches the CAS guard,
	// even if the caller somehow bypassed the in-memory dedup
	stale := *alert
	stale.Confirmations = 2
	stale.ValidationScore = 2
	err := repo.SaveVote(context.Background(), &stale, &domain.Vote{AlertID: alert.ID, DeviceID: voter, Type: domain.VoteConfirm})
	if !errors.Is(err, e.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate device, got %v", err)
	}
}

func TestAlertRepo_List_OrderingFreshnessAndHidden(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())
	ctx := context.Background()
	base := time.Now().UTC()

	oldVerified := newAlert(uuid.NewString())
	oldVerified.Confirmations = 3
	oldVerified.ValidationScore = 3
	oldVerified.IsVerified = true
	oldVerified.CreatedAt = base.Add(-10 * time.Hour)

	newest := newAlert(uuid.NewString())
	newest.CreatedAt = base.Add(-1 * time.Hour)

	older := newAlert(uuid.NewString())
	older.CreatedAt = base.Add(-5 * time.Hour)

	hidden := newAlert(uuid.NewString())
	hidden.Rejections = 3
	hidden.ValidationScore = -3
	hidden.AutoHidden = true
	hidden.CreatedAt = base.Add(-2 * time.Hour)

	expired := newAlert(uuid.NewString())
	expired.CreatedAt = base.Add(-25 * time.Hour)

	for _, a := range []*domain.Alert{oldVerified, newest, older, hidden, expired} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.List(ctx, domain.AlertFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 visible fresh alerts, got %d", len(got))
	}
	// verified first despite being the oldest, then newest-first
	if got[0].ID != oldVerified.ID {
		t.Fatalf("expected verified alert first, got %v", got[0].ID)
	}
	if got[1].ID != newest.ID || got[2].ID != older.ID {
		t.Fatalf("expected newest-first within unverified, got %v then %v", got[1].ID, got[2].ID)
	}

	withHidden, err := repo.List(ctx, domain.AlertFilters{IncludeHidden: true})
	if err != nil {
		t.Fatalf("List includeHidden: %v", err)
	}
	if len(withHidden) != 4 {
		t.Fatalf("expected 4 alerts with hidden included, got %d", len(withHidden))
	}
}

func TestAlertRepo_List_Filters(t *testing.T) {
	truncateAll(t)

	repo := NewAlertRepo(testPool, testLogger())
	ctx := context.Background()

	flood := newAlert(uuid.NewString())

	outage := newAlert(uuid.NewString())
	outage.Type = domain.AlertPowerOutage
	outage.LocalityID = "san-miguel-de-tucuman"

	for _, a := range []*domain.Alert{flood, outage} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	floods, err := repo.List(ctx, domain.AlertFilters{Type: domain.AlertFlood})
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	if len(floods) != 1 || floods[0].ID != flood.ID {
		t.Fatalf("type filter failed: %+v", floods)
	}

	capital, err := repo.List(ctx, domain.AlertFilters{LocalityID: "san-miguel-de-tucuman"})
	if err != nil {
		t.Fatalf("List by locality: %v", err)
	}
	if len(capital) != 1 || capital[0].ID != outage.ID {
		t.Fatalf("locality filter failed: %+v", capital)
	}
}

func TestLocalityRepo_SeededRegistry(t *testing.T) {
	repo := NewLocalityRepo(testPool, testLogger())

	loc, err := repo.Get(context.Background(), "yerba-buena")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loc.Name != "Yerba Buena" || loc.Province != "tucuman" {
		t.Fatalf("unexpected locality: %+v", loc)
	}

	_, err = repo.Get(context.Background(), "atlantis")
	if !errors.Is(err, e.ErrInvalidLocality) {
		t.Fatalf("expected ErrInvalidLocality, got %v", err)
	}

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != len(tucumanLocalities) {
		t.Fatalf("expected %d seeded localities, got %d", len(tucumanLocalities), len(all))
	}
}

func TestDeviceRepo_Get_UnknownDevice(t *testing.T) {
	truncateAll(t)

	repo := NewDeviceRepo(testPool, testLogger())

	rec, err := repo.Get(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record for unknown device, got %+v", rec)
	}
}

func TestStatsRepo_GetStats(t *testing.T) {
	truncateAll(t)

	alerts := NewAlertRepo(testPool, testLogger())
	stats := NewStatsRepo(testPool, testLogger())
	ctx := context.Background()

	verified := newAlert(uuid.NewString())
	verified.Confirmations = 3
	verified.ValidationScore = 3
	verified.IsVerified = true

	hidden := newAlert(uuid.NewString())
	hidden.Type = domain.AlertPowerOutage
	hidden.Rejections = 3
	hidden.ValidationScore = -3
	hidden.AutoHidden = true

	plain := newAlert(uuid.NewString())

	for _, a := range []*domain.Alert{verified, hidden, plain} {
		if err := alerts.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := stats.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.Total != 3 {
		t.Fatalf("expected total=3, got %d", got.Total)
	}
	if got.Verified != 1 || got.Hidden != 1 {
		t.Fatalf("expected 1 verified and 1 hidden, got %+v", got)
	}
	if got.ByType["flood"] != 2 || got.ByType["power_outage"] != 1 {
		t.Fatalf("unexpected by_type: %v", got.ByType)
	}
	if got.ReportingDevices != 3 {
		t.Fatalf("expected 3 reporting devices, got %d", got.ReportingDevices)
	}
}
