package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/internal/service"
	mock_service "github.com/ginona/tucalerta/internal/service/mocks"
	"github.com/ginona/tucalerta/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

type deps struct {
	alerts     *mock_service.MockAlertRepository
	localities *mock_service.MockLocalityRepository
	devices    *mock_service.MockDeviceRepository
	cache      *mock_service.MockAlertCache
	throttle   *service.CreationThrottle
}

func newAlertService(t *testing.T, ctrl *gomock.Controller) (service.AlertService, deps) {
	t.Helper()

	d := deps{
		alerts:     mock_service.NewMockAlertRepository(ctrl),
		localities: mock_service.NewMockLocalityRepository(ctrl),
		devices:    mock_service.NewMockDeviceRepository(ctrl),
		cache:      mock_service.NewMockAlertCache(ctrl),
		throttle:   service.NewCreationThrottle(5, time.Minute),
	}

	guard := service.NewDeviceGuard(d.devices, 15*time.Minute)
	svc := service.NewAlertService(d.alerts, d.localities, guard, d.throttle, d.cache, 30*time.Second, newTestLogger())
	return svc, d
}

func yerbaBuena() *domain.Locality {
	return &domain.Locality{ID: "yerba-buena", Name: "Yerba Buena", Lat: -26.8167, Lng: -65.3167, Province: "tucuman"}
}

func createReq() domain.CreateAlertRequest {
	return domain.CreateAlertRequest{
		Type:        domain.AlertFlood,
		LocalityID:  "yerba-buena",
		Coordinates: [2]float64{-26.81, -65.31},
		Description: "Calle anegada frente a la plaza",
		Severity:    2,
	}
}

// --- Create ---

func TestAlertService_Create_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	deviceID := uuid.NewString()

	d.devices.EXPECT().Get(gomock.Any(), deviceID).Return(nil, nil).Times(1)
	d.localities.EXPECT().Get(gomock.Any(), "yerba-buena").Return(yerbaBuena(), nil).Times(1)

	var got *domain.Alert
	d.alerts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			got = a
			return nil
		}).
		Times(1)
	d.cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	alert, err := svc.Create(context.Background(), createReq(), deviceID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got == nil || alert == nil {
		t.Fatalf("alert not persisted")
	}
	if alert.ID == uuid.Nil {
		t.Fatalf("alert.ID is nil")
	}
	if alert.Confirmations != 0 || alert.Rejections != 0 || alert.ValidationScore != 0 {
		t.Fatalf("new alert must start at zero: %+v", alert)
	}
	if alert.IsVerified || alert.AutoHidden {
		t.Fatalf("new alert must start with both flags false")
	}
	if len(alert.DeviceFingerprints) != 0 {
		t.Fatalf("new alert must start with an empty voter set")
	}
	if alert.ReportedBy != deviceID {
		t.Fatalf("reportedBy: got %q want %q", alert.ReportedBy, deviceID)
	}
	if alert.Locality == nil || alert.Locality.ID != "yerba-buena" {
		t.Fatalf("locality not resolved on created alert")
	}
}

func TestAlertService_Create_DeviceCooldown(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	deviceID := uuid.NewString()
	lastReport := time.Now().UTC().Add(-time.Minute)
	d.devices.EXPECT().
		Get(gomock.Any(), deviceID).
		Return(&domain.DeviceValidation{DeviceID: deviceID, LastReportAt: &lastReport}, nil).
		Times(1)

	_, err := svc.Create(context.Background(), createReq(), deviceID)
	if !errors.Is(err, e.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAlertService_Create_CooldownElapsed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	deviceID := uuid.NewString()
	lastReport := time.Now().UTC().Add(-16 * time.Minute)
	d.devices.EXPECT().
		Get(gomock.Any(), deviceID).
		Return(&domain.DeviceValidation{DeviceID: deviceID, LastReportAt: &lastReport}, nil).
		Times(1)
	d.localities.EXPECT().Get(gomock.Any(), "yerba-buena").Return(yerbaBuena(), nil).Times(1)
	d.alerts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	d.cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	if _, err := svc.Create(context.Background(), createReq(), deviceID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_Create_InvalidLocality(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	deviceID := uuid.NewString()
	d.devices.EXPECT().Get(gomock.Any(), deviceID).Return(nil, nil).Times(1)
	d.localities.EXPECT().
		Get(gomock.Any(), "atlantis").
		Return(nil, e.Wrap("postgres.Locality.Get", e.ErrInvalidLocality)).
		Times(1)

	req := createReq()
	req.LocalityID = "atlantis"

	_, err := svc.Create(context.Background(), req, deviceID)
	if !errors.Is(err, e.ErrInvalidLocality) {
		t.Fatalf("expected ErrInvalidLocality, got %v", err)
	}
}

func TestAlertService_Create_GlobalThrottle(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	// fill the window so the next creation, from any device, is denied
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		d.throttle.Allow(now)
	}

	deviceID := uuid.NewString()
	d.devices.EXPECT().Get(gomock.Any(), deviceID).Return(nil, nil).Times(1)
	d.localities.EXPECT().Get(gomock.Any(), "yerba-buena").Return(yerbaBuena(), nil).Times(1)

	_, err := svc.Create(context.Background(), createReq(), deviceID)
	if !errors.Is(err, e.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from global throttle, got %v", err)
	}
}

// --- Vote ---

func storedAlert(reporter string) *domain.Alert {
	return &domain.Alert{
		ID:                 uuid.New(),
		Type:               domain.AlertPowerOutage,
		LocalityID:         "yerba-buena",
		Severity:           1,
		Confirmations:      2,
		Rejections:         0,
		ValidationScore:    2,
		DeviceFingerprints: []string{"earlier-voter-1", "earlier-voter-2"},
		ReportedBy:         reporter,
		CreatedAt:          time.Now().UTC().Add(-time.Hour),
	}
}

func TestAlertService_Vote_ConfirmVerifies(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	alert := storedAlert("reporter-device")
	voter := uuid.NewString()

	d.alerts.EXPECT().Get(gomock.Any(), alert.ID).Return(alert, nil).Times(1)

	var savedVote *domain.Vote
	d.alerts.EXPECT().
		SaveVote(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert, v *domain.Vote) error {
			savedVote = v
			return nil
		}).
		Times(1)
	d.cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	got, err := svc.Vote(context.Background(), alert.ID, voter, domain.VoteConfirm)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got.Confirmations != 3 || got.ValidationScore != 3 {
		t.Fatalf("expected third confirmation to reach score 3, got %+v", got)
	}
	if !got.IsVerified || got.AutoHidden {
		t.Fatalf("expected verified flag set, got verified=%v hidden=%v", got.IsVerified, got.AutoHidden)
	}
	if !got.HasVoted(voter) {
		t.Fatalf("voter missing from fingerprint set")
	}
	if savedVote == nil || savedVote.DeviceID != voter || savedVote.Type != domain.VoteConfirm {
		t.Fatalf("ledger entry wrong: %+v", savedVote)
	}
}

func TestAlertService_Vote_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	id := uuid.New()
	d.alerts.EXPECT().Get(gomock.Any(), id).Return(nil, e.Wrap("postgres.Alert.Get", e.ErrNotFound)).Times(1)

	_, err := svc.Vote(context.Background(), id, uuid.NewString(), domain.VoteConfirm)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertService_Vote_AlreadyVoted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	alert := storedAlert("reporter-device")
	d.alerts.EXPECT().Get(gomock.Any(), alert.ID).Return(alert, nil).Times(1)

	_, err := svc.Vote(context.Background(), alert.ID, "earlier-voter-1", domain.VoteReject)
	if !errors.Is(err, e.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if alert.Confirmations != 2 || alert.Rejections != 0 {
		t.Fatalf("counters changed on refused vote: %+v", alert)
	}
}

func TestAlertService_Vote_SelfVote(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	alert := storedAlert("reporter-device")
	d.alerts.EXPECT().Get(gomock.Any(), alert.ID).Return(alert, nil).Times(1)

	_, err := svc.Vote(context.Background(), alert.ID, "reporter-device", domain.VoteConfirm)
	if !errors.Is(err, e.ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
}

func TestAlertService_Vote_RetriesOnConflict(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	voter := uuid.NewString()
	first := storedAlert("reporter-device")
	// second read reflects the concurrent vote that won the race
	second := storedAlert("reporter-device")
	second.ID = first.ID
	second.Confirmations = 3
	second.ValidationScore = 3
	second.IsVerified = true
	second.DeviceFingerprints = append(second.DeviceFingerprints, "concurrent-voter")

	gomock.InOrder(
		d.alerts.EXPECT().Get(gomock.Any(), first.ID).Return(first, nil),
		d.alerts.EXPECT().SaveVote(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(e.Wrap("postgres.Alert.SaveVote", e.ErrConflict)),
		d.alerts.EXPECT().Get(gomock.Any(), first.ID).Return(second, nil),
		d.alerts.EXPECT().SaveVote(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)
	d.cache.EXPECT().Invalidate(gomock.Any()).Return(nil).Times(1)

	got, err := svc.Vote(context.Background(), first.ID, voter, domain.VoteConfirm)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Confirmations != 4 {
		t.Fatalf("expected vote applied on top of concurrent state, got %+v", got)
	}
}

// --- List ---

func TestAlertService_List_CacheHit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	cached := []*domain.Alert{storedAlert("x")}
	d.cache.EXPECT().GetVisible(gomock.Any()).Return(cached, true, nil).Times(1)

	got, err := svc.List(context.Background(), domain.AlertFilters{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected cached listing, got %d alerts", len(got))
	}
}

func TestAlertService_List_CacheMissFillsCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	fresh := []*domain.Alert{storedAlert("x"), storedAlert("y")}
	d.cache.EXPECT().GetVisible(gomock.Any()).Return(nil, false, nil).Times(1)
	d.alerts.EXPECT().List(gomock.Any(), domain.AlertFilters{}).Return(fresh, nil).Times(1)
	d.cache.EXPECT().SetVisible(gomock.Any(), fresh, 30*time.Second).Return(nil).Times(1)

	got, err := svc.List(context.Background(), domain.AlertFilters{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
}

func TestAlertService_List_FilteredSkipsCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	f := domain.AlertFilters{Type: domain.AlertFlood, IncludeHidden: true}
	d.alerts.EXPECT().List(gomock.Any(), f).Return([]*domain.Alert{}, nil).Times(1)

	if _, err := svc.List(context.Background(), f); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_CanDeviceReport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, d := newAlertService(t, ctrl)

	deviceID := uuid.NewString()
	d.devices.EXPECT().Get(gomock.Any(), deviceID).Return(nil, nil).Times(1)

	ok, err := svc.CanDeviceReport(context.Background(), deviceID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ok {
		t.Fatalf("never-seen device should be allowed to report")
	}
}
