package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/domain"
	"github.com/ginona/tucalerta/pkg/e"
)

type AlertRepo struct {
	pool          *pgxpool.Pool
	logger        *slog.Logger
	expiryHorizon time.Duration
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger, expiryHorizon: 24 * time.Hour}
}

// WithExpiryHorizon overrides the default 24h listing freshness window.
func (r *AlertRepo) WithExpiryHorizon(d time.Duration) *AlertRepo {
	if d > 0 {
		r.expiryHorizon = d
	}
	return r
}

const alertColumns = `
	a.id, a.type, a.locality_id, a.lat, a.lng, a.description, a.severity,
	a.confirmations, a.rejections, a.validation_score, a.is_verified, a.auto_hidden,
	a.device_fingerprints, a.reported_by, a.image_url, a.created_at, a.updated_at,
	l.id, l.name, l.lat, l.lng, l.province`

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var (
		a        domain.Alert
		loc      domain.Locality
		imageURL *string
	)
	err := row.Scan(
		&a.ID, &a.Type, &a.LocalityID, &a.Lat, &a.Lng, &a.Description, &a.Severity,
		&a.Confirmations, &a.Rejections, &a.ValidationScore, &a.IsVerified, &a.AutoHidden,
		&a.DeviceFingerprints, &a.ReportedBy, &imageURL, &a.CreatedAt, &a.UpdatedAt,
		&loc.ID, &loc.Name, &loc.Lat, &loc.Lng, &loc.Province,
	)
	if err != nil {
		return nil, err
	}
	if imageURL != nil {
		a.ImageURL = *imageURL
	}
	a.Locality = &loc
	return &a, nil
}

func (r *AlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	const op = "postgres.Alert.Create"

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	now := time.Now().UTC()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = alert.CreatedAt
	if alert.DeviceFingerprints == nil {
		alert.DeviceFingerprints = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	const insertQuery = `
		INSERT INTO alerts (
			id, type, locality_id, lat, lng, description, severity,
			confirmations, rejections, validation_score, is_verified, auto_hidden,
			device_fingerprints, reported_by, image_url, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`

	var imageURL *string
	if alert.ImageURL != "" {
		imageURL = &alert.ImageURL
	}

	_, err = tx.Exec(ctx, insertQuery,
		alert.ID, alert.Type, alert.LocalityID, alert.Lat, alert.Lng,
		alert.Description, alert.Severity,
		alert.Confirmations, alert.Rejections, alert.ValidationScore,
		alert.IsVerified, alert.AutoHidden,
		alert.DeviceFingerprints, alert.ReportedBy, imageURL,
		alert.CreatedAt, alert.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	// stamping last_report_at in the same tx keeps the cooldown honest
	// across crashes
	const upsertDevice = `
		INSERT INTO device_validations (device_id, last_report_at)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET last_report_at = EXCLUDED.last_report_at
	`
	if _, err := tx.Exec(ctx, upsertDevice, alert.ReportedBy, now); err != nil {
		r.logger.Error("device upsert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.Get"

	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts a
		JOIN localities l ON l.id = a.locality_id
		WHERE a.id = $1
	`, alertColumns)

	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return alert, nil
}

func (r *AlertRepo) List(ctx context.Context, f domain.AlertFilters) ([]*domain.Alert, error) {
	const op = "postgres.Alert.List"

	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts a
		JOIN localities l ON l.id = a.locality_id
		WHERE a.created_at >= $1
	`, alertColumns)

	args := []any{time.Now().UTC().Add(-r.expiryHorizon)}

	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND a.type = $%d", len(args))
	}
	if f.LocalityID != "" {
		args = append(args, f.LocalityID)
		query += fmt.Sprintf(" AND a.locality_id = $%d", len(args))
	}
	if !f.IncludeHidden {
		query += " AND a.auto_hidden = false"
	}

	query += " ORDER BY a.is_verified DESC, a.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	alerts := make([]*domain.Alert, 0, 16)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return alerts, nil
}

func (r *AlertRepo) SaveVote(ctx context.Context, alert *domain.Alert, vote *domain.Vote) error {
	const op = "postgres.Alert.SaveVote"

	// pre-vote counters, used as the compare half of the CAS update
	prevConfirmations := alert.Confirmations
	prevRejections := alert.Rejections
	switch vote.Type {
	case domain.VoteConfirm:
		prevConfirmations--
	case domain.VoteReject:
		prevRejections--
	default:
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	now := time.Now().UTC()
	alert.UpdatedAt = now
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	if vote.VotedAt.IsZero() {
		vote.VotedAt = now
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	const updateQuery = `
		UPDATE alerts
		SET confirmations       = $2,
			rejections          = $3,
			validation_score    = $4,
			is_verified         = $5,
			auto_hidden         = $6,
			device_fingerprints = $7,
			updated_at          = $8
		WHERE id = $1
		  AND confirmations = $9
		  AND rejections = $10
		  AND NOT ($11 = ANY(device_fingerprints))
	`

	cmd, err := tx.Exec(ctx, updateQuery,
		alert.ID,
		alert.Confirmations, alert.Rejections, alert.ValidationScore,
		alert.IsVerified, alert.AutoHidden,
		alert.DeviceFingerprints, alert.UpdatedAt,
		prevConfirmations, prevRejections, vote.DeviceID,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", alert.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		// somebody else's vote landed between our read and this write
		return fmt.Errorf("%s: %w", op, e.ErrConflict)
	}

	const insertVote = `
		INSERT INTO votes (id, alert_id, device_id, vote_type, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertVote, vote.ID, vote.AlertID, vote.DeviceID, vote.Type, vote.VotedAt); err != nil {
		r.logger.Error("vote insert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	const upsertDevice = `
		INSERT INTO device_validations (device_id, last_vote_at)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET last_vote_at = EXCLUDED.last_vote_at
	`
	if _, err := tx.Exec(ctx, upsertDevice, vote.DeviceID, now); err != nil {
		r.logger.Error("device upsert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}
