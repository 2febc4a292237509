package e

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrDeadline        = errors.New("deadline exceeded")
	ErrCanceled        = errors.New("context canceled")
	ErrUniqueViolation = errors.New("unique violation")

	// business-rule violations of the validation engine
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInvalidLocality = errors.New("locality not found")
	ErrAlreadyVoted    = errors.New("device already voted on this alert")
	ErrSelfVote        = errors.New("cannot vote on your own alert")

	ErrMissingDeviceID = errors.New("device id required")
	ErrInvalidDeviceID = errors.New("device id must be a valid UUID")
)

func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrDeadline)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrCanceled)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case "23503", "23514":
			return fmt.Errorf("%s: %w", op, ErrInvalidInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrInternal)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, ErrInternal)
}

// Code returns the stable machine-readable code the API exposes for err,
// or "" if err is not one of the business sentinels.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMIT"
	case errors.Is(err, ErrInvalidLocality):
		return "INVALID_LOCALITY"
	case errors.Is(err, ErrAlreadyVoted):
		return "ALREADY_VOTED"
	case errors.Is(err, ErrSelfVote):
		return "SELF_VOTE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrMissingDeviceID):
		return "MISSING_DEVICE_ID"
	case errors.Is(err, ErrInvalidDeviceID):
		return "INVALID_DEVICE_ID"
	case errors.Is(err, ErrInvalidInput):
		return "VALIDATION_ERROR"
	default:
		return ""
	}
}
