package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Store-level failures surfaced to services independent of the driver.
var (
	ErrScheduleConflict = errors.New("counselor already booked on that date")
	ErrDuplicate        = errors.New("duplicate record")
	ErrReferenced       = errors.New("record is referenced by other rows")
	ErrPastDate         = errors.New("session date in past")
	ErrSessionChanged   = errors.New("session changed concurrently")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqRaiseException      = "P0001"

	constraintCounselorDate = "uq_sessions_counselor_date"
)

// translate maps lib/pq errors onto the sentinel errors above, keeping the
// original error in the chain.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		if pqErr.Constraint == constraintCounselorDate {
			return fmt.Errorf("%w: %w", ErrScheduleConflict, err)
		}
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrReferenced, err)
	case pqRaiseException:
		if strings.HasPrefix(pqErr.Message, "session date in past") {
			return fmt.Errorf("%w: %w", ErrPastDate, err)
		}
	}
	return err
}
