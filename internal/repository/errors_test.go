package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslatePQErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"schedule conflict", &pq.Error{Code: pqUniqueViolation, Constraint: constraintCounselorDate}, ErrScheduleConflict},
		{"duplicate", &pq.Error{Code: pqUniqueViolation, Constraint: "accounts_username_key"}, ErrDuplicate},
		{"referenced", &pq.Error{Code: pqForeignKeyViolation}, ErrReferenced},
		{"past date trigger", &pq.Error{Code: pqRaiseException, Message: "session date in past: 2020-01-01"}, ErrPastDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.err)
			assert.True(t, errors.Is(got, tc.want))
			var pqErr *pq.Error
			assert.True(t, errors.As(got, &pqErr))
		})
	}
}

func TestTranslatePassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, translate(plain))

	raised := &pq.Error{Code: pqRaiseException, Message: "something else"}
	assert.Equal(t, error(raised), translate(raised))
}
