package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/config"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

const sessionDateLayout = "2006-01-02"

// strictTransitions lists the legal status moves in strict mode.
var strictTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionRequested: {models.SessionScheduled, models.SessionCancelled},
	models.SessionScheduled: {models.SessionCompleted, models.SessionCancelled},
}

// normalizeName collapses whitespace and title-cases a person name.
func normalizeName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return cases.Title(language.Indonesian).String(collapsed)
}

// parseSessionDate accepts YYYY-MM-DD or an RFC3339 timestamp, keeping only
// the calendar date.
func parseSessionDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(sessionDateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// dateOnly returns midnight UTC of the calendar day t falls on in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ensureNotPast rejects dates before today in loc.
func ensureNotPast(date, now time.Time, loc *time.Location) error {
	if date.Before(dateOnly(now, loc)) {
		return appErrors.Clone(appErrors.ErrValidation, "session date cannot be in the past")
	}
	return nil
}

// checkTransition applies the configured status mode. Permissive mode accepts
// any known status.
func checkTransition(mode string, from, to models.SessionStatus) error {
	if !to.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", to))
	}
	if mode != config.StatusModeStrict || from == to {
		return nil
	}
	for _, allowed := range strictTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status cannot change from %s to %s", from, to))
}

// transferNote renders the audit line appended to session notes on transfer.
func transferNote(at time.Time, fromNIK, toNIK string) string {
	return fmt.Sprintf("[Transfer %s] Konselor %s -> %s", at.UTC().Format(time.RFC3339), fromNIK, toNIK)
}
