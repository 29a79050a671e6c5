package booking

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"roombooking/config"

	"github.com/microcosm-cc/bluemonday"
)

const (
	minTitleLen       = 3
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxReasonLen      = 500
)

// descriptionPolicy allows basic formatting tags without attributes. Other
// markup is stripped; script and style lose their content as well.
var descriptionPolicy = newDescriptionPolicy()

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u", "ul", "ol", "li")
	return p
}

// Policy holds the time-based admission rules.
type Policy struct {
	MinNotice          time.Duration
	MinDuration        time.Duration
	MaxDuration        time.Duration
	ModificationCutoff time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MinNotice:          15 * time.Minute,
		MinDuration:        15 * time.Minute,
		MaxDuration:        8 * time.Hour,
		ModificationCutoff: 30 * time.Minute,
	}
}

// PolicyFromConfig reads the rules from config, keeping defaults for unset values.
func PolicyFromConfig(cfg config.Config) Policy {
	p := DefaultPolicy()
	if cfg.MinNotice > 0 {
		p.MinNotice = cfg.MinNotice
	}
	if cfg.MinDuration > 0 {
		p.MinDuration = cfg.MinDuration
	}
	if cfg.MaxDuration > 0 {
		p.MaxDuration = cfg.MaxDuration
	}
	if cfg.ModificationCutoff > 0 {
		p.ModificationCutoff = cfg.ModificationCutoff
	}
	return p
}

// ValidateInterval checks shape, duration and notice, in that order.
func (p Policy) ValidateInterval(start, end, now time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	if d := end.Sub(start); d < p.MinDuration || d > p.MaxDuration {
		return newError(CodeDurationOutOfRange, "duration must be between %s and %s", p.MinDuration, p.MaxDuration)
	}
	if start.Before(now.Add(p.MinNotice)) {
		return newError(CodeInsufficientNotice, "booking must start at least %s from now", p.MinNotice)
	}
	return nil
}

// ModifiableAt reports whether a booking starting at start can still be changed at now.
func (p Policy) ModifiableAt(start, now time.Time) bool {
	return now.Before(start.Add(-p.ModificationCutoff))
}

func validateAttendees(n int) error {
	if n < 1 {
		return ErrInvalidAttendees
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = sanitizeText(title)
	n := utf8.RuneCountInString(title)
	if n < minTitleLen || n > maxTitleLen {
		return "", newError(CodeInvalidInput, "title must be between %d and %d characters", minTitleLen, maxTitleLen)
	}
	return title, nil
}

func validateDescription(desc string) (string, error) {
	desc = sanitizeText(descriptionPolicy.Sanitize(desc))
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return "", newError(CodeInvalidInput, "description must be at most %d characters", maxDescriptionLen)
	}
	return desc, nil
}

// sanitizeReason cleans a cancellation reason and truncates it.
func sanitizeReason(reason string) string {
	reason = sanitizeText(reason)
	if utf8.RuneCountInString(reason) > maxReasonLen {
		reason = string([]rune(reason)[:maxReasonLen])
	}
	return reason
}

// sanitizeText drops NUL and other non-printable runes (keeping newlines and tabs) and trims.
func sanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
