package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Directive is a schedule request detected inside a free-text question.
// Question holds the text with the schedule phrase removed.
type Directive struct {
	Question        string
	IntervalSeconds int
	Label           string
}

var (
	intervalRe = regexp.MustCompile(`(?i)(?:cada|repite|ejecuta|haz|every|run)\s+(\d+)\s+(segundos?|seconds?|minutos?|minutes?|horas?|hours?|d[ií]as?|days?)`)
	dailyRe    = regexp.MustCompile(`(?i)\b(diario|diariamente|todos los d[ií]as|cada d[ií]a|daily|every day)\b`)
	atTimeRe   = regexp.MustCompile(`(?i)(?:a las?|at)\s+(\d{1,2}):(\d{2})`)
)

var unitSeconds = map[string]int{
	"segundo": 1,
	"second":  1,
	"minuto":  60,
	"minute":  60,
	"hora":    3600,
	"hour":    3600,
	"día":     86400,
	"dia":     86400,
	"day":     86400,
}

// Parse detects a recurrence phrase in text. It returns nil when the text
// is a plain one-shot question. Patterns are tried in priority order:
// explicit interval, daily keyword, then a clock time (interpreted as the
// next occurrence of HH:MM, rolling over to tomorrow when already past).
func Parse(text string, now time.Time) *Directive {
	if m := intervalRe.FindStringSubmatchIndex(text); m != nil {
		amount, _ := strconv.Atoi(text[m[2]:m[3]])
		unit := singularUnit(text[m[4]:m[5]])
		secs, ok := unitSeconds[unit]
		if !ok || amount <= 0 {
			return nil
		}
		return &Directive{
			Question:        stripPhrase(text, m[0], m[1]),
			IntervalSeconds: amount * secs,
			Label:           text[m[0]:m[1]],
		}
	}

	if m := dailyRe.FindStringIndex(text); m != nil {
		return &Directive{
			Question:        stripPhrase(text, m[0], m[1]),
			IntervalSeconds: 86400,
			Label:           text[m[0]:m[1]],
		}
	}

	if m := atTimeRe.FindStringSubmatchIndex(text); m != nil {
		hour, _ := strconv.Atoi(text[m[2]:m[3]])
		minute, _ := strconv.Atoi(text[m[4]:m[5]])
		if hour > 23 || minute > 59 {
			return nil
		}
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !target.After(now) {
			target = target.Add(24 * time.Hour)
		}
		return &Directive{
			Question:        stripPhrase(text, m[0], m[1]),
			IntervalSeconds: int(target.Sub(now).Seconds()),
			Label:           fmt.Sprintf("a las %02d:%02d", hour, minute),
		}
	}

	return nil
}

func singularUnit(u string) string {
	u = strings.ToLower(u)
	u = strings.TrimSuffix(u, "s")
	return u
}

func stripPhrase(text string, start, end int) string {
	remaining := text[:start] + text[end:]
	remaining = strings.Trim(remaining, " ,;:.")
	return strings.Join(strings.Fields(remaining), " ")
}
