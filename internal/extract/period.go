package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacobterminal/earnings-terminal/internal/model"
)

var (
	fyTokenRe = regexp.MustCompile(`\bfy\s*(\d{4})\b`)
	yearRe    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Period detects the fiscal quarter and year an item reports on. The
// fiscal year falls back to the publish year when the text names no year
// token; ok is false when no quarter phrase is present at all.
func Period(item model.NewsItem) (fiscalYear int, quarter model.Quarter, ok bool) {
	text := strings.ToLower(item.Title + " " + item.Summary)

	for _, q := range []model.Quarter{model.Q1, model.Q2, model.Q3, model.Q4} {
		if containsAny(text, QuarterPhrases(q)...) {
			quarter = q
			ok = true
			break
		}
	}
	if !ok {
		return 0, "", false
	}

	if m := fyTokenRe.FindStringSubmatch(text); m != nil {
		fiscalYear, _ = strconv.Atoi(m[1])
	} else if m := yearRe.FindString(text); m != "" {
		fiscalYear, _ = strconv.Atoi(m)
	} else {
		fiscalYear = item.PublishedAt.Year()
	}
	return fiscalYear, quarter, true
}
