package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacobterminal/earnings-terminal/internal/model"
)

const number = `\$?(\d+(?:\.\d+)?)`

// epsPatterns are tried in priority order; the first match wins.
var epsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`eps of ` + number),
	regexp.MustCompile(`reported eps ` + number),
	regexp.MustCompile(`earnings per share of ` + number),
	regexp.MustCompile(number + ` per share`),
}

// revenuePatterns are tried in priority order; the first match wins.
// Group 2, when present, is a magnitude suffix.
var revenuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`revenue of ` + number + `\s*(billion|million|[bm])?\b`),
	regexp.MustCompile(`revenues? (?:hit|reached|came in at) ` + number + `\s*(billion|million|[bm])?\b`),
	regexp.MustCompile(`sales of ` + number + `\s*(billion|million|[bm])?\b`),
}

// Verdict keyword sets. Each matching pattern counts one vote for its
// set; the set with the strictly highest count wins, ties go Unknown.
var (
	beatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bbeats?\b`),
		regexp.MustCompile(`\btops?\b`),
		regexp.MustCompile(`\bexceed(?:s|ed)?\b`),
		regexp.MustCompile(`\bsurpass(?:es|ed)?\b`),
		regexp.MustCompile(`better[- ]than[- ]expected`),
		regexp.MustCompile(`above (?:estimates|expectations|consensus)`),
	}
	missPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bmiss(?:es|ed)?\b`),
		regexp.MustCompile(`falls? short`),
		regexp.MustCompile(`\bdisappoint(?:s|ing|ed)?\b`),
		regexp.MustCompile(`worse[- ]than[- ]expected`),
		regexp.MustCompile(`below (?:estimates|expectations|consensus)`),
	}
	inlinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`in[- ]line`),
		regexp.MustCompile(`\bmeets?\b`),
		regexp.MustCompile(`match(?:es|ed)? (?:estimates|expectations)`),
		regexp.MustCompile(`as expected`),
	}
)

// extractEPS returns the first EPS figure found, or nil.
func extractEPS(text string) *float64 {
	for _, re := range epsPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &v
			}
		}
	}
	return nil
}

// extractRevenue returns the first revenue figure found, normalized to
// USD, or nil. When no magnitude suffix is present the value is
// disambiguated by size: figures over 100 are taken as already-in-millions,
// smaller ones as billions. That heuristic misreads some mid-size
// companies; it stays because the source text offers nothing better.
func extractRevenue(text string) *float64 {
	for _, re := range revenuePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch {
		case m[2] == "billion" || m[2] == "b":
			v *= 1e9
		case m[2] == "million" || m[2] == "m":
			v *= 1e6
		case v > 100:
			v *= 1e6
		default:
			v *= 1e9
		}
		return &v
	}
	return nil
}

// classify runs the three verdict keyword sets over the text. It returns
// the winning verdict and how many patterns matched in the winning set.
func classify(text string) (model.Result, int) {
	beat := countMatches(text, beatPatterns)
	miss := countMatches(text, missPatterns)
	inline := countMatches(text, inlinePatterns)

	switch {
	case beat > miss && beat > inline:
		return model.ResultBeat, beat
	case miss > beat && miss > inline:
		return model.ResultMiss, miss
	case inline > beat && inline > miss:
		return model.ResultInline, inline
	}
	return model.ResultUnknown, 0
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// detectSession looks for report-timing phrases; absent any it returns TBA.
func detectSession(text string) model.Session {
	switch {
	case containsAny(text, "before the bell", "before market open", "premarket", "pre-market"):
		return model.SessionBMO
	case containsAny(text, "after the close", "after the bell", "after market close", "after hours", "after-hours"):
		return model.SessionAMC
	}
	return model.SessionTBA
}

// quarterWords maps ordinals to their written-out forms.
var quarterWords = map[int][]string{
	1: {"first quarter", "1st quarter"},
	2: {"second quarter", "2nd quarter"},
	3: {"third quarter", "3rd quarter"},
	4: {"fourth quarter", "4th quarter"},
}

// QuarterPhrases returns the literal and written-out phrases that denote
// the given quarter in article text, all lowercase.
func QuarterPhrases(q model.Quarter) []string {
	n := q.Ordinal()
	phrases := []string{
		strings.ToLower(string(q)), // "q3"
		strconv.Itoa(n) + "q",      // "3q"
	}
	return append(phrases, quarterWords[n]...)
}
