package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header fields are extracted independently, each via a prioritized rule list
// applied top-to-bottom over the normalized lines. The first match wins and a
// missing header is nil, never an error.

var storeSuffixes = []string{"店", "ショップ", "マート", "スーパー"}

var storeKeywords = []string{
	"セブン-イレブン",
	"セブンイレブン",
	"ファミリーマート",
	"ローソン",
	"イオン",
	"西友",
	"ライフ",
	"ドン・キホーテ",
	"マツモトキヨシ",
}

var (
	reCurrencyGlyph = regexp.MustCompile(`[¥￥$]`)
	rePureNumeric   = regexp.MustCompile(`^[0-9,.\-:/\s]+$`)
)

func extractStoreName(lines []string) *string {
	for _, l := range lines {
		for _, suf := range storeSuffixes {
			if strings.HasSuffix(l, suf) {
				name := l
				return &name
			}
		}
	}
	for _, l := range lines {
		for _, kw := range storeKeywords {
			if strings.Contains(l, kw) {
				name := l
				return &name
			}
		}
	}
	for _, l := range lines {
		if rePureNumeric.MatchString(l) || reCurrencyGlyph.MatchString(l) {
			continue
		}
		name := l
		return &name
	}
	return nil
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`),         // YYYY-MM-DD
	regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`),         // MM-DD-YYYY
	regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日`),        // localized
}

func extractDate(lines []string) *string {
	for _, re := range datePatterns {
		for _, l := range lines {
			m := re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			var year, month, day int
			if len(m[1]) == 4 {
				year, _ = strconv.Atoi(m[1])
				month, _ = strconv.Atoi(m[2])
				day, _ = strconv.Atoi(m[3])
			} else {
				month, _ = strconv.Atoi(m[1])
				day, _ = strconv.Atoi(m[2])
				year, _ = strconv.Atoi(m[3])
			}
			if month < 1 || month > 12 || day < 1 || day > 31 {
				continue
			}
			d := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			return &d
		}
	}
	return nil
}

var reTime = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::\d{2})?`)

func extractTime(lines []string) *string {
	for _, l := range lines {
		m := reTime.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			continue
		}
		t := fmt.Sprintf("%02d:%02d", hour, minute)
		return &t
	}
	return nil
}
