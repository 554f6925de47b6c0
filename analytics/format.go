package analytics

import (
	"fmt"
	"strconv"
)

const (
	wonPerEok = 100_000_000
	wonPerMan = 10_000
)

// FormatWon renders a won amount the way Korean listings quote it: 억 for
// hundred-millions, 만원 for ten-thousands. Amounts below one man-won round
// down to "0만원".
func FormatWon(won int64) string {
	if won < 0 {
		return "-" + FormatWon(-won)
	}
	if won >= wonPerEok {
		eok := won / wonPerEok
		man := (won % wonPerEok) / wonPerMan
		if man > 0 {
			return fmt.Sprintf("%d억 %s만원", eok, groupDigits(man))
		}
		return fmt.Sprintf("%d억원", eok)
	}
	return FormatManWon(won)
}

// FormatManWon renders a won amount in plain 만원 units.
func FormatManWon(won int64) string {
	if won < 0 {
		return "-" + FormatManWon(-won)
	}
	return groupDigits(won/wonPerMan) + "만원"
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
