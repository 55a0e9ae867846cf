package util

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierNeutral  Tier = "neutral"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
	TierNormal   Tier = "normal"
)

// ScoreTier 0 或缺失为 neutral；60 与 80 归入更高一档
func ScoreTier(score *int) Tier {
	if score == nil || *score == 0 {
		return TierNeutral
	}
	switch {
	case *score >= 80:
		return TierHigh
	case *score >= 60:
		return TierMedium
	default:
		return TierLow
	}
}

// StatusTier 面试状态对应的标签分级
func StatusTier(status string) Tier {
	switch status {
	case "completed":
		return TierHigh
	case "in_progress":
		return TierMedium
	case "paused":
		return TierLow
	default:
		return TierNeutral
	}
}

func DifficultyTier(difficulty string) Tier {
	switch difficulty {
	case "easy":
		return TierHigh
	case "medium":
		return TierMedium
	case "hard":
		return TierLow
	default:
		return TierNeutral
	}
}

// TimeTier 剩余 10 秒以内为 critical，30 秒以内为 warning
func TimeTier(seconds int) Tier {
	switch {
	case seconds <= 10:
		return TierCritical
	case seconds <= 30:
		return TierWarning
	default:
		return TierNormal
	}
}

// FormatCountdown 把秒数格式化为 m:ss
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTimeFormat)
}

// ParseISO 解析 RFC 3339 时间，失败时返回零值和 false
func ParseISO(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDisplayTime 看板展示用，例如 "Jan 2, 2006, 3:04 PM"
func FormatDisplayTime(s string) string {
	t, ok := ParseISO(s)
	if !ok {
		return ""
	}
	return t.Format("Jan 2, 2006, 3:04 PM")
}
