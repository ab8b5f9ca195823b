package risk

import (
	"fmt"
	"math"
	"time"

	"qgate/internal/inventory"
	"qgate/internal/snapshot"
)

// PathHeuristic returns PathBase plus every matching bonus, clamped to 1,
// and the names of the bonuses that matched in configuration order.
func (c Config) PathHeuristic(p string) (float64, []string) {
	tokens := make(map[string]bool)
	for _, tok := range inventory.Tokens(p) {
		tokens[tok] = true
	}

	score := c.PathBase
	var matched []string
	for _, b := range c.PathBonuses {
		for _, tok := range b.Tokens {
			if tokens[tok] {
				score += b.Bonus
				matched = append(matched, b.Name)
				break
			}
		}
	}
	return clamp01(score), matched
}

// coverageGap is 1 - percent/100.
func coverageGap(percent float64) float64 {
	return clamp01(1 - percent/100)
}

// issueDensity weights issues by severity and normalizes by 10.
func issueDensity(c snapshot.IssueCounts) float64 {
	weighted := float64(c.Critical)*3 + float64(c.High)*2 + float64(c.Medium) + float64(c.Low)*0.5
	return clamp01(weighted / 10)
}

// recency ramps linearly from 1 for a file changed at now down to 0 at
// windowDays or older. Unknown modification times score 0.
func recency(modified, now time.Time, windowDays int) float64 {
	if modified.IsZero() {
		return 0
	}
	age := now.Sub(modified)
	if age < 0 {
		age = 0
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	return clamp01(1 - float64(age)/float64(window))
}

// sizePressure is size/ceiling clamped to 1.
func sizePressure(size, ceiling int64) float64 {
	if size <= 0 || ceiling <= 0 {
		return 0
	}
	return clamp01(float64(size) / float64(ceiling))
}

func ageDays(modified, now time.Time) int {
	if modified.IsZero() || now.Before(modified) {
		return 0
	}
	return int(now.Sub(modified).Hours() / 24)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func pathReasons(matched []string) []string {
	reasons := make([]string, 0, len(matched))
	for _, name := range matched {
		reasons = append(reasons, fmt.Sprintf("path matches %s pattern", name))
	}
	return reasons
}
