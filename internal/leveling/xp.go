package leveling

import (
	"math"

	"github.com/example/wordtrack/pkg/models"
)

// XPForNextLevel returns the XP needed to go from level to level+1
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(100 * math.Pow(1.5, float64(level-1))))
}

// AwardXP adds amount to p and levels up as many times as the XP allows.
// It returns the number of levels gained. Non-positive amounts are ignored.
func AwardXP(p *models.LearnerProgress, amount int) int {
	if amount <= 0 {
		return 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.CurrentXP += amount
	p.TotalXPEarned += amount

	gained := 0
	for need := XPForNextLevel(p.Level); p.CurrentXP >= need; need = XPForNextLevel(p.Level) {
		p.CurrentXP -= need
		p.Level++
		gained++
	}
	return gained
}

// LevelInfo summarises progress towards the next level
type LevelInfo struct {
	Level     int     `json:"level"`
	CurrentXP int     `json:"current_xp"`
	XPForNext int     `json:"xp_for_next"`
	XPToNext  int     `json:"xp_to_next"`
	Percent   float64 `json:"percent"`
	TotalXP   int     `json:"total_xp"`
}

// LevelInfoOf derives the level summary of p
func LevelInfoOf(p models.LearnerProgress) LevelInfo {
	need := XPForNextLevel(p.Level)
	info := LevelInfo{
		Level:     p.Level,
		CurrentXP: p.CurrentXP,
		XPForNext: need,
		XPToNext:  need - p.CurrentXP,
		TotalXP:   p.TotalXPEarned,
	}
	if need > 0 {
		info.Percent = math.Min(100, float64(p.CurrentXP)/float64(need)*100)
	}
	return info
}
