package service

import (
	"math"

	pointsDto "anoa.com/campusforum/internal/modules/points/dto"
)

const (
	PointsPerLevel = 100
	MinLevel       = 1
	MaxLevel       = 10
)

// Weekly activity thresholds for the leaderboard label.
const (
	WeeklyOnFire   = 100
	WeeklyTrending = 50
	WeeklyActive   = 20
)

// LevelFor returns min(10, max(1, 1 + total/100)).
func LevelFor(total int) int {
	if total < 0 {
		total = 0
	}
	return min(MaxLevel, max(MinLevel, 1+total/PointsPerLevel))
}

func LevelStatusFor(total int) pointsDto.LevelStatus {
	level := LevelFor(total)
	status := pointsDto.LevelStatus{
		Level:        level,
		CurrentLevel: (level - 1) * PointsPerLevel,
		NextLevel:    level * PointsPerLevel,
	}

	if level == MaxLevel {
		status.MaxLevel = true
		status.NextLevel = status.CurrentLevel
		status.Progress = 100
		return status
	}

	into := float64(max(total, 0) - status.CurrentLevel)
	status.Progress = math.Round(into/PointsPerLevel*100*100) / 100
	return status
}

func WeeklyLabel(points int) string {
	switch {
	case points >= WeeklyOnFire:
		return "🔥 On Fire!"
	case points >= WeeklyTrending:
		return "⚡ Trending"
	case points >= WeeklyActive:
		return "📈 Active"
	}
	return ""
}
