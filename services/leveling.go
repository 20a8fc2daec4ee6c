package services

import "math"

// DefaultExperiencePerLevel is the flat experience cost of every level.
const DefaultExperiencePerLevel int64 = 1000

// LevelResult is the outcome of adding experience to a player.
type LevelResult struct {
	Experience   int64 `json:"experience"`
	Level        int   `json:"level"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained int   `json:"levels_gained"`
}

// ApplyExperience adds amount to experience and converts every full
// perLevel into one level. A single call may gain several levels.
func ApplyExperience(experience int64, level int, amount, perLevel int64) (LevelResult, error) {
	if amount < 0 {
		return LevelResult{}, invalidf("experience amount must be non-negative, got %d", amount)
	}
	if perLevel <= 0 {
		perLevel = DefaultExperiencePerLevel
	}
	if level < 1 {
		level = 1
	}
	if experience < 0 {
		experience = 0
	}
	if amount > math.MaxInt64-experience {
		return LevelResult{}, invalidf("experience amount %d overflows current experience %d", amount, experience)
	}

	total := experience + amount
	gained := total / perLevel
	if gained > int64(math.MaxInt32-level) {
		return LevelResult{}, invalidf("experience amount %d exceeds the level cap", amount)
	}
	return LevelResult{
		Experience:   total % perLevel,
		Level:        level + int(gained),
		LeveledUp:    gained > 0,
		LevelsGained: int(gained),
	}, nil
}

// ExperienceToNextLevel returns how much experience is still missing.
func ExperienceToNextLevel(experience, perLevel int64) int64 {
	if perLevel <= 0 {
		perLevel = DefaultExperiencePerLevel
	}
	return perLevel - experience
}
