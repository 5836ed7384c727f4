package models

import "time"

// SolutionPattern names one of the fixed difficulty patterns. The set is
// closed; each pattern pins the solution length, its alphabet and the
// cooldown applied to freshly minted levels.
type SolutionPattern string

const (
	PatternNumbers8  SolutionPattern = "NUMBERS8"
	PatternAlnum10   SolutionPattern = "ALNUM10"
	PatternNumbers12 SolutionPattern = "NUMBERS12"
	PatternAlnum16   SolutionPattern = "ALNUM16"
)

const (
	digits       = "0123456789"
	alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Length returns the fixed solution length for the pattern.
func (p SolutionPattern) Length() int {
	switch p {
	case PatternNumbers8:
		return 8
	case PatternAlnum10:
		return 10
	case PatternNumbers12:
		return 12
	case PatternAlnum16:
		return 16
	default:
		return 0
	}
}

// Alphabet returns the character set solutions are drawn from.
func (p SolutionPattern) Alphabet() string {
	switch p {
	case PatternNumbers8, PatternNumbers12:
		return digits
	case PatternAlnum10, PatternAlnum16:
		return alphanumeric
	default:
		return ""
	}
}

// Cooldown returns how long a freshly minted level stays in its "not yet
// ready" window. Unknown patterns get no cooldown.
func (p SolutionPattern) Cooldown() time.Duration {
	switch p {
	case PatternAlnum10:
		return 5 * time.Minute
	case PatternNumbers8:
		return 10 * time.Minute
	case PatternAlnum16:
		return 15 * time.Minute
	case PatternNumbers12:
		return 20 * time.Minute
	default:
		return 0
	}
}

var tierPatterns = []SolutionPattern{
	PatternNumbers8,
	PatternAlnum10,
	PatternNumbers12,
	PatternAlnum16,
}

// MinTier and MaxTier bound the valid difficulty tiers.
const (
	MinTier = 1
	MaxTier = 4
)

// PatternForTier maps a difficulty tier (1-4) to its assigned pattern.
func PatternForTier(tier int) (SolutionPattern, bool) {
	if tier < MinTier || tier > MaxTier {
		return "", false
	}
	return tierPatterns[tier-1], true
}
