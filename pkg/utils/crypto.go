package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/crackit-game/crackit/pkg/models"
)

// GenerateLoginCode generates a 6-digit code, uniform in [100000, 999999].
func GenerateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateSolution draws a fresh solution for the given pattern, one
// uniform character at a time. Solutions are not deduplicated across
// levels; a collision is harmless.
func GenerateSolution(pattern models.SolutionPattern) ([]string, error) {
	alphabet := pattern.Alphabet()
	length := pattern.Length()
	if length == 0 || alphabet == "" {
		return nil, fmt.Errorf("unknown solution pattern %q", pattern)
	}

	solution := make([]string, 0, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, err
		}
		solution = append(solution, string(alphabet[n.Int64()]))
	}
	return solution, nil
}
