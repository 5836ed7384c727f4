package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/crackit-game/crackit/internal/server/storage"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
	"github.com/crackit-game/crackit/pkg/utils"
	"github.com/samber/lo"
)

type LevelService struct {
	levelRepo storage.LevelRepository
	userRepo  storage.UserRepository
}

func NewLevelService(levelRepo storage.LevelRepository, userRepo storage.UserRepository) *LevelService {
	return &LevelService{
		levelRepo: levelRepo,
		userRepo:  userRepo,
	}
}

// GetCurrentLevel returns the tier's open level, minting a new one when
// every existing level is solved. Reading an existing open level mutates
// nothing; two calls with no solve in between see the same level id. The
// cooldown delay never expires a level here — it only marks the level as
// not-yet-guessable.
func (s *LevelService) GetCurrentLevel(ctx context.Context, tier int) (*models.Level, error) {
	pattern, ok := models.PatternForTier(tier)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tier %d", shared.ErrValidation, tier)
	}
	tierID := strconv.Itoa(tier)

	level, err := s.levelRepo.GetOpen(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if level != nil {
		return level, nil
	}

	solution, err := utils.GenerateSolution(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to generate solution: %w", err)
	}

	var delay *time.Time
	if cooldown := pattern.Cooldown(); cooldown > 0 {
		t := time.Now().UTC().Add(cooldown)
		delay = &t
	}

	return s.levelRepo.CreateNext(ctx, tierID, solution, delay)
}

// SubmitGuess compares the guess against the tier's open level. Every
// submission counts against the user's global try counter, including
// guesses rejected during the cooldown window. A correct guess claims the
// solve with a conditional write; losing that race is not an error — the
// guess simply reports unsolved.
func (s *LevelService) SubmitGuess(ctx context.Context, tier int, username string, guess []string) (bool, error) {
	if _, ok := models.PatternForTier(tier); !ok {
		return false, fmt.Errorf("%w: unknown tier %d", shared.ErrValidation, tier)
	}

	user, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return false, shared.ErrNotFound
	}

	if err := s.userRepo.IncrementTries(ctx, username); err != nil {
		return false, fmt.Errorf("failed to count try: %w", err)
	}

	level, err := s.GetCurrentLevel(ctx, tier)
	if err != nil {
		return false, err
	}

	if level.CoolingDown(time.Now().UTC()) {
		return false, shared.ErrLevelCoolingDown
	}

	tierID := strconv.Itoa(tier)
	if err := s.levelRepo.RecordGuess(ctx, tierID, level.ID, username); err != nil {
		return false, fmt.Errorf("failed to record guess: %w", err)
	}

	if !guessMatches(guess, level.Solution) {
		return false, nil
	}

	if err := s.levelRepo.ClaimSolve(ctx, tierID, level.ID, username); err != nil {
		if errors.Is(err, shared.ErrAlreadySolved) {
			// Someone else's correct guess landed first.
			return false, nil
		}
		return false, err
	}

	if err := s.userRepo.RecordWin(ctx, username, level.ID); err != nil {
		return true, fmt.Errorf("solve recorded but win counter failed: %w", err)
	}

	return true, nil
}

// GetAllLevels returns every level across all tiers, solved and open.
func (s *LevelService) GetAllLevels(ctx context.Context) ([]models.Level, error) {
	var perTier [][]models.Level
	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		levels, err := s.levelRepo.ListByTier(ctx, strconv.Itoa(tier))
		if err != nil {
			return nil, err
		}
		perTier = append(perTier, levels)
	}
	return lo.Flatten(perTier), nil
}

// GetLevelsByTier returns the full history for one tier.
func (s *LevelService) GetLevelsByTier(ctx context.Context, tier int) ([]models.Level, error) {
	if _, ok := models.PatternForTier(tier); !ok {
		return nil, fmt.Errorf("%w: unknown tier %d", shared.ErrValidation, tier)
	}
	return s.levelRepo.ListByTier(ctx, strconv.Itoa(tier))
}

// guessMatches requires equal length and pointwise equality. No partial
// credit, no case folding — normalization happens at the API boundary.
func guessMatches(guess, solution []string) bool {
	if len(guess) != len(solution) {
		return false
	}
	for i := range guess {
		if guess[i] != solution[i] {
			return false
		}
	}
	return true
}
