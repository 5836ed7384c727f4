package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/crackit-game/crackit/internal/server/storage"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
)

type UserService struct {
	userRepo storage.UserRepository
}

func NewUserService(userRepo storage.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

// Leaderboard returns every user ordered by wins desc, then fewest tries
// among equal winners, then username ascending as the total-order tie
// break.
func (s *UserService) Leaderboard(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Won != users[j].Won {
			return users[i].Won > users[j].Won
		}
		if users[i].Tries != users[j].Tries {
			return users[i].Tries < users[j].Tries
		}
		return users[i].Username < users[j].Username
	})

	return users, nil
}

// Heartbeat is the presence touch: online now, seen now.
func (s *UserService) Heartbeat(ctx context.Context, username string) error {
	return s.userRepo.SetPresence(ctx, username, true, time.Now().UTC())
}

// SweepOffline flips users offline whose last heartbeat is older than the
// threshold. Runs from the server's background ticker.
func (s *UserService) SweepOffline(ctx context.Context, offlineAfter time.Duration) (int, error) {
	return s.userRepo.SweepOffline(ctx, time.Now().UTC().Add(-offlineAfter))
}
