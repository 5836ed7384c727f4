package storage

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
)

// In-memory repository implementations. They back the test suite and the
// dev-mode server when Firebase is not configured. State does not survive
// a restart.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return shared.ErrUsernameTaken
	}
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *MemoryUserRepository) Get(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *MemoryUserRepository) SetCode(_ context.Context, username, code string, createdAt time.Time) error {
	return r.mutate(username, func(u *models.User) {
		u.Code = code
		t := createdAt
		u.CodeCreatedAt = &t
	})
}

func (r *MemoryUserRepository) ClearCode(_ context.Context, username string) error {
	return r.mutate(username, func(u *models.User) {
		u.Code = ""
		u.CodeCreatedAt = nil
	})
}

func (r *MemoryUserRepository) IncrementTries(_ context.Context, username string) error {
	return r.mutate(username, func(u *models.User) {
		u.Tries++
	})
}

func (r *MemoryUserRepository) RecordWin(_ context.Context, username, levelID string) error {
	return r.mutate(username, func(u *models.User) {
		u.Won++
		for _, id := range u.WonLevel {
			if id == levelID {
				return
			}
		}
		u.WonLevel = append(u.WonLevel, levelID)
	})
}

func (r *MemoryUserRepository) SetPresence(_ context.Context, username string, online bool, lastSeen time.Time) error {
	return r.mutate(username, func(u *models.User) {
		u.Online = online
		t := lastSeen
		u.LastSeen = &t
	})
}

func (r *MemoryUserRepository) SweepOffline(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for _, user := range r.users {
		if !user.Online {
			continue
		}
		if user.LastSeen != nil && user.LastSeen.After(cutoff) {
			continue
		}
		user.Online = false
		swept++
	}
	return swept, nil
}

func (r *MemoryUserRepository) mutate(username string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return shared.ErrNotFound
	}
	fn(user)
	return nil
}

type MemoryLevelRepository struct {
	mu       sync.Mutex
	levels   map[string]map[string]*models.Level
	counters map[string]int64
}

func NewMemoryLevelRepository() *MemoryLevelRepository {
	return &MemoryLevelRepository{
		levels:   make(map[string]map[string]*models.Level),
		counters: make(map[string]int64),
	}
}

func (r *MemoryLevelRepository) GetOpen(_ context.Context, tier string) (*models.Level, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, level := range r.levels[tier] {
		if level.Solver == nil {
			return cloneLevel(level), nil
		}
	}
	return nil, nil
}

func (r *MemoryLevelRepository) CreateNext(_ context.Context, tier string, solution []string, delay *time.Time) (*models.Level, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[tier]++
	level := &models.Level{
		ID:           strconv.FormatInt(r.counters[tier], 10),
		Tier:         tier,
		Solution:     solution,
		Participants: map[string]int64{},
		Delay:        delay,
	}

	if r.levels[tier] == nil {
		r.levels[tier] = make(map[string]*models.Level)
	}
	r.levels[tier][level.ID] = level
	return cloneLevel(level), nil
}

func (r *MemoryLevelRepository) ListByTier(_ context.Context, tier string) ([]models.Level, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	levels := make([]models.Level, 0, len(r.levels[tier]))
	for _, level := range r.levels[tier] {
		levels = append(levels, *cloneLevel(level))
	}
	sort.Slice(levels, func(i, j int) bool {
		a, _ := strconv.Atoi(levels[i].ID)
		b, _ := strconv.Atoi(levels[j].ID)
		return a < b
	})
	return levels, nil
}

func (r *MemoryLevelRepository) RecordGuess(_ context.Context, tier, id, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	level, ok := r.levels[tier][id]
	if !ok {
		return shared.ErrNotFound
	}
	level.Tries++
	level.Participants[username]++
	return nil
}

func (r *MemoryLevelRepository) ClaimSolve(_ context.Context, tier, id, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	level, ok := r.levels[tier][id]
	if !ok {
		return shared.ErrNotFound
	}
	if level.Solver != nil {
		return shared.ErrAlreadySolved
	}
	solver := username
	level.Solver = &solver
	return nil
}

func cloneLevel(level *models.Level) *models.Level {
	clone := *level
	clone.Solution = append([]string(nil), level.Solution...)
	clone.Participants = make(map[string]int64, len(level.Participants))
	for k, v := range level.Participants {
		clone.Participants[k] = v
	}
	return &clone
}
