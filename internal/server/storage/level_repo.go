package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LevelRepository is the persistence boundary for level documents and
// their per-tier id counters. The two operations that can race —
// minting the next level id and claiming a solve — run inside Firestore
// transactions so there is never a duplicate id or a second solver.
type LevelRepository interface {
	GetOpen(ctx context.Context, tier string) (*models.Level, error)
	CreateNext(ctx context.Context, tier string, solution []string, delay *time.Time) (*models.Level, error)
	ListByTier(ctx context.Context, tier string) ([]models.Level, error)
	RecordGuess(ctx context.Context, tier, id, username string) error
	ClaimSolve(ctx context.Context, tier, id, username string) error
}

const (
	levelsCollection   = "levels"
	entriesCollection  = "entries"
	countersCollection = "levelCounters"
)

type FirestoreLevelRepository struct {
	client *firestore.Client
}

func NewFirestoreLevelRepository(client *firestore.Client) *FirestoreLevelRepository {
	return &FirestoreLevelRepository{client: client}
}

func (r *FirestoreLevelRepository) entries(tier string) *firestore.CollectionRef {
	return r.client.Collection(levelsCollection).Doc(tier).Collection(entriesCollection)
}

func (r *FirestoreLevelRepository) counter(tier string) *firestore.DocumentRef {
	return r.client.Collection(countersCollection).Doc(tier)
}

// GetOpen returns the tier's single level with solver == null, or
// (nil, nil) when every level is solved. The cooldown delay does not
// affect this query.
func (r *FirestoreLevelRepository) GetOpen(ctx context.Context, tier string) (*models.Level, error) {
	iter := r.entries(tier).
		Where("solver", "==", nil).
		Limit(1).
		Documents(ctx)

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open level for tier %s: %w", tier, err)
	}

	var level models.Level
	if err := snap.DataTo(&level); err != nil {
		return nil, fmt.Errorf("level %s/%s: %w: %v", tier, snap.Ref.ID, shared.ErrDecode, err)
	}
	return &level, nil
}

// CreateNext mints the next sequential level id for the tier and persists
// the new level, both inside one transaction. Two concurrent callers can
// never observe the same id: the counter read and write conflict and one
// transaction retries.
func (r *FirestoreLevelRepository) CreateNext(ctx context.Context, tier string, solution []string, delay *time.Time) (*models.Level, error) {
	counterRef := r.counter(tier)

	var created models.Level
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next := int64(1)
		snap, err := tx.Get(counterRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			value, err := snap.DataAt("value")
			if err != nil {
				return fmt.Errorf("counter %s: %w: %v", tier, shared.ErrDecode, err)
			}
			current, ok := value.(int64)
			if !ok {
				return fmt.Errorf("counter %s: %w: value is %T", tier, shared.ErrDecode, value)
			}
			next = current + 1
		}

		if err := tx.Set(counterRef, map[string]interface{}{"value": next}); err != nil {
			return err
		}

		created = models.Level{
			ID:           strconv.FormatInt(next, 10),
			Tier:         tier,
			Solution:     solution,
			Tries:        0,
			Participants: map[string]int64{},
			Solver:       nil,
			Delay:        delay,
		}
		return tx.Create(r.entries(tier).Doc(created.ID), created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create level for tier %s: %w", tier, err)
	}

	return &created, nil
}

func (r *FirestoreLevelRepository) ListByTier(ctx context.Context, tier string) ([]models.Level, error) {
	iter := r.entries(tier).Documents(ctx)

	var levels []models.Level
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate levels for tier %s: %w", tier, err)
		}

		var level models.Level
		if err := snap.DataTo(&level); err != nil {
			return nil, fmt.Errorf("level %s/%s: %w: %v", tier, snap.Ref.ID, shared.ErrDecode, err)
		}
		levels = append(levels, level)
	}

	return levels, nil
}

// RecordGuess bumps the level's aggregate try counter and the submitting
// user's per-level counter in the participants map.
func (r *FirestoreLevelRepository) RecordGuess(ctx context.Context, tier, id, username string) error {
	_, err := r.entries(tier).Doc(id).Update(ctx, []firestore.Update{
		{Path: "tries", Value: firestore.Increment(1)},
		{FieldPath: firestore.FieldPath{"participants", username}, Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return shared.ErrNotFound
		}
		return fmt.Errorf("failed to record guess on level %s/%s: %w", tier, id, err)
	}
	return nil
}

// ClaimSolve writes the solver exactly once: the transaction re-reads the
// level and refuses with shared.ErrAlreadySolved if another writer got
// there first. An unconditional overwrite here would silently erase the
// legitimate winner.
func (r *FirestoreLevelRepository) ClaimSolve(ctx context.Context, tier, id, username string) error {
	ref := r.entries(tier).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return shared.ErrNotFound
			}
			return err
		}

		var level models.Level
		if err := snap.DataTo(&level); err != nil {
			return fmt.Errorf("level %s/%s: %w: %v", tier, id, shared.ErrDecode, err)
		}
		if level.Solver != nil {
			return shared.ErrAlreadySolved
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "solver", Value: username},
		})
	})
	if err != nil {
		return err
	}
	return nil
}
