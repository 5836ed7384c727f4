package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/crackit-game/crackit/internal/shared"
	"github.com/crackit-game/crackit/pkg/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UserRepository is the persistence boundary for user documents. Counter
// mutations (tries, won) go through atomic increments so concurrent
// guesses never lose an update.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetCode(ctx context.Context, username, code string, createdAt time.Time) error
	ClearCode(ctx context.Context, username string) error
	IncrementTries(ctx context.Context, username string) error
	RecordWin(ctx context.Context, username, levelID string) error
	SetPresence(ctx context.Context, username string, online bool, lastSeen time.Time) error
	SweepOffline(ctx context.Context, cutoff time.Time) (int, error)
}

const usersCollection = "users"

type FirestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) doc(username string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(username)
}

// Create fails with shared.ErrUsernameTaken when the username document
// already exists. Usernames are immutable once written.
func (r *FirestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.doc(user.Username).Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return shared.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when no such user exists.
func (r *FirestoreUserRepository) Get(ctx context.Context, username string) (*models.User, error) {
	snap, err := r.doc(username).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("user %s: %w: %v", username, shared.ErrDecode, err)
	}
	return &user, nil
}

func (r *FirestoreUserRepository) List(ctx context.Context) ([]models.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)

	var users []models.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}

		var user models.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("user %s: %w: %v", snap.Ref.ID, shared.ErrDecode, err)
		}
		users = append(users, user)
	}

	return users, nil
}

// SetCode overwrites any prior code; only the latest issued code is valid.
func (r *FirestoreUserRepository) SetCode(ctx context.Context, username, code string, createdAt time.Time) error {
	return r.update(ctx, username, []firestore.Update{
		{Path: "code", Value: code},
		{Path: "codeCreatedAt", Value: createdAt},
	})
}

func (r *FirestoreUserRepository) ClearCode(ctx context.Context, username string) error {
	return r.update(ctx, username, []firestore.Update{
		{Path: "code", Value: ""},
		{Path: "codeCreatedAt", Value: nil},
	})
}

func (r *FirestoreUserRepository) IncrementTries(ctx context.Context, username string) error {
	return r.update(ctx, username, []firestore.Update{
		{Path: "tries", Value: firestore.Increment(1)},
	})
}

func (r *FirestoreUserRepository) RecordWin(ctx context.Context, username, levelID string) error {
	return r.update(ctx, username, []firestore.Update{
		{Path: "won", Value: firestore.Increment(1)},
		{Path: "wonLevel", Value: firestore.ArrayUnion(levelID)},
	})
}

func (r *FirestoreUserRepository) SetPresence(ctx context.Context, username string, online bool, lastSeen time.Time) error {
	return r.update(ctx, username, []firestore.Update{
		{Path: "online", Value: online},
		{Path: "lastSeen", Value: lastSeen},
	})
}

// SweepOffline marks users offline whose lastSeen is older than cutoff.
// The lastSeen comparison happens client-side to keep the query on a
// single field.
func (r *FirestoreUserRepository) SweepOffline(ctx context.Context, cutoff time.Time) (int, error) {
	iter := r.client.Collection(usersCollection).
		Where("online", "==", true).
		Documents(ctx)

	swept := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return swept, fmt.Errorf("failed to iterate online users: %w", err)
		}

		var user models.User
		if err := snap.DataTo(&user); err != nil {
			return swept, fmt.Errorf("user %s: %w: %v", snap.Ref.ID, shared.ErrDecode, err)
		}
		if user.LastSeen != nil && user.LastSeen.After(cutoff) {
			continue
		}

		if _, err := snap.Ref.Update(ctx, []firestore.Update{
			{Path: "online", Value: false},
		}); err != nil {
			return swept, fmt.Errorf("failed to mark %s offline: %w", snap.Ref.ID, err)
		}
		swept++
	}

	return swept, nil
}

func (r *FirestoreUserRepository) update(ctx context.Context, username string, updates []firestore.Update) error {
	if _, err := r.doc(username).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return shared.ErrNotFound
		}
		return fmt.Errorf("failed to update user %s: %w", username, err)
	}
	return nil
}
