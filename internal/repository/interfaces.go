package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/models"
)

// Store contracts for the entity store. Every method takes ctx so request
// deadlines and cancellation reach the database driver.
//
// Lookups return ErrNotFound rather than (nil, nil): the engine's error
// taxonomy needs "absent" to be a value it can wrap and surface, not a nil
// the caller has to remember to check.

// UserStore handles accounts.
type UserStore interface {
	Create(ctx context.Context, email, displayName, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupStore handles reading groups.
type GroupStore interface {
	Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error)
}

// MembershipStore enforces one role per (group, user) via the compound
// unique key; Create surfaces a duplicate as ErrConflict.
type MembershipStore interface {
	Create(ctx context.Context, groupID, userID uuid.UUID, role models.Role) (*models.Membership, error)
	Get(ctx context.Context, groupID, userID uuid.UUID) (*models.Membership, error)
	UpdateRole(ctx context.Context, groupID, userID uuid.UUID, role models.Role) error
	Delete(ctx context.Context, groupID, userID uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Membership, error)
	GroupIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// JoinRequestStore persists the join-request state machine. Transition is a
// conditional update (WHERE status = from); it returns ErrNotFound when no
// row matched, which the engine reads as "lost the race, state moved on".
type JoinRequestStore interface {
	Create(ctx context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error)
	FindPending(ctx context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error)
	Transition(ctx context.Context, id uuid.UUID, from, to models.RequestStatus) error
	DeletePending(ctx context.Context, groupID, userID uuid.UUID) error
	ListPending(ctx context.Context, groupID uuid.UUID) ([]models.JoinRequest, error)
}

// InviteStore handles group invites. Revoke only touches live rows; a
// second revocation matches nothing and leaves the first timestamp intact.
type InviteStore interface {
	Create(ctx context.Context, groupID, createdByUserID uuid.UUID) (*models.GroupInvite, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GroupInvite, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeAllLive(ctx context.Context, groupID uuid.UUID, at time.Time) error
	FindLiveByGroup(ctx context.Context, groupID uuid.UUID) (*models.GroupInvite, error)
}

// SelectionStore is the append-only book-of-the-month log. Current resolves
// by ordering (set_at desc, id desc), never by mutating earlier rows.
type SelectionStore interface {
	Insert(ctx context.Context, groupID uuid.UUID, bookID string, setByUserID uuid.UUID, setAt time.Time) (*models.BookOfMonthSelection, error)
	Current(ctx context.Context, groupID uuid.UUID) (*models.BookOfMonthSelection, error)
	History(ctx context.Context, groupID uuid.UUID, limit int) ([]models.BookOfMonthSelection, error)
}

// ClubBookStore handles club books and the activation flag. Activate and
// Deactivate are plain row updates; the exactly-one-active guarantee comes
// from the serializable transaction the engine wraps them in.
type ClubBookStore interface {
	Create(ctx context.Context, bookID, title, author, colorKey string, createdByUserID uuid.UUID) (*models.ClubBook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClubBook, error)
	List(ctx context.Context, limit int) ([]models.ClubBook, error)
	Active(ctx context.Context) (*models.ClubBook, error)
	DeactivateOthers(ctx context.Context, keepID uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ClubBookMessageStore is the append-only chat log of a club-book room.
type ClubBookMessageStore interface {
	Create(ctx context.Context, clubBookID, userID uuid.UUID, text string) (*models.ClubBookMessage, error)
	List(ctx context.Context, clubBookID uuid.UUID, after time.Time, limit int, descending bool) ([]models.ClubBookMessage, error)
}

// ClubBookArtifactStore is the append-only file-metadata shelf of a room.
type ClubBookArtifactStore interface {
	Create(ctx context.Context, clubBookID, uploadedByUserID uuid.UUID, fileName, mimeType string, size int64, url string) (*models.ClubBookArtifact, error)
	List(ctx context.Context, clubBookID uuid.UUID, limit int) ([]models.ClubBookArtifact, error)
}

// Stores bundles every contract bound to one database handle: either the
// shared pool or a single open transaction.
type Stores struct {
	Users        UserStore
	Groups       GroupStore
	Memberships  MembershipStore
	JoinRequests JoinRequestStore
	Invites      InviteStore
	Selections   SelectionStore
	ClubBooks    ClubBookStore
	Messages     ClubBookMessageStore
	Artifacts    ClubBookArtifactStore
}

// TxManager opens a transaction, hands the callback tx-bound stores, and
// commits on nil / rolls back on error. Every multi-row invariant the
// engine keeps (approve+membership, accept+membership, activation swap)
// runs through one of these, so partial state is never visible.
type TxManager interface {
	// ReadCommitted runs fn in a read-committed transaction.
	ReadCommitted(ctx context.Context, fn func(Stores) error) error

	// Serializable runs fn in a serializable transaction, retrying a
	// bounded number of times on serialization failure before giving up
	// with ErrConcurrency.
	Serializable(ctx context.Context, fn func(Stores) error) error
}
