package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can own groups, join them, and take part in
// club-book rooms. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Group is a reading group. OwnerID always holds a membership with
// RoleOwner; that invariant is maintained by the engine, not by storage.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Membership links a user to a group. Unique on (GroupID, UserID): a user
// holds exactly one role per group.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinRequest is a user's request to join a group. Unique on
// (GroupID, UserID, Status): at most one pending request per user per group,
// while terminal rows (approved/denied) remain as history.
type JoinRequest struct {
	ID        uuid.UUID     `json:"id"`
	GroupID   uuid.UUID     `json:"group_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// GroupInvite is a shareable, multi-use invite to a group. It is live while
// RevokedAt is nil; revocation is the only way it stops working, and the
// row is never deleted.
type GroupInvite struct {
	ID              uuid.UUID  `json:"id"`
	GroupID         uuid.UUID  `json:"group_id"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// Live reports whether the invite can still be accepted.
func (i *GroupInvite) Live() bool {
	return i.RevokedAt == nil
}

// BookOfMonthSelection is one entry in a group's append-only
// book-of-the-month log. The current selection is the row with the latest
// SetAt, ties broken by the higher ID. Rows are never updated or deleted.
//
// ID is bigserial rather than UUID: insertion order doubles as the
// tie-breaker for reads, and the table only grows.
type BookOfMonthSelection struct {
	ID          int64     `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	BookID      string    `json:"book_id"`
	SetByUserID uuid.UUID `json:"set_by_user_id"`
	SetAt       time.Time `json:"set_at"`
}

// ClubBook is a club-wide reading pick with its own chat room and artifact
// shelf. At most one ClubBook is active at a time across the whole system;
// the engine enforces that with a serializable activation swap.
type ClubBook struct {
	ID              uuid.UUID  `json:"id"`
	BookID          string     `json:"book_id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ColorKey        string     `json:"color_key"`
	IsActive        bool       `json:"is_active"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"`
}

// ClubBookMessage is a chat message in a club-book room. Append-only.
type ClubBookMessage struct {
	ID         int64     `json:"id"`
	ClubBookID uuid.UUID `json:"club_book_id"`
	UserID     uuid.UUID `json:"user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClubBookArtifact is metadata for a file shared in a club-book room. The
// bytes live in external object storage; URL points at them. Append-only.
type ClubBookArtifact struct {
	ID               int64     `json:"id"`
	ClubBookID       uuid.UUID `json:"club_book_id"`
	UploadedByUserID uuid.UUID `json:"uploaded_by_user_id"`
	FileName         string    `json:"file_name"`
	MimeType         string    `json:"mime_type"`
	Size             int64     `json:"size"`
	URL              string    `json:"url"`
	CreatedAt        time.Time `json:"created_at"`
}
