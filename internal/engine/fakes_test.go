package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/events"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// memStore keeps every table as a plain slice. memTx snapshots the slices
// before each callback and restores them if it returns an error, so engine
// tests get the same commit-or-nothing behavior the postgres transaction
// runner provides, without a database.
type memStore struct {
	users       []models.User
	groups      []models.Group
	memberships []models.Membership
	requests    []models.JoinRequest
	invites     []models.GroupInvite
	selections  []models.BookOfMonthSelection
	clubBooks   []models.ClubBook
	messages    []models.ClubBookMessage
	artifacts   []models.ClubBookArtifact

	seq int64
}

// tick produces strictly increasing timestamps so created_at ordering is
// deterministic across a test.
func (s *memStore) tick() time.Time {
	s.seq++
	return time.Unix(1700000000, 0).Add(time.Duration(s.seq) * time.Second)
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memStore) stores() repository.Stores {
	return repository.Stores{
		Users:        memUsers{s},
		Groups:       memGroups{s},
		Memberships:  memMemberships{s},
		JoinRequests: memJoinRequests{s},
		Invites:      memInvites{s},
		Selections:   memSelections{s},
		ClubBooks:    memClubBooks{s},
		Messages:     memMessages{s},
		Artifacts:    memArtifacts{s},
	}
}

func (s *memStore) clone() memStore {
	cp := *s
	cp.users = append([]models.User(nil), s.users...)
	cp.groups = append([]models.Group(nil), s.groups...)
	cp.memberships = append([]models.Membership(nil), s.memberships...)
	cp.requests = append([]models.JoinRequest(nil), s.requests...)
	cp.invites = append([]models.GroupInvite(nil), s.invites...)
	cp.selections = append([]models.BookOfMonthSelection(nil), s.selections...)
	cp.clubBooks = append([]models.ClubBook(nil), s.clubBooks...)
	cp.messages = append([]models.ClubBookMessage(nil), s.messages...)
	cp.artifacts = append([]models.ClubBookArtifact(nil), s.artifacts...)
	return cp
}

// memTx implements repository.TxManager over a memStore.
type memTx struct {
	store *memStore

	// serializableFailure, when set, is returned by Serializable before the
	// callback runs. It stands in for retry exhaustion under contention.
	serializableFailure error
}

func (t *memTx) ReadCommitted(_ context.Context, fn func(repository.Stores) error) error {
	return t.run(fn)
}

func (t *memTx) Serializable(_ context.Context, fn func(repository.Stores) error) error {
	if t.serializableFailure != nil {
		return t.serializableFailure
	}
	return t.run(fn)
}

func (t *memTx) run(fn func(repository.Stores) error) error {
	snap := t.store.clone()
	if err := fn(t.store.stores()); err != nil {
		*t.store = snap
		return err
	}
	return nil
}

// newTestEngine wires an Engine to fresh in-memory state.
func newTestEngine() (*Engine, *memStore, *memTx) {
	store := &memStore{}
	tx := &memTx{store: store}
	eng := New(tx, events.NopPublisher{}, zap.NewNop())
	return eng, store, tx
}

type memUsers struct{ s *memStore }

func (m memUsers) Create(_ context.Context, email, displayName, passwordHash string) (*models.User, error) {
	for i := range m.s.users {
		if m.s.users[i].Email == email {
			return nil, fmt.Errorf("user %s: %w", email, repository.ErrConflict)
		}
	}
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    m.s.tick(),
	}
	m.s.users = append(m.s.users, u)
	return &u, nil
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for i := range m.s.users {
		if m.s.users[i].ID == id {
			u := m.s.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range m.s.users {
		if m.s.users[i].Email == email {
			u := m.s.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
}

type memGroups struct{ s *memStore }

func (m memGroups) Create(_ context.Context, name, description string, ownerID uuid.UUID) (*models.Group, error) {
	g := models.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   m.s.tick(),
	}
	m.s.groups = append(m.s.groups, g)
	return &g, nil
}

func (m memGroups) GetByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	for i := range m.s.groups {
		if m.s.groups[i].ID == id {
			g := m.s.groups[i]
			return &g, nil
		}
	}
	return nil, fmt.Errorf("group %s: %w", id, repository.ErrNotFound)
}

func (m memGroups) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Group, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	groups := make([]models.Group, 0)
	for i := len(m.s.groups) - 1; i >= 0; i-- {
		if want[m.s.groups[i].ID] {
			groups = append(groups, m.s.groups[i])
		}
	}
	return groups, nil
}

type memMemberships struct{ s *memStore }

func (m memMemberships) Create(_ context.Context, groupID, userID uuid.UUID, role models.Role) (*models.Membership, error) {
	for i := range m.s.memberships {
		if m.s.memberships[i].GroupID == groupID && m.s.memberships[i].UserID == userID {
			return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrConflict)
		}
	}
	mem := models.Membership{
		ID:        uuid.New(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: m.s.tick(),
	}
	m.s.memberships = append(m.s.memberships, mem)
	return &mem, nil
}

func (m memMemberships) Get(_ context.Context, groupID, userID uuid.UUID) (*models.Membership, error) {
	for i := range m.s.memberships {
		if m.s.memberships[i].GroupID == groupID && m.s.memberships[i].UserID == userID {
			mem := m.s.memberships[i]
			return &mem, nil
		}
	}
	return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
}

func (m memMemberships) UpdateRole(_ context.Context, groupID, userID uuid.UUID, role models.Role) error {
	for i := range m.s.memberships {
		if m.s.memberships[i].GroupID == groupID && m.s.memberships[i].UserID == userID {
			m.s.memberships[i].Role = role
			return nil
		}
	}
	return fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
}

func (m memMemberships) Delete(_ context.Context, groupID, userID uuid.UUID) error {
	for i := range m.s.memberships {
		if m.s.memberships[i].GroupID == groupID && m.s.memberships[i].UserID == userID {
			m.s.memberships = append(m.s.memberships[:i], m.s.memberships[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("membership %s/%s: %w", groupID, userID, repository.ErrNotFound)
}

func (m memMemberships) ListByGroup(_ context.Context, groupID uuid.UUID) ([]models.Membership, error) {
	members := make([]models.Membership, 0)
	for i := range m.s.memberships {
		if m.s.memberships[i].GroupID == groupID {
			members = append(members, m.s.memberships[i])
		}
	}
	return members, nil
}

func (m memMemberships) GroupIDsForUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for i := range m.s.memberships {
		if m.s.memberships[i].UserID == userID {
			ids = append(ids, m.s.memberships[i].GroupID)
		}
	}
	return ids, nil
}

type memJoinRequests struct{ s *memStore }

func (m memJoinRequests) Create(_ context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error) {
	for i := range m.s.requests {
		r := m.s.requests[i]
		if r.GroupID == groupID && r.UserID == userID && r.Status == models.StatusPending {
			return nil, fmt.Errorf("pending request %s/%s: %w", groupID, userID, repository.ErrConflict)
		}
	}
	jr := models.JoinRequest{
		ID:        uuid.New(),
		GroupID:   groupID,
		UserID:    userID,
		Status:    models.StatusPending,
		CreatedAt: m.s.tick(),
	}
	m.s.requests = append(m.s.requests, jr)
	return &jr, nil
}

func (m memJoinRequests) GetByID(_ context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	for i := range m.s.requests {
		if m.s.requests[i].ID == id {
			jr := m.s.requests[i]
			return &jr, nil
		}
	}
	return nil, fmt.Errorf("join request %s: %w", id, repository.ErrNotFound)
}

func (m memJoinRequests) FindPending(_ context.Context, groupID, userID uuid.UUID) (*models.JoinRequest, error) {
	for i := range m.s.requests {
		r := m.s.requests[i]
		if r.GroupID == groupID && r.UserID == userID && r.Status == models.StatusPending {
			jr := r
			return &jr, nil
		}
	}
	return nil, fmt.Errorf("pending request %s/%s: %w", groupID, userID, repository.ErrNotFound)
}

func (m memJoinRequests) Transition(_ context.Context, id uuid.UUID, from, to models.RequestStatus) error {
	for i := range m.s.requests {
		if m.s.requests[i].ID != id || m.s.requests[i].Status != from {
			continue
		}
		// The (group, user, status) key admits one row per status: a
		// historical row already in `to` blocks the update.
		for j := range m.s.requests {
			if j != i && m.s.requests[j].GroupID == m.s.requests[i].GroupID &&
				m.s.requests[j].UserID == m.s.requests[i].UserID &&
				m.s.requests[j].Status == to {
				return fmt.Errorf("join request %s to %s: %w", id, to, repository.ErrConflict)
			}
		}
		m.s.requests[i].Status = to
		return nil
	}
	return fmt.Errorf("join request %s in status %s: %w", id, from, repository.ErrNotFound)
}

func (m memJoinRequests) DeletePending(_ context.Context, groupID, userID uuid.UUID) error {
	kept := m.s.requests[:0]
	for i := range m.s.requests {
		r := m.s.requests[i]
		if r.GroupID == groupID && r.UserID == userID && r.Status == models.StatusPending {
			continue
		}
		kept = append(kept, r)
	}
	m.s.requests = kept
	return nil
}

func (m memJoinRequests) ListPending(_ context.Context, groupID uuid.UUID) ([]models.JoinRequest, error) {
	requests := make([]models.JoinRequest, 0)
	for i := range m.s.requests {
		if m.s.requests[i].GroupID == groupID && m.s.requests[i].Status == models.StatusPending {
			requests = append(requests, m.s.requests[i])
		}
	}
	return requests, nil
}

type memInvites struct{ s *memStore }

func (m memInvites) Create(_ context.Context, groupID, createdByUserID uuid.UUID) (*models.GroupInvite, error) {
	inv := models.GroupInvite{
		ID:              uuid.New(),
		GroupID:         groupID,
		CreatedByUserID: createdByUserID,
		CreatedAt:       m.s.tick(),
	}
	m.s.invites = append(m.s.invites, inv)
	return &inv, nil
}

func (m memInvites) GetByID(_ context.Context, id uuid.UUID) (*models.GroupInvite, error) {
	for i := range m.s.invites {
		if m.s.invites[i].ID == id {
			inv := m.s.invites[i]
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("invite %s: %w", id, repository.ErrNotFound)
}

func (m memInvites) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	for i := range m.s.invites {
		if m.s.invites[i].ID == id && m.s.invites[i].RevokedAt == nil {
			t := at
			m.s.invites[i].RevokedAt = &t
		}
	}
	return nil
}

func (m memInvites) RevokeAllLive(_ context.Context, groupID uuid.UUID, at time.Time) error {
	for i := range m.s.invites {
		if m.s.invites[i].GroupID == groupID && m.s.invites[i].RevokedAt == nil {
			t := at
			m.s.invites[i].RevokedAt = &t
		}
	}
	return nil
}

func (m memInvites) FindLiveByGroup(_ context.Context, groupID uuid.UUID) (*models.GroupInvite, error) {
	for i := len(m.s.invites) - 1; i >= 0; i-- {
		if m.s.invites[i].GroupID == groupID && m.s.invites[i].RevokedAt == nil {
			inv := m.s.invites[i]
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("live invite for group %s: %w", groupID, repository.ErrNotFound)
}

type memSelections struct{ s *memStore }

func (m memSelections) Insert(_ context.Context, groupID uuid.UUID, bookID string, setByUserID uuid.UUID, setAt time.Time) (*models.BookOfMonthSelection, error) {
	sel := models.BookOfMonthSelection{
		ID:          m.s.nextID(),
		GroupID:     groupID,
		BookID:      bookID,
		SetByUserID: setByUserID,
		SetAt:       setAt,
	}
	m.s.selections = append(m.s.selections, sel)
	return &sel, nil
}

func (m memSelections) Current(ctx context.Context, groupID uuid.UUID) (*models.BookOfMonthSelection, error) {
	history, err := m.History(ctx, groupID, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("selection for group %s: %w", groupID, repository.ErrNotFound)
	}
	sel := history[0]
	return &sel, nil
}

func (m memSelections) History(_ context.Context, groupID uuid.UUID, limit int) ([]models.BookOfMonthSelection, error) {
	selections := make([]models.BookOfMonthSelection, 0)
	for i := range m.s.selections {
		if m.s.selections[i].GroupID == groupID {
			selections = append(selections, m.s.selections[i])
		}
	}
	sort.SliceStable(selections, func(i, j int) bool {
		if !selections[i].SetAt.Equal(selections[j].SetAt) {
			return selections[i].SetAt.After(selections[j].SetAt)
		}
		return selections[i].ID > selections[j].ID
	})
	if limit > 0 && len(selections) > limit {
		selections = selections[:limit]
	}
	return selections, nil
}

type memClubBooks struct{ s *memStore }

func (m memClubBooks) Create(_ context.Context, bookID, title, author, colorKey string, createdByUserID uuid.UUID) (*models.ClubBook, error) {
	cb := models.ClubBook{
		ID:              uuid.New(),
		BookID:          bookID,
		Title:           title,
		Author:          author,
		ColorKey:        colorKey,
		CreatedByUserID: createdByUserID,
		CreatedAt:       m.s.tick(),
	}
	m.s.clubBooks = append(m.s.clubBooks, cb)
	return &cb, nil
}

func (m memClubBooks) GetByID(_ context.Context, id uuid.UUID) (*models.ClubBook, error) {
	for i := range m.s.clubBooks {
		if m.s.clubBooks[i].ID == id {
			cb := m.s.clubBooks[i]
			return &cb, nil
		}
	}
	return nil, fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
}

func (m memClubBooks) List(_ context.Context, limit int) ([]models.ClubBook, error) {
	books := make([]models.ClubBook, 0)
	for i := len(m.s.clubBooks) - 1; i >= 0 && len(books) < limit; i-- {
		books = append(books, m.s.clubBooks[i])
	}
	return books, nil
}

func (m memClubBooks) Active(_ context.Context) (*models.ClubBook, error) {
	var found *models.ClubBook
	for i := range m.s.clubBooks {
		cb := m.s.clubBooks[i]
		if !cb.IsActive {
			continue
		}
		if found == nil || (cb.ActivatedAt != nil && found.ActivatedAt != nil && cb.ActivatedAt.After(*found.ActivatedAt)) {
			c := cb
			found = &c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("active club book: %w", repository.ErrNotFound)
	}
	return found, nil
}

func (m memClubBooks) DeactivateOthers(_ context.Context, keepID uuid.UUID) error {
	for i := range m.s.clubBooks {
		if m.s.clubBooks[i].IsActive && m.s.clubBooks[i].ID != keepID {
			m.s.clubBooks[i].IsActive = false
		}
	}
	return nil
}

func (m memClubBooks) Activate(_ context.Context, id uuid.UUID, at time.Time) error {
	for i := range m.s.clubBooks {
		if m.s.clubBooks[i].ID == id {
			t := at
			m.s.clubBooks[i].IsActive = true
			m.s.clubBooks[i].ActivatedAt = &t
			return nil
		}
	}
	return fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
}

func (m memClubBooks) Deactivate(_ context.Context, id uuid.UUID) error {
	for i := range m.s.clubBooks {
		if m.s.clubBooks[i].ID == id {
			m.s.clubBooks[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("club book %s: %w", id, repository.ErrNotFound)
}

type memMessages struct{ s *memStore }

func (m memMessages) Create(_ context.Context, clubBookID, userID uuid.UUID, text string) (*models.ClubBookMessage, error) {
	msg := models.ClubBookMessage{
		ID:         m.s.nextID(),
		ClubBookID: clubBookID,
		UserID:     userID,
		Text:       text,
		CreatedAt:  m.s.tick(),
	}
	m.s.messages = append(m.s.messages, msg)
	return &msg, nil
}

func (m memMessages) List(_ context.Context, clubBookID uuid.UUID, after time.Time, limit int, descending bool) ([]models.ClubBookMessage, error) {
	messages := make([]models.ClubBookMessage, 0)
	for i := range m.s.messages {
		msg := m.s.messages[i]
		if msg.ClubBookID != clubBookID {
			continue
		}
		if !after.IsZero() && !msg.CreatedAt.After(after) {
			continue
		}
		messages = append(messages, msg)
	}
	if descending {
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		})
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

type memArtifacts struct{ s *memStore }

func (m memArtifacts) Create(_ context.Context, clubBookID, uploadedByUserID uuid.UUID, fileName, mimeType string, size int64, url string) (*models.ClubBookArtifact, error) {
	a := models.ClubBookArtifact{
		ID:               m.s.nextID(),
		ClubBookID:       clubBookID,
		UploadedByUserID: uploadedByUserID,
		FileName:         fileName,
		MimeType:         mimeType,
		Size:             size,
		URL:              url,
		CreatedAt:        m.s.tick(),
	}
	m.s.artifacts = append(m.s.artifacts, a)
	return &a, nil
}

func (m memArtifacts) List(_ context.Context, clubBookID uuid.UUID, limit int) ([]models.ClubBookArtifact, error) {
	artifacts := make([]models.ClubBookArtifact, 0)
	for i := len(m.s.artifacts) - 1; i >= 0 && len(artifacts) < limit; i-- {
		if m.s.artifacts[i].ClubBookID == clubBookID {
			artifacts = append(artifacts, m.s.artifacts[i])
		}
	}
	return artifacts, nil
}
