package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

type userRepo struct{ t *tx }

func copyUser(u models.User) models.User {
	u.Avatar = copyPtr(u.Avatar)
	u.Preferences = slices.Clone(u.Preferences)
	return u
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r userRepo) Create(_ context.Context, u *models.User) error {
	a := r.t.edit()
	if _, ok := a.users[u.ID]; ok {
		return repositories.ErrDuplicate
	}
	if _, taken := a.emails[emailKey(u.Email)]; taken {
		return repositories.ErrDuplicate
	}
	a.users[u.ID] = copyUser(*u)
	a.emails[emailKey(u.Email)] = u.ID
	a.touch(u.ID)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	a := r.t.view()
	u, ok := a.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	a := r.t.view()
	id, ok := a.emails[emailKey(email)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r userRepo) Update(_ context.Context, u *models.User) error {
	a := r.t.edit()
	old, ok := a.users[u.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if emailKey(old.Email) != emailKey(u.Email) {
		if _, taken := a.emails[emailKey(u.Email)]; taken {
			return repositories.ErrDuplicate
		}
		delete(a.emails, emailKey(old.Email))
		a.emails[emailKey(u.Email)] = u.ID
	}
	a.users[u.ID] = copyUser(*u)
	return nil
}

func (r userRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	a := r.t.view()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := a.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

type clubRepo struct{ t *tx }

func copyClub(c models.Club) models.Club {
	c.Avatar = copyPtr(c.Avatar)
	return c
}

func (r clubRepo) Create(_ context.Context, c *models.Club) error {
	a := r.t.edit()
	if _, ok := a.clubs[c.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.clubs[c.ID] = copyClub(*c)
	a.touch(c.ID)
	return nil
}

func (r clubRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Club, error) {
	a := r.t.view()
	c, ok := a.clubs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyClub(c)
	return &out, nil
}

// GetForUpdate needs no lock of its own, transactions already run one at a time.
func (r clubRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	return r.GetByID(ctx, id)
}

func (r clubRepo) Update(_ context.Context, c *models.Club) error {
	a := r.t.edit()
	if _, ok := a.clubs[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.clubs[c.ID] = copyClub(*c)
	return nil
}

func (r clubRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	if _, ok := a.clubs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(a.clubs, id)
	a.forget(id)
	return nil
}

func (r clubRepo) Search(_ context.Context, f models.ClubFilter) ([]models.Club, int, error) {
	a := r.t.view()
	matched := make([]models.Club, 0)
	for _, c := range a.clubs {
		if f.Matches(c) {
			matched = append(matched, copyClub(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return a.order[matched[i].ID] < a.order[matched[j].ID]
	})
	return models.Apply(matched, f.Page), len(matched), nil
}

type memberRepo struct{ t *tx }

func copyMember(m models.Member) models.Member {
	m.JoinedAt = copyPtr(m.JoinedAt)
	return m
}

func (r memberRepo) Create(_ context.Context, m *models.Member) error {
	a := r.t.edit()
	key := memberKey{club: m.ClubID, user: m.UserID}
	if _, ok := a.memberByPair[key]; ok {
		return repositories.ErrDuplicate
	}
	if _, ok := a.members[m.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.members[m.ID] = copyMember(*m)
	a.memberByPair[key] = m.ID
	a.membersByClub.add(m.ClubID, m.ID)
	a.membersByUser.add(m.UserID, m.ID)
	a.touch(m.ID)
	return nil
}

func (r memberRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	a := r.t.view()
	m, ok := a.members[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyMember(m)
	return &out, nil
}

func (r memberRepo) Get(ctx context.Context, clubID, userID uuid.UUID) (*models.Member, error) {
	a := r.t.view()
	id, ok := a.memberByPair[memberKey{club: clubID, user: userID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r memberRepo) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) error {
	a := r.t.edit()
	m, ok := a.members[id]
	if !ok {
		return repositories.ErrNotFound
	}
	m.Role = role
	a.members[id] = m
	return nil
}

func (r memberRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	m, ok := a.members[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.members, id)
	delete(a.memberByPair, memberKey{club: m.ClubID, user: m.UserID})
	a.membersByClub.remove(m.ClubID, id)
	a.membersByUser.remove(m.UserID, id)
	a.forget(id)
	return nil
}

func (r memberRepo) list(ids []uuid.UUID) []models.Member {
	a := r.t.view()
	out := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyMember(a.members[id]))
	}
	sort.Slice(out, func(i, j int) bool {
		return a.order[out[i].ID] < a.order[out[j].ID]
	})
	return out
}

func (r memberRepo) ListByClub(_ context.Context, clubID uuid.UUID) ([]models.Member, error) {
	a := r.t.view()
	return r.list(a.membersByClub.children(clubID)), nil
}

func (r memberRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Member, error) {
	a := r.t.view()
	return r.list(a.membersByUser.children(userID)), nil
}

func (r memberRepo) CountByClub(_ context.Context, clubID uuid.UUID) (int, error) {
	a := r.t.view()
	return a.membersByClub.count(clubID), nil
}

func (r memberRepo) CountByRole(_ context.Context, clubID uuid.UUID, role models.Role) (int, error) {
	a := r.t.view()
	n := 0
	for id := range a.membersByClub[clubID] {
		if a.members[id].Role == role {
			n++
		}
	}
	return n, nil
}
