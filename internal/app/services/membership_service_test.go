package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestLastAdminHandover(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	clubID := env.club(t, a, "Chess")

	club, err := env.svc.Membership.GetClub(env.ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, 1, club.Members)

	bMember, err := env.svc.Membership.Join(env.ctx, clubID, b)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, bMember.Role)
	club, err = env.svc.Membership.GetClub(env.ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, 2, club.Members)

	err = env.svc.Membership.Leave(env.ctx, clubID, a)
	assert.True(t, apperrors.IsKind(err, apperrors.KindLastAdminLeave), "got %v", err)

	_, err = env.svc.Membership.ChangeRole(env.ctx, clubID, bMember.ID, models.RoleAdmin, a)
	require.NoError(t, err)
	require.NoError(t, env.svc.Membership.Leave(env.ctx, clubID, a))

	members, err := env.svc.Membership.ListMembers(env.ctx, clubID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, b, members[0].UserID)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
	assert.Equal(t, "bob", members[0].Username)

	club, err = env.svc.Membership.GetClub(env.ctx, clubID)
	require.NoError(t, err)
	assert.Equal(t, 1, club.Members)
}

func TestJoinAndLeaveErrors(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	clubID := env.club(t, a, "Chess")

	_, err := env.svc.Membership.Join(env.ctx, clubID, a)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyMember))

	_, err = env.svc.Membership.Join(env.ctx, uuid.New(), b)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = env.svc.Membership.Join(env.ctx, clubID, uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	err = env.svc.Membership.Leave(env.ctx, clubID, b)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAMember))

	role, err := env.svc.Membership.RoleOf(env.ctx, clubID, b)
	require.NoError(t, err)
	assert.Nil(t, role)

	role, err = env.svc.Membership.RoleOf(env.ctx, clubID, a)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, models.RoleAdmin, *role)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	mod := env.user(t, "mod")
	plain := env.user(t, "plain")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, admin, "Chess")
	otherClub := env.club(t, outsider, "Go")

	modMember := env.member(t, clubID, mod, admin, models.RoleModerator)
	plainMember := env.member(t, clubID, plain, admin, models.RoleMember)

	var adminMember uuid.UUID
	members, err := env.svc.Membership.ListMembers(env.ctx, clubID)
	require.NoError(t, err)
	for _, m := range members {
		if m.UserID == admin {
			adminMember = m.ID
		}
	}

	tests := []struct {
		name     string
		memberID uuid.UUID
		role     models.Role
		actor    uuid.UUID
		clubID   uuid.UUID
		wantKind apperrors.Kind
	}{
		{name: "moderator cannot change roles", memberID: plainMember, role: models.RoleModerator, actor: mod, clubID: clubID, wantKind: apperrors.KindInsufficientPermissions},
		{name: "member cannot change roles", memberID: modMember, role: models.RoleMember, actor: plain, clubID: clubID, wantKind: apperrors.KindInsufficientPermissions},
		{name: "non-member cannot change roles", memberID: plainMember, role: models.RoleAdmin, actor: outsider, clubID: clubID, wantKind: apperrors.KindInsufficientPermissions},
		{name: "unknown member", memberID: uuid.New(), role: models.RoleMember, actor: admin, clubID: clubID, wantKind: apperrors.KindNotFound},
		{name: "member of another club", memberID: plainMember, role: models.RoleMember, actor: outsider, clubID: otherClub, wantKind: apperrors.KindNotFound},
		{name: "sole admin demoting self", memberID: adminMember, role: models.RoleMember, actor: admin, clubID: clubID, wantKind: apperrors.KindLastAdminRoleChange},
		{name: "invalid role", memberID: plainMember, role: models.Role("OWNER"), actor: admin, clubID: clubID, wantKind: apperrors.KindValidation},
		{name: "admin promotes member", memberID: plainMember, role: models.RoleModerator, actor: admin, clubID: clubID},
		{name: "admin re-asserts own role", memberID: adminMember, role: models.RoleAdmin, actor: admin, clubID: clubID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := env.svc.Membership.ChangeRole(env.ctx, tt.clubID, tt.memberID, tt.role, tt.actor)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, m.Role)
		})
	}

	// With a second admin in place the first one may step down.
	_, err = env.svc.Membership.ChangeRole(env.ctx, clubID, modMember, models.RoleAdmin, admin)
	require.NoError(t, err)
	m, err := env.svc.Membership.ChangeRole(env.ctx, clubID, adminMember, models.RoleMember, admin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)
}

func adminCount(t *testing.T, env *testEnv, clubID uuid.UUID) (admins, members int) {
	t.Helper()
	require.NoError(t, env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		if admins, err = tx.Members().CountByRole(ctx, clubID, models.RoleAdmin); err != nil {
			return err
		}
		members, err = tx.Members().CountByClub(ctx, clubID)
		return err
	}))
	return admins, members
}

func TestClubKeepsAnAdminUnderRandomOperations(t *testing.T) {
	env := newTestEnv(t)
	rng := rand.New(rand.NewSource(42))

	users := make([]uuid.UUID, 6)
	for i := range users {
		users[i] = env.user(t, "user"+string(rune('a'+i)))
	}
	clubID := env.club(t, users[0], "Random")
	roles := []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleMember}

	for step := 0; step < 400; step++ {
		actor := users[rng.Intn(len(users))]
		subject := users[rng.Intn(len(users))]

		switch rng.Intn(3) {
		case 0:
			_, _ = env.svc.Membership.Join(env.ctx, clubID, subject)
		case 1:
			_ = env.svc.Membership.Leave(env.ctx, clubID, subject)
		case 2:
			members, err := env.svc.Membership.ListMembers(env.ctx, clubID)
			require.NoError(t, err)
			if len(members) == 0 {
				continue
			}
			target := members[rng.Intn(len(members))]
			_, _ = env.svc.Membership.ChangeRole(env.ctx, clubID, target.ID, roles[rng.Intn(len(roles))], actor)
		}

		admins, members := adminCount(t, env, clubID)
		require.GreaterOrEqual(t, members, 1, "step %d", step)
		require.GreaterOrEqual(t, admins, 1, "step %d", step)

		club, err := env.svc.Membership.GetClub(env.ctx, clubID)
		require.NoError(t, err)
		require.Equal(t, members, club.Members, "step %d", step)
	}
}

func TestConcurrentAdminLeavesKeepOneAdmin(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleAdmin)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, u := range []uuid.UUID{a, b} {
		wg.Add(1)
		go func(i int, u uuid.UUID) {
			defer wg.Done()
			errs[i] = env.svc.Membership.Leave(env.ctx, clubID, u)
		}(i, u)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, apperrors.IsKind(err, apperrors.KindLastAdminLeave))
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	admins, members := adminCount(t, env, clubID)
	assert.Equal(t, 1, admins)
	assert.Equal(t, 1, members)
}

func TestUpdateAndSearchClubs(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	chess := env.club(t, a, "Chess Club")
	env.club(t, a, "Go Club")
	env.member(t, chess, b, a, models.RoleModerator)

	name := "Chess & Checkers"
	_, err := env.svc.Membership.UpdateClub(env.ctx, b, chess, models.ClubPatch{Name: &name})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientPermissions))

	empty := " "
	_, err = env.svc.Membership.UpdateClub(env.ctx, a, chess, models.ClubPatch{Name: &empty})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	club, err := env.svc.Membership.UpdateClub(env.ctx, a, chess, models.ClubPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, club.Name)

	two := 2
	clubs, total, err := env.svc.Membership.SearchClubs(env.ctx, models.ClubFilter{MinMembers: &two})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, clubs, 1)
	assert.Equal(t, chess, clubs[0].ID)

	clubs, total, err = env.svc.Membership.SearchClubs(env.ctx, models.ClubFilter{Name: "club", Page: models.Page{Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, clubs, 1)

	one := 1
	_, _, err = env.svc.Membership.SearchClubs(env.ctx, models.ClubFilter{MinMembers: &two, MaxMembers: &one})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestUpdateClubAvatar(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)

	_, err := env.svc.Membership.UpdateClubAvatar(env.ctx, b, clubID, Upload{Data: []byte("x"), ContentType: "image/png"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientPermissions))
	assert.Zero(t, env.objects.count())

	_, err = env.svc.Membership.UpdateClubAvatar(env.ctx, a, clubID, Upload{Data: []byte("x"), ContentType: "text/plain"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	first, err := env.svc.Membership.UpdateClubAvatar(env.ctx, a, clubID, Upload{Data: []byte("one"), ContentType: "image/png"})
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	firstKey := first.Avatar.Key

	second, err := env.svc.Membership.UpdateClubAvatar(env.ctx, a, clubID, Upload{Data: []byte("two"), ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.Avatar.Key)
	assert.False(t, env.objects.has(firstKey))
	assert.True(t, env.objects.has(second.Avatar.Key))
}

func TestDeleteClubCascades(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")
	b := env.user(t, "bob")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleModerator)

	postID := env.post(t, clubID, b, "opening theory")
	_, err := env.svc.Interactions.Add(env.ctx, a, models.ResourceRef{Kind: models.ResourcePost, ID: postID}, models.AxisLike)
	require.NoError(t, err)
	comment, err := env.svc.Comments.Create(env.ctx, a, models.ResourceRef{Kind: models.ResourcePost, ID: postID}, "nice")
	require.NoError(t, err)
	thread, err := env.svc.Forum.CreateThread(env.ctx, b, clubID, "Sicilian?", "thoughts")
	require.NoError(t, err)
	reply, err := env.svc.Forum.CreateReply(env.ctx, a, thread.ID, "yes")
	require.NoError(t, err)
	event, err := env.svc.Events.Create(env.ctx, b, clubID, models.Event{Title: "Blitz night"})
	require.NoError(t, err)
	_, err = env.svc.Interactions.Add(env.ctx, a, models.ResourceRef{Kind: models.ResourceEvent, ID: event.ID}, models.AxisAttend)
	require.NoError(t, err)

	err = env.svc.Membership.DeleteClub(env.ctx, b, clubID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientPermissions))

	require.NoError(t, env.svc.Membership.DeleteClub(env.ctx, a, clubID))

	_, err = env.svc.Membership.GetClub(env.ctx, clubID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	assert.False(t, env.exists(t, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Posts().GetByID(ctx, postID)
		return err
	}))
	assert.False(t, env.exists(t, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Comments().GetByID(ctx, comment.ID)
		return err
	}))
	assert.False(t, env.exists(t, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Replies().GetByID(ctx, reply.ID)
		return err
	}))
	assert.False(t, env.exists(t, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Events().GetByID(ctx, event.ID)
		return err
	}))

	profile, err := env.svc.Users.Profile(env.ctx, a)
	require.NoError(t, err)
	assert.Empty(t, profile.Memberships)
	assert.Zero(t, profile.EventsAttended)
}

func TestCreateWithAdminValidation(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "alice")

	_, err := env.svc.Membership.CreateWithAdmin(env.ctx, a, models.Club{Name: "  "})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = env.svc.Membership.CreateWithAdmin(env.ctx, uuid.New(), models.Club{Name: "Ghost"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	env.clock.Advance(time.Hour)
	club, err := env.svc.Membership.CreateWithAdmin(env.ctx, a, models.Club{Name: "Chess"})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), club.CreatedAt)

	members, err := env.svc.Membership.ListMembers(env.ctx, club.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].JoinedAt)
	assert.Equal(t, env.clock.Now(), *members[0].JoinedAt)
}
