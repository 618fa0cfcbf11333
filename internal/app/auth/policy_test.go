package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func rolePtr(r models.Role) *models.Role { return &r }

func TestAllow(t *testing.T) {
	admin := rolePtr(models.RoleAdmin)
	mod := rolePtr(models.RoleModerator)
	member := rolePtr(models.RoleMember)

	other := Subject{}
	otherMember := Subject{AuthorRole: member}
	otherMod := Subject{AuthorRole: mod}
	otherAdmin := Subject{AuthorRole: admin}

	tests := []struct {
		name    string
		role    *models.Role
		action  Action
		subject Subject
		want    bool
	}{
		{"member views", member, ViewContent, NoSubject, true},
		{"non member views", nil, ViewContent, NoSubject, false},
		{"member creates post", member, CreatePost, NoSubject, true},
		{"member creates thread", member, CreateThread, NoSubject, true},

		{"member creates event", member, CreateEvent, NoSubject, false},
		{"moderator creates event", mod, CreateEvent, NoSubject, true},
		{"admin creates event", admin, CreateEvent, NoSubject, true},
		{"member updates event", member, UpdateEvent, NoSubject, false},
		{"moderator deletes event", mod, DeleteEvent, NoSubject, true},

		{"member updates own post", member, UpdatePost, Own, true},
		{"member updates other post", member, UpdatePost, otherMember, false},
		{"moderator updates other post", mod, UpdatePost, otherMember, false},
		{"admin updates member post", admin, UpdatePost, otherMember, true},
		{"admin updates admin post", admin, UpdatePost, otherAdmin, true},
		{"admin updates moderator post", admin, UpdatePost, otherMod, false},
		{"admin updates post of former member", admin, UpdatePost, other, true},
		{"admin deletes moderator picture", admin, DeletePostPicture, otherMod, false},
		{"admin updates moderator picture", admin, UpdatePostPicture, otherMod, false},
		{"moderator updates own picture", mod, UpdatePostPicture, Own, true},

		{"member deletes own post", member, DeletePost, Own, true},
		{"moderator deletes other post", mod, DeletePost, otherMember, false},
		{"admin deletes moderator post", admin, DeletePost, otherMod, true},

		{"admin updates other reply", admin, UpdateReply, otherMember, false},
		{"member updates own reply", member, UpdateReply, Own, true},
		{"member deletes other reply", member, DeleteReply, otherMember, false},
		{"moderator deletes other reply", mod, DeleteReply, otherMember, true},
		{"admin deletes other reply", admin, DeleteReply, otherMod, true},

		{"admin updates other comment", admin, UpdateComment, otherMember, false},
		{"member deletes own comment", member, DeleteComment, Own, true},
		{"moderator deletes other comment", mod, DeleteComment, otherMember, true},
		{"member deletes other comment", member, DeleteComment, otherMember, false},

		{"admin updates other thread", admin, UpdateThread, otherMember, false},
		{"moderator deletes other thread", mod, DeleteThread, otherMember, true},
		{"member deletes other thread", member, DeleteThread, otherMember, false},

		{"admin changes role", admin, ChangeMemberRole, NoSubject, true},
		{"moderator changes role", mod, ChangeMemberRole, NoSubject, false},
		{"member updates club", member, UpdateClub, NoSubject, false},
		{"admin updates avatar", admin, UpdateClubAvatar, NoSubject, true},
		{"moderator deletes club", mod, DeleteClub, NoSubject, false},

		{"unknown action", admin, Action("launch"), NoSubject, false},
		{"invalid role", rolePtr(models.Role("OWNER")), ViewContent, NoSubject, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.role, tt.action, tt.subject))
		})
	}
}

func TestCheckErrorKinds(t *testing.T) {
	member := rolePtr(models.RoleMember)

	tests := []struct {
		name   string
		role   *models.Role
		action Action
		want   apperrors.Kind
	}{
		{"non member content action", nil, CreatePost, apperrors.KindUserNotMemberOfClub},
		{"non member admin action", nil, ChangeMemberRole, apperrors.KindInsufficientPermissions},
		{"member admin action", member, UpdateClub, apperrors.KindInsufficientPermissions},
		{"member event action", member, CreateEvent, apperrors.KindInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.role, tt.action, NoSubject)
			assert.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}

	assert.NoError(t, Check(member, CreatePost, NoSubject))
}

func TestAdminCannotEditModeratorPostMessage(t *testing.T) {
	err := Check(rolePtr(models.RoleAdmin), UpdatePost, Subject{AuthorRole: rolePtr(models.RoleModerator)})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	assert.Contains(t, err.Error(), "moderator")
}
