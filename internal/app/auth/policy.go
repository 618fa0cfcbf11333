package auth

import (
	"fmt"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Action is something an actor attempts inside a club
type Action string

const (
	ViewContent       Action = "view_content"
	Interact          Action = "interact"
	CreatePost        Action = "create_post"
	CreateEvent       Action = "create_event"
	CreateThread      Action = "create_thread"
	CreateComment     Action = "create_comment"
	CreateReply       Action = "create_reply"
	UpdatePost        Action = "update_post"
	DeletePost        Action = "delete_post"
	UpdatePostPicture Action = "update_post_picture"
	DeletePostPicture Action = "delete_post_picture"
	UpdateEvent       Action = "update_event"
	DeleteEvent       Action = "delete_event"
	UpdateThread      Action = "update_thread"
	DeleteThread      Action = "delete_thread"
	UpdateReply       Action = "update_reply"
	DeleteReply       Action = "delete_reply"
	UpdateComment     Action = "update_comment"
	DeleteComment     Action = "delete_comment"
	ChangeMemberRole  Action = "change_member_role"
	UpdateClub        Action = "update_club"
	UpdateClubAvatar  Action = "update_club_avatar"
	DeleteClub        Action = "delete_club"
)

// Subject describes the targeted content relative to the actor. AuthorRole is the
// author's current role in the club, nil when the author is no longer a member.
type Subject struct {
	IsAuthor   bool
	AuthorRole *models.Role
}

// Own is the subject for content the actor wrote.
var Own = Subject{IsAuthor: true}

// NoSubject is used for actions that do not target existing content.
var NoSubject = Subject{}

type rule func(role models.Role, s Subject) bool

func anyMember(models.Role, Subject) bool { return true }

func adminOnly(role models.Role, _ Subject) bool { return role == models.RoleAdmin }

func staff(role models.Role, _ Subject) bool { return role != models.RoleMember }

func authorOnly(_ models.Role, s Subject) bool { return s.IsAuthor }

func authorOrStaff(role models.Role, s Subject) bool { return s.IsAuthor || staff(role, s) }

func authorOrAdmin(role models.Role, s Subject) bool { return s.IsAuthor || role == models.RoleAdmin }

// authorOrAdminOverNonModerator: admins may edit other people's posts, but not a
// moderator's. Deleting posts does not carry this restriction.
func authorOrAdminOverNonModerator(role models.Role, s Subject) bool {
	if s.IsAuthor {
		return true
	}
	if role != models.RoleAdmin {
		return false
	}
	return s.AuthorRole == nil || *s.AuthorRole != models.RoleModerator
}

var rules = map[Action]rule{
	ViewContent:       anyMember,
	Interact:          anyMember,
	CreatePost:        anyMember,
	CreateThread:      anyMember,
	CreateComment:     anyMember,
	CreateReply:       anyMember,
	CreateEvent:       staff,
	UpdateEvent:       staff,
	DeleteEvent:       staff,
	UpdatePost:        authorOrAdminOverNonModerator,
	UpdatePostPicture: authorOrAdminOverNonModerator,
	DeletePostPicture: authorOrAdminOverNonModerator,
	DeletePost:        authorOrAdmin,
	UpdateThread:      authorOnly,
	DeleteThread:      authorOrStaff,
	UpdateReply:       authorOnly,
	DeleteReply:       authorOrStaff,
	UpdateComment:     authorOnly,
	DeleteComment:     authorOrStaff,
	ChangeMemberRole:  adminOnly,
	UpdateClub:        adminOnly,
	UpdateClubAvatar:  adminOnly,
	DeleteClub:        adminOnly,
}

// adminActions are club administration actions. Non-members attempting them are
// told they lack permissions rather than membership.
var adminActions = map[Action]bool{
	ChangeMemberRole: true,
	UpdateClub:       true,
	UpdateClubAvatar: true,
	DeleteClub:       true,
}

// Allow is the pure verdict. A nil role means the actor has no membership in the
// club, which denies every action.
func Allow(role *models.Role, action Action, s Subject) bool {
	if role == nil || !role.Valid() {
		return false
	}
	r, ok := rules[action]
	if !ok {
		return false
	}
	return r(*role, s)
}

// Check is Allow with the denial turned into a typed error.
func Check(role *models.Role, action Action, s Subject) error {
	if Allow(role, action, s) {
		return nil
	}
	if role == nil {
		if adminActions[action] {
			return apperrors.InsufficientPermissions("Only club admins can perform this action.").
				WithParam("action", string(action))
		}
		return apperrors.NotMemberOfClub("You must be a member of this club to perform this action.").
			WithParam("action", string(action))
	}
	return apperrors.InsufficientPermissions(denialDetails(*role, action, s)).
		WithParam("action", string(action)).
		WithParam("role", string(*role))
}

func denialDetails(role models.Role, action Action, s Subject) string {
	switch action {
	case ChangeMemberRole, UpdateClub, UpdateClubAvatar, DeleteClub:
		return "Only club admins can perform this action."
	case CreateEvent, UpdateEvent, DeleteEvent:
		return "Only club admins and moderators can manage events."
	case UpdatePost, UpdatePostPicture, DeletePostPicture:
		if role == models.RoleAdmin && s.AuthorRole != nil && *s.AuthorRole == models.RoleModerator {
			return "Admins cannot edit a moderator's post."
		}
		return "You can only edit your own posts."
	case DeletePost:
		return "Only the author or a club admin can delete this post."
	case UpdateThread, UpdateReply, UpdateComment:
		return "Only the author can edit this content."
	case DeleteThread, DeleteReply, DeleteComment:
		return "Only the author, a moderator or an admin can delete this content."
	}
	return fmt.Sprintf("Role %s is not allowed to %s.", role, action)
}
