package apperrors

import "fmt"

func notFound(code, entity, idName string, id fmt.Stringer) *CustomError {
	return New(KindNotFound, code,
		entity+" not found",
		fmt.Sprintf("No %s with id %s exists.", lowerFirst(entity), id),
	).WithParam(idName, id.String()).WithSource(idName)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func UserNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeUserNotFound, "User", "userId", id)
}

func ClubNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeClubNotFound, "Club", "clubId", id)
}

func PostNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodePostNotFound, "Post", "postId", id)
}

func CommentNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeCommentNotFound, "Comment", "commentId", id)
}

func ThreadNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeThreadNotFound, "Thread", "threadId", id)
}

func ReplyNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeReplyNotFound, "Reply", "replyId", id)
}

func EventNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeEventNotFound, "Event", "eventId", id)
}

func MemberNotFound(id fmt.Stringer) *CustomError {
	return notFound(CodeMemberNotFound, "Member", "memberId", id)
}

// NotMemberOfClub is returned when an action needs a membership the actor lacks.
func NotMemberOfClub(details string) *CustomError {
	return New(KindUserNotMemberOfClub, CodeUserNotMemberOfClub, "User not a member", details)
}

func InsufficientPermissions(details string) *CustomError {
	return New(KindInsufficientPermissions, CodeInsufficientPermissions, "Insufficient permissions", details)
}

func AlreadyMember() *CustomError {
	return New(KindAlreadyMember, CodeAlreadyMember, "Already a member", "User is already a member of this club.")
}

// NotAMember is returned by leave when there is no membership to remove.
func NotAMember() *CustomError {
	return New(KindNotAMember, CodeNotAMember, "User not a member", "User is not a member of this club.")
}

func LastAdminLeave() *CustomError {
	return New(KindLastAdminLeave, CodeLastAdminLeave, "Cannot leave club", "At least one admin must remain in the club.")
}

func LastAdminRoleChange() *CustomError {
	return New(KindLastAdminRoleChange, CodeLastAdminRoleChange, "Cannot change role", "At least one admin must remain in the club.")
}

func InvalidCredentials() *CustomError {
	return New(KindInvalidCredentials, CodeInvalidCredentials, "Invalid credentials", "Email or password is incorrect.")
}

func UserAlreadyExists(email string) *CustomError {
	return New(KindUserAlreadyExists, CodeUserAlreadyExists, "User already exists",
		fmt.Sprintf("A user with email %s already exists.", email),
	).WithParam("email", email).WithSource("email")
}

func Unauthenticated(details string) *CustomError {
	return New(KindUnauthenticated, CodeInvalidToken, "Authentication required", details)
}

func Validation(field, details string) *CustomError {
	e := New(KindValidation, CodeValidationFailed, "Validation failed", details)
	if field != "" {
		e.WithSource(field)
	}
	return e
}
