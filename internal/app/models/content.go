package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a club post. Likes and Bookmarks always equal the size of their
// interaction sets, Comments the number of comments under the post.
type Post struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ClubID    uuid.UUID  `json:"clubId" db:"club_id"`
	AuthorID  uuid.UUID  `json:"authorId" db:"author_id"`
	Content   string     `json:"content" db:"content"`
	Picture   *ObjectRef `json:"picture,omitempty"`
	Likes     int        `json:"likes" db:"likes"`
	Comments  int        `json:"comments" db:"comments"`
	Bookmarks int        `json:"bookmarks" db:"bookmarks"`
	Shares    int        `json:"shares" db:"shares"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Comment hangs off exactly one of a post or a forum thread.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	AuthorID  uuid.UUID  `json:"authorId" db:"author_id"`
	PostID    *uuid.UUID `json:"postId,omitempty" db:"post_id"`
	ThreadID  *uuid.UUID `json:"threadId,omitempty" db:"thread_id"`
	Content   string     `json:"content" db:"content"`
	Likes     int        `json:"likes" db:"likes"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// Parent returns the resource the comment belongs to.
func (c Comment) Parent() ResourceRef {
	if c.PostID != nil {
		return ResourceRef{Kind: ResourcePost, ID: *c.PostID}
	}
	if c.ThreadID != nil {
		return ResourceRef{Kind: ResourceThread, ID: *c.ThreadID}
	}
	return ResourceRef{}
}

// ForumThread is a discussion in a club forum
type ForumThread struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ClubID       uuid.UUID `json:"clubId" db:"club_id"`
	AuthorID     uuid.UUID `json:"authorId" db:"author_id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	Upvotes      int       `json:"upvotes" db:"upvotes"`
	Downvotes    int       `json:"downvotes" db:"downvotes"`
	Replies      int       `json:"replies" db:"replies"`
	LastActivity time.Time `json:"lastActivity" db:"last_activity"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Reply is an answer inside a forum thread
type Reply struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ThreadID  uuid.UUID `json:"threadId" db:"thread_id"`
	AuthorID  uuid.UUID `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	Upvotes   int       `json:"upvotes" db:"upvotes"`
	Downvotes int       `json:"downvotes" db:"downvotes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Event is a scheduled club event. Date, Time and Status are free-form strings
// as entered by the organizer.
type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClubID      uuid.UUID `json:"clubId" db:"club_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Location    string    `json:"location" db:"location"`
	Status      string    `json:"status" db:"status"`
	Attendees   int       `json:"attendees" db:"attendees"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PostPatch, ThreadPatch and EventPatch carry optional edits.
type PostPatch struct {
	Content *string
}

type ThreadPatch struct {
	Title   *string
	Content *string
}

type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	Status      *string
}

// Apply copies the set fields onto e.
func (p EventPatch) Apply(e *Event) {
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&e.Title, p.Title},
		{&e.Description, p.Description},
		{&e.Date, p.Date},
		{&e.Time, p.Time},
		{&e.Location, p.Location},
		{&e.Status, p.Status},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}

// Feed is the time-gated content of a user's clubs, newest first.
type Feed struct {
	Posts  []PostView `json:"posts"`
	Events []Event    `json:"events"`
}

// PostView is a post with the viewer's interaction flags resolved.
type PostView struct {
	Post
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// ThreadView is a thread with the viewer's vote resolved.
type ThreadView struct {
	ForumThread
	Upvoted   bool `json:"upvoted"`
	Downvoted bool `json:"downvoted"`
}

// ReplyView is a reply with the viewer's vote resolved.
type ReplyView struct {
	Reply
	Upvoted   bool `json:"upvoted"`
	Downvoted bool `json:"downvoted"`
}

// CommentView is a comment with the viewer's like resolved.
type CommentView struct {
	Comment
	Liked bool `json:"liked"`
}

// EventView is an event with the viewer's attendance resolved.
type EventView struct {
	Event
	Attending bool `json:"attending"`
}
