package models

import (
	"github.com/google/uuid"
)

// ResourceKind names the aggregates that carry interaction sets.
type ResourceKind string

const (
	ResourcePost    ResourceKind = "post"
	ResourceComment ResourceKind = "comment"
	ResourceThread  ResourceKind = "thread"
	ResourceReply   ResourceKind = "reply"
	ResourceEvent   ResourceKind = "event"
)

// Axis is one per-user boolean fact on a resource.
type Axis string

const (
	AxisLike     Axis = "like"
	AxisBookmark Axis = "bookmark"
	AxisUpvote   Axis = "upvote"
	AxisDownvote Axis = "downvote"
	AxisAttend   Axis = "attend"
)

var axesByKind = map[ResourceKind][]Axis{
	ResourcePost:    {AxisLike, AxisBookmark},
	ResourceComment: {AxisLike},
	ResourceThread:  {AxisUpvote, AxisDownvote},
	ResourceReply:   {AxisUpvote, AxisDownvote},
	ResourceEvent:   {AxisAttend},
}

// ParseResourceKind rejects unknown kinds.
func ParseResourceKind(s string) (ResourceKind, bool) {
	k := ResourceKind(s)
	_, ok := axesByKind[k]
	return k, ok
}

// Axes returns the interaction axes the kind supports.
func (k ResourceKind) Axes() []Axis {
	return axesByKind[k]
}

// Supports reports whether a is an axis of k.
func (k ResourceKind) Supports(a Axis) bool {
	for _, axis := range axesByKind[k] {
		if axis == a {
			return true
		}
	}
	return false
}

// Opposite returns the mutually exclusive axis, if any.
func (a Axis) Opposite() (Axis, bool) {
	switch a {
	case AxisUpvote:
		return AxisDownvote, true
	case AxisDownvote:
		return AxisUpvote, true
	}
	return "", false
}

// ResourceRef identifies one interactable resource.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   uuid.UUID    `json:"id"`
}

func (r ResourceRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// Counters maps each axis to the size of its set.
type Counters map[Axis]int

// InteractionResult is returned by every interaction toggle.
type InteractionResult struct {
	Resource ResourceRef `json:"resource"`
	Counters Counters    `json:"counters"`
	Changed  bool        `json:"changed"`
	// Shares is set only for post shares.
	Shares int `json:"shares,omitempty"`
}
