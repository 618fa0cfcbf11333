// Package memory is an in-process implementation of the repository contracts.
// Aggregates live in an arena keyed by id and children are reachable through
// parent-id indexes. A transaction reads the committed arena until its first
// write, then works on a private copy that replaces the committed arena only
// when the transaction function succeeds.
//
// Transactions are serialized and the first write copies every map, so the
// store suits tests, demos and small single-process deployments, not real load.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

// Store serializes transactions behind a single mutex.
type Store struct {
	mu      sync.Mutex
	state   *arena
	commits int // transactions that published a copy
	log     zerolog.Logger
}

// NewStore returns an empty store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{state: newArena(), log: log}
}

// WithTx runs fn and, if fn wrote anything, publishes its copy on success.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{base: s.state}
	if err := fn(ctx, t); err != nil {
		s.log.Debug().Err(err).Msg("Discarding in-memory transaction")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.work != nil {
		s.state = t.work
		s.commits++
	}
	return nil
}

// Close drops all data.
func (s *Store) Close() {
	s.mu.Lock()
	s.state = newArena()
	s.mu.Unlock()
}

type tx struct {
	base *arena // committed state, read until the first write
	work *arena // private copy, nil until the first write
}

func (t *tx) view() *arena {
	if t.work != nil {
		return t.work
	}
	return t.base
}

func (t *tx) edit() *arena {
	if t.work == nil {
		t.work = t.base.clone()
	}
	return t.work
}

func (t *tx) Users() repositories.UserRepository { return userRepo{t} }
func (t *tx) Clubs() repositories.ClubRepository { return clubRepo{t} }
func (t *tx) Members() repositories.MemberRepository { return memberRepo{t} }
func (t *tx) Posts() repositories.PostRepository { return postRepo{t} }
func (t *tx) Comments() repositories.CommentRepository { return commentRepo{t} }
func (t *tx) Threads() repositories.ThreadRepository { return threadRepo{t} }
func (t *tx) Replies() repositories.ReplyRepository { return replyRepo{t} }
func (t *tx) Events() repositories.EventRepository { return eventRepo{t} }
func (t *tx) Interactions() repositories.InteractionRepository { return interactionRepo{t} }

type memberKey struct {
	club uuid.UUID
	user uuid.UUID
}

type interactionKey struct {
	ref  models.ResourceRef
	axis models.Axis
	user uuid.UUID
}

// arena holds every aggregate plus the indexes that link children to parents.
type arena struct {
	seq   int64
	order map[uuid.UUID]int64

	users  map[uuid.UUID]models.User
	emails map[string]uuid.UUID

	clubs         map[uuid.UUID]models.Club
	members       map[uuid.UUID]models.Member
	memberByPair  map[memberKey]uuid.UUID
	membersByClub index
	membersByUser index

	posts         map[uuid.UUID]models.Post
	postsByClub   index
	postsByAuthor index

	comments         map[uuid.UUID]models.Comment
	commentsByParent index

	threads       map[uuid.UUID]models.ForumThread
	threadsByClub index

	replies         map[uuid.UUID]models.Reply
	repliesByThread index

	events       map[uuid.UUID]models.Event
	eventsByClub index

	interactions           map[interactionKey]int64
	interactionsByResource map[models.ResourceRef]map[interactionKey]struct{}
}

func newArena() *arena {
	return &arena{
		order:                  make(map[uuid.UUID]int64),
		users:                  make(map[uuid.UUID]models.User),
		emails:                 make(map[string]uuid.UUID),
		clubs:                  make(map[uuid.UUID]models.Club),
		members:                make(map[uuid.UUID]models.Member),
		memberByPair:           make(map[memberKey]uuid.UUID),
		membersByClub:          make(index),
		membersByUser:          make(index),
		posts:                  make(map[uuid.UUID]models.Post),
		postsByClub:            make(index),
		postsByAuthor:          make(index),
		comments:               make(map[uuid.UUID]models.Comment),
		commentsByParent:       make(index),
		threads:                make(map[uuid.UUID]models.ForumThread),
		threadsByClub:          make(index),
		replies:                make(map[uuid.UUID]models.Reply),
		repliesByThread:        make(index),
		events:                 make(map[uuid.UUID]models.Event),
		eventsByClub:           make(index),
		interactions:           make(map[interactionKey]int64),
		interactionsByResource: make(map[models.ResourceRef]map[interactionKey]struct{}),
	}
}

func (a *arena) clone() *arena {
	c := &arena{
		seq:                    a.seq,
		order:                  cloneMap(a.order),
		users:                  cloneMap(a.users),
		emails:                 cloneMap(a.emails),
		clubs:                  cloneMap(a.clubs),
		members:                cloneMap(a.members),
		memberByPair:           cloneMap(a.memberByPair),
		membersByClub:          a.membersByClub.clone(),
		membersByUser:          a.membersByUser.clone(),
		posts:                  cloneMap(a.posts),
		postsByClub:            a.postsByClub.clone(),
		postsByAuthor:          a.postsByAuthor.clone(),
		comments:               cloneMap(a.comments),
		commentsByParent:       a.commentsByParent.clone(),
		threads:                cloneMap(a.threads),
		threadsByClub:          a.threadsByClub.clone(),
		replies:                cloneMap(a.replies),
		repliesByThread:        a.repliesByThread.clone(),
		events:                 cloneMap(a.events),
		eventsByClub:           a.eventsByClub.clone(),
		interactions:           cloneMap(a.interactions),
		interactionsByResource: make(map[models.ResourceRef]map[interactionKey]struct{}, len(a.interactionsByResource)),
	}
	for ref, keys := range a.interactionsByResource {
		c.interactionsByResource[ref] = cloneMap(keys)
	}
	return c
}

// touch records insertion order so equal timestamps sort deterministically.
func (a *arena) touch(id uuid.UUID) {
	if _, ok := a.order[id]; ok {
		return
	}
	a.seq++
	a.order[id] = a.seq
}

func (a *arena) forget(id uuid.UUID) {
	delete(a.order, id)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// index maps a parent id to the set of its children.
type index map[uuid.UUID]map[uuid.UUID]struct{}

func (ix index) add(parent, child uuid.UUID) {
	set, ok := ix[parent]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		ix[parent] = set
	}
	set[child] = struct{}{}
}

func (ix index) remove(parent, child uuid.UUID) {
	set, ok := ix[parent]
	if !ok {
		return
	}
	delete(set, child)
	if len(set) == 0 {
		delete(ix, parent)
	}
}

func (ix index) children(parent uuid.UUID) []uuid.UUID {
	set := ix[parent]
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (ix index) count(parent uuid.UUID) int {
	return len(ix[parent])
}

func (ix index) clone() index {
	out := make(index, len(ix))
	for parent, set := range ix {
		out[parent] = cloneMap(set)
	}
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
