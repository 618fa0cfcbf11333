package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

type interactionRepo struct{ t *tx }

func (r interactionRepo) Add(_ context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	a := r.t.edit()
	key := interactionKey{ref: ref, axis: axis, user: userID}
	if _, ok := a.interactions[key]; ok {
		return false, nil
	}
	a.seq++
	a.interactions[key] = a.seq
	keys, ok := a.interactionsByResource[ref]
	if !ok {
		keys = make(map[interactionKey]struct{})
		a.interactionsByResource[ref] = keys
	}
	keys[key] = struct{}{}
	return true, nil
}

func (r interactionRepo) Remove(_ context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	a := r.t.edit()
	key := interactionKey{ref: ref, axis: axis, user: userID}
	if _, ok := a.interactions[key]; !ok {
		return false, nil
	}
	delete(a.interactions, key)
	if keys, ok := a.interactionsByResource[ref]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(a.interactionsByResource, ref)
		}
	}
	return true, nil
}

func (r interactionRepo) Has(_ context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	a := r.t.view()
	_, ok := a.interactions[interactionKey{ref: ref, axis: axis, user: userID}]
	return ok, nil
}

func (r interactionRepo) Count(_ context.Context, ref models.ResourceRef, axis models.Axis) (int, error) {
	a := r.t.view()
	n := 0
	for key := range a.interactionsByResource[ref] {
		if key.axis == axis {
			n++
		}
	}
	return n, nil
}

// ResourceIDsByUser returns the most recently recorded interactions first.
func (r interactionRepo) ResourceIDsByUser(_ context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) ([]uuid.UUID, error) {
	a := r.t.view()
	type hit struct {
		id  uuid.UUID
		seq int64
	}
	var hits []hit
	for key, seq := range a.interactions {
		if key.user == userID && key.axis == axis && key.ref.Kind == kind {
			hits = append(hits, hit{id: key.ref.ID, seq: seq})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq > hits[j].seq })

	out := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out, nil
}

func (r interactionRepo) CountByUser(_ context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) (int, error) {
	a := r.t.view()
	n := 0
	for key := range a.interactions {
		if key.user == userID && key.axis == axis && key.ref.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (r interactionRepo) DeleteForResource(_ context.Context, ref models.ResourceRef) error {
	a := r.t.edit()
	for key := range a.interactionsByResource[ref] {
		delete(a.interactions, key)
	}
	delete(a.interactionsByResource, ref)
	return nil
}
