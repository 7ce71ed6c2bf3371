package decision

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/vaultgate/internal/cache"
	"github.com/ppiankov/vaultgate/internal/model"
)

// Request is one access request for a resource
type Request struct {
	ID          string          `json:"id" yaml:"id"`
	ResourceID  string          `json:"resource_id" yaml:"resource_id"`
	RequesterID string          `json:"requester_id" yaml:"requester_id"`
	Position    *model.Position `json:"position,omitempty" yaml:"position,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at" yaml:"submitted_at"`

	// Report optionally carries inference results folded into the rationale
	Report *model.Report `json:"-" yaml:"-"`
}

// Registry holds pending requests until they are decided or expire.
// A request is single-use: deciding it removes it.
type Registry struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRegistry creates a registry over c; entries expire after ttl
func NewRegistry(c cache.Cache, ttl time.Duration) *Registry {
	return &Registry{cache: c, ttl: ttl}
}

// Add stores req, assigning an ID if it has none
func (r *Registry) Add(req Request) Request {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r.cache.Set(pendingKey(req.ResourceID, req.RequesterID, req.ID), req, r.ttl)
	return req
}

// Get returns a pending request by its identity
func (r *Registry) Get(resourceID, requesterID, id string) (Request, bool) {
	v, ok := r.cache.Get(pendingKey(resourceID, requesterID, id))
	if !ok {
		return Request{}, false
	}
	return v.(Request), true
}

// List returns the requester's pending requests for a resource, ordered by
// submission time then ID
func (r *Registry) List(resourceID, requesterID string) []Request {
	var out []Request
	for _, key := range r.cache.Keys(pendingPrefix(resourceID, requesterID)) {
		if v, ok := r.cache.Get(key); ok {
			out = append(out, v.(Request))
		}
	}
	sortRequests(out)
	return out
}

// Remove deletes one pending request
func (r *Registry) Remove(req Request) {
	r.cache.Delete(pendingKey(req.ResourceID, req.RequesterID, req.ID))
}

// Clear removes every pending request of the requester for the resource and
// returns how many were removed
func (r *Registry) Clear(resourceID, requesterID string) int {
	keys := r.cache.Keys(pendingPrefix(resourceID, requesterID))
	for _, key := range keys {
		r.cache.Delete(key)
	}
	return len(keys)
}

func pendingKey(resourceID, requesterID, id string) string {
	return cache.Key("pending", resourceID, requesterID, id)
}

// pendingPrefix ends in ':' so "vault-1" does not match "vault-10"
func pendingPrefix(resourceID, requesterID string) string {
	return pendingKey(resourceID, requesterID, "")
}

func sortRequests(reqs []Request) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].SubmittedAt.Equal(reqs[j].SubmittedAt) {
			return reqs[i].SubmittedAt.Before(reqs[j].SubmittedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}
