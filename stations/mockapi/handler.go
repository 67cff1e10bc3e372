// Package mockapi serves a REST collection of stations over a key-value store,
// so the dashboard can run without an external station service.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/rs/zerolog/log"
)

const (
	StationsKey = "stations"
	sequenceKey = "stations_seq"
	maxBodySize = 1 << 20
)

// Collection stores stations under StationsKey and assigns sequential ids.
type Collection struct {
	store kv.Store
	lock  sync.Mutex
}

func NewCollection(store kv.Store) *Collection {
	return &Collection{store: store}
}

// Handler returns the routes of the collection rooted at /stations.
func (c *Collection) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stations", c.list)
	mux.HandleFunc("POST /stations", c.create)
	mux.HandleFunc("GET /stations/{id}", c.get)
	mux.HandleFunc("PUT /stations/{id}", c.update)
	mux.HandleFunc("DELETE /stations/{id}", c.remove)
	return mux
}

func (c *Collection) list(w http.ResponseWriter, r *http.Request) {
	all, err := c.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (c *Collection) get(w http.ResponseWriter, r *http.Request) {
	all, err := c.load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	i := indexOf(all, r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, all[i])
}

func (c *Collection) create(w http.ResponseWriter, r *http.Request) {
	var s stations.Station
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid station body")
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	ctx := r.Context()
	all, err := c.load(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := c.nextID(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	s.ID = id
	all = append(all, s)
	if err := kv.SetJSON(ctx, c.store, StationsKey, all); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// update merges the fields present in the body into the stored record.
func (c *Collection) update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid station body")
		return
	}
	delete(fields, "id")

	c.lock.Lock()
	defer c.lock.Unlock()

	ctx := r.Context()
	all, err := c.load(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	i := indexOf(all, r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, "Not found")
		return
	}

	merged, err := merge(all[i], fields)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid station body")
		return
	}
	all[i] = merged
	if err := kv.SetJSON(ctx, c.store, StationsKey, all); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (c *Collection) remove(w http.ResponseWriter, r *http.Request) {
	c.lock.Lock()
	defer c.lock.Unlock()

	ctx := r.Context()
	all, err := c.load(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	i := indexOf(all, r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	removed := all[i]
	all = append(all[:i], all[i+1:]...)
	if err := kv.SetJSON(ctx, c.store, StationsKey, all); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (c *Collection) load(ctx context.Context) ([]stations.Station, error) {
	all, err := kv.GetJSON[[]stations.Station](ctx, c.store, StationsKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []stations.Station{}, nil
	}
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []stations.Station{}
	}
	return all, nil
}

// nextID must be called with lock held
func (c *Collection) nextID(ctx context.Context) (string, error) {
	seq, err := kv.GetJSON[int](ctx, c.store, sequenceKey)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	seq++
	if err := kv.SetJSON(ctx, c.store, sequenceKey, seq); err != nil {
		return "", err
	}
	return strconv.Itoa(seq), nil
}

func merge(s stations.Station, fields map[string]json.RawMessage) (stations.Station, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return s, err
	}
	current := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return s, err
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err = json.Marshal(current)
	if err != nil {
		return s, err
	}
	var out stations.Station
	if err := json.Unmarshal(raw, &out); err != nil {
		return s, fmt.Errorf("merge: %w", err)
	}
	out.ID = s.ID
	return out, nil
}

func indexOf(all []stations.Station, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("mockapi: write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	log.Err(err).Msg("mockapi: storage failure")
	writeJSON(w, http.StatusInternalServerError, "storage failure")
}
