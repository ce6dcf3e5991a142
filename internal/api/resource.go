package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/collection"
	"github.com/yanizio/agenda/internal/coordinator"
	"github.com/yanizio/agenda/internal/model"
	"github.com/yanizio/agenda/internal/store"
	"github.com/yanizio/agenda/internal/workspace"
)

// maxBody caps form submissions.
const maxBody = 1 << 20

type table[R model.Record] interface {
	Get(ctx context.Context, id string) (R, error)
	List(ctx context.Context, o store.ListOptions) ([]R, error)
}

// resource serves one entity kind.
type resource[R model.Record, F any] struct {
	*server
	kind  model.Kind
	tab   workspace.Tab
	coll  *collection.Collection[R]
	table table[R]
	slot  *coordinator.Slot[R, F]
}

func (rs *resource[R, F]) mount(r chi.Router) {
	r.Get("/", rs.list)
	r.Post("/", rs.create)
	r.Get("/form", rs.form)
	r.Delete("/form", rs.dismiss)
	r.Get("/{id}", rs.get)
	r.Put("/{id}", rs.update)
	r.Delete("/{id}", rs.remove)
}

type listResponse[R model.Record] struct {
	Kind    model.Kind `json:"kind"`
	Count   int        `json:"count"`
	Records []R        `json:"records"`
}

// list reloads the tab's collection and filters it.  An explicit sort
// bypasses the collection and reads the table in that order.
func (rs *resource[R, F]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := rs.coll.Spec()

	var records []R
	if field := q.Get("sort"); field != "" {
		o := spec.Order
		o.Field, o.Desc = store.SortField(field), q.Get("desc") == "true"
		var err error
		records, err = rs.table.List(r.Context(), store.ListOptions{Order: o, JoinLocation: spec.Join})
		if errors.Is(err, store.ErrQuery) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			rs.writeError(w, r, err)
			return
		}
	} else {
		if err := rs.Workspace.Load(r.Context(), rs.tab); err != nil {
			rs.writeError(w, r, err)
			return
		}
		records = rs.coll.Records()
	}

	class := model.Classification(q.Get("classification"))
	out := slices.Collect(collection.Filter(records, spec, q.Get("q"), class))
	if out == nil {
		out = []R{}
	}
	writeJSON(w, http.StatusOK, listResponse[R]{Kind: rs.kind, Count: len(out), Records: out})
}

func (rs *resource[R, F]) get(w http.ResponseWriter, r *http.Request) {
	rec, err := rs.table.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rs.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// create opens a blank form, applies the body over its defaults, and saves.
// A failed save dismisses the form so the next request can open it.
func (rs *resource[R, F]) create(w http.ResponseWriter, r *http.Request) {
	if err := rs.slot.OpenNew(); err != nil {
		rs.writeError(w, r, err)
		return
	}
	rs.submit(w, r, http.StatusCreated)
}

// update opens the record's form and applies the body over its current
// fields, so omitted fields keep their values.
func (rs *resource[R, F]) update(w http.ResponseWriter, r *http.Request) {
	rec, err := rs.table.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rs.writeError(w, r, err)
		return
	}
	if err := rs.slot.OpenEdit(rec); err != nil {
		rs.writeError(w, r, err)
		return
	}
	rs.submit(w, r, http.StatusOK)
}

func (rs *resource[R, F]) submit(w http.ResponseWriter, r *http.Request, status int) {
	fields := rs.slot.Draft()
	if err := decodeFields(http.MaxBytesReader(w, r.Body, maxBody), &fields); err != nil {
		_ = rs.slot.Cancel()
		writeMessage(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	id, err := rs.slot.Save(r.Context(), fields)
	var refresh *coordinator.RefreshError
	switch {
	case errors.As(err, &refresh):
		// Saved; only the follow-up reload failed.
		rs.Log.Warn("saved but refresh failed", zap.String("kind", string(rs.kind)), zap.Error(err))
	case err != nil:
		_ = rs.slot.Cancel()
		rs.writeError(w, r, err)
		return
	}

	rec, err := rs.table.Get(r.Context(), id)
	if err != nil {
		rs.writeError(w, r, err)
		return
	}
	writeJSON(w, status, rec)
}

// serverKeys are record keys the store assigns.  A client may echo a GET
// response back as the body; these keys are dropped instead of rejected.
var serverKeys = []string{"id", "created_at", "updated_at", "location"}

// decodeFields applies a JSON object over fields.  Keys that are neither
// editable fields nor serverKeys are an error.
func decodeFields(body io.Reader, fields any) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return err
	}
	for _, k := range serverKeys {
		delete(raw, k)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(fields)
}

type formResponse[F any] struct {
	State     string `json:"state"`
	EditingID string `json:"editing_id,omitempty"`
	Saving    bool   `json:"saving"`
	Draft     *F     `json:"draft,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func (rs *resource[R, F]) form(w http.ResponseWriter, _ *http.Request) {
	st := rs.slot.State()
	resp := formResponse[F]{State: st.String(), EditingID: rs.slot.EditingID(), Saving: rs.slot.Saving()}
	if st != coordinator.Closed {
		d := rs.slot.Draft()
		resp.Draft = &d
	}
	if err := rs.slot.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rs *resource[R, F]) dismiss(w http.ResponseWriter, r *http.Request) {
	if err := rs.slot.Dismiss(); err != nil {
		rs.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type confirmResponse struct {
	Error  string            `json:"error"`
	Prompt collection.Prompt `json:"prompt"`
}

// remove deletes only when the caller passes confirm=true; otherwise it
// answers 409 with the prompt the caller should show.
func (rs *resource[R, F]) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed := r.URL.Query().Get("confirm") == "true"

	var prompt collection.Prompt
	out, err := rs.coll.DeleteOne(r.Context(), id, collection.ConfirmFunc(
		func(_ context.Context, p collection.Prompt) (bool, error) {
			prompt = p
			return confirmed, nil
		}))

	switch out {
	case collection.DeleteCancelled:
		if err != nil {
			rs.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusConflict, confirmResponse{Error: "confirmation required", Prompt: prompt})
	case collection.DeleteRemoved:
		if err != nil {
			rs.Log.Warn("deleted but reload failed", zap.String("kind", string(rs.kind)), zap.Error(err))
		}
		rs.Workspace.Mutations.Deleted(r.Context(), rs.kind, id)
		w.WriteHeader(http.StatusNoContent)
	case collection.DeleteAlreadyGone:
		writeMessage(w, http.StatusNotFound, store.ErrNotFound.Error())
	default:
		rs.writeError(w, r, err)
	}
}
