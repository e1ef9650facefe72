// internal/app/features/shared/jsonapi/jsonapi.go
//
// Package jsonapi holds the request and response helpers every JSON
// feature handler shares.
package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/app/system/paging"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// ErrBadBody reports a body that is not the expected JSON object.
var ErrBadBody = errors.New("request body must be a single JSON object")

// Write encodes v as the response with status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads one JSON object from the body into v. Unknown fields and
// trailing data are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrBadBody
	}
	return nil
}

// Actor returns the workflow caller for r. Routes that need an actor are
// wrapped in auth.RequireActor, so a missing one yields the zero Actor.
func Actor(r *http.Request) civic.Actor {
	a, _ := auth.CurrentActor(r)
	return civic.Actor{ID: a.ID, Role: a.Role, IP: auditlog.ClientIP(r)}
}

// List is the envelope of every list response.
type List[T any] struct {
	Items []T          `json:"items"`
	Range paging.Range `json:"range"`
}

// Page reads start/limit from r.
func Page(r *http.Request) backend.Page {
	limit, offset := paging.Parse(r)
	return backend.Page{Limit: limit, Offset: offset}
}

// WriteList sends items with the range computed from p.
func WriteList[T any](w http.ResponseWriter, p backend.Page, items []T) {
	if items == nil {
		items = []T{}
	}
	Write(w, http.StatusOK, List[T]{Items: items, Range: paging.ComputeRange(p.Offset+1, p.Limit, len(items))})
}
