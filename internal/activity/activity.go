// Package activity turns successful writes into organization log lines.
//
// Handlers describe what they changed with an Entry. The Registry maps the
// entry's Kind and the request method to a pure formatter.
package activity

import (
	"errors"
	"fmt"
	"net/http"

	"Itemizer/internal/model"
)

type Kind string

const (
	KindMembership   Kind = "membership"
	KindItem         Kind = "item"
	KindAssignment   Kind = "assignment"
	KindOrganization Kind = "organization"
	KindRequest      Kind = "request"
)

// Kinds lists every kind a table must cover.
var Kinds = []Kind{KindMembership, KindItem, KindAssignment, KindOrganization, KindRequest}

var (
	ErrNoFormatter    = errors.New("no formatter registered")
	ErrUnexpectedType = errors.New("unexpected subject type")
)

// Formatter renders log lines for a subject written by actor.
type Formatter func(subject any, actor *model.User) ([]string, error)

// Formatters holds one formatter per write method. A nil field means that
// method is never logged for the kind.
type Formatters struct {
	Post   Formatter
	Patch  Formatter
	Delete Formatter
}

func (f Formatters) For(method string) Formatter {
	switch method {
	case http.MethodPost:
		return f.Post
	case http.MethodPatch:
		return f.Patch
	case http.MethodDelete:
		return f.Delete
	}
	return nil
}

type Table map[Kind]Formatters

// Entry is attached by a handler to the request it served.
type Entry struct {
	Kind           Kind
	OrganizationID uint64
	Subject        any
}

type Registry struct {
	table Table
}

// NewRegistry checks that table covers every Kind and nothing else.
func NewRegistry(table Table) (*Registry, error) {
	known := make(map[Kind]bool, len(Kinds))
	for _, k := range Kinds {
		known[k] = true
		f, ok := table[k]
		if !ok {
			return nil, fmt.Errorf("activity: kind %q has no formatters", k)
		}
		if f.Post == nil && f.Patch == nil && f.Delete == nil {
			return nil, fmt.Errorf("activity: kind %q has only nil formatters", k)
		}
	}
	for k := range table {
		if !known[k] {
			return nil, fmt.Errorf("activity: unknown kind %q", k)
		}
	}
	return &Registry{table: table}, nil
}

func MustRegistry(table Table) *Registry {
	r, err := NewRegistry(table)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Has(kind Kind, method string) bool {
	return r.table[kind].For(method) != nil
}

func (r *Registry) Format(e Entry, method string, actor *model.User) ([]string, error) {
	f := r.table[e.Kind].For(method)
	if f == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoFormatter, method, e.Kind)
	}
	return f(e.Subject, actor)
}
