package server

import (
	"fmt"
	"strings"
)

// ValidationDetail locates one problem in a request body.
type ValidationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError is returned for malformed chat requests. It is reported as
// HTTP 422 before any model call.
type ValidationError struct {
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		loc := make([]string, 0, len(d.Loc))
		for _, l := range d.Loc {
			loc = append(loc, fmt.Sprint(l))
		}
		parts = append(parts, strings.Join(loc, ".")+": "+d.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(msg, typ string, loc ...any) {
	e.Details = append(e.Details, ValidationDetail{
		Loc:  append([]any{"body"}, loc...),
		Msg:  msg,
		Type: typ,
	})
}

func (e *ValidationError) missing(loc ...any) {
	e.add("Field required", "missing", loc...)
}

// detailResponse is the JSON error body of the chat server.
type detailResponse struct {
	Detail any `json:"detail"`
}
