// Package schema validates and loads VQG graph documents.
//
// Documents are checked against an embedded CUE schema. Graphs may be
// written as JSON or as CUE; CUE files hold either a top-level list or
// a connections field.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/querygraph/internal/vqg"
)

//go:embed graph.cue
var graphCUE string

// Violation is one schema error.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (v Violation) String() string {
	loc := v.Path
	if loc == "" {
		loc = "<root>"
	}
	if v.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s: %s", v.Line, v.Column, loc, v.Message)
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// ValidationError collects every violation found in a document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid graph: " + e.Violations[0].String()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid graph: %d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

// A cue.Context is not safe for concurrent use.
var (
	mu     sync.Mutex
	cueCtx = cuecontext.New()

	graphDef cue.Value
	defErr   error
	defOnce  sync.Once
)

func definition() (cue.Value, error) {
	defOnce.Do(func() {
		schema := cueCtx.CompileString(graphCUE, cue.Filename("graph.cue"))
		if err := schema.Err(); err != nil {
			defErr = fmt.Errorf("compile graph schema: %w", err)
			return
		}
		graphDef = schema.LookupPath(cue.ParsePath("#Graph"))
	})
	return graphDef, defErr
}

// Validate checks a JSON graph document against the schema and reports
// every violation as a *ValidationError.
func Validate(data []byte) error {
	mu.Lock()
	defer mu.Unlock()

	doc := cueCtx.CompileBytes(data, cue.Filename("graph.json"))
	if err := doc.Err(); err != nil {
		return violations(err)
	}
	_, err := check(doc)
	return err
}

// check unifies v with #Graph. Callers hold mu.
func check(v cue.Value) (cue.Value, error) {
	def, err := definition()
	if err != nil {
		return cue.Value{}, err
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, violations(err)
	}
	return unified, nil
}

func violations(err error) *ValidationError {
	errs := cueerrors.Errors(err)
	out := &ValidationError{Violations: make([]Violation, 0, len(errs))}
	for _, e := range errs {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			v.Line = pos[0].Line()
			v.Column = pos[0].Column()
		}
		out.Violations = append(out.Violations, v)
	}
	return out
}

// LoadFile reads a graph document. ".cue" files are evaluated and
// validated; anything else is decoded as JSON.
func LoadFile(path string) ([]vqg.Connection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadCUE(data, filepath.Base(path))
	}
	conns, err := vqg.DecodeConnections(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return conns, nil
}

// LoadCUE evaluates a CUE graph document and decodes it with the same
// defaults as JSON input.
func LoadCUE(data []byte, filename string) ([]vqg.Connection, error) {
	mu.Lock()
	defer mu.Unlock()

	v := cueCtx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, violations(err)
	}
	if v.IncompleteKind() != cue.ListKind {
		v = v.LookupPath(cue.ParsePath("connections"))
		if !v.Exists() {
			return nil, fmt.Errorf("%s: expected a list of connections or a connections field", filename)
		}
	}

	unified, err := check(v)
	if err != nil {
		return nil, err
	}
	out, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", filename, err)
	}
	return vqg.DecodeConnections(out)
}
