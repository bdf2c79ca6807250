package runtime

import (
	"fmt"
	"lox-lang/internal/suggest"
	"lox-lang/internal/token"
	"sort"
)

// Environment is one frame of variable bindings with a link to the frame it
// was created inside. Frames are shared: a closure, a bound method and the
// active call can all hold the same frame, which lives as long as any of them.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a frame inside enclosing; nil makes a global frame.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Enclosing returns the parent frame, or nil for the global frame.
func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

// Define binds name in this frame, replacing any existing binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks a variable up by walking the frame chain outward.
func (e *Environment) Get(name token.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if val, exists := env.values[name.Lexeme]; exists {
			return val, nil
		}
	}
	return nil, e.undefined(name)
}

// Assign rebinds the nearest existing variable called name.
func (e *Environment) Assign(name token.Token, value Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, exists := env.values[name.Lexeme]; exists {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return e.undefined(name)
}

// GetAt reads name from the frame exactly distance hops out. The resolver
// guarantees the binding exists; a miss is an interpreter bug and panics.
func (e *Environment) GetAt(distance int, name string) Value {
	val, exists := e.ancestor(distance, name).values[name]
	if !exists {
		panic(fmt.Sprintf("internal error: no binding for %q at distance %d", name, distance))
	}
	return val
}

// AssignAt writes name in the frame exactly distance hops out.
func (e *Environment) AssignAt(distance int, name string, value Value) {
	env := e.ancestor(distance, name)
	if _, exists := env.values[name]; !exists {
		panic(fmt.Sprintf("internal error: no binding for %q at distance %d", name, distance))
	}
	env.values[name] = value
}

func (e *Environment) ancestor(distance int, name string) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		if env.enclosing == nil {
			panic(fmt.Sprintf("internal error: no frame at distance %d for %q", distance, name))
		}
		env = env.enclosing
	}
	return env
}

// Names returns every name visible from this frame, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.enclosing {
		for name := range env.values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (e *Environment) undefined(name token.Token) *RuntimeError {
	err := runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
	err.Hint = suggest.Hint(name.Lexeme, e.Names())
	return err
}
