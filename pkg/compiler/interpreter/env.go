package interpreter

import (
	"maps"
	"slices"
)

// Environment is the single flat variable namespace shared by the whole
// program. There are no nested scopes: function parameters are written into
// the same mapping and a call restores a saved copy when it returns.
//
// An Environment belongs to one interpreter and is not safe for concurrent
// use.
type Environment struct {
	variables map[string]Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{variables: make(map[string]Value)}
}

// Get retrieves a variable value by name.
//
// Returns:
//   - Value: The variable value
//   - bool: true if the variable was found, false otherwise
func (e *Environment) Get(name string) (Value, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// Set binds name to value, replacing any previous binding.
func (e *Environment) Set(name string, value Value) {
	e.variables[name] = value
}

// Has checks if a variable exists.
func (e *Environment) Has(name string) bool {
	_, ok := e.variables[name]
	return ok
}

// Clone returns an independent copy of the environment.
func (e *Environment) Clone() *Environment {
	return &Environment{variables: maps.Clone(e.variables)}
}

// Names returns the bound variable names in sorted order.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.variables))
}

// Size returns the number of bound variables.
func (e *Environment) Size() int {
	return len(e.variables)
}
