package formdef

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed builtin/*.yml
var builtinFS embed.FS

// ErrUnknownBuiltin is returned for names not shipped with the binary.
var ErrUnknownBuiltin = errors.New("unknown built-in form")

// DefaultBuiltin is used when neither a file nor a built-in is configured.
const DefaultBuiltin = "life-quote"

// Names lists the built-in definitions.
func Names() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

// BuiltinSource returns the raw YAML of a built-in definition.
func BuiltinSource(name string) ([]byte, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownBuiltin, name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Builtin parses a built-in definition.
func Builtin(name string) (*Definition, error) {
	data, err := BuiltinSource(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Resolve picks the definition for a run: a file path wins over a built-in
// name, and DefaultBuiltin is used when both are empty.
func Resolve(path, builtin string) (*Definition, error) {
	if path != "" {
		return Load(path)
	}
	if builtin == "" {
		builtin = DefaultBuiltin
	}
	return Builtin(builtin)
}
