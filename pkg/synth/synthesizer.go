package synth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/siggs/pkg/annotations"
	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// DefaultSetterPrefixes are the method name prefixes that mark a setter
var DefaultSetterPrefixes = []string{"Set", "set_"}

// Synthesizer builds one Type per parameter list
type Synthesizer struct {
	replicator     *annotations.Replicator
	setterPrefixes []string
}

// New creates a synthesizer. Without prefixes DefaultSetterPrefixes apply.
func New(replicator *annotations.Replicator, setterPrefixes ...string) *Synthesizer {
	if len(setterPrefixes) == 0 {
		setterPrefixes = DefaultSetterPrefixes
	}
	return &Synthesizer{
		replicator:     replicator,
		setterPrefixes: append([]string(nil), setterPrefixes...),
	}
}

// Synthesize defines a type for the method identity with one field per
// parameter, replicating each parameter's annotations onto its field.
// Any failure aborts the whole type.
func (s *Synthesizer) Synthesize(identity string, params []descriptor.Parameter) (*Type, error) {
	methodName := identity[strings.LastIndex(identity, ".")+1:]
	property, isSetter := s.SetterProperty(methodName, len(params))

	b := NewBuilder(identity)
	for _, p := range params {
		name := p.Name
		if isSetter {
			name = property
		}

		spec, err := b.AddField(name, p.Name, p.Type)
		if err != nil {
			return nil, withOrigin(err, identity, p.Name)
		}
		for _, a := range p.Annotations {
			if err := s.replicator.ReplicateInto(a, spec); err != nil {
				return nil, withOrigin(err, identity, p.Name)
			}
		}
	}

	t, err := b.Build()
	if err != nil {
		return nil, withOrigin(err, identity, "")
	}
	return t, nil
}

// SetterProperty reports whether a method with the given name and parameter
// count is setter-shaped, and if so the property it sets. Only single
// parameter methods qualify. A prefix ending in a letter, like "Set", must be
// followed by an upper-case letter so that "Settle" is not a setter.
func (s *Synthesizer) SetterProperty(methodName string, numParams int) (string, bool) {
	if numParams != 1 {
		return "", false
	}
	for _, prefix := range s.setterPrefixes {
		if prefix == "" || !strings.HasPrefix(methodName, prefix) || len(methodName) == len(prefix) {
			continue
		}
		rest := methodName[len(prefix):]
		last, _ := utf8.DecodeLastRuneInString(prefix)
		first, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsLetter(last) && !unicode.IsUpper(first) {
			continue
		}
		return rest, true
	}
	return "", false
}

func withOrigin(err error, identity, parameter string) error {
	var descErr *siggserrors.DescriptorError
	if errors.As(err, &descErr) {
		if descErr.Method == "" {
			descErr.WithMethod(identity)
		}
		if descErr.Parameter == "" && parameter != "" {
			descErr.WithParameter(parameter)
		}
	}
	return err
}
