package siggs

import (
	"reflect"

	"github.com/toyz/siggs/internal/utils"
	"github.com/toyz/siggs/pkg/annotations"
	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/synth"
)

// Logger receives synthesis diagnostics
type Logger interface {
	Debug(format string, args ...interface{})
	Verbose(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Options configures a Service. Zero fields fall back to DefaultOptions.
type Options struct {
	// Registry resolves annotation type names during replication
	Registry annotations.Registry

	// SetterPrefixes mark setter-shaped methods whose single field is
	// named after the property instead of the parameter
	SetterPrefixes []string

	// Logger receives diagnostics; nil disables them
	Logger Logger
}

// DefaultOptions returns options with the built-in annotation registry and
// the default setter prefixes
func DefaultOptions() Options {
	return Options{
		Registry:       annotations.NewBuiltinRegistry(),
		SetterPrefixes: synth.DefaultSetterPrefixes,
	}
}

// Stats reports cache activity
type Stats struct {
	Types    int    // synthesized types held
	Hits     uint64 // requests served from the cache
	Misses   uint64 // requests that found no entry
	Builds   uint64 // successful syntheses
	Failures uint64 // failed syntheses, never cached
}

// Service synthesizes and memoizes parameter-list types
type Service struct {
	registry    annotations.Registry
	synthesizer *synth.Synthesizer
	cache       *utils.Cache[*synth.Type]
	logger      Logger
}

// New creates a service with its own registry and cache
func New(opts Options) *Service {
	defaults := DefaultOptions()
	if opts.Registry == nil {
		opts.Registry = defaults.Registry
	}
	if len(opts.SetterPrefixes) == 0 {
		opts.SetterPrefixes = defaults.SetterPrefixes
	}

	return &Service{
		registry:    opts.Registry,
		synthesizer: synth.New(annotations.NewReplicator(opts.Registry), opts.SetterPrefixes...),
		cache:       utils.NewCache[*synth.Type](),
		logger:      opts.Logger,
	}
}

// Registry returns the annotation registry used for replication
func (s *Service) Registry() annotations.Registry {
	return s.registry
}

// Synthesizer returns the uncached synthesizer
func (s *Service) Synthesizer() *synth.Synthesizer {
	return s.synthesizer
}

// GetOrCreate returns the type synthesized for the method, building it on
// first request. Failures are returned and not cached.
func (s *Service) GetOrCreate(m descriptor.MethodInfo) (*synth.Type, error) {
	if descriptor.IsNil(m) {
		return nil, siggserrors.NewDescriptorError("method descriptor is nil")
	}
	key := descriptor.Identity(m)

	built := false
	t, err := s.cache.GetOrCreate(key, func() (*synth.Type, error) {
		built = true

		params, err := descriptor.Extract(m)
		if err != nil {
			return nil, err
		}
		return s.synthesizer.Synthesize(key, params)
	})

	switch {
	case err != nil:
		s.warn("synthesis of %s failed: %v", key, err)
		return nil, err
	case built:
		s.verbose("synthesized %s with %d field(s)", key, t.NumField())
	default:
		s.debug("cache hit for %s", key)
	}
	return t, nil
}

// GetOrCreateFor describes the method named method on recv through
// reflection and returns its type
func (s *Service) GetOrCreateFor(recv reflect.Type, method string, params ...descriptor.ParamSpec) (*synth.Type, error) {
	m, err := descriptor.FromMethod(recv, method, params...)
	if err != nil {
		return nil, err
	}
	return s.GetOrCreate(m)
}

// Lookup returns a cached type without synthesizing
func (s *Service) Lookup(identity string) (*synth.Type, bool) {
	return s.cache.Get(identity)
}

// Types returns the identities of all cached types, sorted
func (s *Service) Types() []string {
	return s.cache.Keys()
}

// Stats returns cache statistics
func (s *Service) Stats() Stats {
	cs := s.cache.GetStats()
	return Stats{
		Types:    cs.Size,
		Hits:     cs.Hits,
		Misses:   cs.Misses,
		Builds:   cs.Builds,
		Failures: cs.Failures,
	}
}

func (s *Service) debug(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(format, args...)
	}
}

func (s *Service) verbose(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Verbose(format, args...)
	}
}

func (s *Service) warn(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(format, args...)
	}
}
