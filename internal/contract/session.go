package contract

import (
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Session builds a contract on first use and caches it, together with its
// compiled schema, for the lifetime of a tooling session.
type Session struct {
	load func() ([]*Declaration, error)

	once     sync.Once
	contract *Contract
	err      error

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// NewSession returns a session that aggregates the declarations returned
// by load.
func NewSession(load func() ([]*Declaration, error)) *Session {
	return &Session{load: load}
}

// Contract returns the cached contract, building it on the first call.
func (s *Session) Contract() (*Contract, error) {
	s.once.Do(func() {
		decls, err := s.load()
		if err != nil {
			s.err = err
			return
		}
		s.contract, s.err = Aggregate(decls...)
	})
	return s.contract, s.err
}

// ValidateContent validates content with the cached compiled schema.
func (s *Session) ValidateContent(content map[string]any) error {
	s.schemaOnce.Do(func() {
		contract, err := s.Contract()
		if err != nil {
			s.schemaErr = err
			return
		}
		s.schema, s.schemaErr = contract.Compile()
	})
	if s.schemaErr != nil {
		return s.schemaErr
	}
	return validateWith(s.schema, content)
}
