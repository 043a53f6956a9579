// Package descriptor defines the on-disk format of a task descriptor: a
// versioned YAML envelope naming the task's Go type and carrying its state.
//
//	version: 1
//	type: builtin.Sleep
//	imports:
//	  - package: builtin
//	    pkgPath: github.com/viant/jobrunner/task/builtin
//	task:
//	  duration: 10s
//
// JSON documents are accepted as well, being a subset of YAML.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/viant/jobrunner/model"
	"gopkg.in/yaml.v3"
)

// Version is the only envelope schema version this build can decode.
const Version = 1

// FileName is the descriptor file name inside the working directory.
const FileName = "job.pickle"

var (
	// ErrEmpty is returned for an empty descriptor file.
	ErrEmpty = errors.New("descriptor is empty")
	// ErrUnsupportedVersion is returned when the envelope version differs from Version.
	ErrUnsupportedVersion = errors.New("unsupported descriptor version")
	// ErrMissingType is returned when the envelope does not name a task type.
	ErrMissingType = errors.New("descriptor does not name a task type")
)

// Envelope is the decoded form of a descriptor.
type Envelope struct {
	Version   int                    `json:"version" yaml:"version"`
	Type      string                 `json:"type" yaml:"type"`
	Imports   model.Imports          `json:"imports,omitempty" yaml:"imports,omitempty"`
	Framework string                 `json:"framework,omitempty" yaml:"framework,omitempty"`
	Task      map[string]interface{} `json:"task,omitempty" yaml:"task,omitempty"`
}

// Decode parses and validates a descriptor.
func Decode(data []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	envelope := &Envelope{}
	if err := yaml.Unmarshal(data, envelope); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return envelope, nil
}

// Validate checks the envelope against the schema this build understands.
func (e *Envelope) Validate() error {
	if e.Version != Version {
		if e.Version == 0 {
			return fmt.Errorf("%w: version is missing (expected %d), the file may be truncated or written by an older submitter", ErrUnsupportedVersion, Version)
		}
		return fmt.Errorf("%w: got %d, expected %d (submitted by framework %q)", ErrUnsupportedVersion, e.Version, Version, e.Framework)
	}
	if e.Type == "" {
		return ErrMissingType
	}
	if !e.Imports.IsUnique() {
		return fmt.Errorf("descriptor imports declare a package alias more than once")
	}
	return nil
}

// New builds an envelope for value registered under typeName. The task state
// is taken from value's exported fields.
func New(typeName string, value interface{}, imports ...*model.Import) (*Envelope, error) {
	state, err := toMap(value)
	if err != nil {
		return nil, fmt.Errorf("encoding task %s: %w", typeName, err)
	}
	return &Envelope{
		Version: Version,
		Type:    typeName,
		Imports: imports,
		Task:    state,
	}, nil
}

// Encode renders the envelope as YAML.
func Encode(envelope *Envelope) ([]byte, error) {
	if envelope == nil {
		return nil, fmt.Errorf("cannot encode nil descriptor")
	}
	if envelope.Version == 0 {
		envelope.Version = Version
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(envelope)
}

func toMap(value interface{}) (map[string]interface{}, error) {
	if value == nil {
		return nil, nil
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
