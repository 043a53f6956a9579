package descriptor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/jobrunner/model"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name      string
		data      string
		expectErr error
		expectAny bool
		check     func(t *testing.T, e *Envelope)
	}{
		{
			name: "yaml",
			data: "version: 1\ntype: builtin.Sleep\nimports:\n  - package: builtin\n    pkgPath: github.com/viant/jobrunner/task/builtin\ntask:\n  duration: 10s\n",
			check: func(t *testing.T, e *Envelope) {
				assert.Equal(t, "builtin.Sleep", e.Type)
				assert.Equal(t, "github.com/viant/jobrunner/task/builtin", e.Imports.PkgPath("builtin"))
				assert.Equal(t, "10s", e.Task["duration"])
			},
		},
		{
			name: "json",
			data: `{"version":1,"type":"builtin.Printer","task":{"message":"hi"}}`,
			check: func(t *testing.T, e *Envelope) {
				assert.Equal(t, "builtin.Printer", e.Type)
				assert.Equal(t, "hi", e.Task["message"])
			},
		},
		{
			name:      "empty",
			data:      "  \n",
			expectErr: ErrEmpty,
		},
		{
			name:      "missing version",
			data:      "type: builtin.Nop\n",
			expectErr: ErrUnsupportedVersion,
		},
		{
			name:      "future version",
			data:      "version: 2\ntype: builtin.Nop\nframework: 0.9.0\n",
			expectErr: ErrUnsupportedVersion,
		},
		{
			name:      "missing type",
			data:      "version: 1\n",
			expectErr: ErrMissingType,
		},
		{
			name:      "truncated",
			data:      "version: 1\ntype: builtin.Sleep\ntask:\n  duration: [10",
			expectAny: true,
		},
		{
			name:      "duplicate alias",
			data:      "version: 1\ntype: a.B\nimports:\n  - package: a\n    pkgPath: x/a\n  - package: a\n    pkgPath: y/a\n",
			expectAny: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			envelope, err := Decode([]byte(tc.data))
			if tc.expectErr != nil {
				assert.True(t, errors.Is(err, tc.expectErr), "unexpected error: %v", err)
				return
			}
			if tc.expectAny {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			tc.check(t, envelope)
		})
	}
}

func TestDecode_VersionMessage(t *testing.T) {
	_, err := Decode([]byte("version: 3\ntype: builtin.Nop\nframework: 0.9.0\n"))
	assert.ErrorContains(t, err, "got 3, expected 1")
	assert.ErrorContains(t, err, "0.9.0")
}

type sleep struct {
	Duration string
	Labels   map[string]string
	internal int
}

func TestNewEncodeDecode(t *testing.T) {
	value := &sleep{Duration: "2s", Labels: map[string]string{"team": "data"}, internal: 7}
	envelope, err := New("builtin.Sleep", value, model.NewImport("github.com/viant/jobrunner/task/builtin"))
	assert.NoError(t, err)

	data, err := Encode(envelope)
	assert.NoError(t, err)

	decoded, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, Version, decoded.Version)
	assert.Equal(t, "builtin.Sleep", decoded.Type)
	assert.Equal(t, "github.com/viant/jobrunner/task/builtin", decoded.Imports.PkgPath("builtin"))
	assert.Equal(t, "2s", decoded.Task["duration"])
	assert.NotContains(t, decoded.Task, "internal")
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)

	_, err = Encode(&Envelope{})
	assert.True(t, errors.Is(err, ErrMissingType))
}
