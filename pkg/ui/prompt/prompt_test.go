// pkg/ui/prompt/prompt_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test destination prompts without a terminal

package prompt

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/engine"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidates = []engine.Destination{
	{Repo: "work", Subdir: "dots", Root: "/repos/work/dots"},
	{Repo: "personal", Subdir: "dots", Root: "/repos/personal/dots"},
	{Repo: "personal", Subdir: "linux", Root: "/repos/personal/linux"},
}

func TestInteractive_Choice(t *testing.T) {
	var shown []string
	p := NewInteractiveWith(func(title string, options []string) (string, error) {
		assert.Equal(t, "Add /home/me/.npmrc to", title)
		shown = options
		return "personal/linux", nil
	})

	dest, ok, err := p.ChooseDestination("/home/me/.npmrc", candidates)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/repos/personal/linux", dest.Root)
	assert.Equal(t, []string{"work/dots", "personal/dots", "personal/linux", LeaveUntracked}, shown)
}

func TestInteractive_LeaveUntracked(t *testing.T) {
	p := NewInteractiveWith(func(string, []string) (string, error) {
		return LeaveUntracked, nil
	})

	_, ok, err := p.ChooseDestination("/home/me/.npmrc", candidates)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInteractive_Error(t *testing.T) {
	p := NewInteractiveWith(func(string, []string) (string, error) {
		return "", stderrors.New("no tty")
	})

	_, _, err := p.ChooseDestination("/home/me/.npmrc", candidates)
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	tests := []struct {
		dest     string
		wantRoot string
		wantErr  bool
	}{
		{dest: "work", wantRoot: "/repos/work/dots"},
		{dest: "personal", wantRoot: "/repos/personal/dots"},
		{dest: "personal/linux", wantRoot: "/repos/personal/linux"},
		{dest: "personal/macos", wantErr: true},
		{dest: "shared", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			p, err := NewFixed(tt.dest)
			require.NoError(t, err)

			dest, ok, err := p.ChooseDestination("/home/me/.npmrc", candidates)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantRoot, dest.Root)
		})
	}
}

func TestNewFixed_Invalid(t *testing.T) {
	for _, dest := range []string{"", "/dots", "a/b/c"} {
		_, err := NewFixed(dest)
		assert.Error(t, err, dest)
	}
}
