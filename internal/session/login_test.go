package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finnvos/voxd/internal/config"
)

type fakeEvaluator struct {
	result bool
	err    error
	lastJS string
}

func (f *fakeEvaluator) EvalFlag(_ context.Context, js string) (bool, error) {
	f.lastJS = js
	return f.result, f.err
}

func TestDefaultLoginProbe_EmbedsMarkers(t *testing.T) {
	ev := &fakeEvaluator{result: true}
	sel := config.Default().Selectors

	wall, err := DefaultLoginProbe(context.Background(), ev, sel)
	assert.NoError(t, err)
	assert.True(t, wall)
	for _, m := range sel.LoginMarkers {
		assert.Contains(t, ev.lastJS, strings.ReplaceAll(m, `"`, `\"`))
	}
}

func TestDefaultLoginProbe_PropagatesError(t *testing.T) {
	ev := &fakeEvaluator{err: errors.New("page gone")}

	wall, err := DefaultLoginProbe(context.Background(), ev, config.Default().Selectors)
	assert.Error(t, err)
	assert.False(t, wall)
}
