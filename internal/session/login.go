package session

import (
	"context"

	"github.com/finnvos/voxd/internal/config"
)

// FlagEvaluator is the minimal page-query capability a login probe
// needs.
type FlagEvaluator interface {
	EvalFlag(ctx context.Context, js string) (bool, error)
}

// LoginProbe decides whether the page is showing a login wall. The
// heuristic is inherently fragile to the host UI, so it is pluggable
// rather than baked into the state machine.
type LoginProbe func(ctx context.Context, ev FlagEvaluator, sel config.Selectors) (bool, error)

// DefaultLoginProbe reports a login wall when a login marker element is
// present, or when the page body mentions logging in while no
// dictation control exists.
func DefaultLoginProbe(ctx context.Context, ev FlagEvaluator, sel config.Selectors) (bool, error) {
	js := `() => {
		const markers = ` + selectorListJS(sel.LoginMarkers) + `;
		if (markers.some(sel => !!document.querySelector(sel))) return true;
		return document.body.innerText.includes('Log in')
			&& !document.querySelector('button[aria-label*="Dictate" i]');
	}`
	return ev.EvalFlag(ctx, js)
}
