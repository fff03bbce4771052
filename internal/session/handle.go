// Package session owns the automation-controlled browser page: launch,
// recovery, locator strategies, and the transcription poller.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/domain"
)

// visibilityOverrideJS pins the page's visibility API to "visible" so
// dictation keeps working while the browser window is hidden
// off-screen. Chromium otherwise suspends media capture in pages it
// considers hidden.
const visibilityOverrideJS = `
	Object.defineProperty(document, 'visibilityState', {
		get: () => 'visible', configurable: true
	});
	Object.defineProperty(document, 'hidden', {
		get: () => false, configurable: true
	});
	document.addEventListener('visibilitychange', e => e.stopImmediatePropagation(), true);
`

// perStrategyTimeout bounds each CSS fallback lookup during Click.
const perStrategyTimeout = 500 * time.Millisecond

// Handle wraps the automation-controlled page. One handle per daemon
// process; Recover may swap the underlying page, so callers must not
// cache element references across a Recover boundary.
type Handle struct {
	cfg     config.Config
	logger  *zap.Logger
	visible bool
	probe   LoginProbe

	browser *rod.Browser
	page    *rod.Page
}

// SetLoginProbe replaces the login-wall heuristic. The default is
// DefaultLoginProbe.
func (h *Handle) SetLoginProbe(p LoginProbe) {
	h.probe = p
}

// Open launches (or reuses) the Chromium profile, navigates to the
// target URL and waits for the composer to render. visible=true keeps
// the window on-screen for manual login.
func Open(ctx context.Context, cfg config.Config, profileDir string, visible bool, logger *zap.Logger) (*Handle, error) {
	controlURL, err := launcher.New().
		UserDataDir(profileDir).
		Headless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check").
		Delete("enable-automation").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	h := &Handle{cfg: cfg, logger: logger, visible: visible, probe: DefaultLoginProbe, browser: browser}

	pages, err := browser.Pages()
	if err == nil && len(pages) > 0 {
		h.page = pages.First()
	} else {
		h.page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("create page: %w", err)
		}
	}

	if err := h.preparePage(ctx); err != nil {
		return nil, err
	}
	logger.Info("browser session ready", zap.Bool("visible", visible))
	return h, nil
}

// preparePage applies one-time page setup, navigates and waits for
// readiness. Shared by Open and Recover.
func (h *Handle) preparePage(ctx context.Context) error {
	if _, err := (proto.PageAddScriptToEvaluateOnNewDocument{Source: visibilityOverrideJS}).Call(h.page); err != nil {
		h.logger.Warn("could not install visibility override", zap.Error(err))
	}

	// Microphone access must be granted before dictation can start.
	if err := (proto.BrowserGrantPermissions{
		Permissions: []proto.BrowserPermissionType{proto.BrowserPermissionTypeAudioCapture},
	}).Call(h.page); err != nil {
		h.logger.Warn("could not grant microphone permission", zap.Error(err))
	}

	h.logger.Info("navigating", zap.String("url", h.cfg.TargetURL))
	if err := h.page.Context(ctx).Timeout(30 * time.Second).Navigate(h.cfg.TargetURL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	if err := h.waitReady(ctx); err != nil {
		// Recovery is best-effort: a slow page is not fatal.
		h.logger.Warn("composer not found, proceeding anyway", zap.Error(err))
	}
	h.dismissOverlays(ctx)

	if !h.visible {
		h.HideWindow()
	}
	return nil
}

// waitReady polls once a second for the composer element, up to the
// configured budget. Returns ErrRecoveryExhausted when it never shows.
func (h *Handle) waitReady(ctx context.Context) error {
	script := `() => {
		const selectors = ` + selectorListJS(h.cfg.Selectors.InputArea) + `;
		return selectors.some(sel => !!document.querySelector(sel));
	}`
	for i := 0; i < h.cfg.ReadinessPollSeconds; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
		ready, err := h.EvalFlag(ctx, script)
		if err == nil && ready {
			h.logger.Info("composer ready")
			return nil
		}
	}
	return fmt.Errorf("composer absent after %ds: %w", h.cfg.ReadinessPollSeconds, domain.ErrRecoveryExhausted)
}

// dismissOverlays closes modal dialogs that would intercept clicks.
func (h *Handle) dismissOverlays(ctx context.Context) {
	if err := h.page.Context(ctx).Keyboard.Press(input.Escape); err == nil {
		time.Sleep(300 * time.Millisecond)
	}
	_, _ = h.eval(ctx, `() => {
		for (const sel of ['button[aria-label="Close" i]', 'button[aria-label="Dismiss" i]']) {
			const btn = document.querySelector(sel);
			if (btn) { btn.click(); return true; }
		}
		return false;
	}`)
}

// eval runs a JS function on the page, classifying transport failures
// as a dead session.
func (h *Handle) eval(ctx context.Context, js string) (*proto.RuntimeRemoteObject, error) {
	res, err := h.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate: %v: %w", err, domain.ErrSessionDead)
	}
	return res, nil
}

// EvalFlag runs a JS predicate and returns its boolean result.
func (h *Handle) EvalFlag(ctx context.Context, js string) (bool, error) {
	res, err := h.eval(ctx, js)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// EvaluateText runs a read query and returns its string result.
func (h *Handle) EvaluateText(ctx context.Context, js string) (string, error) {
	res, err := h.eval(ctx, js)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", nil
	}
	return res.Value.Str(), nil
}

// IsAlive issues a trivial evaluation; any failure means dead.
func (h *Handle) IsAlive() bool {
	_, err := h.eval(context.Background(), `() => 1`)
	return err == nil
}

// Recover re-acquires or recreates the page after a crash. Idempotent:
// an alive session is a no-op. Best-effort: an unready page after the
// full budget is logged, not fatal.
func (h *Handle) Recover(ctx context.Context) error {
	if h.IsAlive() {
		return nil
	}
	h.logger.Warn("page is dead, recovering")

	pages, err := h.browser.Pages()
	if err == nil && len(pages) > 0 {
		h.page = pages.First()
	}
	if err != nil || !h.IsAlive() {
		page, perr := h.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if perr != nil {
			return fmt.Errorf("recreate page: %w", perr)
		}
		h.page = page
	}

	if err := h.preparePage(ctx); err != nil {
		return fmt.Errorf("recover page: %w", err)
	}
	h.logger.Info("page recovered")
	return nil
}

// Navigate points the page at a new URL.
func (h *Handle) Navigate(ctx context.Context, url string) error {
	return h.page.Context(ctx).Timeout(30 * time.Second).Navigate(url)
}

// Click locates an interactive element through the ordered locator
// strategies and invokes it: one page-side label-substring pass first,
// then each CSS selector with a short timeout. ErrElementNotFound when
// the combined budget is exhausted.
func (h *Handle) Click(ctx context.Context, selectors []string) error {
	if keywords := extractLabelKeywords(selectors); len(keywords) > 0 {
		clicked, err := h.EvalFlag(ctx, labelClickScript(keywords))
		if err != nil {
			return err
		}
		if clicked {
			return nil
		}
	}

	for _, sel := range selectors {
		el, err := h.page.Context(ctx).Timeout(perStrategyTimeout).Element(sel)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return nil
	}
	return fmt.Errorf("no element for %d strategies: %w", len(selectors), domain.ErrElementNotFound)
}

// ClickDictate invokes the begin-dictation control.
func (h *Handle) ClickDictate(ctx context.Context) error {
	return h.Click(ctx, h.cfg.Selectors.DictateButton)
}

// ClickStop invokes the end-dictation control.
func (h *Handle) ClickStop(ctx context.Context) error {
	return h.Click(ctx, h.cfg.Selectors.StopButton)
}

// InputText reads the current text of the composer.
func (h *Handle) InputText(ctx context.Context) (string, error) {
	return h.EvaluateText(ctx, `() => {
		const selectors = `+selectorListJS(h.cfg.Selectors.InputArea)+`;
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			if (el) {
				const text = (el.innerText || el.value || '').trim();
				if (text) return text;
			}
		}
		return '';
	}`)
}

// ClearInput empties the composer and fires an input event so the page
// notices.
func (h *Handle) ClearInput(ctx context.Context) error {
	_, err := h.eval(ctx, `() => {
		const selectors = `+selectorListJS(h.cfg.Selectors.InputArea)+`;
		for (const sel of selectors) {
			const el = document.querySelector(sel);
			if (el) {
				if (el.tagName === 'TEXTAREA') {
					el.value = '';
				} else {
					el.innerHTML = '<p><br></p>';
				}
				el.dispatchEvent(new Event('input', { bubbles: true }));
				return true;
			}
		}
		return false;
	}`)
	return err
}

// LoginWallVisible applies the pluggable login probe.
func (h *Handle) LoginWallVisible(ctx context.Context) (bool, error) {
	return h.probe(ctx, h, h.cfg.Selectors)
}

// CountLabeledButtons returns how many labeled buttons the page shows.
// Used as an error diagnostic instead of dumping label text, which can
// include transcript-adjacent UI copy.
func (h *Handle) CountLabeledButtons(ctx context.Context) int {
	res, err := h.eval(ctx, `() => {
		return Array.from(document.querySelectorAll('button'))
			.filter(b => (b.getAttribute('aria-label') || b.innerText || '').trim() !== '')
			.length;
	}`)
	if err != nil {
		return -1
	}
	return res.Value.Int()
}

// HideWindow parks the browser window off-screen. True minimization
// would suspend the page and break evaluation, so the window stays
// "normal" but far outside the desktop.
func (h *Handle) HideWindow() {
	h.setWindowBounds(-10000, -10000, 800, 600)
}

// ShowWindow brings the window back on-screen for manual interaction,
// e.g. when a login wall appears.
func (h *Handle) ShowWindow() {
	h.setWindowBounds(100, 100, 1024, 768)
}

func (h *Handle) setWindowBounds(left, top, width, height int) {
	win, err := proto.BrowserGetWindowForTarget{}.Call(h.page)
	if err != nil {
		h.logger.Warn("could not query browser window", zap.Error(err))
		return
	}
	// Leave maximized/fullscreen state first, bounds changes are
	// ignored otherwise.
	err = proto.BrowserSetWindowBounds{
		WindowID: win.WindowID,
		Bounds:   &proto.BrowserBounds{WindowState: proto.BrowserWindowStateNormal},
	}.Call(h.page)
	if err == nil {
		time.Sleep(100 * time.Millisecond)
		err = proto.BrowserSetWindowBounds{
			WindowID: win.WindowID,
			Bounds:   &proto.BrowserBounds{Left: &left, Top: &top, Width: &width, Height: &height},
		}.Call(h.page)
	}
	if err != nil {
		h.logger.Warn("could not move browser window", zap.Error(err))
	}
}

// Close shuts the browser down.
func (h *Handle) Close() error {
	if h.browser == nil {
		return nil
	}
	return h.browser.Close()
}
