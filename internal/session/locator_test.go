package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finnvos/voxd/internal/config"
)

func TestExtractLabelKeywords(t *testing.T) {
	sel := config.Default().Selectors

	kw := extractLabelKeywords(sel.DictateButton)
	assert.Equal(t, []string{"dictate button", "dictate"}, kw)

	kw = extractLabelKeywords(sel.StopButton)
	assert.Equal(t, []string{"submit dictation", "stop dictation"}, kw)
}

func TestExtractLabelKeywords_DedupesAndSkipsNonAttribute(t *testing.T) {
	kw := extractLabelKeywords([]string{
		`button[aria-label*="Send" i]`,
		`button[aria-label="send"]`,
		`#composer button`,
		`textarea`,
	})
	assert.Equal(t, []string{"send"}, kw)
}

func TestExtractLabelKeywords_Empty(t *testing.T) {
	assert.Empty(t, extractLabelKeywords(nil))
	assert.Empty(t, extractLabelKeywords([]string{"div.main", "#prompt"}))
}

func TestLabelClickScript_EmbedsKeywordsAsJSON(t *testing.T) {
	js := labelClickScript([]string{"stop dictat", `tricky"quote`})
	assert.Contains(t, js, `["stop dictat","tricky\"quote"]`)
	assert.Contains(t, js, "btn.click()")
}

func TestSelectorListJS(t *testing.T) {
	out := selectorListJS([]string{`button[aria-label*="Dictate" i]`})
	assert.Equal(t, `["button[aria-label*=\"Dictate\" i]"]`, out)
}
