package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestFromJSON(t *testing.T) {
	t.Run("overrides merge over defaults", func(t *testing.T) {
		cfg, err := FromJSON([]byte(`{"maxCharacters": 500, "pastePolicy": "plainText"}`))
		assert.NoError(t, err)
		assert.Equal(t, 500, cfg.MaxCharacters)
		assert.Equal(t, PastePlainText, cfg.PastePolicy)
		// нетронутые поля остаются умолчаниями
		assert.Equal(t, "12pt", cfg.DefaultFontSize)
		assert.Equal(t, 100, cfg.HistoryDepth)
	})

	t.Run("empty input yields defaults", func(t *testing.T) {
		cfg, err := FromJSON(nil)
		assert.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("invalid paste policy rejected", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"pastePolicy": "yolo"}`))
		assert.Error(t, err)
	})

	t.Run("negative limit rejected", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"maxCharacters": -1}`))
		assert.Error(t, err)
	})

	t.Run("degenerate table rejected", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"table": {"rows": 0, "cols": 3}}`))
		assert.Error(t, err)
	})
}
