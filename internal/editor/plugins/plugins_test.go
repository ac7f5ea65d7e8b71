package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/engine"
)

func TestRegisterAndExecute(t *testing.T) {
	e := engine.New(config.Default())
	assert.NoError(t, e.SetContent("<p>hello</p>"))

	script := `
function Apply(params)
    return { status = true, html = "<p>" .. params.text .. " [" .. params.value .. "]</p>" }
end`
	assert.NoError(t, Register(e, "tag-suffix", script))

	assert.NoError(t, e.Execute("tag-suffix", "v1"))
	got, err := e.Content()
	assert.NoError(t, err)
	assert.Equal(t, "<p>hello [v1]</p>", got)

	// мутация плагина участвует в истории
	assert.NoError(t, e.Execute("undo", ""))
	got, err = e.Content()
	assert.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", got)
}

func TestScriptFailuresAreNoOps(t *testing.T) {
	t.Run("empty script rejected at registration", func(t *testing.T) {
		e := engine.New(config.Default())
		assert.Error(t, Register(e, "empty", "   "))
	})

	t.Run("status false leaves document untouched", func(t *testing.T) {
		e := engine.New(config.Default())
		assert.NoError(t, e.SetContent("<p>keep</p>"))
		assert.NoError(t, Register(e, "refuse", `function Apply(params) return { status = false } end`))

		assert.NoError(t, e.Execute("refuse", ""))
		got, _ := e.Content()
		assert.Equal(t, "<p>keep</p>", got)
	})

	t.Run("broken script is a no-op", func(t *testing.T) {
		e := engine.New(config.Default())
		assert.NoError(t, e.SetContent("<p>keep</p>"))
		assert.NoError(t, Register(e, "broken", `this is not lua`))

		assert.NoError(t, e.Execute("broken", ""))
		got, _ := e.Content()
		assert.Equal(t, "<p>keep</p>", got)
	})

	t.Run("missing entrypoint is a no-op", func(t *testing.T) {
		e := engine.New(config.Default())
		assert.NoError(t, e.SetContent("<p>keep</p>"))
		assert.NoError(t, Register(e, "silent", `local x = 1`))

		assert.NoError(t, e.Execute("silent", ""))
		got, _ := e.Content()
		assert.Equal(t, "<p>keep</p>", got)
	})
}

func TestSandbox(t *testing.T) {
	e := engine.New(config.Default())
	assert.NoError(t, e.SetContent("<p>keep</p>"))

	// io и os в песочнице отсутствуют: обращение к ним валит скрипт
	script := `
function Apply(params)
    io.write("escape")
    return { status = true }
end`
	assert.NoError(t, Register(e, "escape", script))
	assert.NoError(t, e.Execute("escape", "")) // no-op c логом

	got, _ := e.Content()
	assert.Equal(t, "<p>keep</p>", got)
}

func TestDuplicateOfBuiltinRejected(t *testing.T) {
	e := engine.New(config.Default())
	assert.Error(t, Register(e, "bold", `function Apply(params) return { status = true } end`))
}
