// Пакет реализует плагинные команды на Lua: внешний актор регистрирует в
// реестре движка команду, обработчик которой выполняет пользовательский скрипт
// в песочнице. Скрипт получает HTML и плоский текст документа вместе со
// значением команды и возвращает новый HTML документа.
//
// Основные возможности:
//   - Песочница: файловая система, сеть и загрузка модулей скрипту недоступны.
//   - Ограничение времени выполнения скрипта.
//   - Сбор сообщений print из скрипта в лог движка.
package plugins

import (
	"context"
	"log/slog"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
	"github.com/aisa-it/aiplan-editor/internal/editor/engine"
)

const scriptTimeout = 10 * time.Second

// Apply - имя функции, которую обязан определить скрипт плагина.
// Сигнатура: Apply(params) -> { status = bool, html = string? }
const entrypoint = "Apply"

// Register добавляет Lua-команду в реестр движка. Скрипт валидируется на
// пустоту, но компилируется при каждом вызове: состояние Lua не переживает
// команду.
func Register(e *engine.Engine, name, script string) error {
	if strings.TrimSpace(script) == "" {
		return ederrors.ErrPluginFailed
	}
	return e.Register(name, true, Handler(script))
}

// Handler оборачивает Lua-скрипт в обработчик команды движка.
func Handler(script string) engine.Handler {
	return func(c *engine.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
		defer cancel()

		state := lua.NewState()
		defer state.Close()

		deniedLib(state)
		messages := registerLogger(state)
		defer drainMessages(messages)

		errChan := make(chan error, 1)
		go func() {
			errChan <- state.DoString(script)
		}()
		select {
		case <-ctx.Done():
			slog.Warn("Plugin script timed out")
			return ederrors.ErrPluginFailed
		case err := <-errChan:
			if err != nil {
				slog.Warn("Plugin script failed to load", "err", strings.TrimSpace(err.Error()))
				return ederrors.ErrPluginFailed
			}
		}

		fn := state.GetGlobal(entrypoint)
		if fn == lua.LNil {
			slog.Warn("Plugin script defines no entrypoint", "fn", entrypoint)
			return ederrors.ErrPluginFailed
		}

		html, err := doctree.RenderString(c.Doc)
		if err != nil {
			return err
		}
		params := state.NewTable()
		params.RawSetString("html", lua.LString(html))
		params.RawSetString("text", lua.LString(c.Doc.PlainText()))
		params.RawSetString("value", lua.LString(c.Value))

		resultChan := make(chan lua.LValue, 1)
		go func() {
			if err := state.CallByParam(lua.P{
				Fn:      fn,
				NRet:    1,
				Protect: true,
			}, params); err != nil {
				slog.Warn("Plugin call failed", "err", strings.TrimSpace(err.Error()))
				resultChan <- lua.LNil
			} else {
				resultChan <- state.Get(-1)
			}
		}()

		var ret lua.LValue
		select {
		case <-ctx.Done():
			slog.Warn("Plugin call timed out")
			return ederrors.ErrPluginFailed
		case ret = <-resultChan:
		}

		retTable, ok := ret.(*lua.LTable)
		if !ok {
			return ederrors.ErrPluginFailed
		}
		if retTable.RawGetString("status") != lua.LTrue {
			return ederrors.ErrPluginFailed
		}

		if newHTML := retTable.RawGetString("html"); newHTML.Type() == lua.LTString {
			return replaceDocument(c.Doc, newHTML.String())
		}
		// статус успешный, но нового HTML нет: документ не менялся
		c.NoChange()
		return nil
	}
}

// replaceDocument замещает содержимое документа распарсенным HTML плагина.
// Фрагмент проходит тот же парсер, что и любой внешний контент.
func replaceDocument(doc *doctree.Node, html string) error {
	nodes, err := doctree.ParseFragment(html)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return ederrors.ErrPluginFailed
	}
	old := make([]*doctree.Node, len(doc.Children()))
	copy(old, doc.Children())
	for _, child := range old {
		child.Detach()
	}
	for _, n := range nodes {
		doc.AppendChild(n)
	}
	return nil
}

func deniedLib(state *lua.LState) {
	state.SetGlobal("require", lua.LNil)
	state.SetGlobal("loadfile", lua.LNil)
	state.SetGlobal("dofile", lua.LNil)
	state.SetGlobal("net", lua.LNil)
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("coroutine", lua.LNil)
	state.SetGlobal("socket", lua.LNil)
	state.SetGlobal("lfs", lua.LNil)
	state.SetGlobal("os", lua.LNil)
	state.SetGlobal("io", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("ffi", lua.LNil)
}

// registerLogger подменяет print на сборщик сообщений скрипта.
func registerLogger(state *lua.LState) *lua.LTable {
	messages := state.NewTable()
	state.SetGlobal("messages", messages)
	state.SetGlobal("print", state.NewFunction(func(L *lua.LState) int {
		var message string
		numArgs := L.GetTop()
		for i := 1; i <= numArgs; i++ {
			arg := L.ToString(i)
			if i > 1 {
				message += " "
			}
			message += arg
		}
		messages.Append(lua.LString(message))
		return 0
	}))
	return messages
}

func drainMessages(messages *lua.LTable) {
	for i := 1; i <= messages.Len(); i++ {
		slog.Debug("Plugin message", "msg", messages.RawGetInt(i).String())
	}
}
