// Пакет реализует движок команд редактора: диспетчеризацию именованных команд,
// владение деревом документа и координацию подсистем (выделение, история,
// нормализация, таблицы, вставка). Движок - единственный владелец дерева;
// остальные компоненты получают его по ссылке и не делают глобальных запросов.
//
// Основные возможности:
//   - Реестр команд с возможностью регистрации внешних (плагинных) команд.
//   - Снапшот истории перед каждой мутирующей командой, undo/redo.
//   - Разрешение выделения с цепочкой фолбэков (живой провайдер -> текущее -> сохраненное -> посев).
//   - Нормализация дерева после каждой мутации и дебаунс-уведомление document-changed.
//   - Ввод текста с учетом лимита символов, вставка из буфера, асинхронная загрузка изображений.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
	"github.com/aisa-it/aiplan-editor/internal/editor/events"
	"github.com/aisa-it/aiplan-editor/internal/editor/history"
	"github.com/aisa-it/aiplan-editor/internal/editor/normalize"
	"github.com/aisa-it/aiplan-editor/internal/editor/paste"
	"github.com/aisa-it/aiplan-editor/internal/editor/selection"
	"github.com/aisa-it/aiplan-editor/internal/editor/styles"
	"github.com/aisa-it/aiplan-editor/pkg/charlimit"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc("text/html", mhtml.Minify)
}

// Handler - обработчик команды. Восстановимые отказы (нет таблицы, устаревшее
// выделение) возвращаются ошибками и превращаются движком в no-op с логом.
type Handler func(c *Context) error

// Context передается обработчику команды: документ, разрешенное выделение
// и опциональное значение команды.
type Context struct {
	Engine *Engine
	Doc    *doctree.Node
	Sel    selection.Selection
	Value  string

	noChange bool
}

// NoChange помечает команду как не изменившую документ (например, toggle на
// схлопнутом курсоре лишь взводит отложенный формат). Снапшот истории для
// такой команды не фиксируется.
func (c *Context) NoChange() { c.noChange = true }

type command struct {
	handler  Handler
	mutating bool
}

// ImageHandler - внедряемый обработчик загрузки изображений. Вызывается
// синхронно, callback может прийти позже (после загрузки на сервер).
type ImageHandler func(file io.Reader, name string, callback func(url string))

type Engine struct {
	cfg config.EditorConfig

	doc      *doctree.Node
	tracker  *selection.Tracker
	hist     *history.Manager
	resolver *styles.Resolver
	bus      *events.Bus
	limiter  *charlimit.Limiter

	registry map[string]command

	provider     selection.Provider
	imageHandler ImageHandler

	// Отложенные toggle-форматы для схлопнутого курсора: следующий введенный
	// текст получает их, как это делает режим "жирный включен" в браузере.
	pendingMarks  map[doctree.Kind]bool
	pendingStyles map[string]string
}

type Option func(*Engine)

// WithSelectionProvider внедряет источник живого выделения хоста.
func WithSelectionProvider(p selection.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithImageHandler внедряет обработчик загрузки изображений.
func WithImageHandler(h ImageHandler) Option {
	return func(e *Engine) { e.imageHandler = h }
}

// WithChangeDebounce переопределяет окно дебаунса document-changed.
func WithChangeDebounce(d time.Duration) Option {
	return func(e *Engine) { e.bus = events.NewBus(d) }
}

func New(cfg config.EditorConfig, opts ...Option) *Engine {
	doc := doctree.NewDocument()
	e := &Engine{
		cfg:           cfg,
		doc:           doc,
		tracker:       selection.NewTracker(doc),
		hist:          history.NewManager(cfg.HistoryDepth),
		resolver:      styles.NewResolver(cfg),
		bus:           events.NewBus(200 * time.Millisecond),
		limiter:       charlimit.New(cfg.MaxCharacters),
		registry:      make(map[string]command),
		pendingMarks:  make(map[doctree.Kind]bool),
		pendingStyles: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerBuiltins()
	return e
}

func (e *Engine) Document() *doctree.Node     { return e.doc }
func (e *Engine) Bus() *events.Bus            { return e.bus }
func (e *Engine) Resolver() *styles.Resolver  { return e.resolver }
func (e *Engine) Tracker() *selection.Tracker { return e.tracker }
func (e *Engine) Config() config.EditorConfig { return e.cfg }

// Register добавляет команду в реестр. Внешние акторы (плагины) регистрируют
// свои команды на инициализации; существующая команда не перекрывается.
func (e *Engine) Register(name string, mutating bool, h Handler) error {
	if _, exists := e.registry[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	e.registry[name] = command{handler: h, mutating: mutating}
	return nil
}

func (e *Engine) register(name string, mutating bool, h Handler) {
	e.registry[name] = command{handler: h, mutating: mutating}
}

// Execute выполняет команду по имени. Неизвестная команда - no-op c ошибкой
// ErrUnknownCommand; восстановимые отказы обработчиков тоже no-op.
// Источник вызова (тулбар, шорткат, меню) значения не имеет.
func (e *Engine) Execute(name string, value string) error {
	cmd, ok := e.registry[name]
	if !ok {
		slog.Warn("Unknown command", "name", name)
		return ederrors.ErrUnknownCommand
	}

	// Снапшот снимается до обработчика, но фиксируется в истории только если
	// команда действительно изменила документ: отказавшаяся или отложенная
	// команда не должна порождать пустой шаг undo.
	var before *doctree.Node
	if cmd.mutating {
		before = e.doc.Clone()
	}

	sel := e.resolveSelection()
	ctx := &Context{Engine: e, Doc: e.doc, Sel: sel, Value: value}

	if err := cmd.handler(ctx); err != nil {
		var de ederrors.DefinedError
		if errors.As(err, &de) {
			slog.Warn("Command is a no-op", "name", name, "code", de.Code, "err", de.Err)
			return nil
		}
		return err
	}

	if cmd.mutating && !ctx.noChange {
		e.hist.Push(before)
		e.afterMutation()
	}
	return nil
}

// afterMutation - общий хвост каждой мутации: ремонт инвариантов,
// пересохранение выделения и уведомление наблюдателей.
func (e *Engine) afterMutation() {
	normalize.Normalize(e.doc)
	if e.doc.ChildCount() == 0 {
		// документ никогда не пустеет: остается минимальный параграф
		p := doctree.NewNode(doctree.Paragraph)
		p.AppendChild(doctree.NewNode(doctree.LineBreak))
		e.doc.AppendChild(p)
	}
	if _, ok := e.tracker.Current(); !ok {
		e.tracker.SeedDefault()
	}
	e.tracker.Save()
	e.bus.PublishDebounced(events.Event{Type: events.DocumentChanged})
}

// resolveSelection возвращает действующее выделение. Порядок фолбэков:
// живой провайдер хоста -> текущее выделение трекера -> последнее сохраненное
// (тулбар/меню крадут фокус) -> посев в начало документа.
func (e *Engine) resolveSelection() selection.Selection {
	if e.provider != nil {
		if sel, ok := e.provider.CurrentSelection(e.doc); ok {
			prev, hadPrev := e.tracker.Current()
			if err := e.tracker.Set(sel); err == nil {
				cur, _ := e.tracker.Current()
				// отложенные форматы переживают только неизменившееся выделение
				if !hadPrev || !cur.Equal(prev) {
					e.clearPending()
				}
				return cur
			}
		}
	}
	if sel, ok := e.tracker.Current(); ok {
		return sel
	}
	if saved, ok := e.tracker.LastSaved(); ok {
		if err := e.tracker.Restore(saved); err == nil {
			sel, _ := e.tracker.Current()
			return sel
		}
		slog.Warn("Saved selection is stale, reseeding", "err", ederrors.ErrStaleSelection.Err)
	}
	e.tracker.SeedDefault()
	sel, _ := e.tracker.Current()
	return sel
}

// SetSelection устанавливает выделение снаружи (хост сообщает о кликах/стрелках).
func (e *Engine) SetSelection(sel selection.Selection) error {
	if err := e.tracker.Set(sel); err != nil {
		return err
	}
	e.clearPending()
	return nil
}

// SaveSelection снимает сохраняемое выделение. Хост обязан вызывать это перед
// любым взаимодействием вне поверхности документа.
func (e *Engine) SaveSelection() selection.Saved {
	return e.tracker.Save()
}

func (e *Engine) clearPending() {
	if len(e.pendingMarks) > 0 {
		e.pendingMarks = make(map[doctree.Kind]bool)
	}
	if len(e.pendingStyles) > 0 {
		e.pendingStyles = make(map[string]string)
	}
}

// Content возвращает сериализованный HTML документа.
func (e *Engine) Content() (string, error) {
	return doctree.RenderString(e.doc)
}

// ContentMinified возвращает компактный HTML для выгрузки в backing-поле формы.
func (e *Engine) ContentMinified() (string, error) {
	raw, err := doctree.RenderString(e.doc)
	if err != nil {
		return "", err
	}
	return minifier.String("text/html", raw)
}

// PlainText возвращает плоский текст документа.
func (e *Engine) PlainText() string {
	return e.doc.PlainText()
}

// SetContent парсит HTML, нормализует и замещает документ целиком.
func (e *Engine) SetContent(html string) error {
	e.hist.SnapshotBeforeChange(e.doc)
	doc, err := doctree.Parse(strings.NewReader(html))
	if err != nil {
		return err
	}
	if doc.ChildCount() == 0 {
		doc = doctree.NewDocument()
	}
	e.doc = doc
	normalize.Normalize(e.doc)
	e.tracker.Rebind(e.doc)
	e.tracker.Save()
	e.bus.PublishDebounced(events.Event{Type: events.DocumentChanged})
	return nil
}

// SetPasteMode переключает режим вставки на живой копии конфигурации.
func (e *Engine) SetPasteMode(mode string) error {
	if mode != config.PastePlainText && mode != config.PasteFormattedAndPlain {
		return ederrors.ErrUnsupportedPasteContent
	}
	e.cfg.PastePolicy = mode
	e.bus.Publish(events.Event{Type: events.PasteModeChanged, Payload: mode})
	return nil
}

// SetTheme меняет тему на живой копии конфигурации.
func (e *Engine) SetTheme(theme string) {
	e.cfg.Theme = theme
}

// FocusGained сообщается хостом при получении фокуса поверхностью документа.
func (e *Engine) FocusGained() {
	e.bus.Publish(events.Event{Type: events.FocusGained})
}

// FocusLost сообщается хостом при потере фокуса. Выделение сохраняется:
// платформа очищает его при blur.
func (e *Engine) FocusLost() {
	e.tracker.Save()
	e.bus.Publish(events.Event{Type: events.FocusLost})
}

// InsertText - путь ввода с клавиатуры. Ввод сверх лимита символов отклоняется.
func (e *Engine) InsertText(text string) error {
	if text == "" {
		return nil
	}
	if !e.limiter.Allow(e.doc.TextLen(), utf8.RuneCountInString(text)) {
		e.bus.Publish(events.Event{Type: events.LimitExceeded})
		return ederrors.ErrLimitExceeded
	}

	e.hist.SnapshotBeforeChange(e.doc)
	sel := e.resolveSelection()
	if !sel.Collapsed() {
		sel = e.deleteRange(sel)
	}
	e.insertTextAtCaret(sel.Anchor, text)
	e.afterMutation()
	return nil
}

// PasteDecision сообщает хосту, требуется ли диалог выбора перед вставкой.
func (e *Engine) PasteDecision(html *string) paste.Decision {
	return paste.Decide(html, paste.Mode(e.cfg.PastePolicy))
}

// Paste вставляет контент буфера обмена по настроенной политике. Если HTML
// выглядит внешне отформатированным, возвращается AskUser и ничего не меняется:
// хост показывает выбор и вызывает PasteAs.
func (e *Engine) Paste(html *string, plain string) (paste.Decision, error) {
	decision := paste.Decide(html, paste.Mode(e.cfg.PastePolicy))
	if decision == paste.AskUser {
		return decision, nil
	}
	return decision, e.PasteAs(decision == paste.InsertFormatted, html, plain)
}

// PasteAs выполняет вставку выбранным способом. Контент сверх остатка лимита
// символов обрезается ровно до заполнения бюджета.
func (e *Engine) PasteAs(formatted bool, html *string, plain string) error {
	if plain == "" && html != nil {
		plain = paste.StripTags(*html)
	}

	var nodes []*doctree.Node
	var err error
	if formatted && html != nil {
		nodes, err = paste.FormattedFragment(*html)
		if err == nil && !e.limiter.Unlimited() {
			total := 0
			for _, n := range nodes {
				total += n.TextLen()
			}
			if total > e.limiter.Remaining(e.doc.TextLen()) {
				// форматированный фрагмент не влезает: деградация до
				// обрезанного плоского текста
				truncated, _ := e.limiter.Truncate(e.doc.TextLen(), plain)
				nodes, err = paste.PlainFragment(truncated)
			}
		}
	} else {
		truncated, wasCut := e.limiter.Truncate(e.doc.TextLen(), plain)
		if wasCut {
			e.bus.Publish(events.Event{Type: events.LimitExceeded})
		}
		nodes, err = paste.PlainFragment(truncated)
	}
	if err != nil {
		slog.Warn("Paste skipped", "err", err)
		return err
	}

	e.hist.SnapshotBeforeChange(e.doc)
	sel := e.resolveSelection()
	if !sel.Collapsed() {
		sel = e.deleteRange(sel)
	}
	e.insertFragmentAt(sel.Anchor, nodes)
	e.afterMutation()
	e.bus.Publish(events.Event{Type: events.PasteOccurred})
	return nil
}

// AttachImage передает файл внедренному обработчику. Вставка происходит в
// callback по текущему (возможно, уже изменившемуся) выделению, не по
// запомненному на момент вызова.
func (e *Engine) AttachImage(file io.Reader, name string) error {
	if e.imageHandler == nil {
		slog.Warn("Image handler is not configured, attach ignored", "name", name)
		return nil
	}
	e.imageHandler(file, name, func(url string) {
		if err := e.InsertImageURL(url); err != nil {
			slog.Error("Insert uploaded image", "url", url, "err", err)
			return
		}
		e.bus.Publish(events.Event{Type: events.ImageUploaded, Payload: url})
	})
	return nil
}

// InsertImageURL вставляет изображение по URL в текущее выделение.
func (e *Engine) InsertImageURL(url string) error {
	e.hist.SnapshotBeforeChange(e.doc)
	sel := e.resolveSelection()
	img := doctree.NewNode(doctree.Image)
	img.SetAttr("src", url)
	e.insertFragmentAt(sel.Anchor, []*doctree.Node{img})
	e.afterMutation()
	return nil
}
