// Пакет вычисляет эффективное форматирование в точке документа: обход предков
// по картам inline-стилей, семантические размеры заголовков и конфигурационные
// умолчания. Недавно выбранные пользователем значения (шрифт, размер, межстрочный
// интервал) кратковременно перекрывают пересчитанные значения, чтобы тулбар не
// мерцал между только что примененным и отстающим вычисленным значением.
//
// Основные возможности:
//   - Порядок разрешения: недавний выбор -> inline-стиль предка -> умолчание вида -> умолчание конфигурации.
//   - Сравнение размеров шрифта в канонических пунктах с допуском 1pt.
//   - Канонизация line-height: "normal" и пустое значение считаются 1.2.
package styles

import (
	"strconv"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

// Размерные ступени заголовков в пунктах. Чисто презентационные: в карты
// стилей они никогда не записываются.
var headingSizesPt = map[doctree.Kind]float64{
	doctree.Heading1: 24,
	doctree.Heading2: 18,
	doctree.Heading3: 14,
	doctree.Heading4: 12,
	doctree.Heading5: 10,
	doctree.Heading6: 8,
}

const defaultLineHeightRatio = 1.2

type Resolver struct {
	cfg    config.EditorConfig
	recent *cache.Cache
}

func NewResolver(cfg config.EditorConfig) *Resolver {
	ttl := cfg.RecentStyleTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Resolver{
		cfg:    cfg,
		recent: cache.New(ttl, time.Minute),
	}
}

// NoteChoice запоминает явный выбор пользователя из выпадающего списка.
// В течение TTL выбор имеет приоритет над пересчитанными значениями.
func (r *Resolver) NoteChoice(prop, value string) {
	r.recent.SetDefault(prop, value)
}

// Effective возвращает действующее значение свойства в данной ноде.
func (r *Resolver) Effective(n *doctree.Node, prop string) string {
	if v, ok := r.recent.Get(prop); ok {
		return v.(string)
	}

	for p := n; p != nil; p = p.Parent() {
		if v := p.Style(prop); v != "" {
			return v
		}
	}

	if prop == "font-size" {
		if h := n.Ancestor(func(p *doctree.Node) bool { return p.Kind.IsHeading() }); h != nil {
			return strconv.FormatFloat(headingSizesPt[h.Kind], 'f', -1, 64) + "pt"
		}
	}

	switch prop {
	case "color":
		return r.cfg.DefaultColor
	case "font-family":
		return r.cfg.DefaultFontFamily
	case "font-size":
		return r.cfg.DefaultFontSize
	case "line-height":
		return r.cfg.DefaultLineHeight
	}
	return ""
}

// FontSizeToPt приводит размер шрифта к пунктам. Понимает pt, px (96px == 72pt)
// и голые числа (трактуются как пункты).
func FontSizeToPt(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	switch {
	case strings.HasSuffix(v, "pt"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
		return f, err == nil
	case strings.HasSuffix(v, "px"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		return f * 72 / 96, err == nil
	default:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
}

// FontSizeMatches сравнивает размеры в канонических пунктах с допуском 1pt —
// пиксельные computed-значения округляются неточно.
func FontSizeMatches(a, b string) bool {
	fa, oka := FontSizeToPt(a)
	fb, okb := FontSizeToPt(b)
	if !oka || !okb {
		return false
	}
	d := fa - fb
	if d < 0 {
		d = -d
	}
	return d <= 1
}

// LineHeightRatio канонизирует межстрочный интервал: не заданный и "normal"
// считаются коэффициентом 1.2.
func LineHeightRatio(v string) float64 {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "normal" {
		return defaultLineHeightRatio
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultLineHeightRatio
	}
	return f
}

// LineHeightMatches сравнивает канонизированные коэффициенты.
func LineHeightMatches(a, b string) bool {
	da := LineHeightRatio(a) - LineHeightRatio(b)
	if da < 0 {
		da = -da
	}
	return da < 0.01
}
