// Управление конфигурацией редактора. Конфигурация собирается один раз при создании
// редактора слиянием пользовательских переопределений (JSON) поверх значений по умолчанию
// и далее неизменяема; runtime-сеттеры (тема, режим вставки) работают с живой копией в движке.
//
// Основные возможности:
//   - Значения по умолчанию для типографики, таблиц, тулбара и лимитов.
//   - Слияние JSON-переопределений поверх умолчаний.
//   - Валидация политики вставки и лимита символов.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const (
	PastePlainText         = "plainText"
	PasteFormattedAndPlain = "formattedAndPlainText"
)

// Features - флаги включенных возможностей редактора.
type Features struct {
	Links      bool `json:"links"`
	Images     bool `json:"images"`
	Videos     bool `json:"videos"`
	Tables     bool `json:"tables"`
	Colors     bool `json:"colors"`
	Lists      bool `json:"lists"`
	Alignment  bool `json:"alignment"`
	Indent     bool `json:"indent"`
	Headings   bool `json:"headings"`
	Fonts      bool `json:"fonts"`
	FontSizes  bool `json:"fontSizes"`
	LineHeight bool `json:"lineHeight"`
}

// TableDefaults - параметры новых таблиц и стиль ячеек по умолчанию.
type TableDefaults struct {
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	Border         string `json:"border"`
	Padding        string `json:"padding"`
	CellFontFamily string `json:"cellFontFamily"`
	CellFontSize   string `json:"cellFontSize"`
}

type EditorConfig struct {
	Width  string `json:"width"`
	Height string `json:"height"`

	Features Features `json:"features"`

	DefaultColor      string `json:"defaultColor"`
	DefaultFontFamily string `json:"defaultFontFamily"`
	DefaultFontSize   string `json:"defaultFontSize"`
	DefaultLineHeight string `json:"defaultLineHeight"`

	PastePolicy   string `json:"pastePolicy"`
	MaxCharacters int    `json:"maxCharacters"`

	Table TableDefaults `json:"table"`

	Toolbar []string `json:"toolbar"`
	Theme   string   `json:"theme"`

	HistoryDepth int `json:"historyDepth"`

	// Окно, в течение которого недавно выбранный стиль перекрывает вычисленный.
	RecentStyleTTL time.Duration `json:"-"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() EditorConfig {
	return EditorConfig{
		Width:  "100%",
		Height: "300px",
		Features: Features{
			Links: true, Images: true, Videos: true, Tables: true,
			Colors: true, Lists: true, Alignment: true, Indent: true,
			Headings: true, Fonts: true, FontSizes: true, LineHeight: true,
		},
		DefaultColor:      "#000000",
		DefaultFontFamily: "sans-serif",
		DefaultFontSize:   "12pt",
		DefaultLineHeight: "1.2",
		PastePolicy:       PasteFormattedAndPlain,
		MaxCharacters:     0,
		Table: TableDefaults{
			Rows:           2,
			Cols:           2,
			Border:         "1px solid #ccc",
			Padding:        "4px",
			CellFontFamily: "sans-serif",
			CellFontSize:   "12pt",
		},
		Toolbar: []string{
			"bold", "italic", "underline", "strike",
			"format-block", "font-name", "font-size", "line-height",
			"fore-color", "back-color",
			"justify-left", "justify-center", "justify-right", "justify-full",
			"ordered-list", "unordered-list", "indent", "outdent",
			"insert-link", "insert-image", "insert-table",
			"remove-format", "undo", "redo",
		},
		Theme:          "light",
		HistoryDepth:   100,
		RecentStyleTTL: 5 * time.Second,
	}
}

// FromJSON сливает пользовательские переопределения поверх значений по умолчанию.
func FromJSON(data []byte) (EditorConfig, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	slog.Debug("Editor config loaded",
		"pastePolicy", cfg.PastePolicy,
		"maxCharacters", cfg.MaxCharacters,
		"historyDepth", cfg.HistoryDepth)
	return cfg, nil
}

func (c EditorConfig) Validate() error {
	if c.PastePolicy != PastePlainText && c.PastePolicy != PasteFormattedAndPlain {
		return fmt.Errorf("unknown paste policy %q", c.PastePolicy)
	}
	if c.MaxCharacters < 0 {
		return fmt.Errorf("maxCharacters must be >= 0, got %d", c.MaxCharacters)
	}
	if c.HistoryDepth <= 0 {
		return fmt.Errorf("historyDepth must be > 0, got %d", c.HistoryDepth)
	}
	if c.Table.Rows < 1 || c.Table.Cols < 1 {
		return fmt.Errorf("table defaults must be at least 1x1, got %dx%d", c.Table.Rows, c.Table.Cols)
	}
	return nil
}
