// Демонстрационная консоль ядра редактора: загружает HTML-документ, прогоняет
// через движок последовательность команд и печатает результат.
//
// Основные возможности:
//   - Загрузка документа из файла или stdin.
//   - Выполнение команд формата name или name=value, разделенных запятыми.
//   - Вывод нормализованного HTML (опционально минифицированного) и плоского текста.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/engine"
)

func main() {
	inPath := flag.String("in", "", "Path to input html (default stdin)")
	cmds := flag.String("cmd", "", "Comma separated commands, name or name=value")
	minified := flag.Bool("minify", false, "Minify output html")
	plain := flag.Bool("plain", false, "Print plain text instead of html")
	flag.Parse()

	var raw []byte
	var err error
	if *inPath != "" {
		raw, err = os.ReadFile(*inPath)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		slog.Error("Read input", "err", err)
		os.Exit(1)
	}

	e := engine.New(config.Default())
	if err := e.SetContent(string(raw)); err != nil {
		slog.Error("Parse document", "err", err)
		os.Exit(1)
	}

	for _, c := range strings.Split(*cmds, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		name, value, _ := strings.Cut(c, "=")
		if err := e.Execute(name, value); err != nil {
			slog.Error("Execute", "command", name, "err", err)
			os.Exit(1)
		}
	}

	if *plain {
		fmt.Println(e.PlainText())
		return
	}

	var out string
	if *minified {
		out, err = e.ContentMinified()
	} else {
		out, err = e.Content()
	}
	if err != nil {
		slog.Error("Render document", "err", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
