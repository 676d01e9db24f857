// Package main предоставляет статический анализатор проекта: multichecker
// со стандартными анализаторами, проверками staticcheck и собственным
// анализатором, который следит, чтобы компрессоры создавались только
// внутри пакета internal/codec — единственной точки, где ответ получает
// кодек через реестр.
package main

import (
	"go/ast"
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/appends"
	"golang.org/x/tools/go/analysis/passes/asmdecl"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/atomicalign"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildssa"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/cgocall"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"
	"golang.org/x/tools/go/analysis/passes/deepequalerrors"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/directive"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/framepointer"
	"golang.org/x/tools/go/analysis/passes/httpmux"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/ifaceassert"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/reflectvaluecompare"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/slog"
	"golang.org/x/tools/go/analysis/passes/sortslice"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stdversion"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/testinggoroutine"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/timeformat"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unsafeptr"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/unusedwrite"
	"golang.org/x/tools/go/analysis/passes/usesgenerics"
	"honnef.co/go/tools/analysis/facts/nilness"
	"honnef.co/go/tools/staticcheck"
)

// compressorPackages — пакеты-компрессоры, конструкторы которых разрешено
// вызывать только внутри internal/codec.
var compressorPackages = map[string]struct{}{
	"gzip":   {},
	"flate":  {},
	"brotli": {},
	"zstd":   {},
}

// RawCompressorAnalyzer проверяет, что компрессоры (gzip.NewWriter,
// flate.NewWriter, brotli.NewWriterLevel, zstd.NewWriter и т.п.)
// не создаются в обход реестра кодеков. Декодеры (NewReader) анализатор
// не трогает: они нужны тестам для проверки обратного преобразования.
var RawCompressorAnalyzer = &analysis.Analyzer{
	Name: "rawcompressor",
	Doc:  "checks that compressor writers are constructed only inside internal/codec",
	Run:  runRawCompressor,
}

// runRawCompressor — функция, выполняющая анализ.
func runRawCompressor(pass *analysis.Pass) (interface{}, error) {
	// Пакет internal/codec — единственное разрешённое место.
	if strings.HasSuffix(pass.Pkg.Path(), "internal/codec") {
		return nil, nil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			callExpr, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			// Ищем вызовы вида <компрессор>.NewWriter*.
			sel, ok := callExpr.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			pkg, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			if _, known := compressorPackages[pkg.Name]; !known {
				return true
			}
			if strings.HasPrefix(sel.Sel.Name, "NewWriter") {
				pass.Reportf(callExpr.Pos(), "compressor constructed outside internal/codec: use the codec registry")
			}
			return true
		})
	}

	return nil, nil
}

// main запускает multichecker с набором анализаторов.
func main() {
	mychecks := []*analysis.Analyzer{
		// Стандартные анализаторы из пакета golang.org/x/tools.
		appends.Analyzer,
		asmdecl.Analyzer,
		assign.Analyzer,
		atomic.Analyzer,
		atomicalign.Analyzer,
		bools.Analyzer,
		buildssa.Analyzer,
		buildtag.Analyzer,
		cgocall.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		ctrlflow.Analyzer,
		deepequalerrors.Analyzer,
		defers.Analyzer,
		directive.Analyzer,
		errorsas.Analyzer,
		fieldalignment.Analyzer,
		framepointer.Analyzer,
		httpmux.Analyzer,
		httpresponse.Analyzer,
		ifaceassert.Analyzer,
		inspect.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		nilness.Analysis,
		printf.Analyzer,
		reflectvaluecompare.Analyzer,
		shadow.Analyzer,
		shift.Analyzer,
		sigchanyzer.Analyzer,
		slog.Analyzer,
		sortslice.Analyzer,
		stdmethods.Analyzer,
		stdversion.Analyzer,
		stringintconv.Analyzer,
		structtag.Analyzer,
		testinggoroutine.Analyzer,
		tests.Analyzer,
		timeformat.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unsafeptr.Analyzer,
		unusedresult.Analyzer,
		unusedwrite.Analyzer,
		usesgenerics.Analyzer,
		// Собственный анализатор проекта.
		RawCompressorAnalyzer,
	}

	// Добавляем анализаторы из staticcheck.
	for _, a := range staticcheck.Analyzers {
		if a.Analyzer != nil && a.Analyzer.Name[:2] == "SA" {
			mychecks = append(mychecks, a.Analyzer)
		}
		if a.Analyzer.Name == "ST1000" {
			mychecks = append(mychecks, a.Analyzer)
		}
	}

	// Добавляем анализатор bodyclose.
	mychecks = append(mychecks, bodyclose.Analyzer)

	// Запуск multichecker с набором анализаторов.
	multichecker.Main(mychecks...)
}
