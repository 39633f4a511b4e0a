// Package nokeylog не даёт писать API-ключи в лог через поля zap.
package nokeylog

import (
	"go/ast"
	"go/constant"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const zapPath = "go.uber.org/zap"

var forbidden = map[string]struct{}{
	"apikey":  {},
	"api_key": {},
	"api-key": {},
}

// Analyzer ищет поля zap с именем вроде "apikey".
var Analyzer = &analysis.Analyzer{
	Name: "nokeylog",
	Doc:  "запрещает поля zap с именами apikey, api_key, api-key",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || len(call.Args) == 0 || !isZapFunc(pass, call) {
				return true
			}
			tv, ok := pass.TypesInfo.Types[call.Args[0]]
			if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
				return true
			}
			name := strings.ToLower(constant.StringVal(tv.Value))
			if _, bad := forbidden[name]; bad {
				pass.Reportf(call.Args[0].Pos(), "поле %q раскрывает API-ключ в логах", constant.StringVal(tv.Value))
			}
			return true
		})
	}
	return nil, nil
}

func isZapFunc(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == zapPath
}
