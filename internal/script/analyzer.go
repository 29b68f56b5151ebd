package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// Analyzer runs scope-aware lint rules over a parsed script.
type Analyzer struct {
	rules map[string]Severity
}

// NewAnalyzer returns an analyzer using DefaultRules with the given overrides applied.
func NewAnalyzer(overrides map[string]Severity) *Analyzer {
	rules := DefaultRules()
	for name, sev := range overrides {
		rules[name] = sev
	}
	return &Analyzer{rules: rules}
}

// Analyze parses src and returns lint findings sorted by position.
// A parse failure yields at most one "syntax" finding instead of rule output,
// at the configured severity, since the parser lags newer syntax.
func (a *Analyzer) Analyze(src string) (findings []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = &AnalyzerError{Message: "analyzer crashed", Cause: fmt.Errorf("%v", r)}
		}
	}()

	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	prog, perr := parser.ParseFile(nil, "script.js", src, 0, parser.WithDisableSourceMaps)
	if perr != nil {
		sev := a.rules[RuleSyntax]
		if sev == SeverityOff {
			return nil, nil
		}
		return []Finding{syntaxFinding(perr, sev)}, nil
	}

	l := newLinter(src, a.rules)
	l.statements(prog.Body)
	l.resolve()
	l.popScope()

	sort.SliceStable(l.findings, func(i, j int) bool {
		if l.findings[i].Line != l.findings[j].Line {
			return l.findings[i].Line < l.findings[j].Line
		}
		return l.findings[i].Column < l.findings[j].Column
	})
	return l.findings, nil
}

func syntaxFinding(err error, sev Severity) Finding {
	msg := err.Error()
	f := Finding{Rule: RuleSyntax, Severity: sev}
	if list, ok := err.(parser.ErrorList); ok && len(list) > 0 {
		f.Line = list[0].Position.Line
		f.Column = list[0].Position.Column
		msg = list[0].Message
	}
	f.Message = "static analysis skipped, script did not parse: " + msg
	return f
}

type bindingKind int

const (
	kindVar bindingKind = iota
	kindLet
	kindConst
	kindFunction
	kindClass
	kindParam
	kindCatch
	kindExprName
)

func (k bindingKind) lexical() bool {
	return k == kindLet || k == kindConst || k == kindClass
}

type binding struct {
	name string
	kind bindingKind
	idx  file.Idx
	init bool
	used bool
}

type scope struct {
	parent   *scope
	function bool
	decls    map[string]*binding
	order    []*binding
}

type reference struct {
	name   string
	scope  *scope
	idx    file.Idx
	write  bool
	typeof bool
}

type linter struct {
	src      string
	rules    map[string]Severity
	findings []Finding
	refs     []reference
	scopes   []*scope
	current  *scope
}

func newLinter(src string, rules map[string]Severity) *linter {
	l := &linter{src: src, rules: rules}
	l.pushScope(true)
	return l
}

func (l *linter) pushScope(function bool) {
	s := &scope{parent: l.current, function: function, decls: map[string]*binding{}}
	l.scopes = append(l.scopes, s)
	l.current = s
}

func (l *linter) popScope() {
	if l.current != nil {
		l.current = l.current.parent
	}
}

func (l *linter) report(rule string, idx file.Idx, format string, args ...any) {
	sev := l.rules[rule]
	if sev == SeverityOff {
		return
	}
	line, col := l.position(idx)
	l.findings = append(l.findings, Finding{
		Rule:     rule,
		Severity: sev,
		Line:     line,
		Column:   col,
		Message:  fmt.Sprintf(format, args...),
	})
}

// position converts a 1-based source offset into a line and column.
func (l *linter) position(idx file.Idx) (int, int) {
	offset := int(idx) - 1
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.src) {
		offset = len(l.src)
	}
	before := l.src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndex(before, "\n")
	return line, col
}

func (l *linter) declare(name string, kind bindingKind, idx file.Idx, init bool) {
	target := l.current
	if kind == kindVar {
		for !target.function && target.parent != nil {
			target = target.parent
		}
	}
	if prev, ok := target.decls[name]; ok {
		switch {
		case prev.kind == kindParam && kind == kindVar:
		case prev.kind == kindExprName:
		case prev.kind.lexical() || kind.lexical() || prev.kind == kind || prev.kind == kindFunction || kind == kindFunction:
			l.report(RuleNoRedeclare, idx, "'%s' is already defined", name)
		}
		if init {
			prev.init = true
		}
		return
	}
	b := &binding{name: name, kind: kind, idx: idx, init: init}
	target.decls[name] = b
	target.order = append(target.order, b)
}

func (l *linter) reference(name string, idx file.Idx, write bool) {
	l.refs = append(l.refs, reference{name: name, scope: l.current, idx: idx, write: write})
}

// resolve binds recorded references once every declaration is known, so
// hoisted functions and vars resolve regardless of source order.
func (l *linter) resolve() {
	undefReported := map[string]bool{}
	for _, ref := range l.refs {
		found := false
		for s := ref.scope; s != nil; s = s.parent {
			if b, ok := s.decls[ref.name]; ok {
				if !ref.write {
					b.used = true
				}
				found = true
				break
			}
		}
		if found || ref.typeof || browserGlobals[ref.name] || undefReported[ref.name] {
			continue
		}
		undefReported[ref.name] = true
		l.report(RuleNoUndef, ref.idx, "'%s' is not defined", ref.name)
	}

	for _, s := range l.scopes {
		for _, b := range s.order {
			if b.used || b.kind == kindParam || b.kind == kindCatch || b.kind == kindExprName {
				continue
			}
			if strings.HasPrefix(b.name, "_") {
				continue
			}
			if b.init || b.kind == kindFunction || b.kind == kindClass {
				l.report(RuleNoUnusedVars, b.idx, "'%s' is assigned a value but never used", b.name)
			} else {
				l.report(RuleNoUnusedVars, b.idx, "'%s' is defined but never used", b.name)
			}
		}
	}
}

func (l *linter) statements(list []ast.Statement) {
	terminated, reported := false, false
	for _, st := range list {
		if terminated && !reported && reachableCheck(st) {
			l.report(RuleNoUnreachable, st.Idx0(), "Unreachable code")
			reported = true
		}
		l.statement(st)
		if terminates(st) {
			terminated = true
		}
	}
}

func terminates(st ast.Statement) bool {
	switch st.(type) {
	case *ast.ReturnStatement, *ast.ThrowStatement, *ast.BranchStatement:
		return true
	}
	return false
}

// reachableCheck reports whether st counts as code for the unreachable rule.
// Hoisted function declarations and empty statements do not.
func reachableCheck(st ast.Statement) bool {
	switch s := st.(type) {
	case *ast.FunctionDeclaration, *ast.EmptyStatement:
		return false
	case *ast.VariableStatement:
		for _, b := range s.List {
			if b.Initializer != nil {
				return true
			}
		}
		return false
	}
	return true
}

func (l *linter) block(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	l.pushScope(false)
	l.statements(b.List)
	l.popScope()
}

func (l *linter) statement(st ast.Statement) {
	switch s := st.(type) {
	case *ast.BlockStatement:
		l.block(s)
	case *ast.ExpressionStatement:
		l.expr(s.Expression)
	case *ast.VariableStatement:
		l.bindings(s.List, kindVar)
	case *ast.LexicalDeclaration:
		l.lexical(s)
	case *ast.FunctionDeclaration:
		if s.Function.Name != nil {
			l.declare(s.Function.Name.Name.String(), kindFunction, s.Function.Name.Idx, true)
		}
		l.function(s.Function, false)
	case *ast.ClassDeclaration:
		if s.Class.Name != nil {
			l.declare(s.Class.Name.Name.String(), kindClass, s.Class.Name.Idx, true)
		}
		l.class(s.Class, false)
	case *ast.IfStatement:
		l.expr(s.Test)
		l.statement(s.Consequent)
		if s.Alternate != nil {
			l.statement(s.Alternate)
		}
	case *ast.ReturnStatement:
		l.expr(s.Argument)
	case *ast.ThrowStatement:
		l.expr(s.Argument)
	case *ast.ForStatement:
		l.pushScope(false)
		switch init := s.Initializer.(type) {
		case *ast.ForLoopInitializerExpression:
			l.expr(init.Expression)
		case *ast.ForLoopInitializerVarDeclList:
			l.bindings(init.List, kindVar)
		case *ast.ForLoopInitializerLexicalDecl:
			l.lexical(&init.LexicalDeclaration)
		}
		l.expr(s.Test)
		l.expr(s.Update)
		l.statement(s.Body)
		l.popScope()
	case *ast.ForInStatement:
		l.pushScope(false)
		l.forInto(s.Into)
		l.expr(s.Source)
		l.statement(s.Body)
		l.popScope()
	case *ast.ForOfStatement:
		l.pushScope(false)
		l.forInto(s.Into)
		l.expr(s.Source)
		l.statement(s.Body)
		l.popScope()
	case *ast.WhileStatement:
		l.expr(s.Test)
		l.statement(s.Body)
	case *ast.DoWhileStatement:
		l.statement(s.Body)
		l.expr(s.Test)
	case *ast.TryStatement:
		l.block(s.Body)
		if s.Catch != nil {
			l.pushScope(false)
			if s.Catch.Parameter != nil {
				l.declareTarget(s.Catch.Parameter, kindCatch, true)
			}
			l.block(s.Catch.Body)
			l.popScope()
		}
		l.block(s.Finally)
	case *ast.SwitchStatement:
		l.expr(s.Discriminant)
		l.pushScope(false)
		for _, c := range s.Body {
			l.expr(c.Test)
			l.statements(c.Consequent)
		}
		l.popScope()
	case *ast.LabelledStatement:
		l.statement(s.Statement)
	case *ast.WithStatement:
		l.expr(s.Object)
		l.statement(s.Body)
	}
}

func (l *linter) lexical(d *ast.LexicalDeclaration) {
	kind := kindLet
	if d.Token == token.CONST {
		kind = kindConst
	}
	l.bindings(d.List, kind)
}

func (l *linter) bindings(list []*ast.Binding, kind bindingKind) {
	for _, b := range list {
		l.declareTarget(b.Target, kind, b.Initializer != nil)
		l.expr(b.Initializer)
	}
}

func (l *linter) forInto(into ast.ForInto) {
	switch f := into.(type) {
	case *ast.ForIntoVar:
		l.declareTarget(f.Binding.Target, kindVar, true)
		l.expr(f.Binding.Initializer)
	case *ast.ForDeclaration:
		kind := kindLet
		if f.IsConst {
			kind = kindConst
		}
		l.declareTarget(f.Target, kind, true)
	case *ast.ForIntoExpression:
		l.assignTarget(f.Expression)
	}
}

func (l *linter) declareTarget(target ast.Expression, kind bindingKind, init bool) {
	switch t := target.(type) {
	case *ast.Identifier:
		l.declare(t.Name.String(), kind, t.Idx, init)
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				l.declare(p.Name.Name.String(), kind, p.Name.Idx, init)
				l.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					l.expr(p.Key)
				}
				l.declareTarget(p.Value, kind, init)
			}
		}
		if t.Rest != nil {
			l.declareTarget(t.Rest, kind, init)
		}
	case *ast.ArrayPattern:
		for _, e := range t.Elements {
			if e != nil {
				l.declareTarget(e, kind, init)
			}
		}
		if t.Rest != nil {
			l.declareTarget(t.Rest, kind, init)
		}
	case *ast.AssignExpression:
		l.declareTarget(t.Left, kind, init)
		l.expr(t.Right)
	}
}

// assignTarget records writes for the left side of a plain assignment.
func (l *linter) assignTarget(target ast.Expression) {
	switch t := target.(type) {
	case *ast.Identifier:
		l.reference(t.Name.String(), t.Idx, true)
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				l.reference(p.Name.Name.String(), p.Name.Idx, true)
				l.expr(p.Initializer)
			case *ast.PropertyKeyed:
				if p.Computed {
					l.expr(p.Key)
				}
				l.assignTarget(p.Value)
			}
		}
		if t.Rest != nil {
			l.assignTarget(t.Rest)
		}
	case *ast.ArrayPattern:
		for _, e := range t.Elements {
			if e != nil {
				l.assignTarget(e)
			}
		}
		if t.Rest != nil {
			l.assignTarget(t.Rest)
		}
	case *ast.AssignExpression:
		l.assignTarget(t.Left)
		l.expr(t.Right)
	default:
		l.expr(target)
	}
}

func (l *linter) params(list *ast.ParameterList) {
	if list == nil {
		return
	}
	for _, b := range list.List {
		l.declareTarget(b.Target, kindParam, true)
		l.expr(b.Initializer)
	}
	if list.Rest != nil {
		l.declareTarget(list.Rest, kindParam, true)
	}
}

func (l *linter) function(fn *ast.FunctionLiteral, expression bool) {
	l.pushScope(true)
	if expression && fn.Name != nil {
		l.declare(fn.Name.Name.String(), kindExprName, fn.Name.Idx, true)
	}
	l.params(fn.ParameterList)
	if fn.Body != nil {
		l.statements(fn.Body.List)
	}
	l.popScope()
}

func (l *linter) arrow(fn *ast.ArrowFunctionLiteral) {
	l.pushScope(true)
	l.params(fn.ParameterList)
	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		l.statements(body.List)
	case *ast.ExpressionBody:
		l.expr(body.Expression)
	}
	l.popScope()
}

func (l *linter) class(c *ast.ClassLiteral, expression bool) {
	l.expr(c.SuperClass)
	l.pushScope(false)
	if expression && c.Name != nil {
		l.declare(c.Name.Name.String(), kindExprName, c.Name.Idx, true)
	}
	for _, el := range c.Body {
		switch e := el.(type) {
		case *ast.MethodDefinition:
			if e.Computed {
				l.expr(e.Key)
			}
			if e.Body != nil {
				l.function(e.Body, false)
			}
		case *ast.FieldDefinition:
			if e.Computed {
				l.expr(e.Key)
			}
			l.expr(e.Initializer)
		case *ast.ClassStaticBlock:
			l.block(e.Block)
		}
	}
	l.popScope()
}

func (l *linter) expr(e ast.Expression) {
	switch x := e.(type) {
	case nil:
	case *ast.Identifier:
		l.reference(x.Name.String(), x.Idx, false)
	case *ast.AssignExpression:
		if x.Operator == token.ASSIGN {
			l.assignTarget(x.Left)
		} else {
			l.expr(x.Left)
		}
		l.expr(x.Right)
	case *ast.BinaryExpression:
		l.expr(x.Left)
		l.expr(x.Right)
	case *ast.UnaryExpression:
		if id, ok := x.Operand.(*ast.Identifier); ok && x.Operator == token.TYPEOF {
			l.refs = append(l.refs, reference{name: id.Name.String(), scope: l.current, idx: id.Idx, typeof: true})
			return
		}
		l.expr(x.Operand)
	case *ast.ConditionalExpression:
		l.expr(x.Test)
		l.expr(x.Consequent)
		l.expr(x.Alternate)
	case *ast.CallExpression:
		l.checkCall(x.Callee, x.ArgumentList, x.Idx0())
		l.expr(x.Callee)
		for _, arg := range x.ArgumentList {
			l.expr(arg)
		}
	case *ast.NewExpression:
		l.checkNew(x)
		l.expr(x.Callee)
		for _, arg := range x.ArgumentList {
			l.expr(arg)
		}
	case *ast.DotExpression:
		l.expr(x.Left)
		if x.Identifier.Name.String() == "__proto__" {
			l.report(RuleNoProto, x.Identifier.Idx, "The '__proto__' property is deprecated")
		}
	case *ast.PrivateDotExpression:
		l.expr(x.Left)
	case *ast.BracketExpression:
		l.expr(x.Left)
		l.expr(x.Member)
		if s, ok := x.Member.(*ast.StringLiteral); ok && s.Value.String() == "__proto__" {
			l.report(RuleNoProto, s.Idx, "The '__proto__' property is deprecated")
		}
	case *ast.ArrayLiteral:
		for _, v := range x.Value {
			l.expr(v)
		}
	case *ast.ObjectLiteral:
		l.checkDupeKeys(x)
		for _, p := range x.Value {
			switch p := p.(type) {
			case *ast.PropertyKeyed:
				if p.Computed {
					l.expr(p.Key)
				}
				l.expr(p.Value)
			case *ast.PropertyShort:
				l.reference(p.Name.Name.String(), p.Name.Idx, false)
				l.expr(p.Initializer)
			case *ast.SpreadElement:
				l.expr(p.Expression)
			}
		}
	case *ast.FunctionLiteral:
		l.function(x, true)
	case *ast.ArrowFunctionLiteral:
		l.arrow(x)
	case *ast.ClassLiteral:
		l.class(x, true)
	case *ast.SequenceExpression:
		for _, s := range x.Sequence {
			l.expr(s)
		}
	case *ast.TemplateLiteral:
		l.expr(x.Tag)
		for _, s := range x.Expressions {
			l.expr(s)
		}
	case *ast.SpreadElement:
		l.expr(x.Expression)
	case *ast.AwaitExpression:
		l.expr(x.Argument)
	case *ast.YieldExpression:
		l.expr(x.Argument)
	case *ast.OptionalChain:
		l.expr(x.Expression)
	case *ast.Optional:
		l.expr(x.Expression)
	case *ast.StringLiteral:
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(x.Value.String())), "javascript:") {
			l.report(RuleNoScriptURL, x.Idx, "Script URL is a form of eval")
		}
	case *ast.RegExpLiteral:
		l.checkRegexp(x.Pattern, x.Flags, x.Idx)
	}
}

// calleeName resolves foo, window.foo, self.foo and globalThis.foo to foo.
func calleeName(callee ast.Expression) string {
	switch c := callee.(type) {
	case *ast.Identifier:
		return c.Name.String()
	case *ast.DotExpression:
		if obj, ok := c.Left.(*ast.Identifier); ok {
			switch obj.Name.String() {
			case "window", "self", "globalThis":
				return c.Identifier.Name.String()
			}
		}
	}
	return ""
}

func (l *linter) checkCall(callee ast.Expression, args []ast.Expression, idx file.Idx) {
	switch calleeName(callee) {
	case "eval":
		l.report(RuleNoEval, idx, "eval can be harmful")
	case "setTimeout", "setInterval", "execScript":
		if len(args) > 0 && stringy(args[0]) {
			l.report(RuleNoImpliedEval, idx, "Implied eval. Consider passing a function instead of a string")
		}
	case "Function":
		l.report(RuleNoNewFunc, idx, "The Function constructor is eval")
	case "RegExp":
		l.checkRegExpArgs(args, idx)
	}
}

func (l *linter) checkNew(n *ast.NewExpression) {
	switch calleeName(n.Callee) {
	case "Function":
		l.report(RuleNoNewFunc, n.New, "The Function constructor is eval")
	case "RegExp":
		l.checkRegExpArgs(n.ArgumentList, n.New)
	}
}

func stringy(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.StringLiteral, *ast.TemplateLiteral:
		return true
	case *ast.BinaryExpression:
		return x.Operator == token.PLUS && (stringy(x.Left) || stringy(x.Right))
	}
	return false
}

func (l *linter) checkRegExpArgs(args []ast.Expression, idx file.Idx) {
	if len(args) == 0 {
		return
	}
	pattern, ok := args[0].(*ast.StringLiteral)
	if !ok {
		return
	}
	flags := ""
	if len(args) > 1 {
		f, ok := args[1].(*ast.StringLiteral)
		if !ok {
			return
		}
		flags = f.Value.String()
	}
	l.checkRegexp(pattern.Value.String(), flags, idx)
}

const validRegexpFlags = "dgimsuvy"

func (l *linter) checkRegexp(pattern, flags string, idx file.Idx) {
	seen := map[rune]bool{}
	for _, f := range flags {
		if !strings.ContainsRune(validRegexpFlags, f) || seen[f] {
			l.report(RuleNoInvalidRegexp, idx, "Invalid flags supplied to RegExp constructor '%s'", flags)
			return
		}
		seen[f] = true
	}
	// Unicode-mode syntax differs from the ECMAScript dialect regexp2 implements.
	if seen['u'] || seen['v'] {
		return
	}
	if _, err := regexp2.Compile(pattern, regexp2.ECMAScript); err != nil {
		l.report(RuleNoInvalidRegexp, idx, "Invalid regular expression: /%s/: %v", pattern, err)
	}
}

func (l *linter) checkDupeKeys(obj *ast.ObjectLiteral) {
	seen := map[string]bool{}
	for _, p := range obj.Value {
		var key string
		var idx file.Idx
		switch p := p.(type) {
		case *ast.PropertyShort:
			key, idx = p.Name.Name.String(), p.Name.Idx
		case *ast.PropertyKeyed:
			if p.Computed || (p.Kind != ast.PropertyKindValue && p.Kind != ast.PropertyKindMethod) {
				continue
			}
			key, idx = propertyKey(p.Key), p.Key.Idx0()
		default:
			continue
		}
		if key == "" {
			continue
		}
		if seen[key] {
			l.report(RuleNoDupeKeys, idx, "Duplicate key '%s'", key)
			continue
		}
		seen[key] = true
	}
}

func propertyKey(e ast.Expression) string {
	switch k := e.(type) {
	case *ast.Identifier:
		return k.Name.String()
	case *ast.StringLiteral:
		return k.Value.String()
	case *ast.NumberLiteral:
		return fmt.Sprint(k.Value)
	}
	return ""
}
