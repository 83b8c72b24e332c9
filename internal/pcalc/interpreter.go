package pcalc

import (
	"math"
	"strings"

	"github.com/pborges/pcalc/internal/logic"
)

// Interpreter evaluates single formulas against a Network. Assignments
// update the network; probability expressions are evaluated as soon as
// they are parsed.
type Interpreter struct {
	Evaluator Evaluator
}

// Eval interprets text and returns its value. For assignments the value is
// the one assigned.
func (in Interpreter) Eval(text string, n *Network) (float64, error) {
	if n == nil {
		n = NewNetwork("")
	}
	toks := Tokenize(text)
	if len(toks) == 0 {
		return 0, &SyntaxError{Text: text, Msg: "empty formula"}
	}
	p := &parser{text: text, net: n, eval: in.Evaluator}
	return p.top(toks)
}

// match is the result of a grammar production. A production that does not
// apply returns ok == false and leaves the caller free to try another
// alternative; errors are reserved for failures that end interpretation.
type match[T any] struct {
	ok   bool
	val  T
	rest []Token
}

func hit[T any](val T, rest []Token) match[T] {
	return match[T]{ok: true, val: val, rest: rest}
}

func miss[T any]() match[T] { return match[T]{} }

type parser struct {
	text string
	net  *Network
	eval Evaluator
}

func (p *parser) top(toks []Token) (float64, error) {
	def, err := p.definition(toks)
	if err != nil {
		return 0, err
	}
	if def.ok {
		return def.val, nil
	}
	expr, err := p.expression(toks)
	if err != nil {
		return 0, err
	}
	if !expr.ok {
		return 0, p.finished(toks)
	}
	if err := p.finished(expr.rest); err != nil {
		return 0, err
	}
	return expr.val, nil
}

func (p *parser) finished(rest []Token) error {
	if len(rest) == 0 {
		return nil
	}
	parts := make([]string, len(rest))
	for i, t := range rest {
		parts[i] = t.String()
	}
	return &SyntaxError{Text: p.text, Msg: "unexpected " + strings.Join(parts, " ")}
}

// Definitions

func (p *parser) definition(toks []Token) (match[float64], error) {
	if kw := probKeyword(toks); kw.ok {
		m, err := p.simpleAssign(kw.rest)
		if err != nil || m.ok {
			return m, err
		}
		return p.condAssign(kw.rest)
	}
	return p.varAssign(toks)
}

// assignedValue parses the "= expression" tail shared by all assignments.
func (p *parser) assignedValue(toks []Token) (match[float64], error) {
	if len(toks) == 0 || !toks[0].is("=", "is") {
		return miss[float64](), nil
	}
	m, err := p.expression(toks[1:])
	if err != nil {
		return m, err
	}
	if !m.ok {
		return m, &SyntaxError{Text: p.text, Msg: "missing value after " + toks[0].Text}
	}
	if err := p.finished(m.rest); err != nil {
		return m, err
	}
	return m, nil
}

func (p *parser) simpleAssign(toks []Token) (match[float64], error) {
	name := probVarName(toks)
	if !name.ok {
		return miss[float64](), nil
	}
	v, err := p.assignedValue(name.rest)
	if err != nil || !v.ok {
		return v, err
	}
	if err := p.net.SetScalar(name.val, v.val); err != nil {
		return miss[float64](), err
	}
	return v, nil
}

func (p *parser) condAssign(toks []Token) (match[float64], error) {
	spec := condVarSpec(toks)
	if !spec.ok {
		return miss[float64](), nil
	}
	v, err := p.assignedValue(spec.rest)
	if err != nil || !v.ok {
		return v, err
	}
	if err := p.net.AddCondition(spec.val.name, v.val, spec.val.cond); err != nil {
		return miss[float64](), err
	}
	return v, nil
}

func (p *parser) varAssign(toks []Token) (match[float64], error) {
	name := varName(toks)
	if !name.ok {
		return miss[float64](), nil
	}
	v, err := p.assignedValue(name.rest)
	if err != nil || !v.ok {
		return v, err
	}
	p.net.SetVar(name.val, v.val)
	return v, nil
}

type condSpec struct {
	name string
	cond logic.Term
}

// condVarSpec parses "Name given Cond", optionally wrapped in parentheses.
func condVarSpec(toks []Token) match[condSpec] {
	if len(toks) > 0 && toks[0].is("(") {
		inner := condVarSpec(toks[1:])
		if inner.ok && len(inner.rest) > 0 && inner.rest[0].is(")") {
			return hit(inner.val, inner.rest[1:])
		}
	}
	name := varName(toks)
	if !name.ok || len(name.rest) == 0 || !name.rest[0].is(":", "given") {
		return miss[condSpec]()
	}
	cond := logicExpr(name.rest[1:])
	if !cond.ok {
		return miss[condSpec]()
	}
	return hit(condSpec{name: name.val, cond: cond.val}, cond.rest)
}

// probVarName parses a variable name, optionally wrapped in parentheses.
func probVarName(toks []Token) match[string] {
	if len(toks) > 0 && toks[0].is("(") {
		inner := probVarName(toks[1:])
		if inner.ok && len(inner.rest) > 0 && inner.rest[0].is(")") {
			return hit(inner.val, inner.rest[1:])
		}
	}
	return varName(toks)
}

func varName(toks []Token) match[string] {
	if len(toks) > 0 && toks[0].Kind == Ident && toks[0].Text[0] >= 'A' && toks[0].Text[0] <= 'Z' {
		return hit(toks[0].Text, toks[1:])
	}
	return miss[string]()
}

func probKeyword(toks []Token) match[struct{}] {
	if len(toks) >= 2 && toks[0].is("probability", "chance") && toks[1].is("of") {
		return hit(struct{}{}, toks[2:])
	}
	if len(toks) >= 1 && toks[0].is("chance", "probability", "prob", "pr") {
		return hit(struct{}{}, toks[1:])
	}
	return miss[struct{}]()
}

// Arithmetic

// expression := term (("+"|"-") term)* | ("+"|"-") term ...
// A leading sign applies to 0. Nothing consumed is a miss.
func (p *parser) expression(toks []Token) (match[float64], error) {
	t, err := p.term(toks)
	if err != nil {
		return t, err
	}
	if t.ok {
		return p.addSub(t.rest, t.val)
	}
	m, err := p.addSub(toks, 0)
	if err != nil || len(m.rest) == len(toks) {
		return miss[float64](), err
	}
	return m, nil
}

func (p *parser) addSub(toks []Token, acc float64) (match[float64], error) {
	for len(toks) > 0 {
		var sign float64
		rest := toks[1:]
		switch {
		case toks[0].is("+"):
			sign = 1
		case toks[0].is("-"):
			sign = -1
		case toks[0].Kind == Number && toks[0].Signed:
			// "3 -2" reads as a subtraction.
			sign = -1
			unsigned := toks[0]
			unsigned.Num = -unsigned.Num
			unsigned.Text = strings.TrimPrefix(unsigned.Text, "-")
			unsigned.Signed = false
			rest = append([]Token{unsigned}, toks[1:]...)
		default:
			return hit(acc, toks), nil
		}
		t, err := p.term(rest)
		if err != nil {
			return t, err
		}
		if !t.ok {
			return hit(acc, toks), nil
		}
		acc += sign * t.val
		toks = t.rest
	}
	return hit(acc, toks), nil
}

// term := factor (("^"|"*"|"/") factor)*, evaluated left to right.
func (p *parser) term(toks []Token) (match[float64], error) {
	f, err := p.factor(toks)
	if err != nil || !f.ok {
		return f, err
	}
	acc, toks := f.val, f.rest
	for len(toks) > 0 && toks[0].is("^", "*", "/") {
		op := toks[0].Text
		g, err := p.factor(toks[1:])
		if err != nil {
			return g, err
		}
		if !g.ok {
			break
		}
		switch op {
		case "^":
			acc = math.Pow(acc, g.val)
		case "*":
			acc *= g.val
		case "/":
			acc /= g.val
		}
		toks = g.rest
	}
	return hit(acc, toks), nil
}

func (p *parser) factor(toks []Token) (match[float64], error) {
	if len(toks) > 0 && toks[0].is("(") {
		e, err := p.expression(toks[1:])
		if err != nil {
			return e, err
		}
		if len(e.rest) > 0 && e.rest[0].is(")") {
			return hit(e.val, e.rest[1:]), nil
		}
	}
	return p.function(toks)
}

func (p *parser) function(toks []Token) (match[float64], error) {
	if len(toks) == 0 {
		return miss[float64](), nil
	}
	if toks[0].is("round", "rounded") {
		e, err := p.expression(toks[1:])
		if err != nil || !e.ok {
			return e, err
		}
		return hit(roundHalfUp(e.val), e.rest), nil
	}
	if toks[0].is("percent", "%") {
		e, err := p.expression(toks[1:])
		if err != nil || !e.ok {
			return e, err
		}
		return hit(roundHalfUp(100*e.val), e.rest), nil
	}
	if num := number(toks); num.ok {
		return num, nil
	}
	if kw := probKeyword(toks); kw.ok {
		pr, err := p.probExpr(kw.rest)
		if err != nil || pr.ok {
			return pr, err
		}
	}
	if name := varName(toks); name.ok {
		if v, ok := p.net.Nonp[name.val]; ok {
			return hit(v, name.rest), nil
		}
	}
	return miss[float64](), nil
}

func number(toks []Token) match[float64] {
	if len(toks) == 0 || toks[0].Kind != Number {
		return miss[float64]()
	}
	if len(toks) > 1 && toks[1].is("%") {
		return hit(toks[0].Num/100, toks[2:])
	}
	return hit(toks[0].Num, toks[1:])
}

func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }

// Probability expressions

// probExpr := condQuery | logicExpr, evaluated immediately.
func (p *parser) probExpr(toks []Token) (match[float64], error) {
	if len(toks) == 0 {
		return miss[float64](), nil
	}
	c, err := p.condQuery(toks)
	if err != nil || c.ok {
		return c, err
	}
	l := logicExpr(toks)
	if !l.ok {
		return miss[float64](), nil
	}
	v, err := p.eval.Prob(l.val, p.net)
	if err != nil {
		return miss[float64](), err
	}
	return hit(v, l.rest), nil
}

// condQuery := "(" condQuery ")" | logicExpr (":"|"given") logicExpr
func (p *parser) condQuery(toks []Token) (match[float64], error) {
	if len(toks) > 0 && toks[0].is("(") {
		inner, err := p.condQuery(toks[1:])
		if err != nil {
			return inner, err
		}
		if inner.ok && len(inner.rest) > 0 && inner.rest[0].is(")") {
			return hit(inner.val, inner.rest[1:]), nil
		}
	}
	x := logicExpr(toks)
	if !x.ok || len(x.rest) == 0 || !x.rest[0].is(":", "given") {
		return miss[float64](), nil
	}
	cond := logicExpr(x.rest[1:])
	if !cond.ok {
		return miss[float64](), nil
	}
	v, err := p.eval.Prob(logic.Given{X: x.val, Cond: cond.val}, p.net)
	if err != nil {
		return miss[float64](), err
	}
	return hit(v, cond.rest), nil
}

// logicExpr := logicTerm (("&"|","|"and"|"|"|"or") logicExpr)?
// The right operand extends to the end of the expression, so and/or have no
// relative precedence.
func logicExpr(toks []Token) match[logic.Term] {
	t := logicTerm(toks)
	if !t.ok || len(t.rest) == 0 {
		return t
	}
	op := t.rest[0]
	if !op.is("&", ",", "and", "|", "or") {
		return t
	}
	r := logicExpr(t.rest[1:])
	if !r.ok {
		return t
	}
	if op.is("|", "or") {
		return hit[logic.Term](logic.AnyOf(t.val, r.val), r.rest)
	}
	return hit[logic.Term](logic.AllOf(t.val, r.val), r.rest)
}

// logicTerm := ("-"|"not"|"no") logicTerm | "(" logicExpr ")" | varName
func logicTerm(toks []Token) match[logic.Term] {
	if len(toks) == 0 {
		return miss[logic.Term]()
	}
	if toks[0].is("-", "not", "no") {
		x := logicTerm(toks[1:])
		if !x.ok {
			return x
		}
		return hit[logic.Term](logic.N(x.val), x.rest)
	}
	if toks[0].is("(") {
		x := logicExpr(toks[1:])
		if x.ok && len(x.rest) > 0 && x.rest[0].is(")") {
			return hit(x.val, x.rest[1:])
		}
		return miss[logic.Term]()
	}
	name := varName(toks)
	if !name.ok {
		return miss[logic.Term]()
	}
	return hit[logic.Term](logic.V(name.val), name.rest)
}

// ParseLogic parses a logic expression, or "X given Y", without evaluating
// it.
func ParseLogic(text string) (logic.Term, error) {
	x := logicExpr(Tokenize(text))
	if !x.ok {
		return nil, &SyntaxError{Text: text, Msg: "expected a logic expression"}
	}
	t, rest := x.val, x.rest
	if len(rest) > 0 && rest[0].is(":", "given") {
		cond := logicExpr(rest[1:])
		if !cond.ok {
			return nil, &SyntaxError{Text: text, Msg: "expected a condition after " + rest[0].Text}
		}
		t, rest = logic.Given{X: t, Cond: cond.val}, cond.rest
	}
	p := &parser{text: text}
	if err := p.finished(rest); err != nil {
		return nil, err
	}
	return t, nil
}

// Calc interprets a single formula against n, or against a fresh empty
// network when n is nil. The network is not completed first.
func Calc(text string, n *Network) (float64, error) {
	return Interpreter{}.Eval(text, n)
}
