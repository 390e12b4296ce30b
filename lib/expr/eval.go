package expr

import (
	"fmt"
	"math"
	"reflect"
)

// Scope binds the names an expression can see.
type Scope struct {
	// This is the data object; its properties are visible as bare
	// identifiers and through this.
	This any
	// Locals is visible as locals and, after This, through bare identifiers.
	Locals any
	// Globals is searched last.
	Globals any
}

// Eval evaluates the program against s.
func (p *Program) Eval(s Scope) (any, error) {
	return p.root.eval(&s)
}

// Eval compiles and evaluates src in one step.
func Eval(src string, s Scope) (any, error) {
	p, err := Parse(src)
	if err != nil {
		return Undefined, err
	}
	return p.Eval(s)
}

func (n literal) eval(*Scope) (any, error) { return n.v, nil }

func (thisRef) eval(s *Scope) (any, error) {
	if s.This == nil {
		return Undefined, nil
	}
	return s.This, nil
}

func (localsRef) eval(s *Scope) (any, error) {
	if s.Locals == nil {
		return Undefined, nil
	}
	return s.Locals, nil
}

func (n identifier) eval(s *Scope) (any, error) {
	for _, obj := range []any{s.This, s.Locals, s.Globals} {
		if isNullish(obj) {
			continue
		}
		if v, ok, err := Property(obj, n.name); err == nil && ok {
			return v, nil
		}
	}
	return Undefined, &ReferenceError{Name: n.name}
}

func (n member) eval(s *Scope) (any, error) {
	obj, err := n.obj.eval(s)
	if err != nil {
		return Undefined, err
	}
	v, _, err := Property(obj, n.name)
	return v, err
}

func (n index) eval(s *Scope) (any, error) {
	obj, err := n.obj.eval(s)
	if err != nil {
		return Undefined, err
	}
	key, err := n.key.eval(s)
	if err != nil {
		return Undefined, err
	}
	v, _, err := Property(obj, propertyKey(key))
	return v, err
}

func (n unary) eval(s *Scope) (any, error) {
	x, err := n.x.eval(s)
	if err != nil {
		return Undefined, err
	}
	switch n.op {
	case "!":
		return !Truthy(x), nil
	case "-":
		return -ToNumber(x), nil
	}
	return ToNumber(x), nil
}

func (n logical) eval(s *Scope) (any, error) {
	l, err := n.l.eval(s)
	if err != nil {
		return Undefined, err
	}
	if n.op == "&&" {
		if !Truthy(l) {
			return l, nil
		}
	} else if Truthy(l) {
		return l, nil
	}
	return n.r.eval(s)
}

func (n conditional) eval(s *Scope) (any, error) {
	c, err := n.cond.eval(s)
	if err != nil {
		return Undefined, err
	}
	if Truthy(c) {
		return n.then.eval(s)
	}
	return n.els.eval(s)
}

func (n binary) eval(s *Scope) (any, error) {
	l, err := n.l.eval(s)
	if err != nil {
		return Undefined, err
	}
	r, err := n.r.eval(s)
	if err != nil {
		return Undefined, err
	}

	switch n.op {
	case "+":
		if !isPrimitive(l) || !isPrimitive(r) || isString(l) || isString(r) {
			return ToString(l) + ToString(r), nil
		}
		return ToNumber(l) + ToNumber(r), nil
	case "-":
		return ToNumber(l) - ToNumber(r), nil
	case "*":
		return ToNumber(l) * ToNumber(r), nil
	case "/":
		return ToNumber(l) / ToNumber(r), nil
	case "%":
		return math.Mod(ToNumber(l), ToNumber(r)), nil
	case "==":
		return looseEqual(l, r), nil
	case "!=":
		return !looseEqual(l, r), nil
	case "===":
		return strictEqual(l, r), nil
	case "!==":
		return !strictEqual(l, r), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, l, r), nil
	}
	return Undefined, fmt.Errorf("expr: unknown operator %q", n.op)
}

func compare(op string, l, r any) bool {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			switch op {
			case "<":
				return ls < rs
			case "<=":
				return ls <= rs
			case ">":
				return ls > rs
			}
			return ls >= rs
		}
	}
	a, b := ToNumber(l), ToNumber(r)
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	}
	return a >= b
}

func strictEqual(l, r any) bool {
	if IsUndefined(l) || IsUndefined(r) {
		return IsUndefined(l) && IsUndefined(r)
	}
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if a, ok := numberOf(l); ok {
		b, ok := numberOf(r)
		return ok && a == b
	}
	if a, ok := l.(string); ok {
		b, ok := r.(string)
		return ok && a == b
	}
	if a, ok := l.(bool); ok {
		b, ok := r.(bool)
		return ok && a == b
	}
	lt, rt := reflect.TypeOf(l), reflect.TypeOf(r)
	if lt != rt || !lt.Comparable() {
		return false
	}
	return l == r
}

func looseEqual(l, r any) bool {
	if isNullish(l) || isNullish(r) {
		return isNullish(l) && isNullish(r)
	}
	if isPrimitive(l) && isPrimitive(r) {
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok && rok {
			return ls == rs
		}
		return ToNumber(l) == ToNumber(r)
	}
	return strictEqual(l, r)
}
