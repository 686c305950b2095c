package emlisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalSelfEvaluating(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{"int", "42", IntValue(42)},
		{"negative int", "-7", IntValue(-7)},
		{"true", "#t", TRUE},
		{"false", "#f", FALSE},
		{"nil", "#n", NIL},
	}
	rt := newTestRuntime(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalSrc(t, rt, tt.src))
		})
	}
}

func TestEvalArithmetic(t *testing.T) {
	rt := newTestRuntime(t)
	tests := []struct {
		name string
		src  string
		want int64
	}{
		{"add", "(+ 1 2 3)", 6},
		{"sub", "(- 10 3 2)", 5},
		{"sub single arg is identity", "(- 5)", 5},
		{"mul", "(* 2 3 4)", 24},
		{"div", "(/ 20 2 2)", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalSrc(t, rt, tt.src)
			require.Equal(t, TagInt, got.Tag())
			assert.Equal(t, tt.want, got.Int())
		})
	}
}

func TestEvalIf(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, IntValue(1), evalSrc(t, rt, "(if #t 1 2)"))
	assert.Equal(t, IntValue(2), evalSrc(t, rt, "(if #f 1 2)"))
	assert.Equal(t, IntValue(1), evalSrc(t, rt, "(if 0 1 2)"), "only #f is false")
}

func TestEvalLet(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, IntValue(3), evalSrc(t, rt, "(let ((a 1) (b 2)) (+ a b))"))
}

func TestEvalLetSeq(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, IntValue(3), evalSrc(t, rt, "(let* ((a 1) (b (+ a 1))) (+ a b))"))
}

func TestEvalLetRec(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, `
		(letrec ((even? (lambda (n) (if (eq? n 0) #t (odd? (- n 1)))))
		         (odd?  (lambda (n) (if (eq? n 0) #f (even? (- n 1))))))
		  (even? 4))`)
	assert.Equal(t, TRUE, got, "letrec bindings must see each other for mutual recursion")
}

func TestEvalLambdaAndClosures(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, IntValue(7), evalSrc(t, rt, "((lambda (a b) (+ a b)) 3 4)"))

	got := evalSrc(t, rt, `
		(define (make-adder n) (lambda (x) (+ x n)))
		(define add5 (make-adder 5))
		(add5 10)`)
	assert.Equal(t, IntValue(15), got)
}

func TestEvalVariadicClosure(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, `
		(define f (lambda (... rest) rest))
		(f 1 2 3)`)
	// a variadic lambda binds its single parameter to the whole
	// evaluated argument list (spec "variadic closure").
	assert.Equal(t, TagPair, got.Tag())
	assert.Equal(t, IntValue(1), rt.Car(got))
	assert.Equal(t, IntValue(2), rt.Car(rt.Cdr(got)))
	assert.Equal(t, IntValue(3), rt.Car(rt.Cdr(rt.Cdr(got))))
}

func TestEvalSetReconciliation(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, `
		(define counter 0)
		(define (make-counter)
		  (lambda () (set! counter (+ counter 1)) counter))
		(define bump (make-counter))
		(bump)
		(bump)
		(bump)`)
	assert.Equal(t, IntValue(3), got, "set! on a captured free variable is visible across calls")
}

func TestEvalQuote(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, "'(1 2 3)")
	assert.Equal(t, TagPair, got.Tag())
	assert.Equal(t, IntValue(1), rt.Car(got))
}

func TestEvalBegin(t *testing.T) {
	rt := newTestRuntime(t)
	assert.Equal(t, IntValue(3), evalSrc(t, rt, "(begin 1 2 3)"))
}

func TestEvalQuasiquoteSplicingScenario(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, "`(a ,(+ 1 2) ,@(cons 3 (cons 4 ())) b)")
	assert.Equal(t, rt.Symbol("a"), rt.Car(got))
	rest := rt.Cdr(got)
	assert.Equal(t, IntValue(3), rt.Car(rest))
	rest = rt.Cdr(rest)
	assert.Equal(t, IntValue(3), rt.Car(rest))
	rest = rt.Cdr(rest)
	assert.Equal(t, IntValue(4), rt.Car(rest))
	rest = rt.Cdr(rest)
	assert.Equal(t, rt.Symbol("b"), rt.Car(rest))
}

func TestEvalQuasiquote(t *testing.T) {
	rt := newTestRuntime(t)
	got := evalSrc(t, rt, `
		(define x 5)
		` + "`(a ,x ,@(quote (b c)))")
	assert.Equal(t, rt.Symbol("a"), rt.Car(got))
	assert.Equal(t, IntValue(5), rt.Car(rt.Cdr(got)))
	assert.Equal(t, rt.Symbol("b"), rt.Car(rt.Cdr(rt.Cdr(got))))
	assert.Equal(t, rt.Symbol("c"), rt.Car(rt.Cdr(rt.Cdr(rt.Cdr(got)))))
}

func TestEvalUnboundName(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.Eval(rt.Symbol("no-such-name"))
	require.Error(t, err)
	var unbound *UnboundNameError
	require.ErrorAs(t, err, &unbound)
}

func TestEvalArgumentCountMismatch(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll("((lambda (a b) a) 1)")
	require.NoError(t, err)
	expanded, err := rt.Expand(forms)
	require.NoError(t, err)
	_, err = rt.Eval(rt.Car(expanded))
	require.Error(t, err)
	var mismatch *ArgumentCountMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestEvalTypeMismatchTrace(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll("(car 5)")
	require.NoError(t, err)
	expanded, err := rt.Expand(forms)
	require.NoError(t, err)
	_, err = rt.Eval(rt.Car(expanded))
	require.Error(t, err)
	var tme *TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.NotEqual(t, NIL, tme.Trace, "trace accumulates the offending expression")
}

func TestUniqueSymbolNeverAliases(t *testing.T) {
	rt := newTestRuntime(t)
	name := rt.Symbol("g")
	a := rt.UniqueSymbol(name)
	b := rt.UniqueSymbol(name)
	assert.False(t, Eq(a, b))
	assert.False(t, Eq(a, name))
	assert.Equal(t, "g", rt.SymbolName(a))
}
