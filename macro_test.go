package emlisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroDefineAndExpand(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll("(defmacro (my-if c t e) `(if ,c ,t ,e))\n(my-if #t 1 2)")
	require.NoError(t, err)

	expanded, err := rt.Expand(forms)
	require.NoError(t, err)

	// defmacro expands to nil and is dropped from evaluation; only the
	// invocation form remains.
	assert.Equal(t, NIL, rt.Car(expanded))
	call := rt.Car(rt.Cdr(expanded))
	assert.Equal(t, rt.symIf, rt.Car(call))

	result, err := rt.Eval(call)
	require.NoError(t, err)
	assert.Equal(t, IntValue(1), result)
}

func TestMacroVariadicBindsWholeArgList(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll(`
		(defmacro (capture ... rest) (cons (quote quote) (cons rest ())))
		(capture 1 2 3)`)
	require.NoError(t, err)

	expanded, err := rt.Expand(forms)
	require.NoError(t, err)

	result, err := rt.Eval(rt.Car(rt.Cdr(expanded)))
	require.NoError(t, err)
	assert.Equal(t, IntValue(1), rt.Car(result))
	assert.Equal(t, IntValue(2), rt.Car(rt.Cdr(result)))
	assert.Equal(t, IntValue(3), rt.Car(rt.Cdr(rt.Cdr(result))))
}

func TestMacroExpandErrorAbortsExpansion(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll(`(macro-expand-error "boom")`)
	require.NoError(t, err)

	_, err = rt.Expand(forms)
	require.Error(t, err)
	var mee *MacroExpandError
	require.ErrorAs(t, err, &mee)
	assert.Equal(t, "boom", mee.Message)
}

func TestMacroWhenScenario(t *testing.T) {
	rt := newTestRuntime(t)
	// this implementation's function descriptors support either a
	// fixed parameter list or a single variadic parameter bound to the
	// whole call-site argument list, never a mix of the two (grounded
	// on original_source/src/eval.cpp's function::function, which only
	// special-cases an argument list whose FIRST element is the
	// ellipsis sentinel). `when`'s condition is therefore pulled out
	// of the captured argument list with car/cdr inside the macro body
	// rather than bound as a separate fixed parameter.
	forms, err := rt.ReadAll("(defmacro (when ... args) `(if ,(car args) (begin ,@(cdr args)) #n))\n(when #t 42)")
	require.NoError(t, err)

	expanded, err := rt.Expand(forms)
	require.NoError(t, err)

	call := rt.Car(rt.Cdr(expanded))
	result, err := rt.Eval(call)
	require.NoError(t, err)
	assert.Equal(t, IntValue(42), result)
}

func TestMacroExpansionIsRecursive(t *testing.T) {
	rt := newTestRuntime(t)
	forms, err := rt.ReadAll("(defmacro (twice x) `(cons ,x (cons ,x ())))\n(defmacro (twice-five) `(twice 5))\n(twice-five)")
	require.NoError(t, err)

	expanded, err := rt.Expand(forms)
	require.NoError(t, err)

	call := rt.Car(rt.Cdr(rt.Cdr(expanded)))
	assert.Equal(t, rt.Symbol("cons"), rt.Car(call), "the (twice 5) produced by twice-five is itself expanded")
	result, err := rt.Eval(call)
	require.NoError(t, err)
	assert.Equal(t, IntValue(5), rt.Car(result))
	assert.Equal(t, IntValue(5), rt.Car(rt.Cdr(result)))
}
