package tp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/diag"
)

func TestResolve(t *testing.T) {
	for name, exp := range map[string]Kind{
		"INTEGER": Integer,
		"int":     Integer,
		"Real":    Real,
		"BOOLEAN": Boolean,
		"char":    Char,
		"STRING":  String,
		"date":    Date,
	} {
		k, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, exp, k, name)
	}

	_, err := Resolve("complex")
	require.ErrorIs(t, err, diag.ErrUnknownType)
	assert.Contains(t, err.Error(), `"complex"`)
}

func TestKindNative(t *testing.T) {
	assert.Equal(t, Type(I32), Integer.Native())
	assert.Equal(t, Type(Double), Real.Native())
	assert.Equal(t, Type(I1), Boolean.Native())
	assert.Equal(t, Type(I8), Char.Native())
	assert.Equal(t, Pointer, String.Category())
	assert.Equal(t, Pointer, Date.Category())

	assert.Equal(t, Integral, Integer.Category())
	assert.Equal(t, Integral, Char.Category())
	assert.Equal(t, Floating, Real.Category())
	assert.Equal(t, Logical, Boolean.Category())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "%d", Integer.Format())
	assert.Equal(t, "%f", Real.Format())
	assert.Equal(t, "%c", Char.Format())
	assert.Equal(t, "%s", String.Format())
	assert.Equal(t, "%s", Date.Format())
	assert.Equal(t, "%d", Boolean.Format())

	f, ok := ScanFormat(I8)
	assert.True(t, ok)
	assert.Equal(t, " %c", f)

	f, ok = ScanFormat(Double)
	assert.True(t, ok)
	assert.Equal(t, "%f", f)

	_, ok = Format(Void{})
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(I32, Int{Bits: 32, Signed: true}))
	assert.False(t, Equal(I32, I8))
	assert.False(t, Equal(I32, Double))
	assert.True(t, Equal(Ptr{}, Bytes))

	assert.True(t, Equal(Array{X: I32, Len: 3}, Array{X: I32, Len: 3}))
	assert.False(t, Equal(Array{X: I32, Len: 3}, Array{X: I32, Len: 4}))

	f := Func{In: []Type{I32, Double}, Out: I1}
	assert.True(t, Equal(f, Func{In: []Type{I32, Double}, Out: I1}))
	assert.False(t, Equal(f, Func{In: []Type{I32}, Out: I1}))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "[5 x i32]", Array{X: I32, Len: 5}.String())
	assert.Equal(t, "i32 (ptr, ...)", Func{In: []Type{Bytes}, Out: I32, Variadic: true}.String())
	assert.Equal(t, "void (double)", Func{In: []Type{Double}}.String())
	assert.Equal(t, 20, Array{X: I32, Len: 5}.Size())
	assert.Equal(t, 1, I1.Size())
}
