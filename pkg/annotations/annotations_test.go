package annotations

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/siggs/pkg/descriptor"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

type Simple struct{}

type Complex struct {
	a string
	b int
	C string
}

func NewComplex(a string) *Complex { return &Complex{a: a} }

func (c *Complex) A() string  { return c.a }
func (c *Complex) B() int     { return c.b }
func (c *Complex) SetB(v int) { c.b = v }

type Holder struct {
	Inner *Complex
	Tags  []string
	Pair  [2]int
	Any   interface{}
}

func NewHolder(inner *Complex) *Holder { return &Holder{Inner: inner} }

type Ranged struct {
	Value int8
}

func NewRanged(v int8) *Ranged { return &Ranged{Value: v} }

type Wide struct {
	N int64
	U uint64
}

type Picky struct {
	Value string
}

func NewPicky(v string) (*Picky, error) {
	if v == "bad" {
		return nil, errors.New("bad value")
	}
	return &Picky{Value: v}, nil
}

func testRegistry(t *testing.T) Registry {
	t.Helper()

	r := NewBuiltinRegistry()
	require.NoError(t, Register[Simple](r, "Simple"))
	require.NoError(t, Register[Complex](r, "Complex", NewComplex))
	require.NoError(t, Register[Holder](r, "Holder", NewHolder))
	require.NoError(t, Register[Ranged](r, "Ranged", NewRanged))
	require.NoError(t, Register[Picky](r, "Picky", NewPicky))
	require.NoError(t, Register[Wide](r, "Wide"))
	return r
}

func TestReplicate_ConstructorPropertyAndField(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	src := descriptor.NewAnnotation("Complex", "goodbye").
		WithProperty("B", 10).
		WithField("C", "world")

	inst, err := rep.Replicate(src)
	require.NoError(t, err)

	c, ok := As[Complex](inst)
	require.True(t, ok)
	assert.Equal(t, "goodbye", c.A())
	assert.Equal(t, 10, c.B())
	assert.Equal(t, "world", c.C)

	assert.Equal(t, "Complex", inst.Name())
	assert.Equal(t, src.String(), inst.Source().String())
}

func TestReplicate_ZeroValueWithoutConstructors(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	inst, err := rep.Replicate(descriptor.NewAnnotation("Simple"))
	require.NoError(t, err)

	_, ok := As[Simple](inst)
	assert.True(t, ok)
}

func TestReplicate_FreshValuePerCall(t *testing.T) {
	rep := NewReplicator(testRegistry(t))
	src := descriptor.NewAnnotation("Complex", "x")

	first, err := rep.Replicate(src)
	require.NoError(t, err)
	second, err := rep.Replicate(src)
	require.NoError(t, err)

	assert.NotSame(t, first.Value(), second.Value())
}

func TestReplicate_NestedAndLists(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	src := descriptor.NewAnnotation("Holder",
		descriptor.NewAnnotation("Complex", "inner").WithProperty("B", 3),
	).
		WithField("Tags", descriptor.List(descriptor.Const("a"), descriptor.Const("b"))).
		WithField("Pair", descriptor.List(descriptor.Const(1), descriptor.Const(2))).
		WithField("Any", descriptor.List(descriptor.Const("x"), descriptor.Const(1)))

	inst, err := rep.Replicate(src)
	require.NoError(t, err)

	h, ok := As[Holder](inst)
	require.True(t, ok)
	require.NotNil(t, h.Inner)
	assert.Equal(t, "inner", h.Inner.A())
	assert.Equal(t, 3, h.Inner.B())
	assert.Equal(t, []string{"a", "b"}, h.Tags)
	assert.Equal(t, [2]int{1, 2}, h.Pair)
	assert.Equal(t, []interface{}{"x", 1}, h.Any)
}

func TestReplicate_NilForNillableMembers(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	inst, err := rep.Replicate(descriptor.NewAnnotation("Holder", nil).WithField("Tags", nil))
	require.NoError(t, err)

	h, _ := As[Holder](inst)
	assert.Nil(t, h.Inner)
	assert.Nil(t, h.Tags)
}

func TestReplicate_NumericConversion(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	tests := []struct {
		name  string
		value interface{}
		want  int8
		ok    bool
	}{
		{name: "int in range", value: 100, want: 100, ok: true},
		{name: "whole float", value: 2.0, want: 2, ok: true},
		{name: "int overflow", value: 300, ok: false},
		{name: "fractional float", value: 2.5, ok: false},
		{name: "string", value: "7", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := rep.Replicate(descriptor.NewAnnotation("Ranged", tt.value))
			if !tt.ok {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "has no constructor accepting")
				return
			}
			require.NoError(t, err)
			r, _ := As[Ranged](inst)
			assert.Equal(t, tt.want, r.Value)
		})
	}
}

func TestReplicate_FloatBoundaries(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	inst, err := rep.Replicate(descriptor.NewAnnotation("Wide").
		WithField("N", -9223372036854775808.0).
		WithField("U", 18446744073709549568.0))
	require.NoError(t, err)
	w, _ := As[Wide](inst)
	assert.Equal(t, int64(math.MinInt64), w.N)
	assert.Equal(t, uint64(18446744073709549568), w.U)

	tests := []struct {
		name   string
		member string
		value  float64
	}{
		{name: "int64 at 2^63", member: "N", value: 9223372036854775808.0},
		{name: "uint64 at 2^64", member: "U", value: 18446744073709551616.0},
		{name: "negative uint64", member: "U", value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rep.Replicate(descriptor.NewAnnotation("Wide").WithField(tt.member, tt.value))
			require.Error(t, err)
			assert.True(t, siggserrors.HasCode(err, siggserrors.DescriptorErrorCode))
		})
	}
}

func TestReplicate_RejectsCycle(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	inner := descriptor.NewAnnotation("Complex", "x")
	outer := descriptor.NewAnnotation("Holder", inner)
	inner.WithField("C", outer)

	_, err := rep.Replicate(outer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotation cycle")
	assert.True(t, siggserrors.HasCode(err, siggserrors.DescriptorErrorCode))
}

func TestReplicate_Errors(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	tests := []struct {
		name       string
		annotation *descriptor.Annotation
		expect     string
		suggestion string
	}{
		{
			name:       "unregistered type",
			annotation: descriptor.NewAnnotation("Unknown"),
			expect:     "annotation type 'Unknown' is not registered",
			suggestion: "annotations.Register",
		},
		{
			name:       "no matching constructor",
			annotation: descriptor.NewAnnotation("Simple", "unexpected"),
			expect:     "annotation type 'Simple' has no constructor accepting (string)",
			suggestion: "Simple()",
		},
		{
			name:       "wrong constructor arity",
			annotation: descriptor.NewAnnotation("Complex"),
			expect:     "has no constructor accepting ()",
			suggestion: "Complex(string)",
		},
		{
			name:       "unknown property",
			annotation: descriptor.NewAnnotation("Complex", "x").WithProperty("Missing", 1),
			expect:     "has no property 'Missing'",
		},
		{
			name:       "field assigned as property",
			annotation: descriptor.NewAnnotation("Complex", "x").WithProperty("C", "y"),
			expect:     "has no property 'C'",
			suggestion: "'C' is a field",
		},
		{
			name:       "property assigned as field",
			annotation: descriptor.NewAnnotation("Complex", "x").WithField("B", 1),
			expect:     "has no field 'B'",
			suggestion: "'B' is a property",
		},
		{
			name:       "unexported field",
			annotation: descriptor.NewAnnotation("Complex", "x").WithField("a", "y"),
			expect:     "has no field 'a'",
		},
		{
			name:       "property type mismatch",
			annotation: descriptor.NewAnnotation("Complex", "x").WithProperty("B", "ten"),
			expect:     "cannot assign string to member 'B' of type int",
		},
		{
			name:       "nested type mismatch",
			annotation: descriptor.NewAnnotation("Holder", descriptor.NewAnnotation("Simple")),
			expect:     "has no constructor accepting (@Simple)",
		},
		{
			name:       "nested failure propagates",
			annotation: descriptor.NewAnnotation("Holder", descriptor.NewAnnotation("Unknown")),
			expect:     "annotation type 'Unknown' is not registered",
		},
		{
			name:       "missing type",
			annotation: &descriptor.Annotation{},
			expect:     "annotation has no type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rep.Replicate(tt.annotation)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)

			var descErr *siggserrors.DescriptorError
			require.True(t, errors.As(err, &descErr))
			if tt.suggestion != "" {
				require.NotEmpty(t, descErr.Suggestions())
				assert.Contains(t, descErr.Suggestions()[0], tt.suggestion)
			}
		})
	}
}

func TestReplicate_ConstructorFailure(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	_, err := rep.Replicate(descriptor.NewAnnotation("Picky", "bad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotation constructor failed: bad value")

	inst, err := rep.Replicate(descriptor.NewAnnotation("Picky", "good"))
	require.NoError(t, err)
	p, _ := As[Picky](inst)
	assert.Equal(t, "good", p.Value)
}

type collector struct {
	attached []*Instance
}

func (c *collector) Attach(inst *Instance) {
	c.attached = append(c.attached, inst)
}

func TestReplicateInto_AttachesOnlyOnSuccess(t *testing.T) {
	rep := NewReplicator(testRegistry(t))
	target := &collector{}

	require.NoError(t, rep.ReplicateInto(descriptor.NewAnnotation("Simple"), target))
	require.Error(t, rep.ReplicateInto(descriptor.NewAnnotation("Unknown"), target))
	assert.Len(t, target.attached, 1)
}

func TestReplicateAll(t *testing.T) {
	rep := NewReplicator(testRegistry(t))

	insts, err := rep.ReplicateAll([]*descriptor.Annotation{
		descriptor.NewAnnotation("Simple"),
		descriptor.NewAnnotation("Complex", "x"),
	})
	require.NoError(t, err)
	require.Len(t, insts, 2)
	assert.Equal(t, "Simple", insts[0].Name())
	assert.Equal(t, "Complex", insts[1].Name())

	_, err = rep.ReplicateAll([]*descriptor.Annotation{descriptor.NewAnnotation("Unknown")})
	assert.Error(t, err)
}

func TestFindAndFindAll(t *testing.T) {
	rep := NewReplicator(testRegistry(t))
	insts, err := rep.ReplicateAll([]*descriptor.Annotation{
		descriptor.NewAnnotation("Complex", "first"),
		descriptor.NewAnnotation("Simple"),
		descriptor.NewAnnotation("Complex", "second"),
	})
	require.NoError(t, err)

	first, ok := Find[Complex](insts)
	require.True(t, ok)
	assert.Equal(t, "first", first.A())

	all := FindAll[Complex](insts)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[1].A())

	_, ok = Find[Picky](insts)
	assert.False(t, ok)

	_, ok = As[Complex](nil)
	assert.False(t, ok)
}
