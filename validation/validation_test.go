package validation

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return NewSchema(
		Field{Name: "name", Rules: []Rule{Required("name required")}},
		Field{Name: "price", Rules: []Rule{
			Decimal("price not a number"),
			GreaterThan("price must be positive", decimal.Zero),
			GreaterThan("price must exceed 10", decimal.NewFromInt(10)),
		}},
		Field{Name: "kind", Rules: []Rule{OneOf("bad kind", "a", "b")}},
	)
}

func TestValidate_AllValid(t *testing.T) {
	r := testSchema().Validate(url.Values{"name": {"x"}, "price": {"12.5"}, "kind": {"a"}})
	assert.True(t, r.Empty())
	assert.Nil(t, r.Violations())
	assert.True(t, r.Violations().Empty())
}

func TestValidate_CollectsEveryField(t *testing.T) {
	r := testSchema().Validate(url.Values{})
	require.False(t, r.Empty())

	v := r.Violations()
	assert.Equal(t, []string{"name required"}, v["name"])
	// blank price coerces to zero and fails both constraints, in rule order
	assert.Equal(t, []string{"price must be positive", "price must exceed 10"}, v["price"])
	assert.Equal(t, []string{"bad kind"}, v["kind"])
}

func TestValidate_InvalidTypeStopsField(t *testing.T) {
	r := testSchema().Validate(url.Values{"name": {"x"}, "price": {"abc"}, "kind": {"b"}})
	errs := r.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{Field: "price", Kind: InvalidType, Message: "price not a number"}, errs[0])
}

func TestValidate_ConstraintKind(t *testing.T) {
	r := testSchema().Validate(url.Values{"name": {"x"}, "price": {"5"}, "kind": {"a"}})
	errs := r.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ConstraintViolation, errs[0].Kind)
	assert.Equal(t, "price", errs[0].Field)
}

func TestRequired_Whitespace(t *testing.T) {
	rule := Required("req")
	assert.False(t, rule.Check(""))
	assert.False(t, rule.Check("   "))
	assert.True(t, rule.Check("c1"))
}

func TestOneOf_ExactMatch(t *testing.T) {
	rule := OneOf("bad", "pending", "paid")
	assert.True(t, rule.Check("pending"))
	assert.True(t, rule.Check("paid"))
	assert.False(t, rule.Check("Paid"))
	assert.False(t, rule.Check(" paid"))
	assert.False(t, rule.Check(""))
	assert.False(t, rule.Check("overdue"))
}

func TestOmit(t *testing.T) {
	s := testSchema().Omit("kind", "missing")
	assert.Equal(t, []string{"name", "price"}, s.Fields())
	// the source schema is untouched
	assert.Equal(t, []string{"name", "price", "kind"}, testSchema().Fields())
}

func TestCoerceDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15", "15", true},
		{" 12.34 ", "12.34", true},
		{"", "0", true},
		{"-5", "-5", true},
		{"1e2", "100", true},
		{"abc", "0", false},
		{"12,5", "0", false},
		{"1e64", "1e64", true},
		{"1e65", "0", false},
		{"1e400000000", "0", false},
		{"1e-400000000", "0", false},
		{strings.Repeat("9", 41), "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := CoerceDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
		})
	}
}

func TestLessThanOrEqual(t *testing.T) {
	rule := LessThanOrEqual("too large", decimal.NewFromInt(100))
	assert.Equal(t, ConstraintViolation, rule.Kind)
	assert.True(t, rule.Check("100"))
	assert.True(t, rule.Check("-3"))
	assert.False(t, rule.Check("100.01"))
	assert.False(t, rule.Check("1e30"))
	assert.False(t, rule.Check("abc"))
}

func TestValidate_HugeExponentReturnsPromptly(t *testing.T) {
	s := NewSchema(Field{Name: "price", Rules: []Rule{
		Decimal("price not a number"),
		GreaterThan("price must be positive", decimal.Zero),
	}})

	for _, in := range []string{"1e400000000", "1e-400000000", "-1E2147483647"} {
		done := make(chan Report, 1)
		go func() { done <- s.Validate(url.Values{"price": {in}}) }()

		select {
		case r := <-done:
			errs := r.Errors()
			require.Len(t, errs, 1, in)
			assert.Equal(t, InvalidType, errs[0].Kind, in)
		case <-time.After(2 * time.Second):
			t.Fatalf("Validate(%q) did not return", in)
		}
	}
}
