package validation

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Input is a raw form submission. url.Values satisfies it.
type Input interface {
	Get(key string) string
	Has(key string) bool
}

// Kind classifies a field failure.
type Kind string

const (
	// InvalidType means the raw value cannot be read as the required type.
	InvalidType Kind = "invalid_type"
	// ConstraintViolation means the value has the right type but breaks a business rule.
	ConstraintViolation Kind = "constraint_violation"
)

// Rule pairs a predicate on the raw value with the message reported when it fails.
// A failing InvalidType rule stops evaluation of the remaining rules of its field.
type Rule struct {
	Kind    Kind
	Message string
	Check   func(value string) bool
}

type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered rule table keyed by field name.
type Schema struct {
	fields []Field
}

func NewSchema(fields ...Field) Schema {
	return Schema{fields: slices.Clone(fields)}
}

// Omit returns a copy of the schema without the named fields.
func (s Schema) Omit(names ...string) Schema {
	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		if !slices.Contains(names, f.Name) {
			out = append(out, f)
		}
	}
	return Schema{fields: out}
}

// Fields lists the field names in evaluation order.
func (s Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks every field and collects all failures.
func (s Schema) Validate(in Input) Report {
	var r Report
	for _, f := range s.fields {
		value := in.Get(f.Name)
		for _, rule := range f.Rules {
			if rule.Check(value) {
				continue
			}
			r.errs = append(r.errs, FieldError{Field: f.Name, Kind: rule.Kind, Message: rule.Message})
			if rule.Kind == InvalidType {
				break
			}
		}
	}
	return r
}

type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

// Report is the outcome of Schema.Validate.
type Report struct {
	errs []FieldError
}

func (r Report) Empty() bool { return len(r.errs) == 0 }

func (r Report) Errors() []FieldError { return slices.Clone(r.errs) }

// Violations groups messages by field, keeping rule order within each field.
func (r Report) Violations() Violations {
	if r.Empty() {
		return nil
	}
	v := make(Violations, len(r.errs))
	for _, e := range r.errs {
		v[e.Field] = append(v[e.Field], e.Message)
	}
	return v
}

// Violations maps a field name to its ordered error messages.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic rules

func Required(message string) Rule {
	return Rule{Kind: InvalidType, Message: message, Check: func(value string) bool {
		return validate.Var(strings.TrimSpace(value), "required") == nil
	}}
}

// OneOf accepts exactly one of the given tokens. Tokens must not contain spaces.
func OneOf(message string, values ...string) Rule {
	tag := "required,oneof=" + strings.Join(values, " ")
	return Rule{Kind: InvalidType, Message: message, Check: func(value string) bool {
		return validate.Var(value, tag) == nil
	}}
}

func Decimal(message string) Rule {
	return Rule{Kind: InvalidType, Message: message, Check: func(value string) bool {
		_, ok := CoerceDecimal(value)
		return ok
	}}
}

func LessThanOrEqual(message string, max decimal.Decimal) Rule {
	return Rule{Kind: ConstraintViolation, Message: message, Check: func(value string) bool {
		d, ok := CoerceDecimal(value)
		return ok && d.LessThanOrEqual(max)
	}}
}

func GreaterThan(message string, min decimal.Decimal) Rule {
	return Rule{Kind: ConstraintViolation, Message: message, Check: func(value string) bool {
		d, ok := CoerceDecimal(value)
		return ok && d.GreaterThan(min)
	}}
}

// Limits on numeric form input. Comparing or rounding a decimal rescales it
// by 10^|exponent|, so both are bounded before any arithmetic happens.
const (
	maxDecimalLength   = 40
	maxDecimalExponent = 64
)

// CoerceDecimal reads a form value as a number. Blank input coerces to zero,
// the way browsers submit an untouched number field.
func CoerceDecimal(value string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, true
	}
	if len(s) > maxDecimalLength {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Zero, false
	}
	return d, true
}
