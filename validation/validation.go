// Package validation evaluates declarative rule tables against submitted
// form values and collects one message per failing field.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to its first failing message.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records msg for field unless the field already failed.
func (v Violations) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Rule is a single predicate over a trimmed field value.
type Rule struct {
	Check   func(string) bool
	Message string
}

// Field binds a form field to its ordered rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Table is a list of fields validated in order.
type Table []Field

// Validate runs every field's rules against get(field.Name). Rules stop at the
// first failure for a field.
func (t Table) Validate(get func(string) string) Violations {
	v := Violations{}
	for _, f := range t {
		value := strings.TrimSpace(get(f.Name))
		for _, r := range f.Rules {
			if !r.Check(value) {
				v.Add(f.Name, r.Message)
				break
			}
		}
	}
	return v
}

var validate = validator.New()

// Required fails on blank values.
func Required(msg string) Rule {
	return Rule{Check: func(s string) bool { return s != "" }, Message: msg}
}

// Length bounds the value length in characters, inclusive.
func Length(min, max int, msg string) Rule {
	return Rule{
		Check: func(s string) bool {
			n := utf8.RuneCountInString(s)
			return n >= min && n <= max
		},
		Message: msg,
	}
}

// MaxLength bounds the value length from above only.
func MaxLength(max int, msg string) Rule {
	return Rule{Check: func(s string) bool { return utf8.RuneCountInString(s) <= max }, Message: msg}
}

// Matches requires the value to match pattern.
func Matches(pattern string, msg string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{Check: re.MatchString, Message: msg}
}

// Email requires a syntactically valid email address.
func Email(msg string) Rule {
	return Rule{Check: func(s string) bool { return validate.Var(s, "email") == nil }, Message: msg}
}

// URL requires an absolute http or https URL.
func URL(msg string) Rule {
	return Rule{Check: func(s string) bool { return validate.Var(s, "http_url") == nil }, Message: msg}
}

// Optional wraps rules so that a blank value passes all of them.
func Optional(rules ...Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		check := r.Check
		out[i] = Rule{
			Check:   func(s string) bool { return s == "" || check(s) },
			Message: r.Message,
		}
	}
	return out
}

// LengthMessage is the default wording for Length when a field has no
// custom message.
func LengthMessage(label string, min, max int) string {
	return fmt.Sprintf("%s must be between %d and %d characters.", label, min, max)
}
