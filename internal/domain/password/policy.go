package password

import (
	"errors"
	"html/template"
	"strings"
	"sync"
	"sync/atomic"
)

// Policy is an ordered, immutable list of validators.
type Policy struct {
	validators []Validator
	html       func() template.HTML
}

// NewPolicy creates a policy running the given validators in order.
func NewPolicy(validators ...Validator) *Policy {
	vs := make([]Validator, len(validators))
	copy(vs, validators)
	p := &Policy{validators: vs}
	p.html = sync.OnceValue(func() template.HTML {
		return renderHelpTextHTML(p.HelpTexts())
	})
	return p
}

// Len returns the number of validators in the policy.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.validators)
}

// Validators returns a copy of the policy's validators.
func (p *Policy) Validators() []Validator {
	if p == nil {
		return nil
	}
	vs := make([]Validator, len(p.validators))
	copy(vs, p.validators)
	return vs
}

// Validate runs every validator against the password. It returns nil when all
// pass and a *ValidationError holding every violation otherwise.
func (p *Policy) Validate(password string, subject *Subject) error {
	if p == nil {
		return nil
	}
	return run(password, subject, p.validators)
}

// HelpTexts returns one requirement description per validator, in order.
func (p *Policy) HelpTexts() []string {
	if p == nil {
		return []string{}
	}
	return helpTexts(p.validators)
}

// HelpTextHTML returns an accessor for the requirements rendered as an HTML
// unordered list. The policy owns a single accessor: the list is rendered on
// the first call through any of them and reused afterwards. A policy without
// validators renders as an empty string.
func (p *Policy) HelpTextHTML() func() template.HTML {
	if p == nil || p.html == nil {
		return func() template.HTML { return "" }
	}
	return p.html
}

var defaultPolicy atomic.Pointer[Policy]

// Default returns the process-wide policy installed with SetDefault. Until one
// is installed the default policy has no validators.
func Default() *Policy {
	if p := defaultPolicy.Load(); p != nil {
		return p
	}
	return NewPolicy()
}

// SetDefault installs p as the process-wide policy.
func SetDefault(p *Policy) {
	defaultPolicy.Store(p)
}

// Validate runs validators against the password, falling back to the default
// policy when validators is nil.
func Validate(password string, subject *Subject, validators []Validator) error {
	if validators == nil {
		return Default().Validate(password, subject)
	}
	return run(password, subject, validators)
}

// HelpTexts returns the help texts of validators, falling back to the default
// policy when validators is nil.
func HelpTexts(validators []Validator) []string {
	if validators == nil {
		return Default().HelpTexts()
	}
	return helpTexts(validators)
}

// HelpTextHTML returns the HTML accessor for validators, falling back to the
// default policy when validators is nil.
func HelpTextHTML(validators []Validator) func() template.HTML {
	if validators == nil {
		return Default().HelpTextHTML()
	}
	return NewPolicy(validators...).HelpTextHTML()
}

func run(password string, subject *Subject, validators []Validator) error {
	var violations []*Violation
	for _, v := range validators {
		err := v.Validate(password, subject)
		if err == nil {
			continue
		}

		var violation *Violation
		if !errors.As(err, &violation) {
			violation = &Violation{Code: CodePasswordInvalid, Message: err.Error()}
		}
		violations = append(violations, violation)
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func helpTexts(validators []Validator) []string {
	texts := make([]string, 0, len(validators))
	for _, v := range validators {
		texts = append(texts, v.HelpText())
	}
	return texts
}

func renderHelpTextHTML(texts []string) template.HTML {
	if len(texts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<ul>")
	for _, text := range texts {
		b.WriteString("<li>")
		b.WriteString(template.HTMLEscapeString(text))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return template.HTML(b.String()) //nolint:gosec // every item is escaped above
}
