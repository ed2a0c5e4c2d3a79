package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Builder collects errors so that every problem in a configuration is
// reported at once instead of one per run.
type Builder struct {
	about string
	errs  []error
}

// NewBuilder creates a new Builder.
//
// If about is given, the aggregated error is rendered as a headline
// followed by one bullet per collected error.
func NewBuilder(about ...string) Builder {
	if len(about) == 0 {
		return Builder{}
	}
	return Builder{about: about[0]}
}

func (b *Builder) About() string {
	return b.about
}

func (b *Builder) HasError() bool {
	return len(b.errs) > 0
}

// Add adds an error to the Builder.
//
// adding nil is no-op.
func (b *Builder) Add(err error) {
	if err == nil {
		return
	}
	//nolint:errorlint
	if nested, ok := err.(*nestedError); ok && nested.about == "" {
		b.errs = append(b.errs, nested.errs...)
		return
	}
	b.errs = append(b.errs, err)
}

func (b *Builder) Addf(format string, args ...any) {
	if len(args) == 0 {
		b.errs = append(b.errs, errors.New(format))
		return
	}
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// AddSubject adds err with subject prepended to its subject chain.
func (b *Builder) AddSubject(subject string, err error) {
	b.Add(PrependSubject(subject, err))
}

func (b *Builder) ForEach(fn func(error)) {
	for _, err := range b.errs {
		fn(err)
	}
}

func (b *Builder) Error() error {
	if len(b.errs) == 0 {
		return nil
	}
	if len(b.errs) == 1 && b.about == "" {
		return b.errs[0]
	}
	return &nestedError{about: b.about, errs: append([]error(nil), b.errs...)}
}

func (b *Builder) String() string {
	err := b.Error()
	if err == nil {
		return ""
	}
	return err.Error()
}

// Join returns the non-nil errors as one error, or nil.
func Join(errs ...error) error {
	var b Builder
	for _, err := range errs {
		b.Add(err)
	}
	if len(b.errs) == 0 {
		return nil
	}
	return &nestedError{errs: b.errs}
}

type nestedError struct {
	about string
	errs  []error
}

func (err *nestedError) Unwrap() []error {
	return err.errs
}

func (err *nestedError) Error() string {
	lines := make([]string, 0, len(err.errs)+1)
	indent := ""
	if err.about != "" {
		lines = append(lines, err.about)
		indent = "  "
	}
	for _, e := range err.errs {
		for i, line := range strings.Split(e.Error(), "\n") {
			if i == 0 {
				lines = append(lines, indent+"• "+line)
			} else {
				lines = append(lines, indent+"  "+line)
			}
		}
	}
	return strings.Join(lines, "\n")
}
