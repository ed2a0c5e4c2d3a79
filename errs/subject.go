package errs

import "strings"

const subjectSep = " > "

// withSubject prefixes an error with the path of the value it is about,
// e.g. "policies > report > img-src: must be a list".
type withSubject struct {
	// innermost first
	subjects []string
	err      error
}

// PrependSubject prepends subject to the subject chain of err.
//
// Empty subjects are ignored. nil errors stay nil. For a joined error
// without headline the subject is prepended to every error it holds.
func PrependSubject(subject string, err error) error {
	if err == nil {
		return nil
	}
	if subject == "" {
		return err
	}
	//nolint:errorlint
	if nested, ok := err.(*nestedError); ok && nested.about == "" {
		out := &nestedError{errs: make([]error, len(nested.errs))}
		for i, e := range nested.errs {
			out.errs[i] = PrependSubject(subject, e)
		}
		return out
	}
	//nolint:errorlint
	if ws, ok := err.(*withSubject); ok {
		clone := *ws
		clone.subjects = append(append([]string(nil), ws.subjects...), subject)
		return &clone
	}
	return &withSubject{subjects: []string{subject}, err: err}
}

// Subjectf is PrependSubject with the subject path given as separate parts,
// outermost first.
func Subjectf(err error, path ...string) error {
	for i := len(path) - 1; i >= 0; i-- {
		err = PrependSubject(path[i], err)
	}
	return err
}

func (err *withSubject) Unwrap() error {
	return err.err
}

func (err *withSubject) Error() string {
	var sb strings.Builder
	for i := len(err.subjects) - 1; i >= 0; i-- {
		sb.WriteString(err.subjects[i])
		if i > 0 {
			sb.WriteString(subjectSep)
		}
	}
	if msg := err.err.Error(); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	}
	return sb.String()
}
