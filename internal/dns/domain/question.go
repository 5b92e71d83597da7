package domain

import (
	"fmt"
	"strings"
)

// Question is a single DNS question: an ordered label sequence plus type and class.
type Question struct {
	Labels []string
	Type   RRType
	Class  RRClass
}

// NewQuestion parses name and validates type and class.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	labels, err := ParseName(name)
	if err != nil {
		return Question{}, err
	}
	q := Question{
		Labels: labels,
		Type:   rrtype,
		Class:  class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks the type and class are known.
func (q Question) Validate() error {
	if !q.Type.IsValid() {
		return fmt.Errorf("unsupported RRType: %d", q.Type)
	}
	if !q.Class.IsValid() {
		return fmt.Errorf("unsupported RRClass: %d", q.Class)
	}
	return nil
}

// Name returns the dotted name, "." for the root.
func (q Question) Name() string {
	if len(q.Labels) == 0 {
		return "."
	}
	return strings.Join(q.Labels, ".")
}

func (q Question) String() string {
	return fmt.Sprintf("%s %s %s", q.Name(), q.Type, q.Class)
}
