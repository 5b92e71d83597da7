package config

import (
	"fmt"

	"github.com/bassosimone/runtimex"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
	"github.com/haukened/rr-dnsprobe/internal/dns/gateways/wire"
)

// DefaultCaseName names the case built from the top-level query and expect sections.
const DefaultCaseName = "default"

// BuildQuestion turns a name, type mnemonic, and class mnemonic into a validated Question.
func BuildQuestion(name, rrtype, class string) (domain.Question, error) {
	t := domain.ParseRRType(rrtype)
	if t == 0 {
		return domain.Question{}, fmt.Errorf("unsupported type %q", rrtype)
	}
	c := domain.ParseRRClass(class)
	if c == 0 {
		return domain.Question{}, fmt.Errorf("unsupported class %q", class)
	}
	return domain.NewQuestion(name, t, c)
}

// BuildCase converts the query and expect sections into a domain.Case.
// The expected question is stored as wire bytes so the validator can
// compare it against the raw response tail.
func BuildCase(name string, q QueryConfig, e ExpectConfig) (domain.Case, error) {
	question, err := BuildQuestion(q.Name, q.Type, q.Class)
	if err != nil {
		return domain.Case{}, fmt.Errorf("case %s: query: %w", name, err)
	}

	wantQuestion, err := BuildQuestion(e.Name, e.Type, e.Class)
	if err != nil {
		return domain.Case{}, fmt.Errorf("case %s: expect: %w", name, err)
	}

	expect := domain.Expectation{
		Header: domain.Header{
			ID:      e.ID,
			Flags:   e.Flags,
			QDCount: e.QDCount,
			ANCount: e.ANCount,
			NSCount: e.NSCount,
			ARCount: e.ARCount,
		},
		Question:  wire.EncodeQuestion(wantQuestion.Labels, wantQuestion.Type, wantQuestion.Class),
		FlagsMode: domain.FlagsMode(e.FlagsMode),
	}
	if err := expect.Validate(); err != nil {
		return domain.Case{}, fmt.Errorf("case %s: expect: %w", name, err)
	}

	return domain.Case{
		Name: name,
		Query: domain.Header{
			ID:      q.ID,
			Flags:   q.Flags,
			QDCount: 1,
		},
		Question: question,
		Expect:   expect,
	}, nil
}

// Case builds the single case described by the loaded configuration.
func (c *AppConfig) Case() (domain.Case, error) {
	return BuildCase(DefaultCaseName, c.Query, c.Expect)
}

// DefaultCase is the reference scenario built from DEFAULT_APP_CONFIG.
// It panics if DEFAULT_APP_CONFIG has been changed into something invalid.
func DefaultCase() domain.Case {
	return runtimex.PanicOnError1(BuildCase(DefaultCaseName, DEFAULT_APP_CONFIG.Query, DEFAULT_APP_CONFIG.Expect))
}
