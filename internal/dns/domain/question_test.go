package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	tests := []struct {
		name       string
		queryName  string
		rrtype     RRType
		class      RRClass
		wantLabels []string
		wantErr    bool
	}{
		{
			name:       "fqdn",
			queryName:  "example.com.",
			rrtype:     RRTypeA,
			class:      RRClassIN,
			wantLabels: []string{"example", "com"},
		},
		{
			name:       "mixed case is kept",
			queryName:  "CodeCrafters.IO",
			rrtype:     RRTypeA,
			class:      RRClassIN,
			wantLabels: []string{"CodeCrafters", "IO"},
		},
		{
			name:       "service labels",
			queryName:  "_sip._tcp.example.com",
			rrtype:     RRTypeSRV,
			class:      RRClassIN,
			wantLabels: []string{"_sip", "_tcp", "example", "com"},
		},
		{
			name:       "root",
			queryName:  ".",
			rrtype:     RRTypeNS,
			class:      RRClassIN,
			wantLabels: nil,
		},
		{
			name:      "invalid type",
			queryName: "example.com",
			rrtype:    999,
			class:     RRClassIN,
			wantErr:   true,
		},
		{
			name:      "invalid class",
			queryName: "example.com",
			rrtype:    RRTypeA,
			class:     999,
			wantErr:   true,
		},
		{
			name:      "empty label",
			queryName: "example..com",
			rrtype:    RRTypeA,
			class:     RRClassIN,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuestion(tt.queryName, tt.rrtype, tt.class)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabels, q.Labels)
			assert.Equal(t, tt.rrtype, q.Type)
			assert.Equal(t, tt.class, q.Class)
		})
	}
}

func TestQuestion_NameAndString(t *testing.T) {
	q := Question{Labels: []string{"codecrafters", "io"}, Type: RRTypeA, Class: RRClassIN}
	assert.Equal(t, "codecrafters.io", q.Name())
	assert.Equal(t, "codecrafters.io A IN", q.String())

	root := Question{Type: RRTypeNS, Class: RRClassIN}
	assert.Equal(t, ".", root.Name())
}

func TestParseName(t *testing.T) {
	labels, err := ParseName("bücher.example")
	require.NoError(t, err)
	assert.Equal(t, []string{"xn--bcher-kva", "example"}, labels)

	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	_, err = ParseName(string(long) + ".com")
	assert.True(t, errors.Is(err, ErrInvalidName))

	// 4 labels of 63 octets encode to 257 octets
	label := string(long[:63])
	_, err = ParseName(label + "." + label + "." + label + "." + label)
	assert.True(t, errors.Is(err, ErrInvalidName))

	labels, err = ParseName("")
	assert.NoError(t, err)
	assert.Empty(t, labels)
}

func TestParseName_KeepsBytes(t *testing.T) {
	labels, err := ParseName("  Mixed.Example.org. ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mixed", "Example", "org"}, labels)

	labels, err = ParseName(".")
	assert.NoError(t, err)
	assert.Empty(t, labels)

	_, err = ParseName("example.com..")
	assert.True(t, errors.Is(err, ErrInvalidName))
}
