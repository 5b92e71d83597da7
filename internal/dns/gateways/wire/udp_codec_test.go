package wire

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

func newTestCodec() *udpCodec {
	return NewUDPCodec(log.NewNoopLogger())
}

func exampleQuestion() domain.Question {
	return domain.Question{Labels: []string{"example", "com"}, Type: domain.RRTypeA, Class: domain.RRClassIN}
}

func TestEncodeQuestion(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		qtype  domain.RRType
		qclass domain.RRClass
		want   []byte
	}{
		{
			name:   "codecrafters.io A IN",
			labels: []string{"codecrafters", "io"},
			qtype:  domain.RRTypeA,
			qclass: domain.RRClassIN,
			want:   []byte("\x0ccodecrafters\x02io\x00\x00\x01\x00\x01"),
		},
		{
			name:   "example.com A IN",
			labels: []string{"example", "com"},
			qtype:  domain.RRTypeA,
			qclass: domain.RRClassIN,
			want:   []byte("\x07example\x03com\x00\x00\x01\x00\x01"),
		},
		{
			name:   "root NS",
			labels: nil,
			qtype:  domain.RRTypeNS,
			qclass: domain.RRClassIN,
			want:   []byte{0x00, 0x00, 0x02, 0x00, 0x01},
		},
		{
			name:   "big-endian type and class",
			labels: []string{"a"},
			qtype:  domain.RRTypeCAA,
			qclass: domain.RRClassANY,
			want:   []byte{0x01, 'a', 0x00, 0x01, 0x01, 0x00, 0xff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeQuestion(tt.labels, tt.qtype, tt.qclass))
		})
	}
}

func TestUdpCodec_EncodeQuery_ReferenceScenario(t *testing.T) {
	codec := newTestCodec()
	h := domain.Header{ID: 0xabcd, Flags: 0x0100, QDCount: 1}

	got := codec.EncodeQuery(h, exampleQuestion())

	want := []byte{0xab, 0xcd, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	want = append(want, []byte("\x07example\x03com\x00\x00\x01\x00\x01")...)
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, len(got), 512)
}

func TestUdpCodec_EncodeQuery_ParsesWithMiekg(t *testing.T) {
	codec := newTestCodec()
	q, err := domain.NewQuestion("www.example.org", domain.RRTypeAAAA, domain.RRClassIN)
	require.NoError(t, err)

	data := codec.EncodeQuery(domain.Header{ID: 4242, Flags: domain.FlagRD, QDCount: 1}, q)

	var msg dns.Msg
	require.NoError(t, msg.Unpack(data))
	assert.Equal(t, uint16(4242), msg.Id)
	assert.True(t, msg.RecursionDesired)
	assert.False(t, msg.Response)
	require.Len(t, msg.Question, 1)
	assert.Equal(t, "www.example.org.", msg.Question[0].Name)
	assert.Equal(t, dns.TypeAAAA, msg.Question[0].Qtype)
	assert.Equal(t, uint16(dns.ClassINET), msg.Question[0].Qclass)
}

func TestUdpCodec_HeaderRoundTrip(t *testing.T) {
	codec := newTestCodec()
	values := []uint16{0, 1, 2, 0x00ff, 0x0100, 0x1234, 0x7fff, 0x8000, 0xabcd, 0xfffe, 0xffff}

	for _, v := range values {
		for i := 0; i < 6; i++ {
			fields := [6]uint16{}
			for j := range fields {
				fields[j] = uint16(j * 7)
			}
			fields[i] = v
			h := domain.Header{
				ID: fields[0], Flags: fields[1], QDCount: fields[2],
				ANCount: fields[3], NSCount: fields[4], ARCount: fields[5],
			}

			msg, err := codec.DecodeHeader(codec.EncodeQuery(h, exampleQuestion()))
			require.NoError(t, err)
			assert.Equal(t, h, msg.Header, "field %d value %#04x", i, v)
		}
	}
}

func TestUdpCodec_HeaderIsFixedSize(t *testing.T) {
	codec := newTestCodec()
	h := domain.Header{ID: 7, Flags: 0x8180, QDCount: 3, ANCount: 2, NSCount: 1, ARCount: 9}
	questions := []domain.Question{
		{},
		exampleQuestion(),
		{Labels: []string{"a", "b", "c", "d"}, Type: domain.RRTypeTXT, Class: domain.RRClassCH},
	}

	for _, q := range questions {
		data := codec.EncodeQuery(h, q)
		require.GreaterOrEqual(t, len(data), domain.HeaderSize)
		msg, err := DecodeHeader(data[:domain.HeaderSize])
		require.NoError(t, err)
		assert.Equal(t, h, msg.Header)
		assert.Empty(t, msg.Tail)
	}
}

func TestDecodeHeader(t *testing.T) {
	valid := func() []byte {
		data := make([]byte, 0, 64)
		data = binary.BigEndian.AppendUint16(data, 1234)   // ID
		data = binary.BigEndian.AppendUint16(data, 0x8000) // Flags
		data = binary.BigEndian.AppendUint16(data, 1)      // QDCOUNT
		data = binary.BigEndian.AppendUint16(data, 0)      // ANCOUNT
		data = binary.BigEndian.AppendUint16(data, 0)      // NSCOUNT
		data = binary.BigEndian.AppendUint16(data, 0)      // ARCOUNT
		return append(data, []byte("\x0ccodecrafters\x02io\x00\x00\x01\x00\x01")...)
	}

	t.Run("valid response", func(t *testing.T) {
		msg, err := DecodeHeader(valid())
		require.NoError(t, err)
		assert.Equal(t, domain.Header{ID: 1234, Flags: 0x8000, QDCount: 1}, msg.Header)
		assert.Equal(t, []byte("\x0ccodecrafters\x02io\x00\x00\x01\x00\x01"), msg.Tail)
	})

	t.Run("header only", func(t *testing.T) {
		msg, err := DecodeHeader(valid()[:12])
		require.NoError(t, err)
		assert.Empty(t, msg.Tail)
	})

	t.Run("tail does not alias input", func(t *testing.T) {
		data := valid()
		msg, err := DecodeHeader(data)
		require.NoError(t, err)
		data[12] = 0xff
		assert.Equal(t, byte(0x0c), msg.Tail[0])
	})

	for n := 0; n < domain.HeaderSize; n++ {
		data := valid()[:n]
		_, err := DecodeHeader(data)
		assert.True(t, errors.Is(err, domain.ErrTruncatedMessage), "len=%d", n)
	}
}

func TestUdpCodec_EncodeMessage(t *testing.T) {
	codec := newTestCodec()
	msg := domain.Message{
		Header: domain.Header{ID: 1234, Flags: domain.FlagQR, QDCount: 1},
		Tail:   EncodeQuestion([]string{"codecrafters", "io"}, domain.RRTypeA, domain.RRClassIN),
	}

	data := codec.EncodeMessage(msg)
	assert.Len(t, data, msg.Len())

	back, err := codec.DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, msg, back)

	var parsed dns.Msg
	require.NoError(t, parsed.Unpack(data))
	assert.True(t, parsed.Response)
	assert.Equal(t, uint16(1234), parsed.Id)
	require.Len(t, parsed.Question, 1)
	assert.Equal(t, "codecrafters.io.", parsed.Question[0].Name)
}

func TestUdpCodec_DecodeHeader_Truncated(t *testing.T) {
	codec := newTestCodec()
	_, err := codec.DecodeHeader([]byte{0x04, 0xd2, 0x80})
	assert.ErrorIs(t, err, domain.ErrTruncatedMessage)
	assert.Contains(t, err.Error(), "got 3 bytes")
}
