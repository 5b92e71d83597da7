// Package wire provides encoding and decoding of the DNS header and question
// section for UDP transport, as laid out in RFC 1035 section 4.1.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/haukened/rr-dnsprobe/internal/dns/common/log"
	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

// udpCodec implements the DNSCodec interface for plain DNS over UDP.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates a codec that logs packet details at debug level.
func NewUDPCodec(logger log.Logger) *udpCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &udpCodec{
		logger: logger,
	}
}

// EncodeHeader appends the six header fields to dst in wire order.
func EncodeHeader(dst []byte, h domain.Header) []byte {
	dst = binary.BigEndian.AppendUint16(dst, h.ID)
	dst = binary.BigEndian.AppendUint16(dst, h.Flags)
	dst = binary.BigEndian.AppendUint16(dst, h.QDCount)
	dst = binary.BigEndian.AppendUint16(dst, h.ANCount)
	dst = binary.BigEndian.AppendUint16(dst, h.NSCount)
	dst = binary.BigEndian.AppendUint16(dst, h.ARCount)
	return dst
}

// EncodeQuestion encodes labels as length-prefixed strings, a zero terminator,
// then qtype and qclass. Labels are written as given; callers that need
// RFC-conformant names build them with domain.ParseName.
func EncodeQuestion(labels []string, qtype domain.RRType, qclass domain.RRClass) []byte {
	var buf bytes.Buffer
	for _, label := range labels {
		//gosec:disable G115 -- label length is the caller's contract.
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0) // End of name
	_ = binary.Write(&buf, binary.BigEndian, uint16(qtype))
	_ = binary.Write(&buf, binary.BigEndian, uint16(qclass))
	return buf.Bytes()
}

// DecodeHeader reads the 12-byte header and returns the rest as Tail.
func DecodeHeader(data []byte) (domain.Message, error) {
	if len(data) < domain.HeaderSize {
		return domain.Message{}, fmt.Errorf("%w: got %d bytes", domain.ErrTruncatedMessage, len(data))
	}
	h := domain.Header{
		ID:      binary.BigEndian.Uint16(data[0:2]),
		Flags:   binary.BigEndian.Uint16(data[2:4]),
		QDCount: binary.BigEndian.Uint16(data[4:6]),
		ANCount: binary.BigEndian.Uint16(data[6:8]),
		NSCount: binary.BigEndian.Uint16(data[8:10]),
		ARCount: binary.BigEndian.Uint16(data[10:12]),
	}
	tail := make([]byte, len(data)-domain.HeaderSize)
	copy(tail, data[domain.HeaderSize:])
	return domain.Message{Header: h, Tail: tail}, nil
}

// EncodeQuery serializes a header and question into a query datagram.
func (c *udpCodec) EncodeQuery(header domain.Header, question domain.Question) []byte {
	q := EncodeQuestion(question.Labels, question.Type, question.Class)
	out := make([]byte, 0, domain.HeaderSize+len(q))
	out = EncodeHeader(out, header)
	out = append(out, q...)

	c.logger.Debug(map[string]any{
		"header":   header.String(),
		"question": question.String(),
		"size":     len(out),
		"raw":      fmt.Sprintf("%x", out),
	}, "Encoded DNS query")

	return out
}

// EncodeMessage serializes a header and an opaque tail.
func (c *udpCodec) EncodeMessage(msg domain.Message) []byte {
	out := make([]byte, 0, msg.Len())
	out = EncodeHeader(out, msg.Header)
	out = append(out, msg.Tail...)

	c.logger.Debug(map[string]any{
		"header": msg.Header.String(),
		"size":   len(out),
	}, "Encoded DNS message")

	return out
}

// DecodeHeader parses a received datagram, see the package-level DecodeHeader.
func (c *udpCodec) DecodeHeader(data []byte) (domain.Message, error) {
	msg, err := DecodeHeader(data)
	if err != nil {
		c.logger.Warn(map[string]any{
			"size":  len(data),
			"error": err.Error(),
		}, "Failed to decode DNS header")
		return domain.Message{}, err
	}

	c.logger.Debug(map[string]any{
		"header": msg.Header.String(),
		"tail":   len(msg.Tail),
	}, "Decoded DNS header")

	return msg, nil
}

var _ DNSCodec = &udpCodec{}
