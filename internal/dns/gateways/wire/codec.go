package wire

import "github.com/haukened/rr-dnsprobe/internal/dns/domain"

// DNSCodec packs probe queries and unpacks the fixed part of responses.
type DNSCodec interface {
	// EncodeQuery packs a header followed by an encoded question.
	EncodeQuery(header domain.Header, question domain.Question) []byte

	// EncodeMessage packs a header followed by raw trailing bytes.
	EncodeMessage(msg domain.Message) []byte

	// DecodeHeader splits a datagram into its header and the untouched tail.
	DecodeHeader(data []byte) (domain.Message, error)
}
