package wire

import (
	"testing"

	"github.com/haukened/rr-dnsprobe/internal/dns/domain"
)

func BenchmarkUdpCodec_EncodeQuery(b *testing.B) {
	c := newTestCodec()
	h := domain.Header{ID: 0xabcd, Flags: 0x0100, QDCount: 1}
	q := exampleQuestion()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.EncodeQuery(h, q)
	}
}

func BenchmarkDecodeHeader(b *testing.B) {
	data := EncodeHeader(nil, domain.Header{ID: 1234, Flags: 0x8000, QDCount: 1})
	data = append(data, EncodeQuestion([]string{"codecrafters", "io"}, domain.RRTypeA, domain.RRClassIN)...)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeHeader(data); err != nil {
			b.Fatal(err)
		}
	}
}
