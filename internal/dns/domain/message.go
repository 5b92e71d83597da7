package domain

// Message is a decoded DNS message: the header plus everything after it.
// Tail is left opaque; the probe only ever compares a known-length prefix of it.
type Message struct {
	Header Header
	Tail   []byte
}

// Len returns the wire length of the message.
func (m Message) Len() int {
	return HeaderSize + len(m.Tail)
}
