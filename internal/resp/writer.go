package resp

import (
	"fmt"
	"io"
)

// delimiter terminates every RESP line, grounded on the reference
// implementation's Delimeter constant.
const delimiter = "\r\n"

// Reply is a fully-encoded RESP reply, ready to be written verbatim to a
// connection (spec.md §4.3's reply encoding table).
type Reply struct {
	bytes []byte
}

// WriteTo writes the reply's wire bytes to w.
func (r Reply) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.bytes)
	return int64(n), err
}

// OK builds the simple-string "+OK\r\n" reply.
func OK() Reply {
	return Reply{bytes: []byte("+OK" + delimiter)}
}

// Err builds an error reply "-ERR <message>\r\n".
func Err(message string) Reply {
	return Reply{bytes: []byte("-ERR " + message + delimiter)}
}

// Integer builds an integer reply ":<n>\r\n".
func Integer(n int64) Reply {
	return Reply{bytes: []byte(fmt.Sprintf(":%d%s", n, delimiter))}
}

// Bulk builds a bulk-string reply "$<len>\r\n<bytes>\r\n".
func Bulk(val []byte) Reply {
	b := make([]byte, 0, len(val)+16)
	b = append(b, '$')
	b = append(b, []byte(fmt.Sprintf("%d", len(val)))...)
	b = append(b, delimiter...)
	b = append(b, val...)
	b = append(b, delimiter...)
	return Reply{bytes: b}
}

// NilBulk builds the nil-bulk reply "$-1\r\n".
func NilBulk() Reply {
	return Reply{bytes: []byte("$-1" + delimiter)}
}
