// Package wire builds requests and reads events of Wayland protocol extensions
// with the argument helpers of the go-wayland client.
package wire

import (
	"errors"
	"strings"

	"github.com/yaslama/go-wayland/wayland/client"
)

var ErrShortMessage = errors.New("short message")

// Request is one message to the server.
type Request struct {
	buf []byte
}

func NewRequest(sender uint32, opcode uint16) *Request {
	r := &Request{buf: make([]byte, 8, 32)}
	client.PutUint32(r.buf[0:4], sender)
	client.PutUint32(r.buf[4:8], uint32(opcode))
	return r
}

func (r *Request) grow(n int) []byte {
	l := len(r.buf)
	r.buf = append(r.buf, make([]byte, n)...)
	return r.buf[l:]
}

func (r *Request) Uint32(v uint32) *Request {
	client.PutUint32(r.grow(4), v)
	return r
}

func (r *Request) Int32(v int32) *Request {
	return r.Uint32(uint32(v))
}

// String appends a NUL terminated string padded to 32 bits.
func (r *Request) String(s string) *Request {
	r.Uint32(uint32(len(s) + 1))
	copy(r.grow(client.PaddedLen(len(s)+1)), s)
	return r
}

// Bytes returns the message with the size filled in.
func (r *Request) Bytes() []byte {
	opcode := client.Uint32(r.buf[4:8]) & 0xffff
	client.PutUint32(r.buf[4:8], uint32(len(r.buf))<<16|opcode)
	return r.buf
}

// Decoder reads the arguments of an event. The first error sticks.
type Decoder struct {
	data []byte
	err  error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n > len(d.data) {
		d.err = ErrShortMessage
		return nil
	}
	b := d.data[:n]
	d.data = d.data[min(client.PaddedLen(n), len(d.data)):]
	return b
}

func (d *Decoder) Uint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return client.Uint32(b)
}

func (d *Decoder) Int32() int32 {
	return int32(d.Uint32())
}

// String copies the string out of the message.
func (d *Decoder) String() string {
	n := int(d.Uint32())
	if n == 0 {
		return ""
	}
	b := d.next(n)
	if b == nil {
		return ""
	}
	if b[n-1] != 0 {
		// String needs the terminator
		b = append(b[:n:n], 0)
	}
	return strings.Clone(client.String(b))
}

func (d *Decoder) Array() []byte {
	n := int(d.Uint32())
	b := d.next(n)
	if b == nil {
		return nil
	}
	return b
}

// Uint32Array reads an array of 32 bit values.
func (d *Decoder) Uint32Array() []uint32 {
	b := d.Array()
	values := make([]uint32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		values = append(values, client.Uint32(b[i:i+4]))
	}
	return values
}
