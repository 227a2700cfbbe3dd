// Package util holds small helpers shared by the codec and the handlers.
package util

import (
	"bytes"
	"sync"
)

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// GetBytesBuffer returns an empty buffer from the pool.
func GetBytesBuffer() *bytes.Buffer {
	buf := bytesBuffer.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func PutBytesBuffer(p *bytes.Buffer) {
	bytesBuffer.Put(p)
}
