package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HashVectors returns the hex encoded sha256 of the vectors, separating values and vectors so
// that different splits of the same numbers do not collide.
func HashVectors(vecs ...[]float64) string {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	defer buffer.Reset()
	for _, vec := range vecs {
		for i := range vec {
			buffer.WriteString(strconv.FormatFloat(vec[i], 'g', 16, 64))
			buffer.WriteByte(',')
		}
		buffer.WriteByte(';')
	}
	sum := sha256.Sum256(buffer.Bytes())
	return hex.EncodeToString(sum[:])
}
