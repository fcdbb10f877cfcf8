package game

import "github.com/cespare/xxhash"

type encoder interface {
	AppendBinary(buf []byte) ([]byte, error)
}

// hashBoard hashes the binary encoding of a position, so equal boards share a hash
// across processes.
func hashBoard(b encoder) StateHash {
	var scratch [96]byte
	buf, err := b.AppendBinary(scratch[:0])
	if err != nil {
		panic(err)
	}
	return StateHash(xxhash.Sum64(buf))
}
