package stream

import "math"

func decodeFloat32(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func encodeFloat32(v float32) uint32 {
	return math.Float32bits(v)
}
