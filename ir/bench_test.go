package ir

import (
	"runtime"
	"testing"
)

// BenchmarkReader benchmarks walking an instruction stream.
func BenchmarkReader(b *testing.B) {
	var code []byte
	for i := 0; i < 64; i++ {
		code = append(code, sampleCode()...)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(code)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r := NewReader(code)
		n := 0
		for r.Next() {
			n++
		}
		if r.Err() != nil {
			b.Fatal(r.Err())
		}
		runtime.KeepAlive(n)
	}
}

// BenchmarkDecodeMetadata benchmarks decoding a metadata blob.
func BenchmarkDecodeMetadata(b *testing.B) {
	blob := AppendMetadata(nil, sampleMetadata())

	b.ReportAllocs()
	b.SetBytes(int64(len(blob)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m, err := DecodeMetadata(blob)
		if err != nil {
			b.Fatal(err)
		}
		runtime.KeepAlive(m)
	}
}
