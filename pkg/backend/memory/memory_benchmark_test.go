package memory

import (
	"fmt"
	"testing"
)

func BenchmarkMemoryBackend_GetOrCreateExisting(b *testing.B) {
	backend := NewMemoryBackend()
	backend.GetOrCreate("BTC-USD")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = backend.GetOrCreate("btc-usd")
	}
}

func BenchmarkMemoryBackend_GetOrCreateParallel(b *testing.B) {
	backend := NewMemoryBackend()
	symbols := make([]string, 16)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM-%d", i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = backend.GetOrCreate(symbols[i%len(symbols)])
			i++
		}
	})
}
