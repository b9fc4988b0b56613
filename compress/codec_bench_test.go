package compress

import (
	"fmt"
	"testing"
)

// generateBenchmarkData creates test data for benchmarks
func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "highly_compressible":
		// All zeros - maximum compression
		// data already initialized to zeros
	case "compressible":
		// Repeated pattern - good compression
		pattern := []byte("archive metadata blob with descriptor entries and node table")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "semi_compressible":
		// Semi-random data - moderate compression
		for i := range data {
			if i%100 < 50 {
				data[i] = byte(i % 256)
			} else {
				data[i] = byte((i*7 + i*i) % 256)
			}
		}
	default:
		// Default to incompressible
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

// BenchmarkZstdCompressor_Compress benchmarks compression with various data patterns
func BenchmarkZstdCompressor_Compress(b *testing.B) {
	sizes := []int{
		1024,    // 1 KB
		16384,   // 16 KB
		65536,   // 64 KB
		262144,  // 256 KB
		1048576, // 1 MB
	}

	compressibilities := []string{
		"highly_compressible",
		"compressible",
		"semi_compressible",
		"incompressible",
	}

	compressor := NewZstdCompressor()

	for _, size := range sizes {
		for _, comp := range compressibilities {
			testName := fmt.Sprintf("%dKB_%s", size/1024, comp)
			b.Run(testName, func(b *testing.B) {
				data := generateBenchmarkData(size, comp)

				b.ResetTimer()
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))

				for b.Loop() {
					_, err := compressor.Compress(data)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkZstdCompressor_Decompress benchmarks decompression with various data patterns
func BenchmarkZstdCompressor_Decompress(b *testing.B) {
	sizes := []int{
		1024,    // 1 KB
		16384,   // 16 KB
		65536,   // 64 KB
		262144,  // 256 KB
		1048576, // 1 MB
	}

	compressibilities := []string{
		"highly_compressible",
		"compressible",
		"semi_compressible",
		"incompressible",
	}

	compressor := NewZstdCompressor()

	for _, size := range sizes {
		for _, comp := range compressibilities {
			testName := fmt.Sprintf("%dKB_%s", size/1024, comp)
			b.Run(testName, func(b *testing.B) {
				data := generateBenchmarkData(size, comp)

				compressed, err := compressor.Compress(data)
				if err != nil {
					b.Fatal(err)
				}

				b.ResetTimer()
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))

				for b.Loop() {
					_, err := compressor.Decompress(compressed)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkZstdCompressor_RoundTrip benchmarks full compress/decompress cycle
func BenchmarkZstdCompressor_RoundTrip(b *testing.B) {
	sizes := []int{
		1024,    // 1 KB
		16384,   // 16 KB
		65536,   // 64 KB
		262144,  // 256 KB
		1048576, // 1 MB
	}

	compressibilities := []string{
		"highly_compressible",
		"compressible",
		"semi_compressible",
		"incompressible",
	}

	compressor := NewZstdCompressor()

	for _, size := range sizes {
		for _, comp := range compressibilities {
			testName := fmt.Sprintf("%dKB_%s", size/1024, comp)
			b.Run(testName, func(b *testing.B) {
				data := generateBenchmarkData(size, comp)

				b.ResetTimer()
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))

				for b.Loop() {
					compressed, err := compressor.Compress(data)
					if err != nil {
						b.Fatal(err)
					}
					_, err = compressor.Decompress(compressed)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkZstdCompressor_CompressionRatio benchmarks and reports compression ratios
func BenchmarkZstdCompressor_CompressionRatio(b *testing.B) {
	size := 1048576 // 1 MB

	compressibilities := []string{
		"highly_compressible",
		"compressible",
		"semi_compressible",
		"incompressible",
	}

	compressor := NewZstdCompressor()

	for _, comp := range compressibilities {
		b.Run(comp, func(b *testing.B) {
			data := generateBenchmarkData(size, comp)

			// Measure compression once to report ratio
			compressed, err := compressor.Compress(data)
			if err != nil {
				b.Fatal(err)
			}

			ratio := float64(len(compressed)) / float64(len(data)) * 100
			b.ReportMetric(ratio, "ratio%")
			b.ReportMetric(float64(len(compressed)), "compressed_bytes")

			b.ResetTimer()
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))

			for b.Loop() {
				_, err := compressor.Compress(data)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkZstdCompressor_SmallPayloads benchmarks small payloads, the size
// range a single decoded type-tree entry tends to fall into.
func BenchmarkZstdCompressor_SmallPayloads(b *testing.B) {
	sizes := []int{
		64,   // 64 bytes
		128,  // 128 bytes
		256,  // 256 bytes
		512,  // 512 bytes
		1024, // 1 KB
	}

	compressor := NewZstdCompressor()

	for _, size := range sizes {
		testName := fmt.Sprintf("%d_bytes", size)
		b.Run(testName, func(b *testing.B) {
			data := generateBenchmarkData(size, "compressible")

			b.ResetTimer()
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))

			for b.Loop() {
				compressed, err := compressor.Compress(data)
				if err != nil {
					b.Fatal(err)
				}
				_, err = compressor.Decompress(compressed)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkZstdCompressor_Parallel benchmarks parallel compression performance
func BenchmarkZstdCompressor_Parallel(b *testing.B) {
	size := 65536 // 64 KB
	data := generateBenchmarkData(size, "compressible")

	compressor := NewZstdCompressor()

	b.Run("Compress", func(b *testing.B) {
		b.ResetTimer()
		b.ReportAllocs()
		b.SetBytes(int64(len(data)))

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := compressor.Compress(data)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	})

	b.Run("Decompress", func(b *testing.B) {
		compressed, err := compressor.Compress(data)
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		b.ReportAllocs()
		b.SetBytes(int64(len(data)))

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := compressor.Decompress(compressed)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	})
}

// generateTestData creates test data of specified size with some compressibility.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}

	return data
}

// BenchmarkZstdCompress and BenchmarkZstdDecompress isolate the pooled
// encoder/decoder path across payload sizes typical of a single external
// type-tree document.
func BenchmarkZstdCompress(b *testing.B) {
	sizes := []int{
		1 * 1024,   // 1KB - small payload
		8 * 1024,   // 8KB - typical document payload
		64 * 1024,  // 64KB - large payload
		512 * 1024, // 512KB - very large payload
	}

	for _, size := range sizes {
		data := generateTestData(size)
		compressor := NewZstdCompressor()

		b.Run(formatSize(size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(size))
			b.ResetTimer()

			for b.Loop() {
				_, _ = compressor.Compress(data)
			}
		})
	}
}

func BenchmarkZstdDecompress(b *testing.B) {
	sizes := []int{
		1 * 1024,
		8 * 1024,
		64 * 1024,
		512 * 1024,
	}

	for _, size := range sizes {
		data := generateTestData(size)
		compressor := NewZstdCompressor()
		compressed, _ := compressor.Compress(data)

		b.Run(formatSize(size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(compressed)))
			b.ResetTimer()

			for b.Loop() {
				_, _ = compressor.Decompress(compressed)
			}
		})
	}
}

// BenchmarkZstdDecompress_Sequential simulates the schema provider's real
// usage: decoding many class-tree lookups sequentially against one shared,
// pooled decoder.
func BenchmarkZstdDecompress_Sequential(b *testing.B) {
	const payloadSize = 12 * 1024
	data := generateTestData(payloadSize)
	compressor := NewZstdCompressor()
	compressed, _ := compressor.Compress(data)

	b.Run("150lookups", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(compressed)))
		b.ResetTimer()

		for b.Loop() {
			for range 150 {
				_, _ = compressor.Decompress(compressed)
			}
		}
	})
}

// BenchmarkZstdDecompress_Parallel tests pool behavior under concurrent load.
func BenchmarkZstdDecompress_Parallel(b *testing.B) {
	const size = 8 * 1024
	data := generateTestData(size)
	compressor := NewZstdCompressor()
	compressed, _ := compressor.Compress(data)

	b.ReportAllocs()
	b.SetBytes(int64(len(compressed)))
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = compressor.Decompress(compressed)
		}
	})
}

func formatSize(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%dB", size)
	}

	if size < 1024*1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}

	return fmt.Sprintf("%dMB", size/(1024*1024))
}
