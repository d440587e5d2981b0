package distance

import (
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/cpu"
)

/* This init overrides squaredL2 and dotProduct with an 8-lane unrolled loop
 * when the CPU looks capable of wide SIMD, mirroring aligned_dim's 8-lane
 * padding. We deliberately do not hand-emit AVX2 assembly here (see
 * DESIGN.md): without a code generator in the loop we cannot verify it is
 * correct, so the "fast path" below is still plain Go, just shaped so the
 * compiler can vectorise it on its own. The file still only builds on amd64
 * so it never changes behaviour on other architectures. */
func init() {
	if cpu.X86.HasAVX2 && cpu.X86.HasFMA {
		log.Info().Str("GOARCH", runtime.GOARCH).Msg("using unrolled distance kernels")
		squaredL2 = squaredL2Unrolled8
		dotProduct = dotProductUnrolled8
	} else {
		log.Debug().Str("GOARCH", runtime.GOARCH).Msg("falling back to scalar distance kernels")
	}
}

func squaredL2Unrolled8(x, y []float32) float32 {
	n := len(x)
	i := 0
	var acc [8]float32
	for ; i+8 <= n; i += 8 {
		for lane := 0; lane < 8; lane++ {
			diff := x[i+lane] - y[i+lane]
			acc[lane] += diff * diff
		}
	}
	sum := acc[0] + acc[1] + acc[2] + acc[3] + acc[4] + acc[5] + acc[6] + acc[7]
	for ; i < n; i++ {
		diff := x[i] - y[i]
		sum += diff * diff
	}
	return sum
}

func dotProductUnrolled8(x, y []float32) float32 {
	n := len(x)
	i := 0
	var acc [8]float32
	for ; i+8 <= n; i += 8 {
		for lane := 0; lane < 8; lane++ {
			acc[lane] += x[i+lane] * y[i+lane]
		}
	}
	sum := acc[0] + acc[1] + acc[2] + acc[3] + acc[4] + acc[5] + acc[6] + acc[7]
	for ; i < n; i++ {
		sum += x[i] * y[i]
	}
	return sum
}
