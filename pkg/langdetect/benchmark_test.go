package langdetect

import (
	"testing"
)

func BenchmarkDetectJavaScript(b *testing.B) {
	code := []byte(`
  const ops = { "+": (a, b) => a + b };
  return tail.reduce((acc, [o, t]) => ops[o](acc, t), head);
`)
	b.ResetTimer()
	for range b.N {
		Detect(code)
	}
}

func BenchmarkDetectTypeScript(b *testing.B) {
	code := []byte(`
  interface Op { apply(a: number, b: number): number }
  const depth: number = 0;
`)
	b.ResetTimer()
	for range b.N {
		Detect(code)
	}
}
