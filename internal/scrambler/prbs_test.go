package scrambler

import "bytes"

import "testing"

func TestDescramble_SelfInverse(t *testing.T) {
	original := make([]byte, 96)
	for i := range original {
		original[i] = byte(i * 7)
	}

	scrambled := append([]byte(nil), original...)
	Descramble(scrambled)

	if bytes.Equal(scrambled, original) {
		t.Fatalf("scrambled data equals original; PRBS produced no effect")
	}

	recovered := append([]byte(nil), scrambled...)
	Descramble(recovered)

	if !bytes.Equal(recovered, original) {
		t.Fatalf("Descramble(Descramble(x)) != x")
	}
}

func TestReset_RestoresInitialState(t *testing.T) {
	p := New()
	first := p.NextByte()

	p.Reset()
	second := p.NextByte()

	if first != second {
		t.Fatalf("PRBS output after Reset diverged: %x vs %x", first, second)
	}
}
