package rs

import "bytes"

import "testing"

func TestEncodeDecode_RoundTrip(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	data := make([]byte, DataBytes)
	for i := range data {
		data[i] = byte(i)
	}

	codeword, err := codec.EncodeCodeword(data)
	if err != nil {
		t.Fatalf("EncodeCodeword: %v", err)
	}
	if len(codeword) != CodewordLen {
		t.Fatalf("len(codeword) = %d, want %d", len(codeword), CodewordLen)
	}

	recovered, err := codec.DecodeCodeword(codeword, nil)
	if err != nil {
		t.Fatalf("DecodeCodeword: %v", err)
	}
	if !bytes.Equal(recovered, data) {
		t.Fatalf("recovered data mismatch")
	}
}

func TestDecodeCodeword_RecoversErasures(t *testing.T) {
	codec, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	data := make([]byte, DataBytes)
	for i := range data {
		data[i] = byte(255 - i)
	}
	codeword, err := codec.EncodeCodeword(data)
	if err != nil {
		t.Fatalf("EncodeCodeword: %v", err)
	}

	erasures := []int{0, 5, 40, 187, 190, 200}
	for _, idx := range erasures {
		codeword[idx] = 0
	}

	recovered, err := codec.DecodeCodeword(codeword, erasures)
	if err != nil {
		t.Fatalf("DecodeCodeword with erasures: %v", err)
	}
	if !bytes.Equal(recovered, data) {
		t.Fatalf("recovered data mismatch after erasure correction")
	}
}
