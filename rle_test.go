package tdfbundle

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeRLE(t *testing.T) {
	tests := []struct {
		name    string
		indices []byte
		want    []byte
	}{
		{"empty", nil, []byte{}},
		{"literals", []byte{1, 2, 2, 3}, []byte{1, 2, 2, 3}},
		{"run of three", []byte{4, 4, 4}, []byte{255, 0, 4}},
		{"mixed", []byte{1, 2, 2, 3, 3, 3}, []byte{1, 2, 2, 255, 0, 3}},
		{"longest run", bytes.Repeat([]byte{7}, 258), []byte{255, 255, 7}},
		{"run split", bytes.Repeat([]byte{7}, 259), []byte{255, 255, 7, 7}},
		{"run split twice", bytes.Repeat([]byte{7}, 600), []byte{255, 255, 7, 255, 255, 7, 255, 81, 7}},
		{"escape run", []byte{255, 255, 255}, []byte{255, 0, 255}},
		{"escape run of 259", bytes.Repeat([]byte{255}, 259), []byte{255, 253, 255, 255, 0, 255}},
		{"trailing single escape", []byte{1, 255}, []byte{1, 255, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRLE(tt.indices)
			if err != nil {
				t.Fatalf("EncodeRLE failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stream mismatch (-want +got):\n%s", diff)
			}

			decoded, consumed, diags := DecodeRLE(got, len(tt.indices))
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
			if consumed != len(got) {
				t.Errorf("consumed %d of %d bytes", consumed, len(got))
			}
			if !bytes.Equal(decoded, tt.indices) {
				t.Errorf("round trip mismatch: got %v", decoded)
			}
		})
	}
}

func TestEncodeRLEShortEscapeRun(t *testing.T) {
	for _, indices := range [][]byte{{255, 1}, {1, 255, 255, 2}} {
		if _, err := EncodeRLE(indices); !errors.Is(err, ErrUnencodableRun) {
			t.Errorf("EncodeRLE(%v) error = %v, want ErrUnencodableRun", indices, err)
		}
	}
}

func TestRLERoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		var indices []byte
		for len(indices) < 400 {
			v := byte(rng.Intn(EscapeIndex))
			n := 1 + rng.Intn(12)
			if rng.Intn(20) == 0 {
				n = 250 + rng.Intn(300)
			}
			indices = append(indices, bytes.Repeat([]byte{v}, n)...)
		}
		stream, err := EncodeRLE(indices)
		if err != nil {
			t.Fatalf("EncodeRLE failed: %v", err)
		}
		decoded, _, diags := DecodeRLE(stream, len(indices))
		if len(diags) != 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		if !bytes.Equal(decoded, indices) {
			t.Fatalf("iteration %d: round trip mismatch", iter)
		}
	}
}

func TestDecodeRLEShortStream(t *testing.T) {
	got, consumed, diags := DecodeRLE([]byte{1, 2}, 4)
	if diff := cmp.Diff([]byte{1, 2, 0, 0}, got); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if consumed != 2 {
		t.Errorf("Expected 2 bytes consumed, got %d", consumed)
	}
	if diags.Count(KindShortStream) != 1 {
		t.Errorf("Expected one short-stream diagnostic, got %v", diags)
	}
}

func TestDecodeRLETruncatedEscape(t *testing.T) {
	got, _, diags := DecodeRLE([]byte{255, 5}, 3)
	if diff := cmp.Diff([]byte{0, 0, 0}, got); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if diags.Count(KindShortStream) == 0 {
		t.Error("Expected a short-stream diagnostic")
	}
}

func TestDecodeRLEOvershoot(t *testing.T) {
	got, consumed, diags := DecodeRLE([]byte{255, 2, 9, 4, 4}, 3)
	if diff := cmp.Diff([]byte{9, 9, 9}, got); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if consumed != 3 {
		t.Errorf("Expected 3 bytes consumed, got %d", consumed)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}
