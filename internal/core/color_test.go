package core

import "testing"

func TestColorRoundTrip(t *testing.T) {
	colors := []Color{
		DefaultCardColor,
		{R: 255, G: 0, B: 128, A: 64},
		{},
	}
	for _, c := range colors {
		got, ok := DecodeColor(EncodeColor(c))
		if !ok || got != c {
			t.Fatalf("round trip %+v: got %+v ok=%v", c, got, ok)
		}
	}
}

func TestDecodeColorRejectsGarbage(t *testing.T) {
	for _, in := range [][]byte{nil, {}, []byte("blue"), []byte("#12345"), []byte("#zzzzzzzz"), {0x00, 0xff}} {
		if _, ok := DecodeColor(in); ok {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#3366ff")
	if !ok || c != (Color{R: 0x33, G: 0x66, B: 0xff, A: 255}) {
		t.Fatalf("unexpected color %+v ok=%v", c, ok)
	}
	if c.Hex() != "#3366ffff" {
		t.Fatalf("Hex() = %q", c.Hex())
	}
}
