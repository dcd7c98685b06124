package qr

import (
	"bytes"
	"image/color"
	"testing"
)

func TestRenderPNGDeterministic(t *testing.T) {
	style := Style{ForegroundColor: "#1a1a2e"}
	a, err := RenderPNG("cust_abc123", style, 256)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderPNG("cust_abc123", style, 256)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical payload and style produced different images")
	}
}

func TestRenderPNGBadColorFallsBack(t *testing.T) {
	plain, err := RenderPNG("cust_abc123", Style{}, 256)
	if err != nil {
		t.Fatal(err)
	}
	styled, err := RenderPNG("cust_abc123", Style{ForegroundColor: "not-a-color"}, 256)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain, styled) {
		t.Error("unparseable color should degrade to the plain render")
	}
}

func TestRenderPNGStyleChangesOutput(t *testing.T) {
	plain, err := RenderPNG("cust_abc123", Style{}, 256)
	if err != nil {
		t.Fatal(err)
	}
	styled, err := RenderPNG("cust_abc123", Style{ForegroundColor: "#ff0000"}, 256)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(plain, styled) {
		t.Error("valid foreground color had no effect on the render")
	}
}

func TestRenderPNGEmptyPayload(t *testing.T) {
	if _, err := RenderPNG("", Style{}, 256); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
		ok   bool
	}{
		{"#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 0xff}, true},
		{"1A2B3C", color.RGBA{0x1a, 0x2b, 0x3c, 0xff}, true},
		{" #ffffff ", color.RGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#fff", nil, false},
		{"#gggggg", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseHexColor(tt.in)
		if ok != tt.ok {
			t.Errorf("parseHexColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
