// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
)

func TestSampleFormat_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format SampleFormat
		name   string
		bytes  int
		planar bool
	}{
		{FormatU8, "u8", 1, false},
		{FormatS16, "s16", 2, false},
		{FormatS32, "s32", 4, false},
		{FormatFLT, "flt", 4, false},
		{FormatDBL, "dbl", 8, false},
		{FormatU8P, "u8p", 1, true},
		{FormatS16P, "s16p", 2, true},
		{FormatS32P, "s32p", 4, true},
		{FormatFLTP, "fltp", 4, true},
		{FormatDBLP, "dblp", 8, true},
		{FormatS64, "s64", 8, false},
		{FormatS64P, "s64p", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.format.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.format.BytesPerSample(); got != tt.bytes {
				t.Errorf("BytesPerSample() = %d, want %d", got, tt.bytes)
			}
			if got := tt.format.IsPlanar(); got != tt.planar {
				t.Errorf("IsPlanar() = %v, want %v", got, tt.planar)
			}
			if tt.format.Packed().IsPlanar() {
				t.Errorf("Packed() = %v is planar", tt.format.Packed())
			}
			if !tt.format.Planar().IsPlanar() {
				t.Errorf("Planar() = %v is not planar", tt.format.Planar())
			}
			if tt.format.Packed().BytesPerSample() != tt.bytes || tt.format.Planar().BytesPerSample() != tt.bytes {
				t.Error("planar and packed variants differ in sample size")
			}

			parsed, err := ParseSampleFormat(tt.name)
			if err != nil || parsed != tt.format {
				t.Errorf("ParseSampleFormat(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}
}

func TestSampleFormat_Invalid(t *testing.T) {
	t.Parallel()

	for _, f := range []SampleFormat{FormatNone, SampleFormat(-1), formatCount, 99} {
		if f.Valid() {
			t.Errorf("%d.Valid() = true", int(f))
		}
		if f.BytesPerSample() != 0 {
			t.Errorf("%d.BytesPerSample() = %d, want 0", int(f), f.BytesPerSample())
		}
		if f.IsPlanar() {
			t.Errorf("%d.IsPlanar() = true", int(f))
		}
	}

	if _, err := ParseSampleFormat("s24"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseSampleFormat(s24) error = %v, want ErrInvalidFormat", err)
	}
	if _, err := ParseSampleFormat("none"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseSampleFormat(none) error = %v, want ErrInvalidFormat", err)
	}
}

func TestSampleFormat_Text(t *testing.T) {
	t.Parallel()

	var f SampleFormat
	if err := f.UnmarshalText([]byte(" FLTP ")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if f != FormatFLTP {
		t.Errorf("UnmarshalText() = %v, want fltp", f)
	}

	b, err := f.MarshalText()
	if err != nil || string(b) != "fltp" {
		t.Errorf("MarshalText() = %q, %v", b, err)
	}

	if _, err := FormatNone.MarshalText(); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("FormatNone.MarshalText() error = %v", err)
	}
}

// Unset environment values arrive as empty text and must keep the zero value.
func TestUnmarshalText_Empty(t *testing.T) {
	t.Parallel()

	f := FormatS16
	if err := f.UnmarshalText(nil); err != nil || f != FormatNone {
		t.Errorf("SampleFormat.UnmarshalText(\"\") = %v, %v", f, err)
	}

	l := LayoutStereo
	if err := l.UnmarshalText([]byte("  ")); err != nil || l != 0 {
		t.Errorf("ChannelLayout.UnmarshalText(\"  \") = %v, %v", l, err)
	}

	if err := l.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("ChannelLayout.UnmarshalText(bogus) error = %v", err)
	}
}

func TestDefaultChannelLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channels int
		want     ChannelLayout
	}{
		{1, LayoutMono},
		{2, LayoutStereo},
		{6, Layout5Point1},
		{7, Layout6Point1},
		{8, Layout7Point1},
		{9, 0x1ff},
		{11, 0x7ff},
		{64, ^ChannelLayout(0)},
		{0, 0},
		{-1, 0},
		{65, 0},
	}

	for _, tt := range tests {
		got := DefaultChannelLayout(tt.channels)
		if got != tt.want {
			t.Errorf("DefaultChannelLayout(%d) = %#x, want %#x", tt.channels, uint64(got), uint64(tt.want))
		}
		if tt.want != 0 && got.Channels() != tt.channels {
			t.Errorf("DefaultChannelLayout(%d).Channels() = %d", tt.channels, got.Channels())
		}
	}
}

func TestChannelLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		layout   ChannelLayout
		channels int
	}{
		{"mono", LayoutMono, 1},
		{"stereo", LayoutStereo, 2},
		{"2.1", Layout2Point1, 3},
		{"3.0", LayoutSurround, 3},
		{"quad", LayoutQuad, 4},
		{"5.0", Layout5Point0, 5},
		{"5.1", Layout5Point1, 6},
		{"6.1", Layout6Point1, 7},
		{"7.1", Layout7Point1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.layout.Channels(); got != tt.channels {
				t.Errorf("Channels() = %d, want %d", got, tt.channels)
			}
			if got := tt.layout.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			parsed, err := ParseChannelLayout(tt.name)
			if err != nil || parsed != tt.layout {
				t.Errorf("ParseChannelLayout(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}
}

func TestParseChannelLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ChannelLayout
		wantErr bool
	}{
		{in: "2", want: LayoutStereo},
		{in: "6", want: Layout5Point1},
		{in: "0x3", want: LayoutStereo},
		{in: "0x4", want: LayoutMono},
		{in: "Stereo", want: LayoutStereo},
		{in: "7", want: Layout6Point1},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "0x0", wantErr: true},
		{in: "0xzz", wantErr: true},
		{in: "surround-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseChannelLayout(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLayout) {
					t.Errorf("ParseChannelLayout(%q) error = %v, want ErrInvalidLayout", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseChannelLayout(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestChannelLayout_UnnamedString(t *testing.T) {
	t.Parallel()

	l := ChannelFrontLeft | ChannelBackCenter
	if got, want := l.String(), "2 channels (0x101)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := ChannelLayout(0).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
