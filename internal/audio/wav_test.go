package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func pcmSamples(samples ...int16) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func TestEncodeDecodeWAV(t *testing.T) {
	pcm := pcmSamples(100, -200, 300, -400, 500)
	f := Format{SampleRate: 8000, Channels: 1}

	wav, err := EncodeWAV(pcm, f)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(wav) != wavHeaderSize+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), wavHeaderSize+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("bad header % x", wav[:44])
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 16000 {
		t.Fatalf("byte rate = %d, want 16000", got)
	}

	gotF, gotPCM, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if gotF != f {
		t.Fatalf("format = %+v, want %+v", gotF, f)
	}
	if !bytes.Equal(gotPCM, pcm) {
		t.Fatalf("pcm = % x, want % x", gotPCM, pcm)
	}
}

func TestEncodeWAVRejects(t *testing.T) {
	if _, err := EncodeWAV([]byte{1, 2, 3}, DefaultFormat); err == nil {
		t.Fatal("odd length accepted")
	}
	if _, err := EncodeWAV([]byte{1, 2}, Format{SampleRate: 0, Channels: 1}); err == nil {
		t.Fatal("zero sample rate accepted")
	}
}

func TestDecodeWAVSkipsExtraChunks(t *testing.T) {
	pcm := pcmSamples(1, 2, 3)
	wav, err := EncodeWAV(pcm, DefaultFormat)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	// splice a LIST chunk with an odd size (plus pad byte) between fmt and data
	list := append([]byte("LIST"), 0x03, 0, 0, 0, 'a', 'b', 'c', 0)
	spliced := append(append(append([]byte{}, wav[:36]...), list...), wav[36:]...)

	f, got, err := DecodeWAV(spliced)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if f != DefaultFormat || !bytes.Equal(got, pcm) {
		t.Fatalf("got %+v % x", f, got)
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte("RIFF")},
		{"not wave", append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 40)...)},
		{"no data", []byte("RIFF\x04\x00\x00\x00WAVE")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeWAV(tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
