package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// wavHeader is the canonical 44-byte RIFF/WAVE header for PCM data.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

const wavHeaderSize = 44

// EncodeWAV wraps 16-bit little-endian PCM into a WAV container.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm data has odd length %d", len(pcm))
	}
	dataSize := uint32(len(pcm))
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.BytesPerSecond()),
		BlockAlign:    uint16(f.Channels * 2),
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// DecodeWAV returns the format and PCM frames of a 16-bit PCM WAV file.
// Chunks other than "fmt " and "data" are skipped.
func DecodeWAV(data []byte) (Format, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Format{}, nil, errors.New("invalid wav file: missing RIFF/WAVE header")
	}

	var (
		f       Format
		haveFmt bool
	)
	rest := data[12:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		body := rest[8:]
		if size > len(body) {
			if id != "data" {
				return Format{}, nil, fmt.Errorf("invalid wav file: truncated %q chunk", id)
			}
			// Streaming writers leave the data size unset; take what is there.
			size = len(body) - len(body)%2
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return Format{}, nil, errors.New("invalid wav file: short fmt chunk")
			}
			if af := binary.LittleEndian.Uint16(body[0:2]); af != 1 {
				return Format{}, nil, fmt.Errorf("unsupported wav encoding %d (only PCM)", af)
			}
			if bits := binary.LittleEndian.Uint16(body[14:16]); bits != 16 {
				return Format{}, nil, fmt.Errorf("unsupported bit depth %d (only 16-bit)", bits)
			}
			f = Format{
				Channels:   int(binary.LittleEndian.Uint16(body[2:4])),
				SampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Format{}, nil, errors.New("invalid wav file: data before fmt chunk")
			}
			return f, body[:size], nil
		}
		// chunks are word aligned
		next := 8 + size + size%2
		if next > len(rest) {
			break
		}
		rest = rest[next:]
	}
	return Format{}, nil, errors.New("invalid wav file: missing data chunk")
}
