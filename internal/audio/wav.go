package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of the RIFF/WAVE descriptor prepended to raw PCM data.
const HeaderSize = 44

// Header represents the 44-byte descriptor of a PCM WAV file
type Header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// BuildHeader builds the 44-byte WAV descriptor for a raw PCM payload of
// dataLen bytes. Parameters are not validated; wearable devices send raw
// PCM without any framing, so the caller decides rate/channels/depth.
func BuildHeader(dataLen int, sampleRate, numChannels, bitsPerSample int) []byte {
	header := Header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + dataLen),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   uint16(numChannels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * numChannels * bitsPerSample / 8),
		BlockAlign:    uint16(numChannels * bitsPerSample / 8),
		BitsPerSample: uint16(bitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataLen),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	// binary.Write cannot fail on a bytes.Buffer with fixed-size fields
	binary.Write(buf, binary.LittleEndian, header)
	return buf.Bytes()
}

// WrapPCM prepends a WAV descriptor to headerless PCM bytes, producing a
// complete WAV container the transcription engine can open as a file.
func WrapPCM(raw []byte, sampleRate, numChannels, bitsPerSample int) []byte {
	header := BuildHeader(len(raw), sampleRate, numChannels, bitsPerSample)
	out := make([]byte, 0, HeaderSize+len(raw))
	out = append(out, header...)
	out = append(out, raw...)
	return out
}

// Validate checks that data carries a well-formed PCM WAV descriptor without
// reading the audio payload.
func Validate(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("WAV data too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("invalid WAV file: missing RIFF header")
	}

	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("invalid WAV file: missing WAVE format")
	}

	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("invalid WAV file: missing fmt chunk")
	}

	if string(data[36:40]) != "data" {
		return fmt.Errorf("invalid WAV file: missing data chunk")
	}

	return nil
}

// Info holds the descriptor fields of a WAV container
type Info struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	DataSize      uint32  `json:"data_size_bytes"`
	Duration      float64 `json:"duration_seconds"`
}

// GetInfo extracts descriptor metadata from a WAV container.
func GetInfo(data []byte) (*Info, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	buf := bytes.NewReader(data)
	var header Header
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	info := &Info{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		DataSize:      header.Subchunk2Size,
	}

	bytesPerSecond := header.ByteRate
	if bytesPerSecond > 0 {
		info.Duration = float64(header.Subchunk2Size) / float64(bytesPerSecond)
	}

	return info, nil
}
