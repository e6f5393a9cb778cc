package capture

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/haivivi/framegear/pkg/audio/pcm"
)

// MicFormat is the microphone format of the device.
const MicFormat = pcm.L16Mono16K

const wavHeaderSize = 44

// writeWAVHeader writes a canonical PCM WAV header for dataLen bytes of
// samples in format f.
func writeWAVHeader(w io.Writer, dataLen uint32, f pcm.Format) error {
	h := struct {
		RIFF          [4]byte
		ChunkSize     uint32
		WAVE          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataLen,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels()),
		SampleRate:    uint32(f.SampleRate()),
		ByteRate:      uint32(f.BytesRate()),
		BlockAlign:    uint16(f.BlockAlign()),
		BitsPerSample: uint16(f.Depth()),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataLen,
	}
	return binary.Write(w, binary.LittleEndian, &h)
}

// EncodeWAV wraps samples in format f in a WAV container.
func EncodeWAV(f pcm.Format, samples []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(samples))
	writeWAVHeader(&buf, uint32(len(samples)), f)
	buf.Write(samples)
	return buf.Bytes()
}
