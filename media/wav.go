package media

import (
	"encoding/binary"
	"fmt"
	"io"
)

// wavFormat carries the PCM parameters read from a WAV file's fmt chunk,
// needed to write valid headers for the split parts.
type wavFormat struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

func (f wavFormat) blockAlign() uint16 {
	return f.Channels * f.BitsPerSample / 8
}

func (f wavFormat) byteRate() uint32 {
	return f.SampleRate * uint32(f.blockAlign())
}

// readWAVHeader walks the RIFF chunk list of r up to the data chunk and
// returns the PCM format and the data chunk length. After it returns, r is
// positioned at the first byte of PCM data.
func readWAVHeader(r io.Reader) (wavFormat, uint32, error) {
	var format wavFormat

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return format, 0, fmt.Errorf("reading RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return format, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	sawFmt := false
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return format, 0, fmt.Errorf("reading chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkLen := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return format, 0, fmt.Errorf("fmt chunk too short: %d bytes", chunkLen)
			}
			body := make([]byte, chunkLen)
			if _, err := io.ReadFull(r, body); err != nil {
				return format, 0, fmt.Errorf("reading fmt chunk: %w", err)
			}
			format.Channels = binary.LittleEndian.Uint16(body[2:4])
			format.SampleRate = binary.LittleEndian.Uint32(body[4:8])
			format.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			sawFmt = true

		case "data":
			if !sawFmt {
				return format, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			return format, chunkLen, nil

		default:
			// Skip LIST/INFO and other chunks. Chunk bodies are word aligned.
			skip := int64(chunkLen)
			if chunkLen%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return format, 0, fmt.Errorf("skipping %s chunk: %w", chunkID, err)
			}
		}
	}
}

// writeWAVHeader writes a canonical 44-byte PCM WAV header for dataLen bytes
// of sample data in the given format.
func writeWAVHeader(w io.Writer, format wavFormat, dataLen uint32) error {
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], format.Channels)
	binary.LittleEndian.PutUint32(header[24:28], format.SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], format.byteRate())
	binary.LittleEndian.PutUint16(header[32:34], format.blockAlign())
	binary.LittleEndian.PutUint16(header[34:36], format.BitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	_, err := w.Write(header[:])
	return err
}
