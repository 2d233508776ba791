package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EncodeWAV writes the buffer as a canonical PCM16 RIFF/WAVE stream.
func EncodeWAV(w io.Writer, b *Buffer) error {
	if b == nil || len(b.samples) == 0 {
		return ErrEmptyBuffer
	}

	dataSize := len(b.samples) * BytesPerSample
	const fmtChunkSize = 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	header := make([]byte, 44)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(riffSize))
	copy(header[8:], "WAVE")

	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], fmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:], uint16(b.channels))
	binary.LittleEndian.PutUint32(header[24:], uint32(b.sampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(b.sampleRate*b.channels*BytesPerSample))
	binary.LittleEndian.PutUint16(header[32:], uint16(b.channels*BytesPerSample))
	binary.LittleEndian.PutUint16(header[34:], 16)

	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(dataSize))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	data := make([]byte, dataSize)
	for i, s := range b.samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}

	return nil
}

// DecodeWAV parses a PCM16 RIFF/WAVE stream back into a buffer. Chunks
// other than fmt and data are skipped.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	sampleRate := 0
	channels := 0
	haveFmt := false

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("wav stream has no data chunk")
			}
			return nil, fmt.Errorf("read wav chunk header: %w", err)
		}
		chunkID := string(chunk[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunk[4:8]))

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("wav fmt chunk too small: %d bytes", chunkSize)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("read wav fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported wav format %d, want PCM", format)
			}
			if bits := binary.LittleEndian.Uint16(body[14:16]); bits != 16 {
				return nil, fmt.Errorf("unsupported wav bit depth %d, want 16", bits)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav data chunk before fmt chunk")
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, fmt.Errorf("read wav data chunk: %w", err)
			}
			return FromPCM16(raw, sampleRate, channels), nil

		default:
			// Skip chunks like LIST, padded to an even size.
			skip := int64(chunkSize + chunkSize%2)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip wav chunk %q: %w", chunkID, err)
			}
		}
	}
}

// ReadWAVFile decodes a PCM16 WAV file into a buffer.
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

// WriteWAVFile encodes the buffer into path, creating parent directories.
func WriteWAVFile(path string, b *Buffer) error {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(path)), 0o755); err != nil {
		return fmt.Errorf("create wav directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}

	if err := EncodeWAV(f, b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close wav file: %w", err)
	}

	return nil
}
