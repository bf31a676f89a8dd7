package persistence

import (
	"fmt"
	"path/filepath"
	"statusdash/internal/persistence/interfaces"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ArchiveExt marks files written by ArchiveFile.
const ArchiveExt = ".zst"

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

// Close releases the encoder and decoder goroutines. The compressor must not
// be used afterwards.
func (z *ZstdCompression) Close() {
	z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// ArchiveFile replaces src with a compressed copy at src+ArchiveExt and
// returns the new path. src is removed only after the archive is written.
func (f *FileManager) ArchiveFile(src string, c interfaces.CompressorInterface) (string, error) {
	data, err := f.ReadFile(src)
	if err != nil {
		return "", err
	}
	packed, err := c.Compress(data)
	if err != nil {
		return "", fmt.Errorf("compress %s: %w", src, err)
	}
	dst := src + ArchiveExt
	if err := f.WriteFile(dst, packed, FileMode); err != nil {
		return "", err
	}
	return dst, f.Remove(src)
}

// ReadMaybeArchived reads name, decompressing it when it carries ArchiveExt.
func (f *FileManager) ReadMaybeArchived(name string, c interfaces.CompressorInterface) ([]byte, error) {
	data, err := f.ReadFile(name)
	if err != nil || !strings.HasSuffix(name, ArchiveExt) {
		return data, err
	}
	return c.Decompress(data)
}

// QuarantinedConfigs lists the corrupt configuration files set aside next
// to configFile that have not been archived yet.
func (f *FileManager) QuarantinedConfigs(configFile string) ([]string, error) {
	matches, err := filepath.Glob(configFile + quarantineInfix + "*")
	if err != nil {
		return nil, err
	}
	pending := matches[:0]
	for _, m := range matches {
		if !strings.HasSuffix(m, ArchiveExt) {
			pending = append(pending, m)
		}
	}
	return pending, nil
}
