package store

import (
	"bytes"
	"compress/gzip"
	"io"
)

// gzip member header magic, used to sniff compressed payloads on read so
// that a store can hold a mix of compressed and plain entries.
var gzipMagic = []byte{0x1f, 0x8b}

func compressPayload(payload string) (string, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(payload)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// maybeDecompress returns the payload decompressed when it carries the
// gzip magic header, and verbatim otherwise.
func maybeDecompress(payload string) (string, error) {
	raw := []byte(payload)
	if !bytes.HasPrefix(raw, gzipMagic) {
		return payload, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer r.Close()
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
