// Package export serializes snapshots for consumption outside the CLI.
// Snapshots are written as indented JSON; a path ending in .zst gets
// zstd-compressed transparently so large histories of snapshots stay
// cheap to archive.
package export

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"canopy/internal/errors"
	"canopy/internal/topology"
)

// Marshal renders a snapshot as indented JSON.
func Marshal(snap *topology.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errors.New(errors.InternalError, "encode snapshot", err)
	}
	return data, nil
}

// WriteFile writes a snapshot to path. When path ends in .zst the JSON
// payload is zstd-compressed; "-" writes plain JSON to stdout.
func WriteFile(snap *topology.Snapshot, path string) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}

	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if strings.HasSuffix(path, ".zst") {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return errors.New(errors.InternalError, "create zstd writer", err)
		}
		if _, err := enc.Write(data); err != nil {
			_ = enc.Close()
			return errors.New(errors.InternalError, "compress snapshot", err)
		}
		if err := enc.Close(); err != nil {
			return errors.New(errors.InternalError, "compress snapshot", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.InternalError, "write snapshot file", err)
	}
	return nil
}

// ReadFile loads a snapshot previously written by WriteFile, handling
// the .zst suffix the same way.
func ReadFile(path string) (*topology.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.InternalError, "read snapshot file", err)
	}

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New(errors.InternalError, "create zstd reader", err)
		}
		defer dec.Close()
		data, err = io.ReadAll(dec)
		if err != nil {
			return nil, errors.New(errors.InternalError, "decompress snapshot", err)
		}
	}

	var snap topology.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.New(errors.InternalError, "decode snapshot", err)
	}
	return &snap, nil
}
