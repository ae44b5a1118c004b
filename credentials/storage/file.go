package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// jsonFile reads and writes one JSON document, optionally sealed
type jsonFile struct {
	path   string
	sealer *Sealer
}

// read decodes the file into v. A missing file leaves v untouched.
func (f jsonFile) read(v any) error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", f.path)
	}
	if f.sealer != nil {
		if data, err = f.sealer.Open(data); err != nil {
			return errors.Wrapf(err, "failed to open %s", f.path)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", f.path)
	}
	return nil
}

// write replaces the file atomically with the encoding of v
func (f jsonFile) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode")
	}
	if f.sealer != nil {
		if data, err = f.sealer.Seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", f.path)
	}
	return nil
}
