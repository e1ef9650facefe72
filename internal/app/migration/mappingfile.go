// internal/app/migration/mappingfile.go
package migration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dalemusser/cityseva/internal/app/migration/idmap"
)

// WriteMappingFile writes snap as indented JSON. The file is written to a
// temp name and renamed so readers never see a partial file.
func WriteMappingFile(path string, snap idmap.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mapping-*.json")
	if err != nil {
		return fmt.Errorf("create mapping file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mapping file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename mapping file: %w", err)
	}
	return nil
}

// ReadMappingFile loads a file written by WriteMappingFile.
func ReadMappingFile(path string) (idmap.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap idmap.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode mapping file: %w", err)
	}
	return snap, nil
}
