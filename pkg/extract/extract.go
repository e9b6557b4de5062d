package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mholt/archiver/v3"
	"github.com/sirupsen/logrus"
)

// ReadJSON reads and decodes a JSON file from path.
func ReadJSON[T any](path string) (T, error) {
	var data T

	logrus.WithField("path", path).Trace("reading JSON file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}

// Unzip extracts an archive into dir, creating directories as needed.
func Unzip(archive, dir string) error {
	logrus.WithFields(logrus.Fields{
		"archive": archive,
		"dir":     dir,
	}).Debug("extracting archive")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := archiver.Unarchive(archive, dir); err != nil {
		return fmt.Errorf("extract %s: %w", archive, err)
	}
	return nil
}
