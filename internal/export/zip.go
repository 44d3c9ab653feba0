package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// File is one archive entry.
type File struct {
	Name string
	Data []byte
}

// Zip builds an archive of files. Entries are stored without compression.
func Zip(files []File) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	now := time.Now()

	for _, f := range files {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Store,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip write %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}
