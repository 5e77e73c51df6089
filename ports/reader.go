package ports

import (
	"amaa/domain/dataset"
)

// TableReader parses an uploaded file into a session table. Implementations
// decide the format from the filename and must recover from text-encoding
// problems on their own; a returned error means the file is unusable and the
// caller keeps its previous table.
type TableReader interface {
	Read(filename string, data []byte) (*dataset.Table, error)
}
