package document

import (
	"encoding/binary"
	"math"
	"strconv"

	domdoc "github.com/veridian-kb/searchd/internal/domain/document"
	"github.com/veridian-kb/searchd/internal/repository/docindex"
)

// buildHashFields maps a document to its Redis hash representation. The
// vector is stored as little-endian float32 bytes, created_at as unix
// seconds so the NUMERIC index field can range-filter on it.
func buildHashFields(doc *domdoc.Document) map[string]string {
	fields := map[string]string{
		docindex.FieldTitle:     doc.Title(),
		docindex.FieldBody:      doc.Body(),
		docindex.FieldSource:    doc.Source(),
		docindex.FieldFileType:  doc.FileType(),
		docindex.FieldCreatedAt: strconv.FormatInt(doc.CreatedAt().Unix(), 10),
		docindex.FieldVector:    string(vectorToBytes(doc.Vector())),
	}
	if doc.URL() != "" {
		fields[docindex.FieldURL] = doc.URL()
	}
	return fields
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
