package importer

import (
	"bytes"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/BruksfildServices01/agent-crm/internal/httperr"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var acceptedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"text/plain":               true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func checkFormat(filename, contentType string) error {
	if strings.TrimSpace(filename) == "" {
		return httperr.New(httperr.CodeValidationFailed, "No file selected.")
	}

	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return httperr.New(httperr.CodeUnsupportedFormat, "Only CSV files are allowed.")
	}

	if contentType == "" {
		return nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !acceptedContentTypes[strings.ToLower(mt)] {
		return httperr.Newf(httperr.CodeUnsupportedFormat, "Content type %q is not accepted for CSV uploads.", contentType)
	}
	return nil
}

// readLimited reads at most max bytes and fails when the body is longer.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, httperr.Wrap(httperr.CodeValidationFailed, "Could not read the uploaded file.", err)
		}
		return b, nil
	}

	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeValidationFailed, "Could not read the uploaded file.", err)
	}
	if int64(len(b)) > max {
		return nil, httperr.Newf(httperr.CodeValidationFailed, "File exceeds the %d byte upload limit.", max)
	}
	return b, nil
}

// decodeText returns the upload as UTF-8 text. Bytes that are not valid
// UTF-8 are read as ISO-8859-1 when legacy is set.
func decodeText(raw []byte, legacy bool) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}
	if !legacy {
		return "", "", httperr.New(httperr.CodeInvalidEncoding, "The file is not valid UTF-8.")
	}

	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", httperr.Wrap(httperr.CodeInvalidEncoding, "The file could not be decoded.", err)
	}
	return string(text), EncodingLatin1, nil
}
