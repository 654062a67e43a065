// Package script loads program source text from files, file systems and
// readers, converting legacy single-byte encodings to UTF-8.
package script

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding is given.
const DefaultEncoding = "utf-8"

// Script representa un archivo fuente ya cargado.
type Script struct {
	FileName string // nombre del archivo
	Content  string // contenido convertido a UTF-8
	Size     int64  // tamaño original en bytes
	Encoding string // codificación de origen
}

var encodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// Encodings returns the accepted encoding names in sorted order.
func Encodings() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidEncoding reports whether name is an accepted encoding name.
// The empty string selects DefaultEncoding and is valid.
func ValidEncoding(name string) bool {
	if name == "" {
		return true
	}
	_, ok := encodings[strings.ToLower(name)]
	return ok
}

// Decode converts data from the named encoding to a UTF-8 string.
// A leading byte order mark selects UTF-8 or UTF-16 regardless of name and
// is removed.
func Decode(data []byte, name string) (string, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, ok := encodings[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unsupported encoding: %s", name)
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return string(utf8Data), nil
}

// Read reads all of r and decodes it.
func Read(r io.Reader, fileName, encodingName string) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	return newScript(data, fileName, encodingName)
}

// LoadFile lee un archivo del disco y lo convierte a UTF-8.
func LoadFile(path, encodingName string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return newScript(data, filepath.Base(path), encodingName)
}

// LoadFS loads name from fsys. When name does not exist, a file in the same
// directory whose name differs only in case is used instead.
func LoadFS(fsys fs.FS, name, encodingName string) (*Script, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		actual, findErr := findCaseInsensitive(fsys, name)
		if findErr != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", name, err)
		}
		if data, err = fs.ReadFile(fsys, actual); err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", actual, err)
		}
		name = actual
	}
	return newScript(data, pathBase(name), encodingName)
}

func newScript(data []byte, fileName, encodingName string) (*Script, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	content, err := Decode(data, encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding of %s: %w", fileName, err)
	}
	return &Script{
		FileName: fileName,
		Content:  content,
		Size:     int64(len(data)),
		Encoding: strings.ToLower(encodingName),
	}, nil
}

// findCaseInsensitive busca name ignorando mayúsculas y minúsculas.
func findCaseInsensitive(fsys fs.FS, name string) (string, error) {
	dir, file := ".", name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		dir, file = name[:i], name[i+1:]
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), file) {
			if dir == "." {
				return entry.Name(), nil
			}
			return dir + "/" + entry.Name(), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", file, dir)
}

func pathBase(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
