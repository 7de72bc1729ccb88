package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Migration rewrites a store file from one schema version to the next. It
// works on raw bytes and must not depend on any in-memory branch types, so
// a file from any historical version can be replayed forward.
type Migration func(data []byte) ([]byte, error)

// migrations[i] takes a file from version i to version i+1.
var migrations = []Migration{
	addArchivedField,
}

// LatestVersion is the schema version Save writes.
var LatestVersion = len(migrations)

const versionRowID = "version"

// addArchivedField introduces the version record and appends an archived
// column, defaulting to False, to every row.
func addArchivedField(data []byte) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(versionRowID + ",1\n")
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimRight(line, "\r \t")
		if len(line) == 0 {
			continue
		}
		out.Write(line)
		out.WriteString(",False\n")
	}
	return out.Bytes(), nil
}

// readVersion returns the version declared by the first record, or 0 when
// the file is empty or starts with a data row.
func readVersion(data []byte) (int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadVersion, err)
	}
	if len(rec) != 2 {
		return 0, nil
	}
	if rec[0] != versionRowID {
		return 0, fmt.Errorf("%w: first record is %q", ErrBadVersion, rec[0])
	}
	v, err := strconv.Atoi(rec[1])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadVersion, rec[1])
	}
	return v, nil
}
