// Package export writes AS records as RFC 4180 CSV and reads them back.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/asn-cli/internal/asn"
	"github.com/sells-group/asn-cli/internal/fetcher"
)

// filePerm is the mode of a newly created export.
const filePerm os.FileMode = 0o644

// Header is the first row of every export.
var Header = []string{"country", "asn", "description", "num_ipv6s"}

// Write emits the header followed by one row per record. Lines end in CRLF and
// fields are quoted only when they contain a comma, quote or line break.
func Write(w io.Writer, records []asn.Record) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range records {
		row := []string{
			r.Country,
			strconv.Itoa(r.ASN),
			r.Description,
			strconv.Itoa(r.NumIPv6s),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write AS%d", r.ASN)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteFile writes records to path through a temporary file in the same
// directory that is renamed over path once complete. On failure path is left
// untouched and the temporary file is removed. An existing file keeps its
// permissions; a new one gets 0644.
func WriteFile(fs afero.Fs, path string, records []asn.Record) (err error) {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "export: create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := fs.Remove(tmpName); rmErr != nil {
				zap.L().Warn("export: remove temp file", zap.String("path", tmpName), zap.Error(rmErr))
			}
		}
	}()

	if err = Write(tmp, records); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return eris.Wrap(err, "export: sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrap(err, "export: close temp file")
	}
	perm := filePerm
	if fi, statErr := fs.Stat(path); statErr == nil {
		perm = fi.Mode().Perm()
	}
	if err = fs.Chmod(tmpName, perm); err != nil {
		return eris.Wrap(err, "export: chmod temp file")
	}
	if err = fs.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "export: rename to %s", path)
	}

	zap.L().Info("export: wrote file",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

// ReadRecords parses an export produced by Write.
func ReadRecords(ctx context.Context, r io.Reader) ([]asn.Record, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader:       true,
		HeaderCh:        headerCh,
		FieldsPerRecord: len(Header),
	})

	var (
		records []asn.Record
		convErr error
	)
	line := 1
	for row := range rowCh {
		line++
		if convErr != nil {
			continue
		}
		rec, err := fromRow(row)
		if err != nil {
			convErr = eris.Wrapf(err, "export: line %d", line)
			continue
		}
		records = append(records, rec)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "export: read")
	}
	if convErr != nil {
		return nil, convErr
	}

	select {
	case header := <-headerCh:
		if !slices.Equal(header, Header) {
			return nil, eris.Errorf("export: unexpected header %v", header)
		}
	default:
		return nil, eris.New("export: missing header")
	}

	return records, nil
}

func fromRow(row []string) (asn.Record, error) {
	if len(row) != len(Header) {
		return asn.Record{}, eris.Errorf("expected %d fields, got %d", len(Header), len(row))
	}
	id, err := strconv.Atoi(row[1])
	if err != nil {
		return asn.Record{}, eris.Wrap(err, "asn")
	}
	count, err := strconv.Atoi(row[3])
	if err != nil {
		return asn.Record{}, eris.Wrap(err, "num_ipv6s")
	}
	return asn.Record{
		Country:     row[0],
		ASN:         id,
		Description: row[2],
		NumIPv6s:    count,
	}, nil
}
