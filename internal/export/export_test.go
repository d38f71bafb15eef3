package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/asn-cli/internal/asn"
)

var sampleRecords = []asn.Record{
	{Country: "AT", ASN: 679, Description: "All AS from AT - TUNET-AS - Technische Universitat Wien, AT", NumIPv6s: 1234},
	{Country: "AT", ASN: 8447, Description: `All AS from AT - A1 "Telekom" Austria`, NumIPv6s: 42},
	{Country: "AT", ASN: 1853, Description: "All AS from AT - ACONET\nBackbone", NumIPv6s: 7},
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords[:2]))

	want := "country,asn,description,num_ipv6s\r\n" +
		"AT,679,\"All AS from AT - TUNET-AS - Technische Universitat Wien, AT\",1234\r\n" +
		"AT,8447,\"All AS from AT - A1 \"\"Telekom\"\" Austria\",42\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_MinimalQuoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []asn.Record{{Country: "AT", ASN: 1, Description: "All AS from AT - plain", NumIPv6s: 2}}))
	assert.Contains(t, buf.String(), "\r\nAT,1,All AS from AT - plain,2\r\n")
}

func TestWrite_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "country,asn,description,num_ipv6s\r\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_SinkError(t *testing.T) {
	err := Write(failingWriter{}, sampleRecords)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords))

	got, err := ReadRecords(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords, got)
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	got, err := ReadRecords(context.Background(), strings.NewReader("country,asn,description,num_ipv6s\r\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "missing header"},
		{"wrong header", "a,b,c,d\r\nAT,1,x,2\r\n", "unexpected header"},
		{"bad asn", "country,asn,description,num_ipv6s\r\nAT,AS1,x,2\r\n", "line 2"},
		{"bad count", "country,asn,description,num_ipv6s\r\nAT,1,x,many\r\n", "num_ipv6s"},
		{"short row", "country,asn,description,num_ipv6s\r\nAT,1,x\r\n", "export: read"},
		{"wide row", "country,asn,description,num_ipv6s\r\nAT,1,x,2,extra\r\n", "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteFile_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	require.NoError(t, WriteFile(fs, "/out/all_at_as.csv", sampleRecords))

	data, err := afero.ReadFile(fs, "/out/all_at_as.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "country,asn,description,num_ipv6s\r\n"))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not survive")
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_at_as.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteFile(afero.NewOsFs(), path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "country,asn,description,num_ipv6s\r\n", string(data))
}

func TestWriteFile_NewFileIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_at_as.csv")

	require.NoError(t, WriteFile(afero.NewOsFs(), path, sampleRecords))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestWriteFile_KeepsExistingMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_at_as.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, WriteFile(afero.NewOsFs(), path, sampleRecords))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestWriteFile_MissingDirLeavesNothing(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := WriteFile(fs, path, sampleRecords)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFile_ReadOnlyFsKeepsOriginal(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/out.csv", []byte("previous"), 0o644))

	err := WriteFile(afero.NewReadOnlyFs(base), "/out.csv", sampleRecords)
	require.Error(t, err)

	data, err := afero.ReadFile(base, "/out.csv")
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}
