package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
)

const header = "요양기관명,종별코드명,주소,전화번호,좌표(X),좌표(Y)\n"

func TestParse_SkipsMalformedRows(t *testing.T) {
	data := "\ufeff" + header +
		"Clinic A,의원,Addr A,032-000-0001,127.00,37.50\n" +
		"No Coords,의원,Addr B,032-000-0002,,\n" +
		"Bad Lat,의원,Addr C,032-000-0003,127.00,north\n" +
		"Out Of Range,의원,Addr D,,127.00,91.5\n" +
		",의원,Addr E,,127.00,37.50\n" +
		"Short Row,의원\n" +
		"Clinic F,약국,Addr F,,126.70,37.45\n"

	reg, err := Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 5, reg.Skipped())

	a, ok := reg.Lookup("Clinic A")
	require.True(t, ok)
	assert.Equal(t, "Addr A", a.Address)
	assert.Equal(t, "032-000-0001", a.Phone)
	assert.Equal(t, 37.50, a.Location.Latitude)
	assert.Equal(t, 127.00, a.Location.Longitude)

	f, ok := reg.Lookup("Clinic F")
	require.True(t, ok)
	assert.Empty(t, f.Phone)
}

func TestParse_DuplicateNamesLastWriteWins(t *testing.T) {
	data := header +
		"Clinic A,의원,first,,127.00,37.50\n" +
		"Clinic A,의원,second,,127.01,37.51\n"

	reg, err := Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)

	entry, ok := reg.Lookup("Clinic A")
	require.True(t, ok)
	assert.Equal(t, "second", entry.Address)
	assert.Len(t, reg.Entries(), 2)
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader("name,lat,lon\nA,1,2\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDataUnavailable))
}

func TestParse_EmptySource(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader(""))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDataUnavailable))
}

func TestCSVLoader_MissingFile(t *testing.T) {
	loader := NewCSVLoader(filepath.Join(t.TempDir(), "hospitals.csv"))

	reg, err := loader.Load(context.Background())
	assert.Nil(t, reg)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDataUnavailable))
}

func TestCSVLoader_ReadsFreshOnEveryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospitals.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"Clinic A,의원,A,,127.00,37.50\n"), 0o600))
	loader := NewCSVLoader(path)

	reg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, os.WriteFile(path, []byte(header+"Clinic A,의원,A,,127.00,37.50\nClinic B,의원,B,,127.01,37.51\n"), 0o600))
	reg, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
}
