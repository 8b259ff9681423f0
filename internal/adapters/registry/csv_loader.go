package registry

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	"github.com/zatekoja/carefinder/backend/internal/domain/providers"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
	"github.com/zatekoja/carefinder/backend/pkg/geo"
	"go.opentelemetry.io/otel/attribute"
)

// Column labels of the public hospital dataset.
const (
	ColumnName      = "요양기관명"
	ColumnAddress   = "주소"
	ColumnPhone     = "전화번호"
	ColumnLatitude  = "좌표(Y)"
	ColumnLongitude = "좌표(X)"
)

// ErrRowParse marks a registry row that was rejected and skipped.
var ErrRowParse = errors.New("registry row rejected")

// CSVLoader reads the facility registry from a CSV file on every Load call.
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for the CSV file at path
func NewCSVLoader(path string) providers.RegistryProvider {
	return &CSVLoader{path: path}
}

// Load opens and parses the registry file
func (l *CSVLoader) Load(ctx context.Context) (*entities.Registry, error) {
	ctx, span := observability.StartSpan(ctx, "registry.load")
	defer span.End()

	f, err := os.Open(l.path)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataUnavailableError("facility registry is unavailable", err)
	}
	defer f.Close()

	reg, err := Parse(ctx, f)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.Int("registry.entries", reg.Len()),
		attribute.Int("registry.skipped", reg.Skipped()),
	)
	return reg, nil
}

type columnIndex struct {
	name, address, phone, lat, lon int
}

// Parse reads registry rows from r. Rows with a missing name or unusable
// coordinates are skipped; a header without the required labels fails the load.
func Parse(ctx context.Context, r io.Reader) (*entities.Registry, error) {
	logger := observability.LoggerFromContext(ctx)

	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("facility registry has no readable header", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, apperrors.NewDataUnavailableError("facility registry header is invalid", err)
	}

	var (
		entries []entities.RegistryEntry
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				logger.Debug().Err(err).Msg("skipping malformed registry line")
				continue
			}
			return nil, apperrors.NewDataUnavailableError("failed to read facility registry", err)
		}

		entry, err := parseRow(record, cols)
		if err != nil {
			skipped++
			line, _ := reader.FieldPos(0)
			logger.Debug().Err(err).Int("line", line).Msg("skipping registry row")
			continue
		}
		entries = append(entries, entry)
	}

	logger.Debug().Int("entries", len(entries)).Int("skipped", skipped).Msg("registry loaded")
	return entities.NewRegistry(entries, skipped), nil
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[strings.TrimSpace(h)] = i
	}

	cols := columnIndex{address: -1, phone: -1}
	var missing []string
	lookup := func(label string, required bool) int {
		if i, ok := positions[label]; ok {
			return i
		}
		if required {
			missing = append(missing, label)
		}
		return -1
	}
	cols.name = lookup(ColumnName, true)
	cols.lat = lookup(ColumnLatitude, true)
	cols.lon = lookup(ColumnLongitude, true)
	cols.address = lookup(ColumnAddress, false)
	cols.phone = lookup(ColumnPhone, false)

	if len(missing) > 0 {
		return cols, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(record []string, cols columnIndex) (entities.RegistryEntry, error) {
	name := field(record, cols.name)
	if name == "" {
		return entities.RegistryEntry{}, fmt.Errorf("%w: empty name", ErrRowParse)
	}

	latRaw, lonRaw := field(record, cols.lat), field(record, cols.lon)
	if latRaw == "" || lonRaw == "" {
		return entities.RegistryEntry{}, fmt.Errorf("%w: %q has no coordinates", ErrRowParse, name)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || !geo.ValidLatitude(lat) {
		return entities.RegistryEntry{}, fmt.Errorf("%w: %q has invalid latitude %q", ErrRowParse, name, latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || !geo.ValidLongitude(lon) {
		return entities.RegistryEntry{}, fmt.Errorf("%w: %q has invalid longitude %q", ErrRowParse, name, lonRaw)
	}

	return entities.RegistryEntry{
		Name:     name,
		Address:  field(record, cols.address),
		Phone:    field(record, cols.phone),
		Location: entities.Location{Latitude: lat, Longitude: lon},
	}, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// stripBOM drops a leading UTF-8 byte order mark, as written by spreadsheet exports.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
