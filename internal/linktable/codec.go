package linktable

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Header lines of the two table variants.
const (
	NarrowHeader = "#link,coreId1,coreId2,cluster1,cluster2,linkType,eucDist,lcDist,eucAdj,cwdAdj"
	WideHeader   = NarrowHeader + ",lcpLength,cwdToEucRatio,cwdToPathRatio"
)

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), types.ErrShape)
}

// Write emits t as delimited text with the header matching its width.
func Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	header := NarrowHeader
	if t.wide {
		header = WideHeader
	}
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}
	fields := make([]string, 0, WideColumns)
	for _, r := range t.links {
		fields = fields[:0]
		fields = append(fields,
			strconv.Itoa(r.LinkID),
			strconv.Itoa(r.Core1),
			strconv.Itoa(r.Core2),
			strconv.Itoa(r.Cluster1),
			strconv.Itoa(r.Cluster2),
			strconv.Itoa(int(r.Type)),
			formatFloat(r.EucDist),
			formatFloat(r.CwdDist),
			strconv.Itoa(int(r.EucAdj)),
			strconv.Itoa(int(r.CwdAdj)),
		)
		if t.wide {
			fields = append(fields,
				formatFloat(r.LcpLength),
				formatFloat(r.CwdToEuc),
				formatFloat(r.CwdToPath),
			)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile atomically writes t to path.
func WriteFile(path string, t *Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, t)
	})
}

// Read parses a link table. The width is taken from the first data row, or
// from the header when the table has no rows; every row must have the same
// width. A single data row is a one-row table.
func Read(r io.Reader) (*Table, error) {
	t := &Table{}
	width := 0
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if width == 0 && len(t.links) == 0 {
				t.wide = len(strings.Split(line, ",")) == WideColumns
			}
			continue
		}
		fields := strings.Split(line, ",")
		if width == 0 {
			width = len(fields)
			if width != NarrowColumns && width != WideColumns {
				return nil, shapeErrorf("line %d: %d columns, want %d or %d", lineNo, width, NarrowColumns, WideColumns)
			}
			t.wide = width == WideColumns
		}
		if len(fields) != width {
			return nil, shapeErrorf("line %d: %d columns, want %d", lineNo, len(fields), width)
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		t.links = append(t.links, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning link table: %w", err)
	}
	return t, nil
}

// ReadFile reads the link table at path. A missing file is
// ErrMissingInput.
func ReadFile(path string) (*Table, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

func parseRecord(fields []string) (types.LinkRecord, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return types.LinkRecord{}, shapeErrorf("column %d: %q is not numeric", i+1, f)
		}
		vals[i] = v
	}
	rec := types.LinkRecord{
		LinkID:   toInt(vals[0]),
		Core1:    toInt(vals[1]),
		Core2:    toInt(vals[2]),
		Cluster1: toInt(vals[3]),
		Cluster2: toInt(vals[4]),
		Type:     types.LinkType(toInt(vals[5])),
		EucDist:  vals[6],
		CwdDist:  vals[7],
		EucAdj:   types.Adjacency(toInt(vals[8])),
		CwdAdj:   types.Adjacency(toInt(vals[9])),
	}
	if len(vals) == WideColumns {
		rec.LcpLength = vals[10]
		rec.CwdToEuc = vals[11]
		rec.CwdToPath = vals[12]
	}
	return rec, nil
}

func toInt(v float64) int {
	return int(math.Round(v))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
