package linktable

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// splitFields splits a row on commas or runs of whitespace.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// scanRows calls fn for every non-blank, non-comment line of r with its
// 1-based line number and fields.
func scanRows(r io.Reader, fn func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNo, splitFields(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseCoreID(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || v < 1 {
		return 0, fmt.Errorf("%q: %w", s, types.ErrInvalidCoreID)
	}
	return int(v), nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, types.ErrMissingInput)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// ReadPairValues parses (core1, core2, value) triples. Rows with more than
// three fields use the last three, which accepts near tables that carry a
// leading row index. A file with a single row yields one triple.
func ReadPairValues(r io.Reader) ([]types.PairValue, error) {
	var out []types.PairValue
	err := scanRows(r, func(lineNo int, fields []string) error {
		if len(fields) < 3 {
			return shapeErrorf("line %d: %d fields, want 3", lineNo, len(fields))
		}
		fields = fields[len(fields)-3:]
		c1, err := parseCoreID(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		c2, err := parseCoreID(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return shapeErrorf("line %d: value %q is not numeric", lineNo, fields[2])
		}
		out = append(out, types.PairValue{Core1: c1, Core2: c2, Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadPairValuesFile reads pair values from path.
func ReadPairValuesFile(path string) ([]types.PairValue, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vals, err := ReadPairValues(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vals, nil
}

// ReadAdjacency parses an adjacency file: a "#Edge,..." header and rows of
// index,core1,core2. Pairs are returned as read, not canonicalized.
func ReadAdjacency(r io.Reader) ([]types.CorePair, error) {
	var out []types.CorePair
	err := scanRows(r, func(lineNo int, fields []string) error {
		if len(fields) == 2 {
			fields = append([]string{"0"}, fields...)
		}
		if len(fields) != 3 {
			return shapeErrorf("line %d: %d fields, want 3", lineNo, len(fields))
		}
		c1, err := parseCoreID(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		c2, err := parseCoreID(fields[2])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, types.CorePair{A: c1, B: c2})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAdjacencyFile reads an adjacency file from path.
func ReadAdjacencyFile(path string) ([]types.CorePair, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := ReadAdjacency(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pairs, nil
}

// WriteAdjacency writes pairs under a header naming the core id field.
func WriteAdjacency(w io.Writer, field string, pairs []types.CorePair) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "#Edge,%s,%s_1\n", field, field); err != nil {
		return err
	}
	for i, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", i, p.A, p.B); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteAdjacencyFile atomically writes an adjacency file.
func WriteAdjacencyFile(path, field string, pairs []types.CorePair) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteAdjacency(w, field, pairs)
	})
}

// ReadCores parses a core list: one core per row as id[,area]. Ids must be
// positive integers and appear once.
func ReadCores(r io.Reader) ([]types.Core, error) {
	var out []types.Core
	seen := make(map[int]bool)
	err := scanRows(r, func(lineNo int, fields []string) error {
		if len(fields) == 0 {
			return shapeErrorf("line %d: no core id", lineNo)
		}
		id, err := parseCoreID(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if seen[id] {
			return shapeErrorf("line %d: core %d listed twice", lineNo, id)
		}
		seen[id] = true
		core := types.Core{ID: id}
		if len(fields) > 1 {
			area, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return shapeErrorf("line %d: area %q is not numeric", lineNo, fields[1])
			}
			core.Area = area
		}
		out = append(out, core)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadCoresFile reads a core list from path.
func ReadCoresFile(path string) ([]types.Core, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cores, err := ReadCores(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("%s: %w", path, types.ErrCoreFileEmpty)
	}
	return cores, nil
}

// WriteCoreClusters writes "core,cluster,clust_area" rows ordered by core id.
// The area column is the summed area of every core in the row's cluster.
func WriteCoreClusters(w io.Writer, field string, clusters map[int]int, areas map[int]float64) error {
	cores := make([]int, 0, len(clusters))
	for c := range clusters {
		cores = append(cores, c)
	}
	slices.Sort(cores)

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "#%s,cluster,clust_area\n", field); err != nil {
		return err
	}
	for _, c := range cores {
		cl := clusters[c]
		if _, err := fmt.Fprintf(bw, "%d,%d,%s\n", c, cl, formatFloat(areas[cl])); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCoreClustersFile atomically writes a core to cluster file.
func WriteCoreClustersFile(path, field string, clusters map[int]int, areas map[int]float64) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteCoreClusters(w, field, clusters, areas)
	})
}
