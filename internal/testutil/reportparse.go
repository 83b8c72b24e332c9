package testutil

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pborges/pcalc/internal/report"
	"github.com/pkg/errors"
)

// Record is one formula line of a report.
type Record struct {
	ID     string
	Height int
	Value  float64
	Err    string
	Failed bool
}

type Report struct {
	N       int
	Failed  int
	Records []Record
	Csum    uint16

	// Sum is the checksum recomputed from the record lines.
	Sum uint16
}

// ParseReport reads a report written by report.MakeReport. Header lines
// before the first '*' record are ignored.
func ParseReport(data []byte) (Report, error) {
	var r Report
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "*") || line == "*" {
			continue
		}
		switch line[1] {
		case 'N':
			n, err := strconv.Atoi(line[2:])
			if err != nil {
				return r, errors.Wrapf(err, "invalid N line: %q", line)
			}
			r.N = n
		case 'F':
			n, err := strconv.Atoi(line[2:])
			if err != nil {
				return r, errors.Wrapf(err, "invalid F line: %q", line)
			}
			r.Failed = n
		case 'C':
			cs, err := strconv.ParseUint(line[2:], 16, 16)
			if err != nil {
				return r, errors.Wrapf(err, "invalid C line: %q", line)
			}
			r.Csum = uint16(cs)
		case 'R', 'E':
			rec, err := parseRecord(line)
			if err != nil {
				return r, err
			}
			r.Records = append(r.Records, rec)
			lines = append(lines, line)
		default:
			return r, errors.Errorf("unknown record: %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return r, errors.WithStack(err)
	}
	r.Sum = report.Checksum(lines)
	if r.N != len(r.Records) {
		return r, errors.Errorf("report announces %d records, has %d", r.N, len(r.Records))
	}
	return r, nil
}

func parseRecord(line string) (Record, error) {
	parts := strings.SplitN(line[2:], "\t", 3)
	if len(parts) != 3 {
		return Record{}, errors.Errorf("invalid record: %q", line)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Record{}, errors.Wrapf(err, "invalid height in %q", line)
	}
	rec := Record{ID: parts[0], Height: h}
	if line[1] == 'E' {
		rec.Failed = true
		rec.Err = parts[2]
		return rec, nil
	}
	rec.Value, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "invalid value in %q", line)
	}
	return rec, nil
}

// CompareReport compares two parsed reports and returns a human-readable
// diff, empty when they match. Values within tol of each other are equal.
// Error messages are compared only when the expected one is not "*".
// Each report's *C line must agree with its own records; the two
// checksums are not compared with each other.
func CompareReport(got, want Report, tol float64) string {
	if got.Csum != got.Sum {
		return fmt.Sprintf("got checksum %04x, records sum to %04x", got.Csum, got.Sum)
	}
	if want.Csum != want.Sum {
		return fmt.Sprintf("want checksum %04x, records sum to %04x", want.Csum, want.Sum)
	}
	if len(got.Records) != len(want.Records) {
		return fmt.Sprintf("record count mismatch: got %d want %d", len(got.Records), len(want.Records))
	}
	var buf bytes.Buffer
	mismatches := 0
	for i := range got.Records {
		if msg := compareRecord(got.Records[i], want.Records[i], tol); msg != "" {
			mismatches++
			fmt.Fprintf(&buf, "  record[%d] %s\n", i, msg)
			if mismatches >= 40 {
				fmt.Fprintf(&buf, "  ... (%d+ mismatches, truncated)\n", mismatches)
				break
			}
		}
	}
	if mismatches == 0 && got.Failed != want.Failed {
		return fmt.Sprintf("failure count mismatch: got %d want %d", got.Failed, want.Failed)
	}
	if mismatches == 0 {
		return ""
	}
	return fmt.Sprintf("%d record mismatches:\n%s", mismatches, buf.String())
}

func compareRecord(got, want Record, tol float64) string {
	switch {
	case got.ID != want.ID:
		return fmt.Sprintf("id: got=%s want=%s", got.ID, want.ID)
	case got.Height != want.Height:
		return fmt.Sprintf("%s height: got=%d want=%d", got.ID, got.Height, want.Height)
	case got.Failed != want.Failed:
		return fmt.Sprintf("%s failed: got=%t (%s) want=%t", got.ID, got.Failed, got.Err, want.Failed)
	case got.Failed:
		if want.Err != "*" && got.Err != want.Err {
			return fmt.Sprintf("%s error: got=%q want=%q", got.ID, got.Err, want.Err)
		}
	case !closeEnough(got.Value, want.Value, tol):
		return fmt.Sprintf("%s value: got=%g want=%g", got.ID, got.Value, want.Value)
	}
	return ""
}

func closeEnough(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}
