package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pborges/pcalc/internal/pcalc"
)

type Config struct {
	Header []string
}

// MakeReport renders the results of a session as a line-oriented report.
//
// Header lines come first, then one record per formula: *R for a value,
// *E for a failure, fields separated by tabs. *N and *F carry the formula
// and failure counts and *C a 16-bit sum over the record bytes.
func MakeReport(cfg Config, res *pcalc.Results) string {
	var buf strings.Builder
	for _, line := range cfg.Header {
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteByte('\n')
		}
	}
	if res.Session != "" {
		fmt.Fprintf(&buf, "Session         %s\n", res.Session)
	}
	fmt.Fprintf(&buf, "*N%d\n", len(res.Items))

	records := make([]string, len(res.Items))
	for i, r := range res.Items {
		if r.Err != nil {
			records[i] = record('E', r.ID, r.Height, oneLine(r.Err.Error()))
		} else {
			records[i] = record('R', r.ID, r.Height, FormatValue(r.Value))
		}
		buf.WriteString(records[i])
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "*F%d\n", res.Failed())
	fmt.Fprintf(&buf, "*C%04x\n", Checksum(records))
	buf.WriteString("*\n")
	return buf.String()
}

// FormatValue prints v with the fewest digits that read back exactly.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Checksum is the sum used by the *C line, over the bytes of the record
// lines including their newlines.
func Checksum(records []string) uint16 {
	var sum uint16
	for _, line := range records {
		sum += byteSum(line)
		sum += '\n'
	}
	return sum
}

func record(kind byte, id string, height int, rest string) string {
	return fmt.Sprintf("*%c%s\t%d\t%s", kind, id, height, rest)
}

func byteSum(s string) uint16 {
	var sum uint16
	for i := 0; i < len(s); i++ {
		sum += uint16(s[i])
	}
	return sum
}

// oneLine keeps a record on a single line.
func oneLine(s string) string {
	return strings.NewReplacer("\n", " ", "\t", " ").Replace(s)
}
