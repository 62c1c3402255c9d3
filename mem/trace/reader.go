package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedRecord is wrapped by the errors of lines that cannot be parsed.
var ErrMalformedRecord = errors.New("malformed trace record")

// A Reader parses a trace with one "[ ]<op> <hex-address>,<size>" record per
// line. Blank lines are skipped and instruction fetches are dropped.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
}

// NewReader creates a Reader that reads records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next data operation. It returns io.EOF when the trace is
// exhausted.
func (r *Reader) Next() (Op, error) {
	for r.scanner.Scan() {
		r.lineNum++

		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		op, err := ParseRecord(line)
		if err != nil {
			return Op{}, fmt.Errorf("line %d: %w", r.lineNum, err)
		}

		if op.Kind == Instruction {
			continue
		}

		return op, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Op{}, fmt.Errorf("line %d: %w", r.lineNum+1, err)
	}

	return Op{}, io.EOF
}

// ReadAll returns all the remaining data operations.
func (r *Reader) ReadAll() ([]Op, error) {
	var ops []Op

	for {
		op, err := r.Next()
		if errors.Is(err, io.EOF) {
			return ops, nil
		}

		if err != nil {
			return ops, err
		}

		ops = append(ops, op)
	}
}

// ParseRecord parses one trace line.
func ParseRecord(line string) (Op, error) {
	record := strings.TrimSpace(line)
	if len(record) < 2 {
		return Op{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	kind, ok := opKindOf(record[0])
	if !ok {
		return Op{}, fmt.Errorf("%w: unknown operation %q",
			ErrMalformedRecord, record[0])
	}

	if record[1] != ' ' {
		return Op{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	addrStr, sizeStr, found := strings.Cut(strings.TrimSpace(record[2:]), ",")
	if !found {
		return Op{}, fmt.Errorf("%w: missing size in %q",
			ErrMalformedRecord, line)
	}

	addrStr = strings.TrimPrefix(strings.TrimPrefix(addrStr, "0x"), "0X")

	addr, err := strconv.ParseUint(addrStr, 16, 64)
	if err != nil {
		return Op{}, fmt.Errorf("%w: bad address in %q: %w",
			ErrMalformedRecord, line, err)
	}

	size, err := strconv.ParseUint(strings.TrimSpace(sizeStr), 10, 64)
	if err != nil {
		return Op{}, fmt.Errorf("%w: bad size in %q: %w",
			ErrMalformedRecord, line, err)
	}

	return Op{Kind: kind, Address: addr, Size: size}, nil
}
