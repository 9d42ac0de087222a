package forcefield

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const fileHeader = "# name value step lower upper"

// Write serializes s in the ffield text format.
func (s *Set) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, fileHeader)
	for i, name := range s.Names {
		fmt.Fprintf(bw, "%s %s %s %s %s\n", name,
			formatFloat(s.Values[i]), formatFloat(s.Steps[i]),
			formatFloat(s.Lower[i]), formatFloat(s.Upper[i]))
	}
	return bw.Flush()
}

// WriteFile writes s to path.
func (s *Set) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parameter file %s: %w", path, err)
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write parameter file %s: %w", path, err)
	}
	return f.Close()
}

// Read parses the ffield text format. Blank lines and lines starting with
// '#' are ignored.
func Read(r io.Reader) (*Set, error) {
	s := &Set{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: line %d: expected 5 fields, got %d", ErrInvalidParameter, line, len(fields))
		}
		var nums [4]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidParameter, line, err)
			}
			nums[i] = v
		}
		s.Names = append(s.Names, fields[0])
		s.Values = append(s.Values, nums[0])
		s.Steps = append(s.Steps, nums[1])
		s.Lower = append(s.Lower, nums[2])
		s.Upper = append(s.Upper, nums[3])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFile parses the parameter file at path.
func ReadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file %s: %w", path, err)
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	return s, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
