package ldif

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// LDIF errors.
var (
	ErrInvalidLDIF   = errors.New("invalid LDIF format")
	ErrMissingDN     = errors.New("missing DN in LDIF entry")
	ErrInvalidBase64 = errors.New("invalid base64 encoding")
)

// Parse reads LDIF records from r and returns them as a DN → attribute →
// values map. Records later in the stream replace earlier records with the
// same DN. Attribute lines before the first "dn:" line are ignored, so a
// leading "version: 1" is tolerated.
func Parse(r io.Reader) (map[string]map[string][]string, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string][]string)
	var dn string
	var attrs map[string][]string

	flush := func() {
		if attrs != nil {
			out[dn] = attrs
			attrs = nil
		}
	}

	for _, line := range lines {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(strings.ToLower(line), "dn:"):
			flush()
			dn, err = parseDNLine(line)
			if err != nil {
				return nil, err
			}
			attrs = make(map[string][]string)
		case attrs != nil:
			name, value, err := parseAttrLine(line)
			if err != nil {
				return nil, err
			}
			attrs[name] = append(attrs[name], value)
		}
	}
	flush()

	return out, nil
}

// logicalLines scans physical lines and joins continuations (lines starting
// with a single space) onto the line they follow. Blank lines survive as
// empty logical lines since they separate records.
func logicalLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	current := ""
	open := false

	for scanner.Scan() {
		line := scanner.Text()
		if open && len(line) > 0 && line[0] == ' ' {
			current += line[1:]
			continue
		}
		if open {
			lines = append(lines, current)
		}
		current = line
		open = true
		if line == "" {
			lines = append(lines, "")
			open = false
		}
	}
	if open {
		lines = append(lines, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLDIF, err)
	}
	return lines, nil
}

func parseDNLine(line string) (string, error) {
	var dn string
	if strings.HasPrefix(strings.ToLower(line), "dn::") {
		encoded := strings.TrimSpace(line[4:])
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
		dn = string(decoded)
	} else {
		dn = strings.TrimSpace(line[3:])
	}
	if dn == "" {
		return "", ErrMissingDN
	}
	return dn, nil
}

func parseAttrLine(line string) (name, value string, err error) {
	colon := strings.Index(line, ":")
	if colon <= 0 {
		return "", "", fmt.Errorf("%w: missing attribute separator in line %q", ErrInvalidLDIF, line)
	}
	name = line[:colon]
	rest := line[colon+1:]

	if len(rest) > 0 && rest[0] == ':' {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[1:]))
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
		return name, string(decoded), nil
	}
	return name, strings.TrimSpace(rest), nil
}

// Write serializes content to w as LDIF, one record per entry. Entries and
// attribute names are written in sorted order so output is deterministic;
// values keep their list order. Values that RFC 2849 cannot carry verbatim
// are base64-encoded with the "::" separator.
func Write(w io.Writer, content map[string]map[string][]string) error {
	dns := make([]string, 0, len(content))
	for dn := range content {
		dns = append(dns, dn)
	}
	sort.Strings(dns)

	for _, dn := range dns {
		if err := writeLine(w, "dn", dn); err != nil {
			return err
		}

		names := make([]string, 0, len(content[dn]))
		for name := range content[dn] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			for _, value := range content[dn][name] {
				if err := writeLine(w, name, value); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, name, value string) error {
	if needsBase64(value) {
		_, err := fmt.Fprintf(w, "%s:: %s\n", name, base64.StdEncoding.EncodeToString([]byte(value)))
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", name, value)
	return err
}

// needsBase64 reports whether value falls outside what a plain LDIF value
// line can carry: a leading or trailing space, a leading colon or less-than
// sign, or any byte outside the printable ASCII range.
func needsBase64(value string) bool {
	if value == "" {
		return false
	}
	switch value[0] {
	case ' ', ':', '<':
		return true
	}
	if value[len(value)-1] == ' ' {
		return true
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7E {
			return true
		}
	}
	return false
}
