// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package prefix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/telekom/tracelens/pkg/measurement"
)

// ASMapping maps AS numbers to the prefixes they announce.
type ASMapping map[uint32][]netip.Prefix

// LoadASMapping reads an AS-to-prefix mapping in ipasn layout from path:
//
//	; comment
//	192.0.2.0/24	64500
//	2001:db8::/32	64501
//	198.51.100.0/24	64500_64502
//
// Multi-origin prefixes ("64500_64502" or "{64500,64502}") are assigned to every
// listed AS. Files ending in ".bz2" are decompressed.
func LoadASMapping(path string) (m ASMapping, err error) {
	r, err := measurement.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	m, err = ReadASMapping(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AS mapping %q: %w", path, err)
	}
	return m, nil
}

// ReadASMapping reads an AS-to-prefix mapping from r. See [LoadASMapping] for the format.
func ReadASMapping(r io.Reader) (ASMapping, error) {
	m := ASMapping{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected prefix and origin, got %q", lineNo, line)
		}
		p, err := netip.ParsePrefix(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		origins, err := parseOrigins(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for _, asn := range origins {
			m[asn] = append(m[asn], p.Masked())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseOrigins(s string) ([]uint32, error) {
	s = strings.Trim(s, "{}")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ',' })
	if len(parts) == 0 {
		return nil, fmt.Errorf("missing origin AS")
	}
	origins := make([]uint32, 0, len(parts))
	for _, p := range parts {
		asn, ok := parseASN(p)
		if !ok {
			return nil, fmt.Errorf("invalid origin AS %q", p)
		}
		origins = append(origins, asn)
	}
	return origins, nil
}
