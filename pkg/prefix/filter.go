// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package prefix

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/telekom/tracelens/internal/logger"
	"github.com/telekom/tracelens/pkg/pipeline"
)

// filterField is the configuration field reported in filter errors.
const filterField = "filter.spec"

// ParseFilter resolves a filter specification to the monitored prefixes.
//
// The specification is either a single prefix, a single AS number, or the
// path of a file listing one prefix or AS number per line. Blank lines and
// lines starting with '#' are ignored. AS numbers are resolved through the
// mapping, which must not be nil if any AS number is given.
func ParseFilter(ctx context.Context, spec string, mapping ASMapping) ([]netip.Prefix, error) {
	log := logger.FromContext(ctx)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, pipeline.ErrConfiguration{Field: filterField, Reason: "must not be empty"}
	}

	var entries []string
	if info, err := os.Stat(spec); err == nil && !info.IsDir() {
		log.DebugContext(ctx, "Interpreting filter as file", "path", spec)
		entries, err = readFilterFile(spec)
		if err != nil {
			return nil, err
		}
	} else {
		entries = []string{spec}
	}

	var prefixes []netip.Prefix
	for _, entry := range entries {
		pfxs, err := parseEntry(ctx, entry, mapping)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, pfxs...)
	}

	if len(prefixes) == 0 {
		return nil, pipeline.ErrConfiguration{Field: filterField, Reason: fmt.Sprintf("%q resolves to no prefixes", spec)}
	}
	log.DebugContext(ctx, "Resolved monitored prefixes", "spec", spec, "count", len(prefixes))
	return prefixes, nil
}

// NewFromFilter is a shorthand for [ParseFilter] followed by [New].
func NewFromFilter(ctx context.Context, spec string, mapping ASMapping) (*Matcher, error) {
	prefixes, err := ParseFilter(ctx, spec, mapping)
	if err != nil {
		return nil, err
	}
	return New(prefixes)
}

func readFilterFile(path string) (entries []string, err error) {
	f, err := os.Open(path) // #nosec G304 // path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open filter file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	return entries, nil
}

// parseEntry parses a single filter entry into its prefixes.
func parseEntry(ctx context.Context, entry string, mapping ASMapping) ([]netip.Prefix, error) {
	if asn, ok := parseASN(entry); ok {
		if mapping == nil {
			return nil, pipeline.ErrConfiguration{
				Field:  "filter.asMapping",
				Reason: fmt.Sprintf("filtering by AS%d requires an AS-to-prefix mapping", asn),
			}
		}
		pfxs := mapping[asn]
		if len(pfxs) == 0 {
			logger.FromContext(ctx).WarnContext(ctx, "No prefixes found for AS", "asn", asn)
		}
		return pfxs, nil
	}

	p, err := netip.ParsePrefix(entry)
	if err != nil {
		addr, aErr := netip.ParseAddr(entry)
		if aErr != nil {
			return nil, pipeline.ErrConfiguration{
				Field:  filterField,
				Reason: fmt.Sprintf("%q is neither an AS number nor a valid IPv4/IPv6 prefix", entry),
			}
		}
		p = netip.PrefixFrom(addr, addr.BitLen())
	}
	if p != p.Masked() {
		return nil, pipeline.ErrConfiguration{
			Field:  filterField,
			Reason: fmt.Sprintf("prefix %q has host bits set", entry),
		}
	}
	return []netip.Prefix{p}, nil
}

// parseASN parses "64500" or "AS64500".
func parseASN(s string) (uint32, bool) {
	if len(s) > 2 && strings.EqualFold(s[:2], "as") {
		s = s[2:]
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	asn, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(asn), true
}
