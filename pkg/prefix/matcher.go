// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package prefix

import (
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

// Matcher answers whether an address lies within a set of monitored prefixes.
// IPv4 and IPv6 prefixes are kept in separate sets; an address is only ever
// tested against the set of its own family.
type Matcher struct {
	v4 *netipx.IPSet
	v6 *netipx.IPSet
}

// New builds a matcher from the given prefixes. Prefixes are masked, overlapping
// prefixes are merged.
func New(prefixes []netip.Prefix) (*Matcher, error) {
	var v4, v6 netipx.IPSetBuilder
	for _, p := range prefixes {
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid prefix %q", p)
		}
		p = p.Masked()
		if p.Addr().Is4() {
			v4.AddPrefix(p)
		} else {
			v6.AddPrefix(p)
		}
	}

	s4, err := v4.IPSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build ipv4 prefix set: %w", err)
	}
	s6, err := v6.IPSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build ipv6 prefix set: %w", err)
	}
	return &Matcher{v4: s4, v6: s6}, nil
}

// Contains returns true if addr is covered by at least one prefix of its family.
func (m *Matcher) Contains(addr netip.Addr) bool {
	switch {
	case addr.Is4():
		return m.v4.Contains(addr)
	case addr.Is6():
		return m.v6.Contains(addr)
	default:
		return false
	}
}

// Prefixes returns the minimal list of prefixes covering the matcher,
// IPv4 before IPv6.
func (m *Matcher) Prefixes() []netip.Prefix {
	return append(m.v4.Prefixes(), m.v6.Prefixes()...)
}

// Empty reports whether the matcher contains no prefix at all.
func (m *Matcher) Empty() bool {
	return len(m.v4.Prefixes()) == 0 && len(m.v6.Prefixes()) == 0
}
