// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package prefix

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Contains(t *testing.T) {
	m, err := New([]netip.Prefix{
		netip.MustParsePrefix("2001:db8::/32"),
		netip.MustParsePrefix("192.0.2.0/24"),
		netip.MustParsePrefix("192.0.2.128/25"),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		addr netip.Addr
		want bool
	}{
		{name: "ipv6 inside", addr: netip.MustParseAddr("2001:db8::1"), want: true},
		{name: "ipv6 last address", addr: netip.MustParseAddr("2001:db8:ffff:ffff:ffff:ffff:ffff:ffff"), want: true},
		{name: "ipv6 outside", addr: netip.MustParseAddr("2001:db9::1"), want: false},
		{name: "ipv4 inside", addr: netip.MustParseAddr("192.0.2.200"), want: true},
		{name: "ipv4 outside", addr: netip.MustParseAddr("198.51.100.1"), want: false},
		{name: "ipv4 mapped ipv6 is not ipv4", addr: netip.MustParseAddr("::ffff:192.0.2.1"), want: false},
		{name: "invalid address", addr: netip.Addr{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Contains(tt.addr))
		})
	}
}

func TestMatcher_SingleFamily(t *testing.T) {
	m, err := New([]netip.Prefix{netip.MustParsePrefix("2001:db8::/32")})
	require.NoError(t, err)

	assert.False(t, m.Contains(netip.MustParseAddr("192.0.2.1")))
	assert.False(t, m.Empty())
}

func TestMatcher_Prefixes(t *testing.T) {
	m, err := New([]netip.Prefix{
		netip.MustParsePrefix("2001:db8::1/32"),
		netip.MustParsePrefix("192.0.2.0/25"),
		netip.MustParsePrefix("192.0.2.128/25"),
	})
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("192.0.2.0/24"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, m.Prefixes())
}

func TestNew_Invalid(t *testing.T) {
	_, err := New([]netip.Prefix{{}})
	assert.Error(t, err)
}

func TestMatcher_Empty(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.False(t, m.Contains(netip.MustParseAddr("192.0.2.1")))
}
