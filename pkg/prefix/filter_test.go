// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package prefix

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/test"
)

func TestParseFilter(t *testing.T) {
	mapping := ASMapping{
		64500: {netip.MustParsePrefix("192.0.2.0/24"), netip.MustParsePrefix("2001:db8::/32")},
		64501: {netip.MustParsePrefix("198.51.100.0/24")},
	}
	file := test.WriteFile(t, t.TempDir(), "filter.txt", []byte(
		"# monitored region\n\n2001:db8::/32\n  AS64501  \n# trailing comment\n",
	))

	tests := []struct {
		name    string
		spec    string
		mapping ASMapping
		want    []netip.Prefix
		wantErr bool
	}{
		{
			name: "single ipv6 prefix",
			spec: "2001:db8::/32",
			want: []netip.Prefix{netip.MustParsePrefix("2001:db8::/32")},
		},
		{
			name: "single address",
			spec: "192.0.2.1",
			want: []netip.Prefix{netip.MustParsePrefix("192.0.2.1/32")},
		},
		{
			name:    "as number",
			spec:    "64500",
			mapping: mapping,
			want:    mapping[64500],
		},
		{
			name:    "as number with prefix",
			spec:    "as64501",
			mapping: mapping,
			want:    mapping[64501],
		},
		{
			name:    "file",
			spec:    file,
			mapping: mapping,
			want:    []netip.Prefix{netip.MustParsePrefix("2001:db8::/32"), netip.MustParsePrefix("198.51.100.0/24")},
		},
		{name: "as number without mapping", spec: "64500", wantErr: true},
		{name: "unknown as number", spec: "64999", mapping: mapping, wantErr: true},
		{name: "garbage", spec: "not-a-prefix", wantErr: true},
		{name: "host bits set", spec: "192.0.2.1/24", wantErr: true},
		{name: "empty", spec: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(context.Background(), tt.spec, tt.mapping)
			if tt.wantErr {
				var cErr pipeline.ErrConfiguration
				assert.ErrorAs(t, err, &cErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFromFilter(t *testing.T) {
	m, err := NewFromFilter(context.Background(), "2001:db8::/32", nil)
	require.NoError(t, err)
	assert.True(t, m.Contains(netip.MustParseAddr("2001:db8::1")))

	_, err = NewFromFilter(context.Background(), "", nil)
	assert.Error(t, err)
}
