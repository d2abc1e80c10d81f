// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/tracelens/internal/traceroute"
)

var region = regionFunc(func(addr netip.Addr) bool {
	return netip.MustParsePrefix("2001:db8::/32").Contains(addr)
})

type regionFunc func(netip.Addr) bool

func (f regionFunc) Contains(addr netip.Addr) bool { return f(addr) }

func key(probe int, dst string) traceroute.Key {
	return traceroute.Key{ProbeID: probe, Destination: netip.MustParseAddr(dst)}
}

// newTraceroute returns a traceroute from probe to dst answered by the given hop addresses.
func newTraceroute(probe int, dst string, hops ...string) traceroute.Traceroute {
	tr := traceroute.Traceroute{ProbeID: probe, Destination: netip.MustParseAddr(dst)}
	for i, h := range hops {
		hop := traceroute.Hop{TTL: i + 1}
		if h == "*" {
			hop.Replies = []traceroute.Reply{{}}
		} else {
			hop.Replies = []traceroute.Reply{{Addr: netip.MustParseAddr(h), RTT: 1, HasRTT: true}}
		}
		tr.Hops = append(tr.Hops, hop)
	}
	return tr
}

func TestVerdicts_Observe(t *testing.T) {
	k := key(100, "2001:db8::1")
	tests := []struct {
		name             string
		observations     []bool
		wantCount        int
		wantDisqualified bool
	}{
		{name: "valid only", observations: []bool{true, true, true}, wantCount: 3},
		{name: "invalid only", observations: []bool{false}, wantDisqualified: true},
		{name: "invalid after valid drops count", observations: []bool{true, true, false}, wantDisqualified: true},
		{name: "valid after invalid is ignored", observations: []bool{false, true, true}, wantDisqualified: true},
		{name: "repeated invalid", observations: []bool{false, false}, wantDisqualified: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerdicts()
			for _, valid := range tt.observations {
				v.Observe(k, valid)
			}
			_, disqualified := v.Disqualified[k]
			assert.Equal(t, tt.wantDisqualified, disqualified)
			count, candidate := v.Candidates[k]
			assert.Equal(t, !tt.wantDisqualified, candidate, "a key is either candidate or disqualified")
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestExtract(t *testing.T) {
	traceroutes := []traceroute.Traceroute{
		// valid: crosses the region and reaches the destination
		newTraceroute(100, "2001:db8::1", "2001:db9::1", "2001:db8::ff", "2001:db8::1"),
		newTraceroute(100, "2001:db8::1", "2001:db8::ff", "2001:db8::1"),
		// valid: the destination itself lies in the region
		newTraceroute(200, "2001:db8::2", "2001:db9::1", "2001:db8::2"),
		// unreachable: final hop timed out
		newTraceroute(300, "2001:db8::3", "2001:db8::ff", "*"),
		newTraceroute(300, "2001:db8::3", "2001:db8::ff", "2001:db8::3"),
		// reached but never crossed the region
		newTraceroute(400, "192.0.2.1", "198.51.100.1", "192.0.2.1"),
	}

	v := Extract(slices.Values(traceroutes), region)

	assert.Equal(t, map[traceroute.Key]int{
		key(100, "2001:db8::1"): 2,
		key(200, "2001:db8::2"): 1,
	}, v.Candidates)
	assert.Equal(t, []traceroute.Key{key(300, "2001:db8::3"), key(400, "192.0.2.1")}, v.DisqualifiedKeys())
}

func TestExtract_Empty(t *testing.T) {
	v := Extract(slices.Values([]traceroute.Traceroute(nil)), region)
	assert.Empty(t, v.Candidates)
	assert.Empty(t, v.Disqualified)
}
