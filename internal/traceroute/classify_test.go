// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

// prefixes is a minimal [Region] for tests.
type prefixes []netip.Prefix

func (p prefixes) Contains(addr netip.Addr) bool {
	for _, pfx := range p {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

func reply(addr string, rtt ...float64) Reply {
	r := Reply{Addr: netip.MustParseAddr(addr)}
	if len(rtt) > 0 {
		r.RTT = rtt[0]
		r.HasRTT = true
	}
	return r
}

func timeout() Reply {
	return Reply{}
}

func newTraceroute(dst string, hops ...Hop) Traceroute {
	for i := range hops {
		hops[i].TTL = i + 1
	}
	return Traceroute{
		ProbeID:     100,
		Destination: netip.MustParseAddr(dst),
		Family:      FamilyOf(netip.MustParseAddr(dst)),
		Hops:        hops,
	}
}

func TestReachedDestination(t *testing.T) {
	tests := []struct {
		name string
		tr   Traceroute
		want bool
	}{
		{
			name: "final hop answered by destination",
			tr: newTraceroute("2001:db8::1",
				Hop{Replies: []Reply{reply("2001:db8:ffff::1", 1)}},
				Hop{Replies: []Reply{reply("2001:db8::1", 2)}},
			),
			want: true,
		},
		{
			name: "one of several replies answered by destination",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{timeout(), reply("198.51.100.1"), reply("192.0.2.1", 3)}},
			),
			want: true,
		},
		{
			name: "final hop timed out",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("192.0.2.1", 1)}},
				Hop{Replies: []Reply{timeout(), timeout(), timeout()}},
			),
			want: false,
		},
		{
			name: "destination answered only an earlier hop",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("192.0.2.1", 1)}},
				Hop{Replies: []Reply{reply("198.51.100.7", 1)}},
			),
			want: false,
		},
		{
			name: "final hop failed",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("192.0.2.1", 1)}},
				Hop{Error: "sendto failed: Network is unreachable"},
			),
			want: false,
		},
		{
			name: "no hops",
			tr:   newTraceroute("192.0.2.1"),
			want: false,
		},
		{
			name: "ipv4-mapped destination is not the ipv4 address",
			tr: newTraceroute("::ffff:192.0.2.1",
				Hop{Replies: []Reply{reply("192.0.2.1", 1)}},
			),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReachedDestination(tt.tr))
		})
	}
}

func TestTraversedRegion(t *testing.T) {
	region := prefixes{netip.MustParsePrefix("2001:db8::/32"), netip.MustParsePrefix("203.0.113.0/24")}

	tests := []struct {
		name   string
		tr     Traceroute
		region Region
		want   bool
	}{
		{
			name: "intermediate hop in region",
			tr: newTraceroute("2001:db9::1",
				Hop{Replies: []Reply{reply("2001:db9:1::1")}},
				Hop{Replies: []Reply{reply("2001:db8:5::1")}},
				Hop{Replies: []Reply{reply("2001:db9::1")}},
			),
			region: region,
			want:   true,
		},
		{
			name: "no hop in region",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("198.51.100.1")}},
				Hop{Replies: []Reply{reply("192.0.2.1")}},
			),
			region: region,
			want:   false,
		},
		{
			name: "timeouts are not traversal",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{timeout(), timeout()}},
				Hop{Replies: []Reply{reply("192.0.2.1")}},
			),
			region: region,
			want:   false,
		},
		{
			name: "failed hops are skipped",
			tr: newTraceroute("192.0.2.1",
				Hop{Error: "no route", Replies: []Reply{reply("203.0.113.9")}},
				Hop{Replies: []Reply{reply("192.0.2.1")}},
			),
			region: region,
			want:   false,
		},
		{
			name: "wrong family never matches",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("192.0.2.1")}},
			),
			region: prefixes{netip.MustParsePrefix("2001:db8::/32")},
			want:   false,
		},
		{
			name:   "nil region",
			tr:     newTraceroute("192.0.2.1", Hop{Replies: []Reply{reply("192.0.2.1")}}),
			region: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TraversedRegion(tt.tr, tt.region))
		})
	}
}

func TestFinalRTT(t *testing.T) {
	tests := []struct {
		name    string
		tr      Traceroute
		wantRTT float64
		wantOK  bool
	}{
		{
			name: "mean of final hop replies",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("198.51.100.1", 100)}},
				Hop{Replies: []Reply{reply("192.0.2.1", 10), reply("192.0.2.1", 20), timeout()}},
			),
			wantRTT: 15,
			wantOK:  true,
		},
		{
			name: "no rtt in final hop",
			tr: newTraceroute("192.0.2.1",
				Hop{Replies: []Reply{reply("198.51.100.1", 100)}},
				Hop{Replies: []Reply{timeout()}},
			),
			wantOK: false,
		},
		{
			name:   "no hops",
			tr:     newTraceroute("192.0.2.1"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rtt, ok := FinalRTT(tt.tr)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantRTT, rtt, 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	region := prefixes{netip.MustParsePrefix("2001:db8::/32")}
	tr := newTraceroute("2001:db8::1",
		Hop{Replies: []Reply{reply("2001:db9::1", 1)}},
		Hop{Replies: []Reply{reply("2001:db8::1", 4), reply("2001:db8::1", 6)}},
	)

	got := Classify(tr, region)
	assert.Equal(t, Status{Reached: true, Traversed: true, RTT: 5, HasRTT: true}, got)
	assert.True(t, got.Valid())

	got = Classify(tr, prefixes{})
	assert.True(t, got.Reached)
	assert.False(t, got.Traversed)
	assert.False(t, got.Valid())
}
