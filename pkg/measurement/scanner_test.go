// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tracelens/internal/traceroute"
	"github.com/telekom/tracelens/pkg/pipeline"
	"github.com/telekom/tracelens/test"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    traceroute.Traceroute
		wantErr bool
	}{
		{
			name: "complete record",
			line: `{"msm_id":5051,"prb_id":100,"dst_addr":"2001:db8::1","af":6,"timestamp":1700000000,"from":"2001:db9::2",` +
				`"result":[{"hop":1,"result":[{"from":"2001:db9::1","rtt":1.5,"size":96,"ttl":64},{"x":"*"}]},` +
				`{"hop":2,"error":"Network is unreachable"},{"hop":3,"result":[{"from":"2001:db8::1","rtt":10}]}]}`,
			want: traceroute.Traceroute{
				MeasurementID: 5051,
				ProbeID:       100,
				Destination:   netip.MustParseAddr("2001:db8::1"),
				Family:        traceroute.FamilyIPv6,
				Timestamp:     1700000000,
				Hops: []traceroute.Hop{
					{TTL: 1, Replies: []traceroute.Reply{
						{Addr: netip.MustParseAddr("2001:db9::1"), RTT: 1.5, HasRTT: true},
						{},
					}},
					{TTL: 2, Error: "Network is unreachable", Replies: []traceroute.Reply{}},
					{TTL: 3, Replies: []traceroute.Reply{
						{Addr: netip.MustParseAddr("2001:db8::1"), RTT: 10, HasRTT: true},
					}},
				},
			},
		},
		{
			name: "ipv4 record",
			line: `{"prb_id":7,"dst_addr":"192.0.2.1","af":4,"timestamp":1,"result":[{"hop":1,"result":[{"from":"192.0.2.1"}]}]}`,
			want: traceroute.Traceroute{
				ProbeID:     7,
				Destination: netip.MustParseAddr("192.0.2.1"),
				Family:      traceroute.FamilyIPv4,
				Timestamp:   1,
				Hops: []traceroute.Hop{
					{TTL: 1, Replies: []traceroute.Reply{{Addr: netip.MustParseAddr("192.0.2.1")}}},
				},
			},
		},
		{name: "invalid json", line: `{"prb_id":`, wantErr: true},
		{name: "missing probe", line: `{"dst_addr":"192.0.2.1","timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
		{name: "missing destination", line: `{"prb_id":1,"timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
		{name: "empty destination", line: `{"prb_id":1,"dst_addr":"","timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
		{name: "invalid destination", line: `{"prb_id":1,"dst_addr":"example.com","timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
		{name: "missing timestamp", line: `{"prb_id":1,"dst_addr":"192.0.2.1","result":[{"hop":1}]}`, wantErr: true},
		{name: "missing result", line: `{"prb_id":1,"dst_addr":"192.0.2.1","timestamp":1}`, wantErr: true},
		{name: "empty result", line: `{"prb_id":1,"dst_addr":"192.0.2.1","timestamp":1,"result":[]}`, wantErr: true},
		{name: "missing address family", line: `{"prb_id":1,"dst_addr":"192.0.2.1","timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
		{name: "family mismatch", line: `{"prb_id":1,"dst_addr":"192.0.2.1","af":6,"timestamp":1,"result":[{"hop":1}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.line))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanner(t *testing.T) {
	valid := test.Traceroute(100, "192.0.2.1", 60, test.At("192.0.2.1", 1))
	other := test.Traceroute(200, "192.0.2.2", 120, test.At("192.0.2.2", 1))
	content := test.Lines(t,
		valid,
		"not json",
		"",
		`{"prb_id":1,"timestamp":1,"result":[{"hop":1}]}`,
		other,
	)

	var malformed []pipeline.ErrMalformedRecord
	s := NewScanner(bytes.NewReader(content), WithMalformedHandler(func(e pipeline.ErrMalformedRecord) {
		malformed = append(malformed, e)
	}))

	var (
		probes []int
		raws   []string
	)
	for s.Scan() {
		probes = append(probes, s.Record().Traceroute.ProbeID)
		raws = append(raws, string(s.Record().Raw))
	}
	require.NoError(t, s.Err())

	assert.Equal(t, []int{100, 200}, probes)
	assert.Equal(t, []string{string(valid.Line(t)), string(other.Line(t))}, raws)
	assert.Equal(t, pipeline.Stats{Records: 2, Malformed: 2}, s.Stats())
	require.Len(t, malformed, 2)
	assert.Equal(t, 2, malformed[0].Line)
	assert.Equal(t, 4, malformed[1].Line)
}

func TestScanner_Traceroutes(t *testing.T) {
	content := test.Lines(t,
		test.Traceroute(1, "192.0.2.1", 60, test.At("192.0.2.1", 1)),
		test.Traceroute(2, "192.0.2.1", 60, test.At("192.0.2.1", 1)),
		test.Traceroute(3, "192.0.2.1", 60, test.At("192.0.2.1", 1)),
	)

	s := NewScanner(bytes.NewReader(content))
	var probes []int
	for tr := range s.Traceroutes() {
		probes = append(probes, tr.ProbeID)
		if len(probes) == 2 {
			break
		}
	}

	assert.Equal(t, []int{1, 2}, probes)
	assert.Equal(t, 2, s.Stats().Records)
}

func TestScanner_Empty(t *testing.T) {
	s := NewScanner(bytes.NewReader(nil))
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
	assert.Equal(t, pipeline.Stats{}, s.Stats())
}
