// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// Family is the IP address family of a traceroute.
type Family int

// Family constants as used in the "af" field of measurement results.
const (
	FamilyIPv4 Family = 4
	FamilyIPv6 Family = 6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

func (f Family) IsValid() bool {
	valid := []Family{FamilyIPv4, FamilyIPv6}
	return slices.Contains(valid, f)
}

// FamilyOf returns the family of addr. IPv4-mapped IPv6 addresses are IPv6.
func FamilyOf(addr netip.Addr) Family {
	switch {
	case addr.Is4():
		return FamilyIPv4
	case addr.Is6():
		return FamilyIPv6
	default:
		return 0
	}
}

// Traceroute is one completed probing attempt from a probe towards a destination.
type Traceroute struct {
	// MeasurementID is the id of the measurement the traceroute belongs to.
	MeasurementID int64
	// ProbeID is the id of the vantage point that ran the traceroute.
	ProbeID int
	// Destination is the address the traceroute was targeted at.
	Destination netip.Addr
	// Family is the address family of the traceroute.
	Family Family
	// Timestamp is the start of the traceroute in unix seconds.
	Timestamp int64
	// Hops are the hops of the traceroute, ordered by TTL.
	Hops []Hop
}

// Key returns the candidate key identifying the path this traceroute probed.
func (t Traceroute) Key() Key {
	return Key{ProbeID: t.ProbeID, Destination: t.Destination}
}

// finalHop returns the last hop of the traceroute.
func (t Traceroute) finalHop() (Hop, bool) {
	if len(t.Hops) == 0 {
		return Hop{}, false
	}
	return t.Hops[len(t.Hops)-1], true
}

// Hop is a single TTL step of a traceroute. A hop holds one reply
// per packet sent with that TTL.
type Hop struct {
	TTL     int
	Error   string
	Replies []Reply
}

// Failed reports whether the probe could not send packets for this hop.
func (h Hop) Failed() bool {
	return h.Error != ""
}

func (h Hop) String() string {
	if h.Failed() {
		return fmt.Sprintf("%-3d  error: %s", h.TTL, h.Error)
	}
	replies := make([]string, 0, len(h.Replies))
	for _, r := range h.Replies {
		replies = append(replies, r.String())
	}
	return fmt.Sprintf("%-3d  %s", h.TTL, strings.Join(replies, "  "))
}

// Reply is the answer to a single packet of a hop.
// Timed out packets carry neither an address nor an RTT.
type Reply struct {
	// Addr is the address the reply came from. It is the zero
	// value if the packet timed out.
	Addr netip.Addr
	// RTT is the round trip time in milliseconds.
	RTT float64
	// HasRTT is true if the reply carried an RTT value.
	HasRTT bool
}

// TimedOut reports whether no reply was received.
func (r Reply) TimedOut() bool {
	return !r.Addr.IsValid()
}

func (r Reply) String() string {
	if r.TimedOut() {
		return "*"
	}
	if !r.HasRTT {
		return r.Addr.String()
	}
	return r.Addr.String() + " " + strconv.FormatFloat(r.RTT, 'f', 3, 64) + "ms"
}

// Key identifies a monitored path: a probe and the destination it traces to.
type Key struct {
	ProbeID     int
	Destination netip.Addr
}

func (k Key) String() string {
	return strconv.Itoa(k.ProbeID) + "," + k.Destination.String()
}

// Compare orders keys by probe id first and destination second.
func (k Key) Compare(other Key) int {
	if c := cmp.Compare(k.ProbeID, other.ProbeID); c != 0 {
		return c
	}
	return k.Destination.Compare(other.Destination)
}

// SortKeys sorts keys in place in their canonical output order.
func SortKeys(keys []Key) {
	slices.SortFunc(keys, Key.Compare)
}
