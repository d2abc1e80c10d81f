// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"

	"github.com/telekom/tracelens/internal/traceroute"
)

// record is the on-disk form of a traceroute result.
// Required fields are pointers so that absence can be told apart from zero.
type record struct {
	MsmID     *int64  `json:"msm_id"`
	PrbID     *int    `json:"prb_id"`
	DstAddr   *string `json:"dst_addr"`
	AF        *int    `json:"af"`
	Timestamp *int64  `json:"timestamp"`
	Result    []hop   `json:"result"`
}

type hop struct {
	Hop    int     `json:"hop"`
	Error  string  `json:"error"`
	Result []reply `json:"result"`
}

type reply struct {
	From string   `json:"from"`
	RTT  *float64 `json:"rtt"`
}

var (
	errMissingProbe       = errors.New("missing prb_id")
	errMissingDestination = errors.New("missing dst_addr")
	errMissingFamily      = errors.New("missing af")
	errMissingTimestamp   = errors.New("missing timestamp")
	errMissingResult      = errors.New("missing or empty result")
)

// Decode parses a single measurement result line into a traceroute.
func Decode(line []byte) (traceroute.Traceroute, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return traceroute.Traceroute{}, fmt.Errorf("invalid json: %w", err)
	}
	return rec.toTraceroute()
}

func (r *record) toTraceroute() (traceroute.Traceroute, error) {
	switch {
	case r.PrbID == nil:
		return traceroute.Traceroute{}, errMissingProbe
	case r.DstAddr == nil || *r.DstAddr == "":
		return traceroute.Traceroute{}, errMissingDestination
	case r.AF == nil:
		return traceroute.Traceroute{}, errMissingFamily
	case r.Timestamp == nil:
		return traceroute.Traceroute{}, errMissingTimestamp
	case len(r.Result) == 0:
		return traceroute.Traceroute{}, errMissingResult
	}

	dst, err := netip.ParseAddr(*r.DstAddr)
	if err != nil {
		return traceroute.Traceroute{}, fmt.Errorf("invalid dst_addr: %w", err)
	}

	family := traceroute.FamilyOf(dst)
	if traceroute.Family(*r.AF) != family {
		return traceroute.Traceroute{}, fmt.Errorf("address family %d does not match dst_addr %s", *r.AF, dst)
	}

	tr := traceroute.Traceroute{
		ProbeID:     *r.PrbID,
		Destination: dst,
		Family:      family,
		Timestamp:   *r.Timestamp,
		Hops:        make([]traceroute.Hop, 0, len(r.Result)),
	}
	if r.MsmID != nil {
		tr.MeasurementID = *r.MsmID
	}

	for _, h := range r.Result {
		th := traceroute.Hop{TTL: h.Hop, Error: h.Error, Replies: make([]traceroute.Reply, 0, len(h.Result))}
		for _, rep := range h.Result {
			var tReply traceroute.Reply
			// Replies without a parseable sender are treated like timeouts.
			if addr, err := netip.ParseAddr(rep.From); err == nil {
				tReply.Addr = addr
			}
			if rep.RTT != nil {
				tReply.RTT = *rep.RTT
				tReply.HasRTT = true
			}
			th.Replies = append(th.Replies, tReply)
		}
		tr.Hops = append(tr.Hops, th)
	}
	return tr, nil
}
