// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dsnet/compress/bzip2"
)

// Hop is a hop of a test traceroute in measurement result format.
type Hop struct {
	Hop    int     `json:"hop"`
	Error  string  `json:"error,omitempty"`
	Result []Reply `json:"result,omitempty"`
}

// Reply is a single reply of a [Hop].
type Reply struct {
	From string   `json:"from,omitempty"`
	RTT  *float64 `json:"rtt,omitempty"`
	X    string   `json:"x,omitempty"`
}

// Result is a test traceroute in measurement result format.
type Result struct {
	MsmID     int    `json:"msm_id"`
	PrbID     int    `json:"prb_id"`
	DstAddr   string `json:"dst_addr"`
	AF        int    `json:"af"`
	Timestamp int64  `json:"timestamp"`
	Result    []Hop  `json:"result"`
}

// Via returns a hop answered by all given addresses without RTT values.
func Via(addrs ...string) Hop {
	h := Hop{}
	for _, a := range addrs {
		h.Result = append(h.Result, Reply{From: a})
	}
	return h
}

// At returns a hop answered by addr once per given RTT value.
func At(addr string, rtts ...float64) Hop {
	h := Hop{}
	for _, rtt := range rtts {
		h.Result = append(h.Result, Reply{From: addr, RTT: &rtt})
	}
	return h
}

// Timeout returns a hop where all three packets timed out.
func Timeout() Hop {
	return Hop{Result: []Reply{{X: "*"}, {X: "*"}, {X: "*"}}}
}

// Traceroute returns a traceroute result from probe to dst started at ts.
// Hop numbers are assigned in order.
func Traceroute(probe int, dst string, ts int64, hops ...Hop) Result {
	af := 4
	if strings.Contains(dst, ":") {
		af = 6
	}
	for i := range hops {
		hops[i].Hop = i + 1
	}
	return Result{MsmID: 5051, PrbID: probe, DstAddr: dst, AF: af, Timestamp: ts, Result: hops}
}

// Line encodes the result as a single measurement result line.
func (r Result) Line(t testing.TB) []byte {
	t.Helper()
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("failed to marshal traceroute: %v", err)
	}
	return b
}

// Lines joins the given results and raw lines into newline terminated
// measurement file content. Elements must be of type [Result], []byte or string.
func Lines(t testing.TB, rows ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, row := range rows {
		switch r := row.(type) {
		case Result:
			buf.Write(r.Line(t))
		case []byte:
			buf.Write(r)
		case string:
			buf.WriteString(r)
		default:
			t.Fatalf("unsupported row type %T", row)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile writes content to dir/name and returns the full path.
// Files ending in ".bz2" are bzip2 compressed.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %q: %v", filepath.Dir(path), err)
	}

	if strings.HasSuffix(name, ".bz2") {
		var buf bytes.Buffer
		w, err := bzip2.NewWriter(&buf, nil)
		if err != nil {
			t.Fatalf("failed to create bzip2 writer: %v", err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("failed to compress %q: %v", name, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("failed to compress %q: %v", name, err)
		}
		content = buf.Bytes()
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write %q: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, decompressing ".bz2" files.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read %q: %v", path, err)
	}
	if !strings.HasSuffix(path, ".bz2") {
		return b
	}

	r, err := bzip2.NewReader(bytes.NewReader(b), nil)
	if err != nil {
		t.Fatalf("failed to create bzip2 reader: %v", err)
	}
	defer func() { _ = r.Close() }()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatalf("failed to decompress %q: %v", path, err)
	}
	return out.Bytes()
}
