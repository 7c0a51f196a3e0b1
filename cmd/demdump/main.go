// Command demdump decodes a demo file and prints its header and how long
// decoding took.
//
//	demdump FILE
//
// Environment: DEMDUMP_DEBUG enables debug logging, DEMDUMP_LOG_FORMAT
// selects text or json logs, DEMDUMP_PACKETS adds a per-kind packet count.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/zsiec/demparse/demo"
	"github.com/zsiec/demparse/internal/config"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

var errUsage = errors.New("usage: demdump FILE")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	log := cfg.Logger(stderr)

	if len(args) != 1 {
		fmt.Fprintln(stderr, errUsage)
		return exitUsage
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		log.Error("failed to open demo", "path", path, "error", err)
		return exitFail
	}

	start := time.Now()
	dem, err := demo.NewDecoder(demo.WithLogger(log)).DecodeFile(path)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("failed to decode demo", "path", path, "error", err)
		return exitFail
	}

	dump(stdout, path, info.Size(), dem, cfg.Packets)
	fmt.Fprintf(stdout, "parsed in %s\n", elapsed)
	return exitOK
}

func dump(w io.Writer, path string, size int64, dem *demo.Demo, packets bool) {
	h := dem.Header
	row := func(name string, value any) {
		fmt.Fprintf(w, "%-18s %v\n", name+":", value)
	}
	row("file", fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(size))))
	row("signature", h.Signature)
	row("demo protocol", h.DemoProtocol)
	row("network protocol", fmt.Sprintf("%d (%s)", h.NetworkProtocol, dem.Profile.Game))
	row("server", h.ServerName)
	row("client", h.ClientName)
	row("map", h.MapName)
	row("game directory", h.GameDirectory)
	row("playback time", fmt.Sprintf("%.3fs", h.PlaybackTime))
	row("playback ticks", humanize.Comma(int64(h.PlaybackTicks)))
	row("playback frames", humanize.Comma(int64(h.PlaybackFrames)))
	row("signon length", humanize.Bytes(uint64(max(h.SignOnLength, 0))))
	row("packets", humanize.Comma(int64(len(dem.Packets))))
	row("game events", dem.Events.Len())

	if !packets {
		return
	}
	counts := dem.KindCounts()
	kinds := make([]demo.PacketKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		row("  "+k.String(), humanize.Comma(int64(counts[k])))
	}
}
