package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "landfall.gg/internal/persistence/log"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
	"landfall.gg/internal/sim/world"
)

func main() {
	var (
		matchDir   = flag.String("match_dir", "", "match data directory containing commands/")
		matchID    = flag.String("match", "match_1", "match id")
		seed       = flag.Int64("seed", 1337, "world seed used by the original run")
		tuningPath = flag.String("tuning", "", "path to the tuning.yaml used by the original run")
		mapPath    = flag.String("map", "", "path to the map yaml used by the original run")
		width      = flag.Int("width", 400, "flat world width (ignored with -map)")
		height     = flag.Int("height", 200, "flat world height (ignored with -map)")
		wrapX      = flag.Bool("wrap_x", true, "flat world horizontal wrap (ignored with -map)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *matchDir == "" {
		fmt.Fprintln(os.Stderr, "missing -match_dir")
		os.Exit(2)
	}

	tune := tuning.Default()
	if strings.TrimSpace(*tuningPath) != "" {
		var err error
		tune, err = tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}

	var g *grid.Grid
	if strings.TrimSpace(*mapPath) != "" {
		var err error
		g, err = grid.LoadMapFile(*mapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load map:", err)
			os.Exit(1)
		}
	} else {
		g = grid.AllLand(*width, *height, *wrapX, false)
	}

	w, err := world.New(world.WorldConfig{ID: *matchID, Seed: *seed, Map: g}, tune)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}

	var checked uint64
	err = persistlog.ReadCommandLog(*matchDir, func(entry world.CommandLogEntry) error {
		if *toTick != 0 && entry.Tick > *toTick {
			return nil
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		joins := make([]world.JoinRequest, 0, len(entry.Joins))
		for _, j := range entry.Joins {
			joins = append(joins, world.JoinRequest{Name: j.Name})
		}

		cmds := make([]world.CommandEnvelope, 0, len(entry.Commands))
		for _, rc := range entry.Commands {
			cmds = append(cmds, world.CommandEnvelope{PlayerID: rc.PlayerID, Msg: rc.Msg})
		}

		tick, gotDigest := w.StepOnce(joins, entry.Leaves, cmds)
		if tick != entry.Tick {
			return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		if gotDigest != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, gotDigest, entry.Digest)
		}
		checked++
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks (%s)\n", checked, filepath.Base(*matchDir))
}
