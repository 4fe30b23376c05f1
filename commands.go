// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"q2map/bsp"
	"q2map/math/vec"
	"q2map/metrics"
	"q2map/rand"
)

var lumpsCmd = &cobra.Command{
	Use:   "lumps <map>",
	Short: "Print the lump directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Filename:", m.Name())
		fmt.Fprintln(out, " Version:", m.Header.Version)
		fmt.Fprintln(out, "   Lumps:")
		for i, l := range m.Header.Lumps {
			fmt.Fprintf(out, "     %-12s %8.1f kB @ %8d ofs\n", bsp.LumpID(i), float64(l.Length)/1024.0, l.Offset)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <map>",
	Short: "Print counts of the decoded map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Filename:", m.Name())
		fmt.Fprintln(out, " Load id:", m.LoadID)
		for _, c := range []struct {
			name string
			n    int
		}{
			{"planes", len(m.Planes)},
			{"vertexes", len(m.Vertexes)},
			{"edges", len(m.Edges)},
			{"surfedges", len(m.SurfEdges)},
			{"faces", len(m.Faces)},
			{"texinfo", len(m.TexInfos)},
			{"nodes", len(m.Nodes)},
			{"leafs", len(m.Leafs)},
			{"leaffaces", len(m.LeafFaces)},
			{"leafbrushes", len(m.LeafBrushes)},
			{"models", len(m.Models)},
			{"brushes", len(m.Brushes)},
			{"brushsides", len(m.BrushSides)},
			{"areas", len(m.Areas)},
			{"areaportals", len(m.AreaPortals)},
			{"lighting", len(m.LightData)},
			{"entities", len(m.Entities)},
			{"textures", len(m.TextureNames())},
		} {
			fmt.Fprintf(out, "     %-12s %8d\n", c.name, c.n)
		}
		clusters := 0
		if m.Vis != nil {
			clusters = m.Vis.ClusterCount
		}
		fmt.Fprintf(out, "     %-12s %8d\n", "clusters", clusters)
		mins, maxs := m.Mins(), m.Maxs()
		fmt.Fprintf(out, "  Bounds: %v %v\n", mins, maxs)
		fmt.Fprintln(out, " Classes:")
		for _, n := range m.ClassNames() {
			fmt.Fprintln(out, "    ", n)
		}
		return nil
	},
}

var entitiesCmd = &cobra.Command{
	Use:   "entities <map>",
	Short: "Dump the entities of a map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range m.Entities {
			fmt.Fprintln(out, "{")
			for _, k := range e.PropertyNames() {
				v, _ := e.Property(k)
				fmt.Fprintf(out, "%q %q\n", k, v)
			}
			fmt.Fprintln(out, "}")
		}
		return nil
	},
}

var contentsCmd = &cobra.Command{
	Use:   "contents <map> <x> <y> <z>",
	Short: "Print the contents at a point",
	Long: `Print the contents at a point and the leaf, cluster and area it is in.
Put -- in front of the map name when a coordinate is negative.`,
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseVec(args[1:]...)
		if err != nil {
			return err
		}
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		c := m.PointContents(p)
		li := m.LocateLeaf(p)
		l := &m.Leafs[li]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "contents: %s (0x%x)\n", contentsString(c), uint32(c))
		fmt.Fprintf(out, "    leaf: %d (%s)\n", li, contentsString(l.Contents))
		fmt.Fprintf(out, " cluster: %d\n", l.Cluster)
		fmt.Fprintf(out, "    area: %d\n", l.Area)
		return nil
	},
}

var (
	traceMins  string
	traceMaxs  string
	traceMask  int32
	traceModel string
)

var traceCmd = &cobra.Command{
	Use:   "trace <map> <x> <y> <z> <x> <y> <z>",
	Short: "Run a box trace from start to end",
	Long: `Run a box trace from start to end against the world or an inline model.
Put -- in front of the map name when a coordinate is negative.`,
	Args:  cobra.ExactArgs(7),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseVec(args[1:4]...)
		if err != nil {
			return err
		}
		end, err := parseVec(args[4:7]...)
		if err != nil {
			return err
		}
		mins, err := parseVec(traceMins)
		if err != nil {
			return errors.Wrap(err, "mins")
		}
		maxs, err := parseVec(traceMaxs)
		if err != nil {
			return errors.Wrap(err, "maxs")
		}
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		mod := m.World()
		if traceModel != "" {
			if mod, err = m.InlineModel(traceModel); err != nil {
				return err
			}
		}
		tr := m.BoxTrace(start, end, mins, maxs, mod.HeadNode, traceMask)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  fraction: %g\n", tr.Fraction)
		fmt.Fprintf(out, "    endpos: %v\n", tr.EndPos)
		fmt.Fprintf(out, "  allsolid: %t\n", tr.AllSolid)
		fmt.Fprintf(out, "startsolid: %t\n", tr.StartSolid)
		if tr.Hit() {
			fmt.Fprintf(out, "     plane: %v %g\n", tr.Plane.Normal, tr.Plane.Dist)
			fmt.Fprintf(out, "  contents: %s\n", contentsString(tr.Contents))
			if tr.Surface >= 0 {
				fmt.Fprintf(out, "   texture: %s\n", m.TexInfos[tr.Surface].Name())
			}
		}
		return nil
	},
}

var checkWorkers int

var checkCmd = &cobra.Command{
	Use:   "check <map>...",
	Short: "Load and validate maps concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers := checkWorkers
		if workers < 1 {
			workers = cfg.Workers
		}
		results := make([]error, len(args))
		ids := make([]string, len(args))
		var g errgroup.Group
		g.SetLimit(workers)
		for i, name := range args {
			g.Go(func() error {
				m, err := loadMap(name)
				if err != nil {
					results[i] = err
					return nil
				}
				ids[i] = m.LoadID.String()
				return nil
			})
		}
		g.Wait()
		out := cmd.OutOrStdout()
		failed := 0
		for i, name := range args {
			if results[i] != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", name, results[i])
				continue
			}
			fmt.Fprintf(out, "ok   %s %s\n", name, ids[i])
		}
		if failed > 0 {
			return errors.Errorf("%d of %d maps failed", failed, len(args))
		}
		return nil
	},
}

var (
	benchTraces  int
	benchWorkers int
	benchSeed    uint32
)

var benchCmd = &cobra.Command{
	Use:   "bench <map>",
	Short: "Run random traces concurrently and print metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMap(args[0])
		if err != nil {
			return err
		}
		workers := benchWorkers
		if workers < 1 {
			workers = cfg.Workers
		}
		hits, err := runBench(m, benchTraces, workers, benchSeed)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d traces, %d hits\n", benchTraces, hits)
		return metrics.WriteText(out)
	},
}

// runBench traces n random player sized boxes between points inside the
// world bounds on workers goroutines sharing m.
func runBench(m *bsp.Map, n, workers int, seed uint32) (int64, error) {
	var hits atomic.Int64
	mins := vec.Vec3{-16, -16, -24}
	maxs := vec.Vec3{16, 16, 32}
	wmins, wmaxs := m.Mins(), m.Maxs()
	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		count := n / workers
		if w < n%workers {
			count++
		}
		r := rand.New(seed + uint32(w))
		g.Go(func() error {
			for i := 0; i < count; i++ {
				tr := m.Trace(r.Point(wmins, wmaxs), r.Point(wmins, wmaxs), mins, maxs)
				if tr.Fraction < 0 || tr.Fraction > 1 {
					return errors.Errorf("trace fraction %g out of range", tr.Fraction)
				}
				if tr.Hit() {
					hits.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	slog.Info("Bench done",
		slog.String("map", m.Name()),
		slog.Int("traces", n),
		slog.Int("workers", workers),
		slog.Duration("elapsed", time.Since(start)))
	return hits.Load(), nil
}

func init() {
	traceCmd.Flags().StringVar(&traceMins, "mins", "0 0 0", "box mins")
	traceCmd.Flags().StringVar(&traceMaxs, "maxs", "0 0 0", "box maxs")
	traceCmd.Flags().Int32Var(&traceMask, "mask", bsp.MaskSolid, "contents mask")
	traceCmd.Flags().StringVar(&traceModel, "model", "", "inline model to trace against, like *1")

	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "parallel loads, 0 uses Q2MAP_WORKERS")

	benchCmd.Flags().IntVar(&benchTraces, "traces", 10000, "number of traces")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "parallel tracers, 0 uses Q2MAP_WORKERS")
	benchCmd.Flags().Uint32Var(&benchSeed, "seed", 1, "random seed")
}
