package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"phylopipe-core/tree"
)

var (
	edgeColor     = color.Gray{Y: 60}
	agreeColor    = color.Gray{Y: 150}
	conflictColor = color.RGBA{R: 200, A: 255}
)

// Dendrogram renders one tree left-to-right with tips colored by family.
// familyOf maps a tip label to its family ("" is drawn neutral). The output
// format follows the file extension (.png, .svg, .pdf).
func Dendrogram(t *tree.Tree, title string, familyOf func(string) string, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	lo := layoutTree(t)
	if err := addEdges(p, lo, edgeColor); err != nil {
		return err
	}
	if err := addTipLabels(p, lo, familyOf, 1); err != nil {
		return err
	}
	h := vg.Points(float64(len(lo.tips))*14 + 60)
	return p.Save(7*vg.Inch, h, path)
}

// Tanglegram juxtaposes two trees over the same tip set: left tree drawn
// normally, right tree mirrored, tips connected across the middle. Connectors
// of tips whose local clade is common to both trees are drawn muted; tips
// sitting in conflicting subtrees get a red connector. Errors out on
// mismatched tip sets rather than silently misaligning them.
func Tanglegram(left, right *tree.Tree, title, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}
	if err := tree.CheckComparable(left, right); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	ll := layoutTree(left)
	rl := layoutTree(right)
	// normalize depths into [0,0.4] and mirror the right tree into [0.6,1]
	lscale := 0.4 / nonzero(ll.maxDepth)
	rscale := 0.4 / nonzero(rl.maxDepth)
	ls := ll.scaled(0, lscale)
	rs := rl.scaled(1, -rscale)

	if err := addEdges(p, ls, edgeColor); err != nil {
		return err
	}
	if err := addEdges(p, rs, edgeColor); err != nil {
		return err
	}

	shared := sharedClades(left, right)
	rightTip := make(map[string]tipPoint, len(rs.tips))
	for _, tp := range rs.tips {
		rightTip[tp.label] = tp
	}
	for _, lt := range ls.tips {
		rt, ok := rightTip[lt.label]
		if !ok {
			continue // unreachable after CheckComparable
		}
		c := conflictColor
		_, okL := shared[tree.TipClade(left, lt.label)]
		_, okR := shared[tree.TipClade(right, lt.label)]
		if okL && okR {
			c = colorToRGBA(agreeColor)
		}
		line, err := plotter.NewLine(plotter.XYs{{X: lt.x, Y: lt.y}, {X: rt.x, Y: rt.y}})
		if err != nil {
			return err
		}
		line.Color = c
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
	}

	n := len(ls.tips)
	h := vg.Points(float64(n)*14 + 60)
	return p.Save(10*vg.Inch, h, path)
}

func sharedClades(a, b *tree.Tree) map[string]struct{} {
	ca, cb := tree.Clades(a), tree.Clades(b)
	out := make(map[string]struct{})
	for k := range ca {
		if _, ok := cb[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func addEdges(p *plot.Plot, lo *treeLayout, c color.Color) error {
	for _, s := range lo.segments {
		line, err := plotter.NewLine(plotter.XYs{{X: s.x0, Y: s.y0}, {X: s.x1, Y: s.y1}})
		if err != nil {
			return err
		}
		line.Color = c
		p.Add(line)
	}
	return nil
}

// addTipLabels draws tip labels colored by family. side=+1 puts text to the
// right of the tip, side=-1 to the left.
func addTipLabels(p *plot.Plot, lo *treeLayout, familyOf func(string) string, side int) error {
	byFamily := map[string][]tipPoint{}
	var order []string
	for _, tp := range lo.tips {
		fam := familyOf(tp.label)
		if _, ok := byFamily[fam]; !ok {
			order = append(order, fam)
		}
		byFamily[fam] = append(byFamily[fam], tp)
	}
	for i, fam := range order {
		pts := byFamily[fam]
		xys := make(plotter.XYs, len(pts))
		labels := make([]string, len(pts))
		for j, tp := range pts {
			xys[j] = plotter.XY{X: tp.x, Y: tp.y}
			labels[j] = " " + tp.label
		}
		lab, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return err
		}
		famColor := plotutil.Color(i)
		for j := range lab.TextStyle {
			lab.TextStyle[j].Color = famColor
			if side < 0 {
				lab.TextStyle[j].XAlign = draw.XRight
			}
		}
		p.Add(lab)
		// a legend entry per family, via an invisible scatter carrying the color
		sc, err := plotter.NewScatter(xys[:1])
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = famColor
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		if fam != "" {
			p.Legend.Add(fam, sc)
		}
	}
	return nil
}

func nonzero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func colorToRGBA(g color.Gray) color.RGBA {
	return color.RGBA{R: g.Y, G: g.Y, B: g.Y, A: 255}
}

// sanity guard shared by callers building output paths
func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("plot: empty output path")
	}
	return nil
}
