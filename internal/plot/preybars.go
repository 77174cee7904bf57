package plot

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"phylopipe-core/diet"
)

// PreyBars renders the prey-count summary as a grouped bar chart: prey taxa on
// the X axis, one colored bar series per family.
func PreyBars(counts []diet.PreyCount, title, path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	var families, preys []string
	famSeen := map[string]bool{}
	preySeen := map[string]bool{}
	byCell := map[[2]string]int{}
	for _, c := range counts {
		if !famSeen[c.Family] {
			famSeen[c.Family] = true
			families = append(families, c.Family)
		}
		if !preySeen[c.Prey] {
			preySeen[c.Prey] = true
			preys = append(preys, c.Prey)
		}
		byCell[[2]string{c.Family, c.Prey}] = c.Count
	}
	sort.Strings(families)
	sort.Strings(preys)

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "prey events"

	width := vg.Points(18)
	for i, fam := range families {
		vals := make(plotter.Values, len(preys))
		for j, prey := range preys {
			vals[j] = float64(byCell[[2]string{fam, prey}])
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		bars.Offset = width * vg.Length(i-len(families)/2)
		p.Add(bars)
		p.Legend.Add(fam, bars)
	}
	p.Legend.Top = true
	p.NominalX(preys...)
	return p.Save(vg.Points(float64(len(preys))*60+120), 4*vg.Inch, path)
}
