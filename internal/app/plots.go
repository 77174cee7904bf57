package app

import (
	"path/filepath"

	"phylopipe-core/diet"
	"phylopipe-core/tree"
	"phylopipe/internal/plot"
)

// renderPlots draws the per-dataset figures: a dendrogram per tree plus the
// tanglegram juxtaposing the clustering tree with the model-based NJ tree.
func (p *pipeline) renderPlots(name string, clusterTree, njTree, njKmerTree *tree.Tree) error {
	out := func(stem string) string {
		return filepath.Join(p.opts.OutDir, name+"_"+stem+"."+p.opts.PlotFormat)
	}
	if err := plot.Dendrogram(clusterTree, name+" clustering ("+p.cfg.Model+")",
		p.familyOf, out("cluster_tree")); err != nil {
		return err
	}
	if err := plot.Dendrogram(njTree, name+" neighbor-joining ("+p.cfg.Model+")",
		p.familyOf, out("nj_tree")); err != nil {
		return err
	}
	if err := plot.Dendrogram(njKmerTree, name+" neighbor-joining (k-mer)",
		p.familyOf, out("nj_kmer_tree")); err != nil {
		return err
	}
	return plot.Tanglegram(clusterTree, njTree,
		name+" clustering vs neighbor-joining", out("tanglegram"))
}

func renderPreyBars(counts []diet.PreyCount, path string) error {
	return plot.PreyBars(counts, "prey composition by family", path)
}
