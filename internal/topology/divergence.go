package topology

import (
	"context"
	"sync"

	"canopy/internal/gitquery"
	"canopy/internal/model"
)

// annotateDivergence fills in ahead/behind for every node: against the
// finalized parent edge, and against the remote upstream when one is
// configured. Nodes are independent, so the queries fan out; each
// goroutine writes only its own node. A failed query leaves the field
// nil rather than failing the pass.
func annotateDivergence(ctx context.Context, repo gitquery.Service, nodes []*model.Node, edges []model.Edge, defaultBranch string) {
	parentOf := make(map[string]string, len(edges))
	for _, e := range edges {
		parentOf[e.Child] = e.Parent
	}

	var wg sync.WaitGroup
	for _, node := range nodes {
		wg.Add(1)
		go func(n *model.Node) {
			defer wg.Done()
			if n.Branch != defaultBranch {
				if parent, ok := parentOf[n.Branch]; ok {
					if d, err := repo.Distance(ctx, parent, n.Branch); err == nil {
						n.Parent = &d
					}
				}
			}
			upstream, err := repo.UpstreamOf(ctx, n.Branch)
			if err != nil || upstream == "" {
				return
			}
			d, err := repo.Distance(ctx, upstream, n.Branch)
			if err != nil || d.IsZero() {
				// In sync or unanswerable; absence of the field means exactly that.
				return
			}
			n.Upstream = &d
		}(node)
	}
	wg.Wait()
}
