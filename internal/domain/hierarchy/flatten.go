package hierarchy

import "github.com/okian/skilltree/internal/domain/model"

// Row is one node of a flattened forest.
type Row struct {
	Node        *model.HierarchyNode
	Depth       int
	ManagerName string
}

// Flatten walks the forest depth-first in pre-order. Roots have depth 0 and
// an empty manager name.
func Flatten(forest []*model.HierarchyNode) []Row {
	var rows []Row
	var walk func(n *model.HierarchyNode, depth int, manager string)
	walk = func(n *model.HierarchyNode, depth int, manager string) {
		rows = append(rows, Row{Node: n, Depth: depth, ManagerName: manager})
		for _, child := range n.Children {
			walk(child, depth+1, n.Name)
		}
	}
	for _, root := range forest {
		walk(root, 0, "")
	}
	return rows
}
