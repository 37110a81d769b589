package usecase

import (
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Flatten orders categories depth first from their roots and sets Level to
// the distance from the nearest root. A category whose parent is missing
// from the input is treated as a root.
func Flatten(categories []model.Category) []model.Category {
	roots, children := index(categories)
	out := make([]model.Category, 0, len(categories))
	visited := make(map[string]bool, len(categories))

	var walk func(c model.Category, level int)
	walk = func(c model.Category, level int) {
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true
		c.Level = level
		c.Children = nil
		out = append(out, c)
		for _, child := range children[c.ID] {
			walk(child, level+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	// Rows caught in a parent cycle are unreachable from any root.
	for _, c := range sortedByName(categories) {
		walk(c, 0)
	}
	return out
}

// Tree nests categories under their parents.
func Tree(categories []model.Category) []model.Category {
	roots, children := index(categories)
	visited := make(map[string]bool, len(categories))

	var build func(c model.Category, level int) model.Category
	build = func(c model.Category, level int) model.Category {
		visited[c.ID] = true
		c.Level = level
		c.Children = nil
		for _, child := range children[c.ID] {
			if visited[child.ID] {
				continue
			}
			c.Children = append(c.Children, build(child, level+1))
		}
		return c
	}
	out := make([]model.Category, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root, 0))
	}
	// As in Flatten, a parent cycle surfaces as an extra root.
	for _, c := range sortedByName(categories) {
		if !visited[c.ID] {
			out = append(out, build(c, 0))
		}
	}
	return out
}

// createsCycle reports whether moving id under parentID would make id its
// own ancestor.
func createsCycle(categories []model.Category, id, parentID string) bool {
	parents := make(map[string]string, len(categories))
	for _, c := range categories {
		if c.ParentID != nil {
			parents[c.ID] = *c.ParentID
		}
	}
	seen := map[string]bool{}
	for cur := parentID; cur != ""; cur = parents[cur] {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

func index(categories []model.Category) ([]model.Category, map[string][]model.Category) {
	ids := make(map[string]bool, len(categories))
	for _, c := range categories {
		ids[c.ID] = true
	}
	var roots []model.Category
	children := map[string][]model.Category{}
	for _, c := range sortedByName(categories) {
		if c.ParentID == nil || !ids[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	return roots, children
}

func sortedByName(categories []model.Category) []model.Category {
	out := append([]model.Category(nil), categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
