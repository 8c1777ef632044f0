// Package grouping folds container listings into per-project rows.
package grouping

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/edvin/dockpanel/internal/model"
)

// UnassignedKey is the row key of containers without a compose project.
const UnassignedKey = "unassigned"

const (
	weightManaged = iota
	weightUnmanaged
	weightUnassigned
)

// Grouper orders names with a locale-aware, numeric-aware collation, so
// "app2" sorts before "app10".
type Grouper struct {
	tag language.Tag
}

// NewGrouper builds a Grouper for a BCP 47 locale. Unparseable locales fall
// back to the root collation.
func NewGrouper(locale string) *Grouper {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Grouper{tag: tag}
}

// collator returns a fresh collator; collate.Collator is not safe for
// concurrent use.
func (g *Grouper) collator() *collate.Collator {
	return collate.New(g.tag, collate.Numeric)
}

// Compare orders two names.
func (g *Grouper) Compare(a, b string) int {
	return g.collator().CompareString(a, b)
}

// Group merges containers into project rows. Rows are ordered managed
// first, then unmanaged projects, then the unassigned bucket, and by name
// within each band. Containers inside a row are ordered by name.
func (g *Grouper) Group(containers []model.Container) []model.ProjectRow {
	col := g.collator()

	index := make(map[string]int)
	var rows []model.ProjectRow
	for _, c := range containers {
		key := UnassignedKey
		if c.ProjectName != "" {
			key = "project:" + c.ProjectName
		}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, model.ProjectRow{
				Key:                key,
				ProjectName:        c.ProjectName,
				ComposeConfigFiles: []string{},
			})
		}
		row := &rows[i]
		row.Containers = append(row.Containers, c)
		row.ComposeConfigFiles = mergeFiles(row.ComposeConfigFiles, c.ComposeConfigFiles)
		if c.ProjectName != "" && c.IsManagedProject {
			row.IsManagedProject = true
		}
		row.Total++
		if model.ClassifyStatus(c.Status) == model.ContainerRunning {
			row.RunningCount++
		}
	}

	for i := range rows {
		members := rows[i].Containers
		sort.SliceStable(members, func(a, b int) bool {
			return col.CompareString(members[a].Name, members[b].Name) < 0
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		wa, wb := weight(rows[a]), weight(rows[b])
		if wa != wb {
			return wa < wb
		}
		return col.CompareString(rows[a].ProjectName, rows[b].ProjectName) < 0
	})
	return rows
}

func weight(r model.ProjectRow) int {
	switch {
	case r.ProjectName == "":
		return weightUnassigned
	case r.IsManagedProject:
		return weightManaged
	default:
		return weightUnmanaged
	}
}

func mergeFiles(dst, src []string) []string {
	for _, f := range src {
		found := false
		for _, have := range dst {
			if have == f {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, f)
		}
	}
	return dst
}

// StatusSummary counts running and total containers of every managed
// project. Containers without a project name are ignored.
func StatusSummary(containers []model.Container) map[string]model.ProjectStatus {
	summary := make(map[string]model.ProjectStatus)
	for _, c := range containers {
		if !c.IsManagedProject || c.ProjectName == "" {
			continue
		}
		s := summary[c.ProjectName]
		s.Total++
		if model.ClassifyStatus(c.Status) == model.ContainerRunning {
			s.RunningCount++
		}
		summary[c.ProjectName] = s
	}
	return summary
}

// Filter keeps the containers matching f. The keyword is matched
// case-insensitively against name, image, id and project name.
func Filter(containers []model.Container, f model.ContainerFilter) []model.Container {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	out := make([]model.Container, 0, len(containers))
	for _, c := range containers {
		if f.ManagedOnly && !c.IsManagedProject {
			continue
		}
		if f.State != "" && model.ClassifyStatus(c.Status) != f.State {
			continue
		}
		if keyword != "" && !matchesKeyword(c, keyword) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesKeyword(c model.Container, keyword string) bool {
	for _, field := range []string{c.Name, c.Image, c.ID, c.ProjectName} {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}
