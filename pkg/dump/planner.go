package dump

import "sort"

// Plan expands the catalog against the namespace set into the flat job
// list: one job per cluster-scoped kind, one job per (namespaced kind,
// namespace) pair. The result is duplicate-free and deterministically
// ordered by kind, then scope, so repeated runs against an unchanged
// cluster produce identical logs and output.
func Plan(kinds []ResourceKind, namespaces []string) []EnumerationJob {
	sorted := make([]string, len(namespaces))
	copy(sorted, namespaces)
	sort.Strings(sorted)

	var jobs []EnumerationJob
	for _, kind := range kinds {
		if !kind.Namespaced {
			jobs = append(jobs, EnumerationJob{Kind: kind, Scope: ClusterScope()})
			continue
		}
		for _, ns := range sorted {
			jobs = append(jobs, EnumerationJob{Kind: kind, Scope: NamespaceScope(ns)})
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if ki, kj := jobs[i].Kind.sortKey(), jobs[j].Kind.sortKey(); ki != kj {
			return ki < kj
		}
		return jobs[i].Scope.Namespace < jobs[j].Scope.Namespace
	})
	return jobs
}
