package dump

import (
	"fmt"
	"sort"
	"strings"

	"gomodules.xyz/sets"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/klog/v2"
)

// KindFilter restricts which discovered kinds make it into the catalog.
// Keys are schema.GroupKind strings: "Deployment.apps", or bare "Pod" for
// the core group. An empty include set admits everything not excluded.
type KindFilter struct {
	include sets.String
	exclude sets.String
}

func NewKindFilter(include, exclude []string) KindFilter {
	return KindFilter{
		include: sets.NewString(include...),
		exclude: sets.NewString(exclude...),
	}
}

func (f KindFilter) Allows(gk schema.GroupKind) bool {
	if f.exclude.Has(gk.String()) {
		return false
	}
	return f.include.Len() == 0 || f.include.Has(gk.String())
}

// Catalog queries API discovery and returns every listable resource kind,
// sorted by group/version/kind. Subresources, kinds that cannot be listed
// and gotten, duplicate GVKs served under multiple group versions, and
// filtered-out kinds are skipped. Discovery being unreachable is fatal;
// individual unreachable aggregated groups and malformed entries are
// logged and skipped.
func Catalog(client discovery.DiscoveryInterface, filter KindFilter) ([]ResourceKind, error) {
	_, lists, err := client.ServerGroupsAndResources()
	if err != nil {
		if !discovery.IsGroupDiscoveryFailedError(err) {
			return nil, fmt.Errorf("API discovery failed: %w", err)
		}
		klog.Warningf("Some API groups could not be discovered and will be skipped: %v", err)
	}

	seen := map[schema.GroupVersionKind]bool{}
	var kinds []ResourceKind
	for _, list := range lists {
		gv, err := schema.ParseGroupVersion(list.GroupVersion)
		if err != nil {
			klog.Warningf("Skipping malformed group version %q: %v", list.GroupVersion, err)
			continue
		}
		for _, res := range list.APIResources {
			if isSubResource(res.Name) || !hasGetListVerbs(res.Verbs) {
				continue
			}
			gvk := gv.WithKind(res.Kind)
			if seen[gvk] {
				continue
			}
			seen[gvk] = true
			if !filter.Allows(gvk.GroupKind()) {
				klog.V(3).Infof("Filtered out %s", gvk)
				continue
			}
			kinds = append(kinds, ResourceKind{
				Group:      gv.Group,
				Version:    gv.Version,
				Kind:       res.Kind,
				Resource:   res.Name,
				Namespaced: res.Namespaced,
			})
		}
	}

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].sortKey() < kinds[j].sortKey()
	})
	return kinds, nil
}

func isSubResource(name string) bool {
	return strings.ContainsRune(name, '/')
}

func hasGetListVerbs(verbs []string) bool {
	return sets.NewString(verbs...).HasAll("get", "list")
}
