package dump

import (
	"path/filepath"
	"strings"
)

// Layout maps every exported artifact to its place under the output root.
// Object paths are fully determined by (group, version, kind, scope, name),
// so re-runs land on the same files.
type Layout struct {
	Root string
}

// ObjectPath returns
// <root>/<group|"core">/<version>/<kind>/<namespace|"cluster">/<name>.yaml.
// A kind directory only ever holds one scope flavor, so a namespace named
// "cluster" cannot collide with the cluster-scope marker.
func (l Layout) ObjectPath(kind ResourceKind, scope ScopeTarget, name string) string {
	group := kind.Group
	if group == "" {
		group = "core"
	}
	return filepath.Join(l.Root, group, kind.Version, strings.ToLower(kind.Kind), scope.String(), name+".yaml")
}

// PodLogPath returns the destination for captured container logs of one pod.
func (l Layout) PodLogPath(scope ScopeTarget, pod, container string, previous bool) string {
	file := container + ".txt"
	if previous {
		file = container + ".prev.txt"
	}
	return filepath.Join(l.Root, "core", "v1", "pod", scope.String(), "logs", pod, file)
}

func (l Layout) ClusterVersion() string {
	return filepath.Join(l.Root, "cluster-version.yaml")
}

func (l Layout) APIResources() string {
	return filepath.Join(l.Root, "api-resources.yaml")
}

func (l Layout) ClusterInfo() string {
	return filepath.Join(l.Root, "cluster-info.txt")
}
