package dump

import (
	"fmt"
	"path"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceKind describes one listable resource type served by the API
// server, as reported by discovery. Identity is (group, version, kind).
type ResourceKind struct {
	Group      string
	Version    string
	Kind       string
	Resource   string // plural name, used in list URLs
	Namespaced bool
}

func (k ResourceKind) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: k.Group, Version: k.Version, Resource: k.Resource}
}

func (k ResourceKind) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: k.Group, Version: k.Version, Kind: k.Kind}
}

func (k ResourceKind) GroupKind() schema.GroupKind {
	return schema.GroupKind{Group: k.Group, Kind: k.Kind}
}

// String renders "apps/v1/Deployment", or "v1/Pod" for the core group.
func (k ResourceKind) String() string {
	if k.Group == "" {
		return path.Join(k.Version, k.Kind)
	}
	return path.Join(k.Group, k.Version, k.Kind)
}

// sortKey orders kinds by group, then version, then kind. The core group
// sorts first under its empty group name.
func (k ResourceKind) sortKey() string {
	return k.Group + "/" + k.Version + "/" + k.Kind
}

// ScopeTarget is the scope a single enumeration runs against: the whole
// cluster for cluster-scoped kinds, or one namespace for namespaced kinds.
// The zero value means cluster scope.
type ScopeTarget struct {
	Namespace string
}

func ClusterScope() ScopeTarget {
	return ScopeTarget{}
}

func NamespaceScope(name string) ScopeTarget {
	return ScopeTarget{Namespace: name}
}

func (s ScopeTarget) IsCluster() bool {
	return s.Namespace == ""
}

// String returns the namespace name, or "cluster" for cluster scope. The
// result doubles as the scope segment of output paths.
func (s ScopeTarget) String() string {
	if s.IsCluster() {
		return "cluster"
	}
	return s.Namespace
}

// EnumerationJob is one unit of work for the scheduler: list every object
// of one resource kind within one scope and export it. Jobs are immutable
// once planned.
type EnumerationJob struct {
	Kind  ResourceKind
	Scope ScopeTarget
}

func (j EnumerationJob) String() string {
	return fmt.Sprintf("%s[%s]", j.Kind, j.Scope)
}

type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "Success"
	StatusPartial OutcomeStatus = "PartialFailure"
	StatusFatal   OutcomeStatus = "FatalFailure"
)

// JobOutcome records how a single job ended. Exactly one outcome is
// produced per planned job, including jobs that were cancelled before
// they could start.
type JobOutcome struct {
	Job            EnumerationJob
	ObjectsWritten int
	Status         OutcomeStatus
	Err            error
}
