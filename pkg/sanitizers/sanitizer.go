// Package sanitizers strips volatile, server-populated fields from dumped
// objects so that diffing or re-applying a dump is not drowned in noise:
// managedFields, resourceVersion, uid, status, controller bookkeeping
// annotations, and scheduler-assigned pod fields.
package sanitizers

type Sanitizer interface {
	Sanitize(in map[string]interface{}) (map[string]interface{}, error)
}

func NewSanitizer(kind string) Sanitizer {
	switch kind {
	case "Pod":
		return newPodSanitizer()
	case "StatefulSet", "Deployment", "ReplicaSet", "DaemonSet", "ReplicationController", "Job":
		return newWorkloadSanitizer()
	default:
		return newDefaultSanitizer()
	}
}

type defaultSanitizer struct{}

func newDefaultSanitizer() Sanitizer {
	return defaultSanitizer{}
}

func (s defaultSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	in, err := newMetadataSanitizer().Sanitize(in)
	if err != nil {
		return nil, err
	}
	delete(in, "status")
	return in, nil
}
