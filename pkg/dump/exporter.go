package dump

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"kubedump.dev/kubedump/pkg/sanitizers"
)

// Exporter serializes object records to their deterministic paths under
// the output root.
type Exporter struct {
	Layout   Layout
	Storage  Writer
	Sanitize bool
}

func (e *Exporter) Export(job EnumerationJob, obj *unstructured.Unstructured) error {
	body := obj.Object
	if e.Sanitize {
		var err error
		body, err = sanitizers.NewSanitizer(obj.GetKind()).Sanitize(body)
		if err != nil {
			return fmt.Errorf("sanitizing %s %q: %w", job.Kind, obj.GetName(), err)
		}
	}
	data, err := yaml.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s %q: %w", job.Kind, obj.GetName(), err)
	}
	path := e.Layout.ObjectPath(job.Kind, job.Scope, obj.GetName())
	if err := e.Storage.Write(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
