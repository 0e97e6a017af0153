package dump

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// PodLogDumper captures current and previous container logs next to each
// dumped pod. Log capture is best effort: a container without previous
// logs, or a pod gone by the time logs are requested, never fails the job.
type PodLogDumper struct {
	Client  kubernetes.Interface
	Layout  Layout
	Storage Writer
}

func (d *PodLogDumper) Dump(ctx context.Context, scope ScopeTarget, obj *unstructured.Unstructured) {
	var pod corev1.Pod
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &pod); err != nil {
		klog.Warningf("Cannot decode pod %s/%s for log capture: %v", obj.GetNamespace(), obj.GetName(), err)
		return
	}

	containers := make([]corev1.Container, 0, len(pod.Spec.InitContainers)+len(pod.Spec.Containers))
	containers = append(containers, pod.Spec.InitContainers...)
	containers = append(containers, pod.Spec.Containers...)
	for _, c := range containers {
		for _, previous := range []bool{false, true} {
			opts := &corev1.PodLogOptions{
				Container:  c.Name,
				Previous:   previous,
				Timestamps: true,
			}
			data, err := d.Client.CoreV1().Pods(pod.Namespace).GetLogs(pod.Name, opts).DoRaw(ctx)
			if err != nil {
				klog.V(4).Infof("No logs for %s/%s container %s (previous=%t): %v", pod.Namespace, pod.Name, c.Name, previous, err)
				continue
			}
			path := d.Layout.PodLogPath(scope, pod.Name, c.Name, previous)
			if err := d.Storage.Write(path, data); err != nil {
				klog.Warningf("Writing logs for %s/%s container %s: %v", pod.Namespace, pod.Name, c.Name, err)
			}
		}
	}
}
