package dump_test

import (
	"context"
	"testing"

	"kubedump.dev/kubedump/pkg/dump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var podKind = dump.ResourceKind{Version: "v1", Kind: "Pod", Resource: "pods", Namespaced: true}

func collect(t *testing.T, l *dump.PagedLister, kind dump.ResourceKind, scope dump.ScopeTarget) ([]string, error) {
	t.Helper()
	var names []string
	err := l.Each(context.Background(), kind, scope, func(obj *unstructured.Unstructured) error {
		names = append(names, obj.GetName())
		return nil
	})
	return names, err
}

func TestPagedLister_ConsumesPagesInContinuationOrder(t *testing.T) {
	fake := &scriptedLister{script: []pageResp{
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "a"), newObj("v1", "Pod", "default", "b")}, next: "t1"},
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "c"), newObj("v1", "Pod", "default", "d")}, next: "t2"},
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "e")}},
	}}

	names, err := collect(t, fastLister(fake), podKind, dump.NamespaceScope("default"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names)
	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, []string{"", "t1", "t2"}, fake.tokens)
}

func TestPagedLister_RetriesTransientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"service unavailable", apierrors.NewServiceUnavailable("maintenance")},
		{"rate limited", apierrors.NewTooManyRequests("slow down", 0)},
		{"internal error", apierrors.NewInternalError(assert.AnError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedLister{script: []pageResp{
				{err: tt.err},
				{err: tt.err},
				{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "a")}},
			}}

			names, err := collect(t, fastLister(fake), podKind, dump.NamespaceScope("default"))
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, names)
			assert.Equal(t, 3, fake.calls)
		})
	}
}

func TestPagedLister_RetryBudgetExhausted(t *testing.T) {
	boom := apierrors.NewServiceUnavailable("still down")
	fake := &scriptedLister{script: []pageResp{
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "a")}, next: "t1"},
		{err: boom}, {err: boom}, {err: boom},
	}}
	lister := fastLister(fake)
	lister.Attempts = 3

	names, err := collect(t, lister, podKind, dump.NamespaceScope("default"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "retry budget exhausted")
	// objects delivered before the failure are preserved
	assert.Equal(t, []string{"a"}, names)
	assert.Equal(t, 4, fake.calls)
}

func TestPagedLister_DoesNotRetryFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"kind vanished", apierrors.NewNotFound(schema.GroupResource{Resource: "pods"}, "")},
		{"forbidden", apierrors.NewForbidden(schema.GroupResource{Resource: "pods"}, "", assert.AnError)},
		{"unauthorized", apierrors.NewUnauthorized("who are you")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedLister{script: []pageResp{{err: tt.err}}}

			_, err := collect(t, fastLister(fake), podKind, dump.NamespaceScope("default"))
			require.Error(t, err)
			assert.Equal(t, 1, fake.calls, "fatal errors must not be retried")
		})
	}
}

func TestPagedLister_StopsOnCancellation(t *testing.T) {
	fake := &scriptedLister{script: []pageResp{
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "a")}, next: "t1"},
		{items: []*unstructured.Unstructured{newObj("v1", "Pod", "default", "b")}},
	}}
	ctx, cancel := context.WithCancel(context.Background())

	var names []string
	err := fastLister(fake).Each(ctx, podKind, dump.NamespaceScope("default"), func(obj *unstructured.Unstructured) error {
		names = append(names, obj.GetName())
		cancel() // interrupt mid-listing
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, names)
	assert.Equal(t, 1, fake.calls, "no new page request after cancellation")
}
