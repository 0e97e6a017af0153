package dump

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/klog/v2"
)

const (
	DefaultPageSize = 250
	DefaultAttempts = 5

	defaultRequestTimeout = time.Minute
	defaultInitialBackoff = time.Second
)

// PageLister fetches one page of objects for a resource kind. An empty
// namespace targets cluster scope. This is the only capability the core
// needs from the cluster; tests substitute scripted implementations.
type PageLister interface {
	ListPage(ctx context.Context, kind ResourceKind, namespace string, opts metav1.ListOptions) (*unstructured.UnstructuredList, error)
}

type dynamicPageLister struct {
	client dynamic.Interface
}

// NewDynamicPageLister serves pages through the dynamic client. The
// client is safe for concurrent use, so one lister is shared by all jobs.
func NewDynamicPageLister(client dynamic.Interface) PageLister {
	return &dynamicPageLister{client: client}
}

func (l *dynamicPageLister) ListPage(ctx context.Context, kind ResourceKind, namespace string, opts metav1.ListOptions) (*unstructured.UnstructuredList, error) {
	ri := l.client.Resource(kind.GroupVersionResource())
	if namespace != "" {
		return ri.Namespace(namespace).List(ctx, opts)
	}
	return ri.List(ctx, opts)
}

// PagedLister drives the list-with-continuation protocol for one job at a
// time, retrying transient failures with exponential backoff. A PagedLister
// holds no per-listing state and may be shared across concurrent jobs; the
// continuation token lives entirely within one Each call.
type PagedLister struct {
	client   PageLister
	pageSize int64
	selector string

	// Tunables, set before first use.
	Attempts       int           // per-page retry budget
	Timeout        time.Duration // per-request timeout
	InitialBackoff time.Duration
}

func NewPagedLister(client PageLister, pageSize int64, selector string) *PagedLister {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PagedLister{
		client:         client,
		pageSize:       pageSize,
		selector:       selector,
		Attempts:       DefaultAttempts,
		Timeout:        defaultRequestTimeout,
		InitialBackoff: defaultInitialBackoff,
	}
}

// Each streams every object of one (kind, scope) listing to fn, in the
// exact order the server returns them, consuming pages in continuation
// order. Objects handed to fn before an error are not rolled back. An
// error from fn ends the listing. Not restartable: call Each again for a
// fresh listing.
func (l *PagedLister) Each(ctx context.Context, kind ResourceKind, scope ScopeTarget, fn func(*unstructured.Unstructured) error) error {
	var token string
	for {
		page, err := l.listPage(ctx, kind, scope, token)
		if err != nil {
			return err
		}
		for i := range page.Items {
			if err := fn(&page.Items[i]); err != nil {
				return err
			}
		}
		token = page.GetContinue()
		if token == "" {
			return nil
		}
	}
}

// listPage fetches a single page, retrying transient errors until the
// attempt budget runs out. A rate-limit response that suggests a client
// delay raises the backoff to at least that long.
func (l *PagedLister) listPage(ctx context.Context, kind ResourceKind, scope ScopeTarget, token string) (*unstructured.UnstructuredList, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.InitialBackoff
	bo.MaxElapsedTime = 0 // the attempt budget bounds the retries

	opts := metav1.ListOptions{
		Limit:         l.pageSize,
		Continue:      token,
		LabelSelector: l.selector,
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, l.Timeout)
		page, err := l.client.ListPage(callCtx, kind, scope.Namespace, opts)
		cancel()
		if err == nil {
			return page, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !isTransient(err) {
			return nil, &fatalError{err: fmt.Errorf("listing %s: %w", kind, err)}
		}
		if attempt >= l.Attempts {
			return nil, fmt.Errorf("listing %s: retry budget exhausted after %d attempts: %w", kind, attempt, err)
		}
		delay := bo.NextBackOff()
		if secs, ok := apierrors.SuggestsClientDelay(err); ok {
			if suggested := time.Duration(secs) * time.Second; suggested > delay {
				delay = suggested
			}
		}
		klog.V(3).Infof("Transient error listing %s in scope %s, retrying in %s: %v", kind, scope, delay, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
