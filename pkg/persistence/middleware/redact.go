package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/mohae/deepcopy"
)

// Mask replaces every redacted state value.
const Mask = "***"

type redactMiddleware struct {
	next     ports.GraphStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks node state values whose
// keys match any of the patterns before they reach the store. Masking is one
// way: loaded graphs carry the mask.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, graphID string, doc *codec.GraphDocument) error {
	// The caller's document stays untouched.
	cloned := deepcopy.Copy(doc).(*codec.GraphDocument)
	for i := range cloned.Nodes {
		maskMap(cloned.Nodes[i].State, m.patterns)
	}
	return m.next.Save(ctx, graphID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, graphID string) (*codec.GraphDocument, error) {
	return m.next.Load(ctx, graphID)
}

func (m *redactMiddleware) Delete(ctx context.Context, graphID string) error {
	return m.next.Delete(ctx, graphID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}
