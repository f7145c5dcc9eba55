package rag_test

import (
	"context"
	"testing"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/mock"
	"github.com/govseek/govseek/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_Retrieve_defaults_to_two_documents(t *testing.T) {
	t.Parallel()

	var gotK int
	tool := &rag.Tool{
		Search: &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error) {
				gotK = k
				return []govseek.RetrievedDocument{
					{Text: "first", Source: "https://www.a.gov.sg/x"},
					{Text: "second", Source: "https://www.b.gov.sg/y"},
				}, nil
			},
		},
	}

	serialized, docs, err := tool.Retrieve(context.Background(), "some question")
	require.NoError(t, err)

	assert.Equal(t, 2, gotK)
	require.Len(t, docs, 2)
	assert.Equal(t, "Source: https://www.a.gov.sg/x\nContent: first\n\nSource: https://www.b.gov.sg/y\nContent: second", serialized)
}

func TestTool_Retrieve_propagates_search_failure(t *testing.T) {
	t.Parallel()

	tool := &rag.Tool{
		Search: &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error) {
				return nil, govseek.Errorf(govseek.EUNAVAILABLE, "search service unavailable")
			},
		},
	}

	_, _, err := tool.Retrieve(context.Background(), "q")
	assert.Equal(t, govseek.EUNAVAILABLE, govseek.ErrorCode(err))
}

func TestSerializeDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs []govseek.RetrievedDocument
		want string
	}{
		{
			name: "empty result set",
			docs: nil,
			want: "",
		},
		{
			name: "missing source becomes Unknown",
			docs: []govseek.RetrievedDocument{{Text: "orphan text"}},
			want: "Source: Unknown\nContent: orphan text",
		},
		{
			name: "order is preserved",
			docs: []govseek.RetrievedDocument{
				{Text: "b", Source: "https://b"},
				{Text: "a", Source: "https://a"},
			},
			want: "Source: https://b\nContent: b\n\nSource: https://a\nContent: a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rag.SerializeDocuments(tt.docs))
		})
	}
}
