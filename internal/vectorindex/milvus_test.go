package vectorindex

import "testing"

func TestBuildFilterExpression(t *testing.T) {
	if got := buildFilterExpression(nil); got != "" {
		t.Errorf("empty filters produced %q, want empty expression", got)
	}

	got := buildFilterExpression(map[string]interface{}{FieldContentType: "article"})
	if got != `content_type == "article"` {
		t.Errorf("expression = %q", got)
	}
}

func TestBuildFilterExpressionSkipsUnknownColumns(t *testing.T) {
	// Keys without a backing collection column must not reach the query
	// expression; Milvus rejects expressions over nonexistent fields.
	got := buildFilterExpression(map[string]interface{}{
		FieldContentType: "article",
		"tags":           "go",
		"priority_score": 8.0,
	})
	if got != `content_type == "article"` {
		t.Errorf("expression = %q, want only the content_type clause", got)
	}

	if got := buildFilterExpression(map[string]interface{}{"tags": "go"}); got != "" {
		t.Errorf("expression = %q, want empty when no key has a column", got)
	}
}
