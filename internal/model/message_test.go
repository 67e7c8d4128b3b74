package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimHistory(t *testing.T) {
	t.Parallel()

	history := []ChatMessage{
		{Role: RoleUser, Content: "1"},
		{Role: RoleAssistant, Content: "2"},
		{Role: RoleUser, Content: "3"},
		{Role: RoleAssistant, Content: "4"},
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"fewer than limit", 10, []string{"1", "2", "3", "4"}},
		{"exact limit", 4, []string{"1", "2", "3", "4"}},
		{"keeps tail", 2, []string{"3", "4"}},
		{"zero disables", 0, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TrimHistory(history, tt.n)
			contents := make([]string, len(got))
			for i, m := range got {
				contents[i] = m.Content
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}
