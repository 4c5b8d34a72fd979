package highlight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/scheduler"
)

func TestMermaid_KeepsText(t *testing.T) {
	in := "graph TD\n    a(\"a\")\n    a -->|out:in| b\n    b ==> c"
	out := Mermaid(in)

	for _, token := range []string{"graph", "TD", `"a"`, "-->", "|out:in|", "==>", "c"} {
		assert.Contains(t, out, token)
	}
}

func TestWorker_PostsResultsToScheduler(t *testing.T) {
	sched := scheduler.NewManual()
	var results []Result
	w := Start(context.Background(), sched, func(r Result) { results = append(results, r) })

	seq := w.Submit("graph TD\n    a ==> b")

	require.Eventually(t, func() bool { return sched.Pending() > 0 }, 5*time.Second, time.Millisecond)
	assert.Empty(t, results, "results are only applied on a scheduler turn")

	require.True(t, sched.Step())
	require.Len(t, results, 1)
	assert.Equal(t, seq, results[0].Seq)
	assert.Contains(t, results[0].Text, "==>")

	assert.NoError(t, w.Close())
}

func TestWorker_CloseWithoutWork(t *testing.T) {
	w := Start(context.Background(), scheduler.NewManual(), func(Result) {})
	assert.NoError(t, w.Close())
}
