package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIDsAreUnique(t *testing.T) {
	store := NewStore(4)
	a := store.NewSession()
	b := store.NewSession()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestAppendAndHistory(t *testing.T) {
	store := NewStore(4)
	id := store.NewSession()

	store.Append(id, RoleUser, "What is MCP?")
	store.Append(id, RoleAssistant, "A protocol for tool access.")

	turns := store.History(id)
	require.Len(t, turns, 2)
	assert.Equal(t, Turn{Role: RoleUser, Content: "What is MCP?"}, turns[0])
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "A protocol for tool access."}, turns[1])
}

func TestUnknownSessionHasEmptyHistory(t *testing.T) {
	store := NewStore(4)

	assert.Empty(t, store.History("never-created"))
	assert.Empty(t, store.FormatHistory("never-created"))
}

func TestAppendToUnknownSessionCreatesIt(t *testing.T) {
	store := NewStore(4)
	store.Append("adopted", RoleUser, "hello")

	require.Len(t, store.History("adopted"), 1)
}

func TestFIFOEviction(t *testing.T) {
	store := NewStore(3)
	id := store.NewSession()

	for i := 1; i <= 3; i++ {
		store.Append(id, RoleUser, fmt.Sprintf("turn %d", i))
	}
	// At capacity: the next append must drop exactly the oldest turn.
	store.Append(id, RoleUser, "turn 4")

	turns := store.History(id)
	require.Len(t, turns, 3)
	assert.Equal(t, "turn 2", turns[0].Content)
	assert.Equal(t, "turn 3", turns[1].Content)
	assert.Equal(t, "turn 4", turns[2].Content)
}

func TestFormatHistory(t *testing.T) {
	store := NewStore(4)
	id := store.NewSession()
	store.Append(id, RoleUser, "What is covered in lesson 1?")
	store.Append(id, RoleAssistant, "Lesson 1 covers the basics.")

	assert.Equal(t,
		"User: What is covered in lesson 1?\nAssistant: Lesson 1 covers the basics.",
		store.FormatHistory(id))
}

func TestConcurrentSessionsDoNotInterfere(t *testing.T) {
	store := NewStore(100)
	ids := []string{store.NewSession(), store.NewSession(), store.NewSession()}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id string, i int) {
				defer wg.Done()
				store.Append(id, RoleUser, fmt.Sprintf("msg %d", i))
			}(id, i)
		}
	}
	wg.Wait()

	for _, id := range ids {
		assert.Len(t, store.History(id), 20)
	}
}
