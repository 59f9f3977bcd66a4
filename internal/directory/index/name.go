package index

import (
	"sort"
	"strings"
	"sync"

	"userdir/internal/directory/models"
)

// MinTokenLength is the shortest key the name trie stores. Shorter tokens and
// queries are right-padded with spaces, so "Jo" is stored and searched as
// "jo " and never collides with the prefix of "john".
const MinTokenLength = 3

type trieNode struct {
	children map[rune]*trieNode
	values   map[string]*models.Record
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

func (n *trieNode) empty() bool {
	return len(n.children) == 0 && len(n.values) == 0
}

// NameIndex is a character trie over lowercased names. Every key maps to the
// set of records sharing it; a prefix search returns everything below the
// prefix node.
type NameIndex struct {
	mu   sync.RWMutex
	root *trieNode
	keys int
}

// NewNameIndex creates an empty name index.
func NewNameIndex() *NameIndex {
	return &NameIndex{root: newTrieNode()}
}

// NameKeys derives the keys a name is indexed under: the whole name, then
// every token after the first one (the given name is reachable through the
// full-name key already).
func NameKeys(name string) []string {
	tokens := strings.Fields(strings.ToLower(name))
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tokens))
	keys = append(keys, pad(strings.Join(tokens, " ")))
	for _, token := range tokens[1:] {
		keys = append(keys, pad(token))
	}
	return keys
}

func pad(s string) string {
	if n := len([]rune(s)); n < MinTokenLength {
		return s + strings.Repeat(" ", MinTokenLength-n)
	}
	return s
}

// Insert indexes rec under every key derived from name.
func (x *NameIndex) Insert(name string, rec *models.Record) {
	keys := NameKeys(name)

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, key := range keys {
		node := x.root
		for _, r := range key {
			child, ok := node.children[r]
			if !ok {
				child = newTrieNode()
				node.children[r] = child
			}
			node = child
		}
		if node.values == nil {
			node.values = make(map[string]*models.Record)
			x.keys++
		}
		node.values[rec.ID] = rec
	}
}

// Search returns every live record indexed under a key starting with query,
// case-insensitively. A record matching several keys appears once. Results
// are ordered by ID.
func (x *NameIndex) Search(query string) []*models.Record {
	prefix := pad(strings.ToLower(strings.TrimSpace(query)))

	x.mu.RLock()
	defer x.mu.RUnlock()

	node := x.root
	for _, r := range prefix {
		node = node.children[r]
		if node == nil {
			return []*models.Record{}
		}
	}

	seen := make(map[string]*models.Record)
	stack := []*trieNode{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for id, rec := range n.values {
			if !rec.Deleted() {
				seen[id] = rec
			}
		}
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return sortedByID(seen)
}

// Remove walks the same key paths Insert used, drops rec from each leaf set
// and prunes nodes left with no children and no values, bottom-up.
// It is safe to call for a record that was never indexed.
func (x *NameIndex) Remove(name string, rec *models.Record) {
	keys := NameKeys(name)

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, key := range keys {
		x.removeKey(key, rec.ID)
	}
}

func (x *NameIndex) removeKey(key, id string) {
	runes := []rune(key)
	path := make([]*trieNode, 0, len(runes)+1)
	path = append(path, x.root)

	node := x.root
	for _, r := range runes {
		node = node.children[r]
		if node == nil {
			return
		}
		path = append(path, node)
	}

	if _, ok := node.values[id]; !ok {
		return
	}
	delete(node.values, id)
	if len(node.values) == 0 {
		node.values = nil
		x.keys--
	}

	// path[i] is reached from path[i-1] through runes[i-1].
	for i := len(path) - 1; i > 0; i-- {
		if !path[i].empty() {
			break
		}
		delete(path[i-1].children, runes[i-1])
	}
}

// Len returns the number of distinct keys holding at least one record.
func (x *NameIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.keys
}

// nodeCount is used by tests to observe pruning.
func (x *NameIndex) nodeCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	count := 0
	stack := []*trieNode{x.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return count
}

func sortedByID(set map[string]*models.Record) []*models.Record {
	out := make([]*models.Record, 0, len(set))
	for _, rec := range set {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
