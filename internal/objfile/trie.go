// Package objfile builds the object wrapper's export trie: a compact
// character trie over exported names, serialized word-by-word directly into
// the final output array so the runtime loader can walk it without a
// separate parse step.
package objfile

import "fmt"

// Node is one trie node. Children are kept in insertion order so the
// serialized layout is deterministic across runs of the same source.
type Node struct {
	order    []byte
	children map[byte]*Node
	hasValue bool
	value    string
}

// NewNode returns an empty trie node.
func NewNode() *Node {
	return &Node{children: make(map[byte]*Node)}
}

// Add inserts key->value into the trie rooted at n. It is an error for two
// keys to collide exactly (a duplicate export of the same name).
func (n *Node) Add(key, value string) error {
	if len(key) == 0 {
		if n.hasValue {
			return fmt.Errorf("duplicate symbol definition: %s", value)
		}
		n.hasValue = true
		n.value = value
		return nil
	}
	c := key[0]
	child, ok := n.children[c]
	if !ok {
		child = NewNode()
		n.children[c] = child
		n.order = append(n.order, c)
	}
	return child.Add(key[1:], value)
}

// Resolver maps an inserted value (an internal symbol name) to its final
// absolute word offset in the assembled output.
type Resolver func(symbol string) (int, error)

// Serialize lays the trie out into *out starting at the current length of
// *out, using the encoding documented in SPEC_FULL.md §4.9:
//
//   - a leaf is (0, 0, relative-offset-to-symbol)
//   - a single-child chain inlines each character with no sibling-offset
//     word, except at its start (the root call, or a sibling among
//     several), where a leading sibling-offset placeholder precedes it
//   - a multi-child node emits one (offset-word, char) pair per child, each
//     offset-word patched in place once the next sibling's position is known
//   - a node that is itself a value (an internal node whose key is also a
//     full export name) appends a trailing (0, 0, 0, relative-offset) leaf
//     record after its children
//
// It returns the offset of node's own record (its "base"), which callers use
// to patch a preceding sibling-offset word.
func Serialize(out *[]int, node *Node, continues bool, resolve Resolver) (int, error) {
	childCount := len(node.order)
	if continues && childCount > 1 {
		*out = append(*out, 0, 1)
	}
	base := len(*out)

	if childCount == 0 {
		*out = append(*out, 0, 0)
		off, err := resolve(node.value)
		if err != nil {
			return 0, err
		}
		*out = append(*out, (off-len(*out))&0xFFFF)
		return base, nil
	}

	if childCount == 1 {
		if !continues {
			*out = append(*out, 0) // patched by the caller if node is a sibling
		}
		key := node.order[0]
		*out = append(*out, int(key))
		if _, err := Serialize(out, node.children[key], true, resolve); err != nil {
			return 0, err
		}
		return base, nil
	}

	prevOffset := -1
	for _, key := range node.order {
		subBase, err := Serialize(out, node.children[key], false, resolve)
		if err != nil {
			return 0, err
		}
		if prevOffset >= 0 {
			(*out)[prevOffset] = (subBase - prevOffset) & 0xFFFF
		}
		prevOffset = subBase
	}
	if node.hasValue {
		if prevOffset >= 0 {
			(*out)[prevOffset] = (len(*out) - prevOffset) & 0xFFFF
		}
		*out = append(*out, 0, 0, 0)
		off, err := resolve(node.value)
		if err != nil {
			return 0, err
		}
		*out = append(*out, (off-len(*out))&0xFFFF)
	}
	return base, nil
}
