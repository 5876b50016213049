package certification

import (
	"fmt"
)

// Map is a persistent left-leaning red-black tree from path to content hash.
// Every node caches the digest of its subtree, so the root hash is available in
// constant time and Insert recomputes only the touched path. Insert never modifies
// the receiver, which lets a publisher prepare the next map while the current one
// keeps serving witnesses.
type Map struct {
	root *node
	size int
}

type node struct {
	key     string
	value   [32]byte
	left    *node
	right   *node
	red     bool
	subtree [32]byte
}

func NewMap() *Map {
	return &Map{}
}

func (m *Map) Len() int {
	return m.size
}

// RootHash is the digest of the whole map, matching Witness(key).Digest() for any key.
func (m *Map) RootHash() [32]byte {
	if m.root == nil {
		return emptyDigest()
	}
	return m.root.subtree
}

func (m *Map) Get(key string) ([32]byte, bool) {
	n := m.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n.value, true
		}
	}
	return [32]byte{}, false
}

// Keys returns every key in ascending order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.size)
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		walk(n.left)
		keys = append(keys, n.key)
		walk(n.right)
	}
	walk(m.root)
	return keys
}

// Insert returns a map holding key → value in addition to the receiver's entries.
func (m *Map) Insert(key string, value [32]byte) *Map {
	_, existed := m.Get(key)
	root := insert(m.root, key, value)
	root.red = false

	size := m.size
	if !existed {
		size++
	}
	return &Map{root: root, size: size}
}

// Witness reveals the entry stored under key and prunes everything else.
func (m *Map) Witness(key string) (*HashTree, error) {
	if _, ok := m.Get(key); !ok {
		return nil, fmt.Errorf("no certified entry for %q", key)
	}
	return witness(m.root, key), nil
}

func (n *node) dataTree() *HashTree {
	return Labeled([]byte(n.key), Leaf(n.value[:]))
}

func (n *node) dataDigest() [32]byte {
	return labeledDigest([]byte(n.key), leafDigest(n.value[:]))
}

func (n *node) clone() *node {
	c := *n
	return &c
}

// update recomputes the subtree digest from the children's cached digests. The
// shape mirrors compose so witnesses hash to the same value.
func (n *node) update() {
	data := n.dataDigest()
	switch {
	case n.left == nil && n.right == nil:
		n.subtree = data
	case n.right == nil:
		n.subtree = forkDigest(n.left.subtree, data)
	case n.left == nil:
		n.subtree = forkDigest(data, n.right.subtree)
	default:
		n.subtree = forkDigest(n.left.subtree, forkDigest(data, n.right.subtree))
	}
}

func compose(left, data, right *HashTree) *HashTree {
	switch {
	case left == nil && right == nil:
		return data
	case right == nil:
		return Fork(left, data)
	case left == nil:
		return Fork(data, right)
	default:
		return Fork(left, Fork(data, right))
	}
}

func witness(n *node, key string) *HashTree {
	var left, data, right *HashTree

	if n.left != nil {
		if key < n.key {
			left = witness(n.left, key)
		} else {
			left = Pruned(n.left.subtree)
		}
	}
	if n.right != nil {
		if key > n.key {
			right = witness(n.right, key)
		} else {
			right = Pruned(n.right.subtree)
		}
	}
	if key == n.key {
		data = n.dataTree()
	} else {
		data = Pruned(n.dataDigest())
	}

	return compose(left, data, right)
}

func isRed(n *node) bool {
	return n != nil && n.red
}

// insert works on copies of every node it changes.
func insert(n *node, key string, value [32]byte) *node {
	if n == nil {
		leaf := &node{key: key, value: value, red: true}
		leaf.update()
		return leaf
	}

	n = n.clone()
	switch {
	case key < n.key:
		n.left = insert(n.left, key, value)
	case key > n.key:
		n.right = insert(n.right, key, value)
	default:
		n.value = value
	}

	if isRed(n.right) && !isRed(n.left) {
		n = rotateLeft(n)
	}
	if isRed(n.left) && isRed(n.left.left) {
		n = rotateRight(n)
	}
	if isRed(n.left) && isRed(n.right) {
		flipColors(n)
	}

	n.update()
	return n
}

// rotateLeft expects n to be a private copy already.
func rotateLeft(n *node) *node {
	x := n.right.clone()
	n.right = x.left
	x.left = n
	x.red = n.red
	n.red = true
	n.update()
	x.update()
	return x
}

// rotateRight expects n to be a private copy already.
func rotateRight(n *node) *node {
	x := n.left.clone()
	n.left = x.right
	x.right = n
	x.red = n.red
	n.red = true
	n.update()
	x.update()
	return x
}

// flipColors only touches colors, digests stay valid.
func flipColors(n *node) {
	n.red = !n.red
	n.left = n.left.clone()
	n.left.red = !n.left.red
	n.right = n.right.clone()
	n.right.red = !n.right.red
}
