package certification

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/fxamacker/cbor/v2"
)

type NodeKind uint8

const (
	KindEmpty NodeKind = iota
	KindFork
	KindLabeled
	KindLeaf
	KindPruned
)

// selfDescribeTag marks the encoded witness as CBOR (RFC 8949 section 3.4.6).
const selfDescribeTag = 55799

var (
	tagEmpty   = []byte("metrics-publisher/hashtree/empty")
	tagFork    = []byte("metrics-publisher/hashtree/fork")
	tagLabeled = []byte("metrics-publisher/hashtree/labeled")
	tagLeaf    = []byte("metrics-publisher/hashtree/leaf")
)

// HashTree is a partially revealed merkle tree. Pruned nodes only carry their digest
// and stand in for any subtree.
type HashTree struct {
	kind   NodeKind
	left   *HashTree
	right  *HashTree
	label  []byte
	value  []byte
	digest [32]byte
}

func Empty() *HashTree {
	return &HashTree{kind: KindEmpty}
}

func Fork(left, right *HashTree) *HashTree {
	return &HashTree{kind: KindFork, left: left, right: right}
}

func Labeled(label []byte, sub *HashTree) *HashTree {
	return &HashTree{kind: KindLabeled, label: label, left: sub}
}

func Leaf(value []byte) *HashTree {
	return &HashTree{kind: KindLeaf, value: value}
}

func Pruned(digest [32]byte) *HashTree {
	return &HashTree{kind: KindPruned, digest: digest}
}

func (t *HashTree) Kind() NodeKind {
	return t.kind
}

func emptyDigest() [32]byte {
	return *chainhash.TaggedHash(tagEmpty)
}

func forkDigest(left, right [32]byte) [32]byte {
	return *chainhash.TaggedHash(tagFork, left[:], right[:])
}

func labeledDigest(label []byte, sub [32]byte) [32]byte {
	return *chainhash.TaggedHash(tagLabeled, label, sub[:])
}

func leafDigest(value []byte) [32]byte {
	return *chainhash.TaggedHash(tagLeaf, value)
}

// Digest is the root hash of the tree. It is the same for every witness of the
// same full tree.
func (t *HashTree) Digest() [32]byte {
	switch t.kind {
	case KindFork:
		return forkDigest(t.left.Digest(), t.right.Digest())
	case KindLabeled:
		return labeledDigest(t.label, t.left.Digest())
	case KindLeaf:
		return leafDigest(t.value)
	case KindPruned:
		return t.digest
	default:
		return emptyDigest()
	}
}

// Lookup follows the labels of path and returns the leaf value found at its end.
// The boolean is false when the path is absent or pruned away.
func (t *HashTree) Lookup(path ...[]byte) ([]byte, bool) {
	if len(path) == 0 {
		if t.kind == KindLeaf {
			return t.value, true
		}
		return nil, false
	}

	for _, node := range t.flatten(nil) {
		if node.kind == KindLabeled && bytes.Equal(node.label, path[0]) {
			return node.left.Lookup(path[1:]...)
		}
	}

	return nil, false
}

// flatten lists the non-fork nodes of t from left to right.
func (t *HashTree) flatten(out []*HashTree) []*HashTree {
	if t.kind == KindFork {
		out = t.left.flatten(out)
		return t.right.flatten(out)
	}
	return append(out, t)
}

func (t *HashTree) toCBOR() []any {
	switch t.kind {
	case KindFork:
		return []any{uint64(KindFork), t.left.toCBOR(), t.right.toCBOR()}
	case KindLabeled:
		return []any{uint64(KindLabeled), t.label, t.left.toCBOR()}
	case KindLeaf:
		return []any{uint64(KindLeaf), t.value}
	case KindPruned:
		return []any{uint64(KindPruned), t.digest[:]}
	default:
		return []any{uint64(KindEmpty)}
	}
}

// EncodeHashTree serializes the tree as self-described CBOR.
func EncodeHashTree(t *HashTree) ([]byte, error) {
	bz, err := cbor.Marshal(cbor.Tag{Number: selfDescribeTag, Content: t.toCBOR()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode hash tree: %w", err)
	}
	return bz, nil
}

var errMalformedTree = errors.New("malformed hash tree")

func DecodeHashTree(bz []byte) (*HashTree, error) {
	var raw any
	if err := cbor.Unmarshal(bz, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedTree, err)
	}
	if tag, ok := raw.(cbor.Tag); ok {
		if tag.Number != selfDescribeTag {
			return nil, fmt.Errorf("%w: unexpected tag %d", errMalformedTree, tag.Number)
		}
		raw = tag.Content
	}

	return fromCBOR(raw)
}

func fromCBOR(raw any) (*HashTree, error) {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: node is not a non-empty array", errMalformedTree)
	}
	kind, ok := items[0].(uint64)
	if !ok {
		return nil, fmt.Errorf("%w: node kind is not an unsigned integer", errMalformedTree)
	}

	arity := map[NodeKind]int{KindEmpty: 1, KindFork: 3, KindLabeled: 3, KindLeaf: 2, KindPruned: 2}
	want, known := arity[NodeKind(kind)]
	if !known {
		return nil, fmt.Errorf("%w: unknown node kind %d", errMalformedTree, kind)
	}
	if len(items) != want {
		return nil, fmt.Errorf("%w: node kind %d has %d items", errMalformedTree, kind, len(items))
	}

	switch NodeKind(kind) {
	case KindFork:
		left, err := fromCBOR(items[1])
		if err != nil {
			return nil, err
		}
		right, err := fromCBOR(items[2])
		if err != nil {
			return nil, err
		}
		return Fork(left, right), nil
	case KindLabeled:
		label, ok := items[1].([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: label is not a byte string", errMalformedTree)
		}
		sub, err := fromCBOR(items[2])
		if err != nil {
			return nil, err
		}
		return Labeled(label, sub), nil
	case KindLeaf:
		value, ok := items[1].([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: leaf is not a byte string", errMalformedTree)
		}
		return Leaf(value), nil
	case KindPruned:
		digest, ok := items[1].([]byte)
		if !ok || len(digest) != 32 {
			return nil, fmt.Errorf("%w: pruned digest must be 32 bytes", errMalformedTree)
		}
		return Pruned([32]byte(digest)), nil
	default:
		return Empty(), nil
	}
}
