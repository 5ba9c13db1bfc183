package extjson

import (
	"time"

	"github.com/shopspring/decimal"
)

// Node is a sealed interface over the generic tree produced by Parse.
type Node interface {
	node() // Sealed
}

// NullNode is the null literal.
type NullNode struct{}

// BoolNode is true or false.
type BoolNode bool

// Int32Node is an integer that fits 32 bits, or an Int(...) constructor.
type Int32Node int32

// Int64Node is an integer that fits 64 bits, or a Long(...) constructor.
type Int64Node int64

// DoubleNode is a binary floating point number.
type DoubleNode float64

// DecimalNode is a base-10 number.
type DecimalNode struct {
	decimal.Decimal
}

// TextNode is a string literal.
type TextNode string

// BytesNode is the payload of a Binary(...) constructor.
type BytesNode []byte

// IdentifierNode is the payload of an ObjectId(...) constructor.
type IdentifierNode [12]byte

// GuidNode is the payload of a Guid(...) constructor.
type GuidNode [16]byte

// DateTimeNode is the payload of an ISODate(...) constructor, in UTC.
type DateTimeNode struct {
	time.Time
}

// SentinelNode is MinValue() or MaxValue().
type SentinelNode int

const (
	SentinelMin SentinelNode = iota
	SentinelMax
)

// SeqNode is an array literal.
type SeqNode []Node

func (NullNode) node()       {}
func (BoolNode) node()       {}
func (Int32Node) node()      {}
func (Int64Node) node()      {}
func (DoubleNode) node()     {}
func (DecimalNode) node()    {}
func (TextNode) node()       {}
func (BytesNode) node()      {}
func (IdentifierNode) node() {}
func (GuidNode) node()       {}
func (DateTimeNode) node()   {}
func (SentinelNode) node()   {}
func (SeqNode) node()        {}
func (*MapNode) node()       {}

// MapNode is an object literal with keys in first-seen order.
type MapNode struct {
	keys []string
	m    map[string]Node
}

// NewMapNode returns an empty MapNode.
func NewMapNode() *MapNode {
	return &MapNode{m: make(map[string]Node)}
}

// Len returns the number of entries.
func (n *MapNode) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Keys returns the keys in order. The returned slice is a copy.
func (n *MapNode) Keys() []string {
	if n == nil {
		return []string{}
	}
	return append([]string(nil), n.keys...)
}

// Get returns the node stored under key.
func (n *MapNode) Get(key string) (Node, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.m[key]
	return v, ok
}

// Set stores v under key, keeping the position of an existing key.
func (n *MapNode) Set(key string, v Node) {
	if n.m == nil {
		n.m = make(map[string]Node)
	}
	if _, ok := n.m[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.m[key] = v
}

// single returns the only entry of a one-entry map.
func (n *MapNode) single() (string, Node, bool) {
	if n.Len() != 1 {
		return "", nil, false
	}
	k := n.keys[0]
	return k, n.m[k], true
}
