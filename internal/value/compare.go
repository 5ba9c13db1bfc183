package value

import (
	"bytes"
	"cmp"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// classOrder ranks kinds for Compare. Numeric kinds share one class.
func classOrder(k Kind) int {
	switch k {
	case KindMinValue:
		return 0
	case KindNull:
		return 1
	case KindInt32, KindInt64, KindDouble, KindDecimal:
		return 2
	case KindString:
		return 3
	case KindDocument:
		return 4
	case KindArray:
		return 5
	case KindBinary:
		return 6
	case KindObjectID:
		return 7
	case KindGuid:
		return 8
	case KindBoolean:
		return 9
	case KindDateTime:
		return 10
	case KindMaxValue:
		return 11
	}
	return 12
}

// SameClass reports whether a and b are ordered against each other by value
// rather than by kind. All numeric kinds form one class.
func SameClass(a, b Value) bool {
	return classOrder(a.Kind()) == classOrder(b.Kind())
}

// Compare returns -1, 0 or +1 ordering a against b.
//
// Kinds order as MinValue, Null, numbers, String, Document, Array, Binary,
// ObjectId, Guid, Boolean, DateTime, MaxValue. Numbers compare by numeric
// value regardless of variant. A nil Value compares as Null.
func Compare(a, b Value) int {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if c := cmp.Compare(classOrder(a.Kind()), classOrder(b.Kind())); c != 0 {
		return c
	}

	switch av := a.(type) {
	case Null, MinValue, MaxValue:
		return 0
	case Int32, Int64, Double, Decimal:
		return compareNumbers(av, b)
	case String:
		return strings.Compare(string(av), string(b.(String)))
	case *Document:
		return compareDocuments(av, b.(*Document))
	case Array:
		return compareArrays(av, b.(Array))
	case Binary:
		return bytes.Compare(av, b.(Binary))
	case ObjectID:
		bv := b.(ObjectID)
		return bytes.Compare(av[:], bv[:])
	case Guid:
		bv := b.(Guid)
		return bytes.Compare(av[:], bv[:])
	case Boolean:
		bv := b.(Boolean)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case DateTime:
		return av.Time.Compare(b.(DateTime).Time)
	}
	return 0
}

func compareDocuments(a, b *Document) int {
	ak, bk := a.Keys(), b.Keys()
	n := min(len(ak), len(bk))
	for i := 0; i < n; i++ {
		if c := strings.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
		av, _ := a.Get(ak[i])
		bv, _ := b.Get(bk[i])
		if c := Compare(av, bv); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ak), len(bk))
}

func compareArrays(a, b Array) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareNumbers(a, b Value) int {
	ai, aInt := integerOf(a)
	bi, bInt := integerOf(b)
	if aInt && bInt {
		return cmp.Compare(ai, bi)
	}

	_, aDouble := a.(Double)
	_, bDouble := b.(Double)
	if aDouble || bDouble {
		af, bf := floatOf(a), floatOf(b)
		// Exact comparison is only possible when both sides are finite.
		if math.IsNaN(af) || math.IsNaN(bf) || math.IsInf(af, 0) || math.IsInf(bf, 0) {
			return cmp.Compare(af, bf)
		}
	}
	return decimalOf(a).Cmp(decimalOf(b))
}

func integerOf(v Value) (int64, bool) {
	switch n := v.(type) {
	case Int32:
		return int64(n), true
	case Int64:
		return int64(n), true
	}
	return 0, false
}

func floatOf(v Value) float64 {
	switch n := v.(type) {
	case Int32:
		return float64(n)
	case Int64:
		return float64(n)
	case Double:
		return float64(n)
	case Decimal:
		return n.InexactFloat64()
	}
	return 0
}

func decimalOf(v Value) decimal.Decimal {
	switch n := v.(type) {
	case Int32:
		return decimal.NewFromInt32(int32(n))
	case Int64:
		return decimal.NewFromInt(int64(n))
	case Double:
		return decimal.NewFromFloat(float64(n))
	case Decimal:
		return n.Decimal
	}
	return decimal.Zero
}

// Equal reports deep, kind-exact equality. Document key order is
// significant. Two NaN doubles are equal.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null, MinValue, MaxValue:
		return true
	case Int32:
		return av == b.(Int32)
	case Int64:
		return av == b.(Int64)
	case Double:
		bv := b.(Double)
		if math.IsNaN(float64(av)) {
			return math.IsNaN(float64(bv))
		}
		return av == bv
	case Decimal:
		return av.Decimal.Equal(b.(Decimal).Decimal)
	case String:
		return av == b.(String)
	case Boolean:
		return av == b.(Boolean)
	case DateTime:
		return av.Time.Equal(b.(DateTime).Time)
	case Binary:
		return bytes.Equal(av, b.(Binary))
	case ObjectID:
		return av == b.(ObjectID)
	case Guid:
		return av == b.(Guid)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Document:
		bv := b.(*Document)
		if av.Len() != bv.Len() {
			return false
		}
		bk := bv.Keys()
		for i, k := range av.Keys() {
			if bk[i] != k {
				return false
			}
			x, _ := av.Get(k)
			y, _ := bv.Get(k)
			if !Equal(x, y) {
				return false
			}
		}
		return true
	}
	return false
}
