package value

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Hex returns the 24-character lowercase hex form.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String returns the hex form.
func (id ObjectID) String() string {
	return id.Hex()
}

// Timestamp returns the creation time encoded in the first four bytes.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

// ObjectIDFromHex parses a 24-character hex string, in either case.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return id, fmt.Errorf("invalid object id %q: want 24 hex characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return id, nil
}

var (
	objectIDCounter = randomCounter()
	processUnique   = randomProcessUnique()
)

// NewObjectID returns a new identifier: 4-byte big-endian seconds since the
// epoch, 5 bytes unique to the process, 3-byte big-endian counter.
func NewObjectID() ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], processUnique[:])
	n := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(n >> 16)
	id[10] = byte(n >> 8)
	id[11] = byte(n)
	return id
}

func randomProcessUnique() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("object id: read random bytes: %w", err))
	}
	return b
}

func randomCounter() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("object id: read random bytes: %w", err))
	}
	return binary.BigEndian.Uint32(b[:])
}

// guidPattern accepts 32 hex digits with an optional dash between each of
// the 8-4-4-4-12 groups.
var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-?(?:[0-9a-fA-F]{4}-?){3}[0-9a-fA-F]{12}$`)

// ParseGuid parses a guid written as 32 hex digits with optional dashes
// between groups.
func ParseGuid(s string) (Guid, error) {
	if !guidPattern.MatchString(s) {
		return Guid{}, fmt.Errorf("invalid guid %q", s)
	}
	u, err := uuid.Parse(strings.ReplaceAll(s, "-", ""))
	if err != nil {
		return Guid{}, fmt.Errorf("invalid guid %q: %w", s, err)
	}
	return Guid(u), nil
}

// MustGuid parses s and panics on failure. Intended for fixtures.
func MustGuid(s string) Guid {
	g, err := ParseGuid(s)
	if err != nil {
		panic(err)
	}
	return g
}

// MustObjectID parses s and panics on failure. Intended for fixtures.
func MustObjectID(s string) ObjectID {
	id, err := ObjectIDFromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}
