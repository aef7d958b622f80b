package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type idKind int

const (
	idKindTemporary idKind = iota
	idKindDurable
)

// ItemID identifies a scheduled item. It is either a client-generated
// temporary token (exists only until a create mutation resolves) or a
// server-assigned durable identifier. The kind is carried explicitly so
// callers never rely on string-prefix conventions.
type ItemID struct {
	kind  idKind
	value string
}

// Wire prefixes used only for JSON serialization of the identity kind.
const (
	temporaryIDPrefix = "tmp:"
	durableIDPrefix   = "srv:"
)

// NewTemporaryID generates a client-temporary identifier unique within the
// session.
func NewTemporaryID() ItemID {
	return ItemID{kind: idKindTemporary, value: uuid.NewString()}
}

// DurableID wraps a server-assigned identifier.
func DurableID(serverID string) ItemID {
	return ItemID{kind: idKindDurable, value: serverID}
}

func (id ItemID) IsTemporary() bool {
	return id.kind == idKindTemporary
}

func (id ItemID) IsDurable() bool {
	return id.kind == idKindDurable
}

// IsZero reports whether the identifier is unset.
func (id ItemID) IsZero() bool {
	return id.value == ""
}

// Value returns the raw identifier without its kind tag. For durable IDs this
// is the server identifier as assigned.
func (id ItemID) Value() string {
	return id.value
}

func (id ItemID) Equal(other ItemID) bool {
	return id.kind == other.kind && id.value == other.value
}

func (id ItemID) String() string {
	if id.IsZero() {
		return ""
	}

	if id.kind == idKindTemporary {
		return temporaryIDPrefix + id.value
	}

	return durableIDPrefix + id.value
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseItemID(raw)
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// ParseItemID parses the wire form produced by String. An unprefixed value is
// treated as a durable server identifier for compatibility with gateway
// responses.
func ParseItemID(raw string) (ItemID, error) {
	switch {
	case raw == "":
		return ItemID{}, fmt.Errorf("%w: empty identifier", ErrInvalidItemID)
	case strings.HasPrefix(raw, temporaryIDPrefix):
		return ItemID{kind: idKindTemporary, value: strings.TrimPrefix(raw, temporaryIDPrefix)}, nil
	case strings.HasPrefix(raw, durableIDPrefix):
		return ItemID{kind: idKindDurable, value: strings.TrimPrefix(raw, durableIDPrefix)}, nil
	default:
		return ItemID{kind: idKindDurable, value: raw}, nil
	}
}
