package staged

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TypeTagKind discriminates the variants of TypeTag (spec §3.1).
type TypeTagKind int

const (
	// KindNominal references a concrete or abstract user-defined type
	// constructor, identified by its fully-qualified name.
	KindNominal TypeTagKind = iota

	// KindToken is an opaque process-unique symbol, used where the type
	// system cannot distinguish interfaces on its own.
	KindToken

	// KindPrimitive is one of the built-in scalar kinds.
	KindPrimitive

	// KindSet recursively wraps another TypeTag to denote a collection
	// binding (set-of(T)).
	KindSet
)

// Primitive enumerates the built-in scalar kinds a TypeTag may carry.
type Primitive int

const (
	PrimitiveInt Primitive = iota
	PrimitiveFloat
	PrimitiveString
	PrimitiveBool
	PrimitiveBigInt
	PrimitiveSymbol
)

// Token is an opaque, process-unique, comparable symbol. Two Tokens are
// equal iff they were produced by the same NewToken call. Tokens back the
// KindToken TypeTag variant, used where the host type system cannot itself
// distinguish interfaces.
type Token struct {
	id   uuid.UUID
	name string
}

// NewToken allocates a fresh process-unique Token. name is carried only for
// diagnostics (error rendering); it does not participate in equality.
func NewToken(name string) Token {
	return Token{id: uuid.New(), name: name}
}

func (t Token) String() string {
	if t.name != "" {
		return fmt.Sprintf("token(%s)", t.name)
	}
	return fmt.Sprintf("token(%s)", t.id)
}

// tagRegistry interns the TypeTag wrapped by every KindSet tag so that
// TypeTag stays a flat, comparable value (usable as a map key, per spec
// §3.2's "Keys must be hashable") while still recursively wrapping an
// arbitrary TypeTag. This mirrors the process-lexical, read-mostly-locked
// registry pattern spec §9 calls for the constructor-metadata side-table
// (see functoid.go's registry), applied here to type identity instead of
// constructor parameters.
type tagRegistry struct {
	mu   sync.RWMutex
	elem map[string]TypeTag
}

var setElemRegistry = &tagRegistry{elem: make(map[string]TypeTag)}

func (r *tagRegistry) intern(tag TypeTag) string {
	key := tag.canonicalKey()
	r.mu.RLock()
	_, ok := r.elem[key]
	r.mu.RUnlock()
	if ok {
		return key
	}
	r.mu.Lock()
	r.elem[key] = tag
	r.mu.Unlock()
	return key
}

func (r *tagRegistry) lookup(key string) (TypeTag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.elem[key]
	return t, ok
}

// TypeTag is an opaque, comparable identifier for a type (spec §3.1).
// TypeTag is a flat value type (no pointers) so it remains comparable with
// == and usable as a Go map key even for the recursive KindSet variant,
// whose wrapped tag is interned by canonical key rather than held by
// pointer.
type TypeTag struct {
	kind      TypeTagKind
	nominal   string
	token     Token
	primitive Primitive
	elemKey   string
}

// Nominal builds a TypeTag naming a concrete or abstract user-defined type
// constructor by its fully-qualified name (e.g. "myapp.UserService").
func Nominal(name string) TypeTag {
	return TypeTag{kind: KindNominal, nominal: name}
}

// TokenTag wraps a Token as a TypeTag.
func TokenTag(t Token) TypeTag {
	return TypeTag{kind: KindToken, token: t}
}

// PrimitiveTag builds a TypeTag for one of the built-in scalar kinds.
func PrimitiveTag(p Primitive) TypeTag {
	return TypeTag{kind: KindPrimitive, primitive: p}
}

// SetOf recursively wraps tag to denote a collection binding's key.
// set-of(a) = set-of(b) iff a = b (spec §3.1), which canonicalKey()
// guarantees structurally.
func SetOf(tag TypeTag) TypeTag {
	key := setElemRegistry.intern(tag)
	return TypeTag{kind: KindSet, elemKey: key}
}

// Kind reports the TypeTag's variant.
func (t TypeTag) Kind() TypeTagKind { return t.kind }

// Elem returns the wrapped TypeTag for a KindSet tag, and ok=false
// otherwise.
func (t TypeTag) Elem() (TypeTag, bool) {
	if t.kind != KindSet {
		return TypeTag{}, false
	}
	return setElemRegistry.lookup(t.elemKey)
}

// Equal reports structural equality: set-of(a) = set-of(b) iff a = b, and
// within a single variant, variant-specific fields must match (spec §3.1).
// Equal and == agree for every TypeTag produced via this package's
// constructors.
func (t TypeTag) Equal(o TypeTag) bool {
	return t == o
}

func (t TypeTag) canonicalKey() string {
	switch t.kind {
	case KindNominal:
		return "N:" + t.nominal
	case KindToken:
		return "T:" + t.token.id.String()
	case KindPrimitive:
		return fmt.Sprintf("P:%d", t.primitive)
	case KindSet:
		return "S:" + t.elemKey
	default:
		return "?"
	}
}

func (t TypeTag) String() string {
	switch t.kind {
	case KindNominal:
		return t.nominal
	case KindToken:
		return t.token.String()
	case KindPrimitive:
		return primitiveName(t.primitive)
	case KindSet:
		e, _ := t.Elem()
		return "set-of(" + e.String() + ")"
	default:
		return "<invalid-type-tag>"
	}
}

func primitiveName(p Primitive) string {
	switch p {
	case PrimitiveInt:
		return "int"
	case PrimitiveFloat:
		return "float"
	case PrimitiveString:
		return "string"
	case PrimitiveBool:
		return "bool"
	case PrimitiveBigInt:
		return "bigint"
	case PrimitiveSymbol:
		return "symbol"
	default:
		return "<unknown-primitive>"
	}
}

// Key is the (TypeTag, id?) pair by which bindings are looked up (spec
// §3.2). id, when present, is a string or Token distinguishing multiple
// bindings that share a TypeTag. Key is comparable and usable as a map key
// because every field is itself comparable.
type Key struct {
	Tag TypeTag
	ID  any // nil, string, or Token
}

// Of builds an untagged Key.
func Of(tag TypeTag) Key {
	return Key{Tag: tag}
}

// Named builds a Key distinguished by a string id.
func Named(tag TypeTag, id string) Key {
	return Key{Tag: tag, ID: id}
}

// WithToken builds a Key distinguished by a Token id.
func WithToken(tag TypeTag, id Token) Key {
	return Key{Tag: tag, ID: id}
}

// SetKey builds the collection Key that set-element bindings for elemTag
// contribute to, optionally distinguished by id (must be nil, string, or
// Token).
func SetKey(elemTag TypeTag, id any) Key {
	return Key{Tag: SetOf(elemTag), ID: id}
}

// IsSet reports whether k names a collection binding.
func (k Key) IsSet() bool {
	return k.Tag.Kind() == KindSet
}

// Equal reports whether two Keys are equal: equal TypeTags and equal ids
// (spec §3.2).
func (k Key) Equal(o Key) bool {
	return k.Tag.Equal(o.Tag) && k.ID == o.ID
}

func (k Key) String() string {
	if k.ID == nil {
		return k.Tag.String()
	}
	return fmt.Sprintf("%s#%v", k.Tag.String(), k.ID)
}
