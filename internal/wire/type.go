package wire

import "strings"

const (
	// MaxStructFields is the largest number of fields a STRUCT type may
	// declare.
	MaxStructFields = 64
)

// Type is a node of the value grammar:
//
//	PRIM ::= BYTE | I16 | I32 | I64 | U16 | U32 | U64 | F32 | F64 | STRING
//	TYPE ::= PRIM | ARRAY TYPE | STRUCT n TYPE+
//
// Primitive Types are process-wide singletons (see ByteType, I16Type,
// ...); composite Types (ARRAY, STRUCT) are owned values built by
// NewArrayType / NewStructType.
type Type struct {
	tag Tag

	elem   *Type   // set iff tag == TagArray
	fields []*Type // set iff tag == TagStruct
}

// Primitive singletons. These may be compared by identity but Equals
// never relies on it being required - see Type.Equals.
var (
	ByteType   = &Type{tag: TagByte}
	I16Type    = &Type{tag: TagI16}
	I32Type    = &Type{tag: TagI32}
	I64Type    = &Type{tag: TagI64}
	U16Type    = &Type{tag: TagU16}
	U32Type    = &Type{tag: TagU32}
	U64Type    = &Type{tag: TagU64}
	F32Type    = &Type{tag: TagF32}
	F64Type    = &Type{tag: TagF64}
	StringType = &Type{tag: TagString}
)

var primitiveSingletons = map[Tag]*Type{
	TagByte:   ByteType,
	TagI16:    I16Type,
	TagI32:    I32Type,
	TagI64:    I64Type,
	TagU16:    U16Type,
	TagU32:    U32Type,
	TagU64:    U64Type,
	TagF32:    F32Type,
	TagF64:    F64Type,
	TagString: StringType,
}

// PrimitiveFromTag returns the singleton Type for a primitive tag, and
// false if tag does not name a primitive.
func PrimitiveFromTag(tag Tag) (*Type, bool) {
	t, ok := primitiveSingletons[tag]
	return t, ok
}

// NewArrayType builds a Type describing ARRAY(elem). The returned Type
// owns elem.
func NewArrayType(elem *Type) *Type {
	return &Type{tag: TagArray, elem: elem}
}

// NewStructType builds a Type describing STRUCT(fields...). Fails with
// StatusEmptyStructType if fields is empty, or StatusStructTypeTooLarge
// if it has more than MaxStructFields entries. The returned Type owns
// fields.
func NewStructType(fields []*Type) (*Type, error) {
	if len(fields) == 0 {
		return nil, StatusEmptyStructType
	}
	if len(fields) > MaxStructFields {
		return nil, StatusStructTypeTooLarge
	}
	cp := make([]*Type, len(fields))
	copy(cp, fields)
	return &Type{tag: TagStruct, fields: cp}, nil
}

// Tag returns the grammar tag of t.
func (t *Type) Tag() Tag { return t.tag }

// Elem returns the element type of an ARRAY type. It panics if t is not
// an ARRAY type - callers are expected to check Tag() first, as with any
// other tagged-union accessor in this package.
func (t *Type) Elem() *Type {
	if t.tag != TagArray {
		panic("wire: Elem called on non-ARRAY type")
	}
	return t.elem
}

// Fields returns the field types of a STRUCT type, in declaration order.
// The returned slice must not be mutated. It panics if t is not a
// STRUCT type.
func (t *Type) Fields() []*Type {
	if t.tag != TagStruct {
		panic("wire: Fields called on non-STRUCT type")
	}
	return t.fields
}

// Equals reports whether t and other describe the same Type: tag-equal,
// and recursively equal sub-types. It short-circuits when t and other
// are the same pointer (always true for primitive singletons, and a
// pure optimization otherwise - it changes no observable outcome since
// a Type compared against itself is trivially structurally equal).
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.tag != other.tag {
		return false
	}

	switch t.tag {
	case TagArray:
		return t.elem.Equals(other.elem)
	case TagStruct:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if !t.fields[i].Equals(other.fields[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t *Type) String() string {
	switch t.tag {
	case TagArray:
		return "ARRAY(" + t.elem.String() + ")"
	case TagStruct:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.String()
		}
		return "STRUCT(" + strings.Join(parts, ", ") + ")"
	default:
		return t.tag.String()
	}
}
