package wire

import "testing"

func TestPrimitiveSingletonsAreDistinct(t *testing.T) {
	prims := []*Type{ByteType, I16Type, I32Type, I64Type, U16Type, U32Type, U64Type, F32Type, F64Type, StringType}
	for i, a := range prims {
		for j, b := range prims {
			if i == j {
				continue
			}
			if a.Equals(b) {
				t.Errorf("%v and %v should not be equal", a, b)
			}
		}
	}
}

func TestTypeEqualsStructural(t *testing.T) {
	a := NewArrayType(I32Type)
	b := NewArrayType(I32Type)
	if a == b {
		t.Fatal("expected distinct Type objects")
	}
	if !a.Equals(b) {
		t.Error("structurally identical ARRAY types should be equal")
	}

	c := NewArrayType(U32Type)
	if a.Equals(c) {
		t.Error("ARRAY(I32) should not equal ARRAY(U32)")
	}
}

func TestNewStructTypeRejectsEmpty(t *testing.T) {
	if _, err := NewStructType(nil); err != StatusEmptyStructType {
		t.Fatalf("expected StatusEmptyStructType, got %v", err)
	}
}

func TestNewStructTypeRejectsTooLarge(t *testing.T) {
	fields := make([]*Type, MaxStructFields+1)
	for i := range fields {
		fields[i] = ByteType
	}
	if _, err := NewStructType(fields); err != StatusStructTypeTooLarge {
		t.Fatalf("expected StatusStructTypeTooLarge, got %v", err)
	}
}

func TestStructTypeEquals(t *testing.T) {
	s1, err := NewStructType([]*Type{ByteType, StringType})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := NewStructType([]*Type{ByteType, StringType})
	if err != nil {
		t.Fatal(err)
	}
	if !s1.Equals(s2) {
		t.Error("structurally identical STRUCT types should be equal")
	}

	s3, err := NewStructType([]*Type{StringType, ByteType})
	if err != nil {
		t.Fatal(err)
	}
	if s1.Equals(s3) {
		t.Error("field order should matter for STRUCT equality")
	}
}

func TestTypeRoundTrip(t *testing.T) {
	st, err := NewStructType([]*Type{
		StringType,
		NewArrayType(NewArrayType(ByteType)),
		F64Type,
	})
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 64)
	n, err := st.ToBuffer(buf)
	if err != nil {
		t.Fatal(err)
	}

	parsed, m, err := TypeFromBuffer(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if m != n {
		t.Fatalf("consumed %d bytes, wrote %d", m, n)
	}
	if !st.Equals(parsed) {
		t.Error("parsed type does not match original")
	}
}

func TestTypeToBufferTooSmall(t *testing.T) {
	st, err := NewStructType([]*Type{ByteType, I32Type})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if _, err := st.ToBuffer(buf); err != StatusBufferTooSmall {
		t.Fatalf("expected StatusBufferTooSmall, got %v", err)
	}
}
