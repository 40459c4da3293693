package diag

// Canonical note texts for access failures. Kept in one place so the
// wording stays stable for hosts that match on it and for golden traces.

// ReadInactive reports a read of member against a union whose active member
// differs. active is the declared name or "none".
func ReadInactive(src SrcHandle, member, active string) *Diagnostic {
	if active == "none" {
		return New(InactiveMemberAccess, src,
			"read of member '%s' of union with no active member", member)
	}
	return New(InactiveMemberAccess, src,
		"read of member '%s' of union with active member '%s'", member, active)
}

// CallInactive reports a member call through an inactive member.
func CallInactive(src SrcHandle, member, active string) *Diagnostic {
	if active == "none" {
		return New(InactiveMemberAccess, src,
			"member call on member '%s' of union with no active member", member)
	}
	return New(InactiveMemberAccess, src,
		"member call on member '%s' of union with active member '%s'", member, active)
}

// DestroyInactive reports destruction of a member that is not active at its
// own union level.
func DestroyInactive(src SrcHandle, member, active string) *Diagnostic {
	if active == "none" {
		return New(DestroyInactiveMember, src,
			"destruction of member '%s' of union with no active member", member)
	}
	return New(DestroyInactiveMember, src,
		"destruction of member '%s' of union with active member '%s'", member, active)
}

// ReadUninit reports a read of storage that is active but was never
// assigned a value.
func ReadUninit(src SrcHandle) *Diagnostic {
	return New(UninitializedRead, src, "read of uninitialized object")
}

// SubobjectUninit reports a complete-object read whose subobject was never
// initialized.
func SubobjectUninit(src SrcHandle, sub string) *Diagnostic {
	return New(UninitializedRead, src, "subobject '%s' is not initialized", sub)
}

// ExcessElements reports surplus initializer elements for a union.
func ExcessElements(src SrcHandle, union string) *Diagnostic {
	return New(ExcessInitializer, src, "excess elements in union initializer for '%s'", union)
}

// AddressUnfoldable reports an address comparison static layout cannot
// resolve.
func AddressUnfoldable(src SrcHandle, a, b string) *Diagnostic {
	return New(NotConstantFoldable, src,
		"comparison of addresses '%s' and '%s' is not constant foldable past the common initial sequence", a, b)
}
