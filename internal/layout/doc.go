// Package layout compiles CUE record-layout definitions into type
// descriptors.
//
// Descriptors are normally handed across the front-end boundary as Go
// values; the CUE form exists for hosts and tests that want layouts as
// data. A definition looks like:
//
//	layouts: {
//		U: {
//			kind: "union"
//			fields: [
//				{name: "a", type: "int"},
//				{name: "b", type: "int[5]"},
//			]
//		}
//	}
//
// Field types are scalar names (int, uint, long, short, char, bool, float,
// double), previously declared record names, array suffixes thereof, or
// inline anonymous record definitions. Offsets may be given explicitly;
// otherwise a simple natural-alignment packer assigns them. The packer is
// deliberately naive - it is scaffolding for data-defined layouts, not a
// layout engine; collaborator-supplied offsets always win.
package layout
