package studentrecord

import "github.com/magnusmorton/experiment-umi/registry"

// Register wires every studentrecord function into reg under stable
// names, the way a generated stub's registration block would (spec.md
// §4.H); function names are namespaced by package so an endpoint hosting
// multiple apps never collides.
func Register(reg *registry.Registry) error {
	entries := []struct {
		name string
		fn   interface{}
		op   registry.ResultOp
	}{
		{"studentrecord.New", New, registry.ResultOwned},
		{"studentrecord.AddStudent", (*StudentRecord).AddStudent, registry.ResultOwned},
		{"studentrecord.HasStudent", (*StudentRecord).HasStudent, registry.ResultOwned},
		{"studentrecord.FirstStudent", (*StudentRecord).FirstStudent, registry.ResultRef},
		{"studentrecord.RenameFirst", (*StudentRecord).RenameFirst, registry.ResultMutRef},
		{"studentrecord.ReadStudentRef", ReadStudentRef, registry.ResultOwned},
		{"studentrecord.WriteStudentRef", WriteStudentRef, registry.ResultOwned},
	}
	for _, e := range entries {
		if err := reg.Register(e.name, e.fn, e.op); err != nil {
			return err
		}
	}
	return nil
}
