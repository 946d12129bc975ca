package reminder

import "github.com/magnusmorton/experiment-umi/registry"

// Register wires the reminder functions into reg under stable names.
func Register(reg *registry.Registry) error {
	entries := []struct {
		name string
		fn   interface{}
		op   registry.ResultOp
	}{
		{"reminder.New", New, registry.ResultOwned},
		{"reminder.SubmitEvent", (*ReadyReminderServer).SubmitEvent, registry.ResultOwned},
		{"reminder.ExtractEvent", (*ReadyReminderServer).ExtractEvent, registry.ResultOwned},
	}
	for _, e := range entries {
		if err := reg.Register(e.name, e.fn, e.op); err != nil {
			return err
		}
	}
	return nil
}
