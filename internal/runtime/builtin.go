package runtime

// registerNatives adds the native functions to the global frame.
func registerNatives(i *Interpreter) {
	i.globals.Define("clock", &Native{
		Name: "clock",
		Fn: func(args []Value) (Value, error) {
			now := i.now()
			return NumberVal(float64(now.UnixNano()) / 1e9), nil
		},
	})
}
