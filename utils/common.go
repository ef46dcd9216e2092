// Package utils carries small cross-cutting helpers shared by the
// detection passes.
package utils

var noColorize bool

// SetColorize globally enables or disables colorized output.
func SetColorize(enabled bool) {
	noColorize = !enabled
}

// CanColorize gates a colorizing sprint function behind the global
// colorization switch.
func CanColorize(f func(...interface{}) string) func(...interface{}) string {
	return func(is ...interface{}) string {
		if noColorize {
			f = func(is ...interface{}) string {
				strs := make([]string, 0, len(is))
				for _, i := range is {
					switch s := i.(type) {
					case string:
						strs = append(strs, s)
					case interface{ String() string }:
						strs = append(strs, s.String())
					}
				}
				res := ""
				for _, str := range strs {
					res += str
				}
				return res
			}
		}
		return f(is...)
	}
}
