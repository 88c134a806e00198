package block

// Defaults is the bar definition, rightmost block first.
func Defaults() Set {
	return NewSet(
		Block{
			Command:  Command{Name: "date", Args: []string{"+%a %d %b %H:%M:%S"}},
			Interval: 1,
			Signal:   1,
		},
		Block{
			Icon:     "BAT",
			Command:  Command{Name: "sh", Args: []string{"-c", "cat /sys/class/power_supply/BAT*/capacity 2>/dev/null | head -n 1"}},
			Interval: 30,
			Signal:   2,
		},
		Block{
			Icon:     "LOAD",
			Command:  Command{Name: "sh", Args: []string{"-c", "cut -d ' ' -f 1 /proc/loadavg"}},
			Interval: 5,
		},
	)
}
