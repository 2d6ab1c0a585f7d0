package stage

import "fmt"

// ProgressMessage formats the best-effort progress text persisted to the
// queue while a stage runs. Consumers poll the message field, so the format
// stays short and machine-greppable.
func ProgressMessage(stage string, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return fmt.Sprintf("%s:%d%%", stage, percent)
}
